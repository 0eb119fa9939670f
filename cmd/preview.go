package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	cmdconfig "github.com/mattsolo1/grove-metatree/cmd/config"
	"github.com/mattsolo1/grove-metatree/pkg/service"
	"github.com/mattsolo1/grove-metatree/pkg/tree"
)

// NewPreviewCmd creates the `mtree preview` command.
func NewPreviewCmd(rt **cmdconfig.Runtime) *cobra.Command {
	var (
		path    string
		list    bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the filtered view URL of a group",
		Long: `Walk the tree along a path of grouped values and print the filtered
view URL of the group reached. Without --path the library view is printed.

Examples:
  mtree preview --path Finance/2024
  mtree preview --path Finance --list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s := (*rt).Session

			if err := s.Mount(ctx); err != nil {
				return err
			}
			if s.State().Root == nil {
				fmt.Fprintln(cmd.OutOrStdout(), s.State().Message)
				return nil
			}

			var values []string
			if path != "" {
				values = strings.Split(path, "/")
			}
			key, err := walkValues(ctx, s, values)
			if err != nil {
				return err
			}

			p, err := s.Preview(ctx, key)
			if err != nil {
				return err
			}
			if jsonOut {
				return outputJSON(cmd.OutOrStdout(), map[string]any{
					"url":      p.URL,
					"fallback": p.Fallback,
					"filter":   p.Path[len(p.Path)-1].FilterQuery(),
					"items":    p.Rows,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, p.URL)
			if p.Fallback {
				fmt.Fprintln(out, s.Bundle().T("preview_fallback"))
			}
			if !list {
				return nil
			}
			if len(p.Rows) == 0 {
				fmt.Fprintln(out, s.Bundle().T("no_items_found_filter"))
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.Bundle().T("column_id"), s.Bundle().T("column_title"), s.Bundle().T("column_file"))
			for _, r := range p.Rows {
				fmt.Fprintf(w, "%d\t%s\t%s\n", r.ID, r.Title, r.FileRef)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Grouped values from the first level down, separated by /")
	cmd.Flags().BoolVar(&list, "list", false, "List the documents of the group")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}

// walkValues expands the tree along values and returns the key of the group
// reached, or the root key for no values.
func walkValues(ctx context.Context, s *service.Session, values []string) (string, error) {
	root := s.State().Root
	node := root
	for _, v := range values {
		if !node.Expanded {
			var err error
			if root, err = s.Expand(ctx, node.Key); err != nil {
				return "", err
			}
			node, _ = tree.FindByKey(root, node.Key)
		}
		var next *tree.Node
		for _, c := range node.Children {
			if c.Kind == tree.KindGroup && c.Value() == v {
				next = c
				break
			}
		}
		if next == nil {
			return "", fmt.Errorf("no group %q below %q", v, node.Label)
		}
		node = next
	}
	return node.Key, nil
}
