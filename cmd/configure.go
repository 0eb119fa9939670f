package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	cmdconfig "github.com/mattsolo1/grove-metatree/cmd/config"
	treeconfig "github.com/mattsolo1/grove-metatree/pkg/config"
	"github.com/mattsolo1/grove-metatree/pkg/field"
	"github.com/mattsolo1/grove-metatree/pkg/service"
)

// NewConfigCmd creates the `mtree config` command group.
func NewConfigCmd(rt **cmdconfig.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the tree configuration of a page",
	}
	cmd.AddCommand(newConfigSetCmd(rt))
	cmd.AddCommand(newConfigShowCmd(rt))
	return cmd
}

func newConfigSetCmd(rt **cmdconfig.Runtime) *cobra.Command {
	var (
		library     string
		title       string
		columns     []string
		columnTypes []string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Choose the library and grouping columns of a page",
		Long: `Save the library and up to three grouping columns for the page, then
load the tree once to validate them.

Column types control how a column is fetched. Lookup and user columns are
expanded and their display field is selected:

  mtree config set --library Documents --columns Dept,Year \
      --column-type Dept=Lookup:Title`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s := (*rt).Session

			types, err := parseColumnTypes(columnTypes)
			if err != nil {
				return err
			}
			cols := make([]string, len(columns))
			for i, c := range columns {
				c = strings.TrimSpace(c)
				if ct, ok := types[c]; ok {
					corrected := field.CorrectInternalName(c, ct.Type)
					if corrected != c {
						delete(types, c)
						types[corrected] = ct
					}
					c = corrected
				}
				cols[i] = c
			}

			if err := s.LoadConfig(ctx); err != nil {
				return err
			}
			rec := &treeconfig.Record{
				Library:      library,
				LibraryTitle: title,
				Columns:      cols,
				ColumnTypes:  types,
			}

			err = s.Configure(ctx, rec)
			var fetchErr *service.FetchError
			switch {
			case errors.As(err, &fetchErr):
				(*rt).Logger.WithError(err).Warn("configuration saved but the library could not be loaded")
			case err != nil:
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved configuration for page %s\n", (*rt).Settings.Page)
			return nil
		},
	}

	cmd.Flags().StringVar(&library, "library", "", "Library to browse")
	cmd.Flags().StringVar(&title, "title", "", "Label of the root node (defaults to the library)")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Grouping columns, first level first (at most 3)")
	cmd.Flags().StringArrayVar(&columnTypes, "column-type", nil, "Column type as Column=Type[:LookupField] (repeatable)")
	_ = cmd.MarkFlagRequired("library")

	return cmd
}

// parseColumnTypes parses Column=Type[:LookupField] entries.
func parseColumnTypes(entries []string) (map[string]field.ColumnType, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	out := make(map[string]field.ColumnType, len(entries))
	for _, entry := range entries {
		name, rest, ok := strings.Cut(entry, "=")
		if !ok || name == "" || rest == "" {
			return nil, fmt.Errorf("invalid column type %q, want Column=Type[:LookupField]", entry)
		}
		typ, lookupField, _ := strings.Cut(rest, ":")
		if !field.IsGroupable(typ) {
			return nil, fmt.Errorf("column %s: type %q cannot be grouped on (want one of %s)",
				name, typ, strings.Join(field.GroupableTypes, ", "))
		}
		out[strings.TrimSpace(name)] = field.ColumnType{Type: typ, LookupField: lookupField}
	}
	return out, nil
}

func newConfigShowCmd(rt **cmdconfig.Runtime) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the configuration of the page",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := (*rt).Session
			if err := s.LoadConfig(context.Background()); err != nil {
				return err
			}
			rec := s.State().Record
			out := cmd.OutOrStdout()
			if rec == nil {
				fmt.Fprintln(out, s.Bundle().T("no_library_selected"))
				return nil
			}
			if jsonOut {
				shown := *rec
				shown.PublishedSnapshot = ""
				return outputJSON(out, map[string]any{
					"record":    shown,
					"published": rec.PublishedSnapshot != "",
				})
			}

			data, err := yaml.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			fmt.Fprint(out, string(data))
			for i := 0; i < 3; i++ {
				col := s.Bundle().T("no_column")
				if i < len(rec.Columns) && rec.Columns[i] != "" {
					col = rec.Columns[i]
				}
				fmt.Fprintf(out, "%s: %s\n", s.Bundle().T(fmt.Sprintf("metadata_column_level_%d", i+1)), col)
			}
			fmt.Fprintf(out, "published: %t\n", rec.PublishedSnapshot != "")
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}
