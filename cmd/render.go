package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/mattsolo1/grove-metatree/pkg/service"
	"github.com/mattsolo1/grove-metatree/pkg/tree"
)

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printTree writes the visible part of the tree, one node per line.
func printTree(w io.Writer, root *tree.Node, showKeys bool) {
	for _, row := range tree.Visible(root) {
		n := row.Node
		marker := "-"
		if n.IsFolder() {
			marker = "+"
			if n.Expanded {
				marker = "v"
			}
		}
		line := fmt.Sprintf("%s%s %s", strings.Repeat("  ", row.Depth), marker, n.Label)
		if showKeys {
			line += "  [" + n.Key + "]"
		}
		fmt.Fprintln(w, line)
	}
}

// printState writes either the tree or the session message when there is
// no tree.
func printState(w io.Writer, st service.State, asJSON, showKeys bool) error {
	if st.Root == nil {
		if asJSON {
			return outputJSON(w, map[string]string{"message": st.Message})
		}
		fmt.Fprintln(w, st.Message)
		return nil
	}
	if asJSON {
		return outputJSON(w, st.Root)
	}
	printTree(w, st.Root, showKeys)
	if st.Message != "" {
		fmt.Fprintln(w, st.Message)
	}
	return nil
}
