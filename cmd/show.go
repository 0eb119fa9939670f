package cmd

import (
	"context"

	"github.com/spf13/cobra"

	cmdconfig "github.com/mattsolo1/grove-metatree/cmd/config"
)

// NewShowCmd creates the `mtree show` command.
func NewShowCmd(rt **cmdconfig.Runtime) *cobra.Command {
	var (
		expandAll bool
		jsonOut   bool
		showKeys  bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the tree of the configured library",
		Long: `Fetch the configured library and print its tree. Only the first
grouping level is materialized unless --expand-all is given.

Examples:
  mtree show
  mtree show --expand-all
  mtree show --page /sites/hr --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s := (*rt).Session

			if err := s.Mount(ctx); err != nil {
				return err
			}
			if expandAll && s.State().Root != nil {
				if _, err := s.ExpandAll(ctx); err != nil {
					return err
				}
			}
			return printState(cmd.OutOrStdout(), s.State(), jsonOut, showKeys)
		},
	}

	cmd.Flags().BoolVar(&expandAll, "expand-all", false, "Materialize and expand every level")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the tree as JSON")
	cmd.Flags().BoolVar(&showKeys, "keys", false, "Show node keys (for use with expand)")

	return cmd
}

// NewExpandCmd creates the `mtree expand` command.
func NewExpandCmd(rt **cmdconfig.Runtime) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "expand <key>...",
		Short: "Expand nodes by key and print the tree",
		Long: `Mount the tree and apply one expand event per key, in order. Keys are
printed by "mtree show --keys". Unknown keys are ignored.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s := (*rt).Session

			if err := s.Mount(ctx); err != nil {
				return err
			}
			if s.State().Root != nil {
				for _, key := range args {
					if _, err := s.Expand(ctx, key); err != nil {
						return err
					}
				}
			}
			return printState(cmd.OutOrStdout(), s.State(), jsonOut, true)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the tree as JSON")

	return cmd
}
