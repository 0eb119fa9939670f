package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	cmdconfig "github.com/mattsolo1/grove-metatree/cmd/config"
)

// NewPublishCmd creates the `mtree publish` command.
func NewPublishCmd(rt **cmdconfig.Runtime) *cobra.Command {
	var (
		drop  bool
		fresh bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Store the current collection as the page snapshot",
		Long: `Store the collection of the page so that later loads are served from
the snapshot instead of the source. The snapshot is dropped when the library
or grouping columns change.

Examples:
  mtree publish           # snapshot what the page currently serves
  mtree publish --fresh   # refetch from the source, then snapshot
  mtree publish --clear   # drop the snapshot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s := (*rt).Session
			b := s.Bundle()

			if err := s.LoadConfig(ctx); err != nil {
				return err
			}
			if drop || fresh {
				if err := s.Unpublish(ctx); err != nil {
					return err
				}
				if drop {
					fmt.Fprintln(cmd.OutOrStdout(), b.T("unpublished"))
					return nil
				}
			}

			if _, err := s.Reload(ctx); err != nil {
				return err
			}
			if err := s.Publish(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), b.T("published"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&drop, "clear", false, "Drop the snapshot instead of storing one")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Refetch the collection before storing it")

	return cmd
}
