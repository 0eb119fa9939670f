package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	cmdconfig "github.com/mattsolo1/grove-metatree/cmd/config"
)

// NewCacheCmd creates the `mtree cache` command group.
func NewCacheCmd(rt **cmdconfig.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local item cache",
	}
	cmd.AddCommand(newCacheClearCmd(rt))
	return cmd
}

func newCacheClearCmd(rt **cmdconfig.Runtime) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop cached items so the next load fetches",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			r := *rt

			if all {
				if r.Cache == nil {
					return fmt.Errorf("cache is disabled")
				}
				if err := r.Cache.Clear(ctx); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
			} else {
				if err := r.Session.LoadConfig(ctx); err != nil {
					return err
				}
				if err := r.Session.InvalidateCache(ctx); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.Session.Bundle().T("cache_cleared"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Clear the cache of every page")

	return cmd
}
