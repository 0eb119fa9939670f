package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-metatree/cmd"
	cmdconfig "github.com/mattsolo1/grove-metatree/cmd/config"
)

var rt *cmdconfig.Runtime

func main() {
	rootCmd := &cobra.Command{
		Use:           "mtree",
		Short:         "Browse a document library as a tree of metadata values",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmdconfig.AddGlobalFlags(rootCmd)
	cobra.OnInitialize(cmdconfig.InitConfig)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// This runs once before any subcommand
		if cmd.Name() == "version" {
			return nil
		}
		logger := cmdconfig.NewLogger()

		var err error
		rt, err = cmdconfig.InitRuntime(logger)
		return err
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		rt.Close()
	}

	// Add subcommands
	rootCmd.AddCommand(cmd.NewShowCmd(&rt))
	rootCmd.AddCommand(cmd.NewExpandCmd(&rt))
	rootCmd.AddCommand(cmd.NewPreviewCmd(&rt))
	rootCmd.AddCommand(cmd.NewConfigCmd(&rt))
	rootCmd.AddCommand(cmd.NewPublishCmd(&rt))
	rootCmd.AddCommand(cmd.NewCacheCmd(&rt))
	rootCmd.AddCommand(cmd.NewTuiCmd(&rt))
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
