package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdconfig "github.com/mattsolo1/grove-metatree/cmd/config"
	"github.com/mattsolo1/grove-metatree/internal/tui/browser"
)

// NewTuiCmd creates the `mtree tui` command.
func NewTuiCmd(rt **cmdconfig.Runtime) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the tree interactively",
		Long: `Launch an interactive Terminal User Interface for browsing the tree.
Folders expand lazily; selecting a group shows its filtered view and the
documents it contains, selecting a document opens it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check for TTY
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("TUI mode requires an interactive terminal")
			}

			model := browser.New((*rt).Session)
			p := tea.NewProgram(model, tea.WithAltScreen())

			if watch && viper.ConfigFileUsed() != "" {
				viper.OnConfigChange(func(e fsnotify.Event) {
					(*rt).Logger.WithField("file", e.Name).Debug("config file changed")
					p.Send(browser.ConfigChangedMsg{})
				})
				viper.WatchConfig()
			}

			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}
			if m, ok := final.(browser.Model); ok && m.LastOpened() != "" {
				fmt.Fprintln(cmd.OutOrStdout(), m.LastOpened())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the tree when the config file changes")

	return cmd
}
