package browser

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattsolo1/grove-core/tui/theme"
)

var (
	headerStyle    = theme.DefaultTheme.Header
	infoStyle      = theme.DefaultTheme.Info
	mutedStyle     = theme.DefaultTheme.Muted
	highlightStyle = theme.DefaultTheme.Highlight
	selectedStyle  = theme.DefaultTheme.Selected
	tableHeader    = theme.DefaultTheme.TableHeader
	errorStyle     = lipgloss.NewStyle().Foreground(theme.DefaultTheme.Colors.Red)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.DefaultColors.Border).
			Padding(0, 1)
	focusedPanelStyle = panelStyle.BorderForeground(theme.DefaultTheme.Colors.Orange)
)

// shortenPath replaces the home directory prefix with a tilde (~).
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path // Fallback to original path on error
	}

	if strings.HasPrefix(path, home) {
		return filepath.Join("~", strings.TrimPrefix(path, home))
	}

	return path
}
