package browser

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-metatree/pkg/service"
)

type configLoadedMsg struct{ err error }

type itemsLoadedMsg struct {
	result service.Result
}

type selectedMsg struct {
	selection *service.Selection
	err       error
}

type publishedMsg struct{ err error }

type unpublishedMsg struct{ err error }

type cacheClearedMsg struct{ err error }

// ConfigChangedMsg asks the browser to reload its configuration, for
// example after the settings file was edited.
type ConfigChangedMsg struct{}

func loadConfigCmd(s *service.Session) tea.Cmd {
	return func() tea.Msg {
		return configLoadedMsg{err: s.LoadConfig(context.Background())}
	}
}

// loadItemsCmd runs the fetch for a ticket issued by Session.Begin. The
// result is applied in Update, where stale generations are dropped.
func loadItemsCmd(s *service.Session, t service.Ticket) tea.Cmd {
	return func() tea.Msg {
		return itemsLoadedMsg{result: s.Load(context.Background(), t)}
	}
}

func selectCmd(s *service.Session, key string) tea.Cmd {
	return func() tea.Msg {
		sel, err := s.Select(context.Background(), key)
		return selectedMsg{selection: sel, err: err}
	}
}

func publishCmd(s *service.Session) tea.Cmd {
	return func() tea.Msg {
		return publishedMsg{err: s.Publish(context.Background())}
	}
}

func unpublishCmd(s *service.Session) tea.Cmd {
	return func() tea.Msg {
		return unpublishedMsg{err: s.Unpublish(context.Background())}
	}
}

func clearCacheCmd(s *service.Session) tea.Cmd {
	return func() tea.Msg {
		return cacheClearedMsg{err: s.InvalidateCache(context.Background())}
	}
}
