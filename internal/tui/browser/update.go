package browser

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-metatree/internal/tui/browser/components/confirm"
	"github.com/mattsolo1/grove-metatree/pkg/tree"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.SetSize(msg.Width, msg.Height)
		m.panel.Width = m.panelWidth()
		m.panel.Height = m.getViewportHeight()
		m.setPanelContent()
		m.adjustScroll()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case configLoadedMsg:
		if msg.err != nil {
			m.statusMessage = msg.err.Error()
			return m, nil
		}
		return m, m.startLoad()

	case ConfigChangedMsg:
		m.statusMessage = m.bundle.T("config_reloaded")
		return m, loadConfigCmd(m.session)

	case itemsLoadedMsg:
		if m.session.Apply(msg.result) {
			m.preview = nil
			m.setPanelContent()
			m.refresh()
		}
		return m, nil

	case selectedMsg:
		if msg.err != nil {
			m.statusMessage = msg.err.Error()
			return m, nil
		}
		if msg.selection.DocumentURL != "" {
			m.lastOpened = msg.selection.DocumentURL
			m.statusMessage = m.bundle.T("opened", shortenPath(msg.selection.DocumentURL))
			return m, nil
		}
		m.preview = msg.selection.Preview
		m.panel.GotoTop()
		m.setPanelContent()
		m.statusMessage = ""
		if m.preview != nil && m.preview.Fallback {
			m.statusMessage = m.bundle.T("preview_fallback")
		}
		return m, nil

	case publishedMsg:
		if msg.err != nil {
			m.statusMessage = msg.err.Error()
		} else {
			m.statusMessage = m.bundle.T("published")
		}
		return m, nil

	case cacheClearedMsg:
		if msg.err != nil {
			m.statusMessage = msg.err.Error()
			return m, nil
		}
		m.statusMessage = m.bundle.T("cache_cleared")
		return m, m.startLoad()

	case unpublishedMsg:
		if msg.err != nil {
			m.statusMessage = msg.err.Error()
			return m, nil
		}
		m.statusMessage = m.bundle.T("unpublished")
		return m, m.startLoad()

	case confirm.ConfirmedMsg:
		switch msg.Action {
		case confirm.ActionPublish:
			return m, publishCmd(m.session)
		case confirm.ActionUnpublish:
			return m, unpublishCmd(m.session)
		case confirm.ActionClearCache:
			return m, clearCacheCmd(m.session)
		}
		return m, nil

	case confirm.CancelledMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// startLoad opens a new generation and schedules its fetch.
func (m *Model) startLoad() tea.Cmd {
	t, ok := m.session.Begin()
	m.refresh()
	if !ok {
		return nil
	}
	return tea.Batch(m.spinner.Tick, loadItemsCmd(m.session, t))
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll {
		m.help.Toggle()
		return m, nil
	}
	if m.confirm.Active {
		var cmd tea.Cmd
		m.confirm, cmd = m.confirm.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.Toggle()
		return m, nil
	case key.Matches(msg, m.keys.FocusPanel):
		m.panelFocused = !m.panelFocused
		return m, nil
	}

	if m.panelFocused {
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.PageUp):
		m.cursor -= m.getViewportHeight() / 2
		if m.cursor < 0 {
			m.cursor = 0
		}
	case key.Matches(msg, m.keys.PageDown):
		m.cursor += m.getViewportHeight() / 2
		if m.cursor > len(m.rows)-1 {
			m.cursor = max(len(m.rows)-1, 0)
		}
	case key.Matches(msg, m.keys.GoToTop):
		m.cursor = 0
	case key.Matches(msg, m.keys.GoToBottom):
		m.cursor = max(len(m.rows)-1, 0)

	case key.Matches(msg, m.keys.Toggle):
		if n := m.currentNode(); n.IsFolder() {
			m.expand(n.Key)
		}
	case key.Matches(msg, m.keys.Collapse):
		m.collapseOrParent()
	case key.Matches(msg, m.keys.ExpandAll):
		if _, err := m.session.ExpandAll(context.Background()); err != nil {
			m.statusMessage = err.Error()
		}
		m.refresh()
	case key.Matches(msg, m.keys.Select):
		if n := m.currentNode(); n != nil {
			return m, selectCmd(m.session, n.Key)
		}

	case key.Matches(msg, m.keys.Reload):
		return m, m.startLoad()
	case key.Matches(msg, m.keys.ClearCache):
		if m.session.State().Record != nil {
			m.confirm.Activate(confirm.ActionClearCache, m.bundle.T("confirm_clear_cache"))
		}
	case key.Matches(msg, m.keys.Publish):
		if m.session.State().Root != nil {
			m.confirm.Activate(confirm.ActionPublish, m.bundle.T("confirm_publish"))
		}
	case key.Matches(msg, m.keys.Unpublish):
		if m.session.State().Record != nil {
			m.confirm.Activate(confirm.ActionUnpublish, m.bundle.T("confirm_unpublish"))
		}
	}

	m.adjustScroll()
	return m, nil
}

func (m *Model) expand(key string) {
	if _, err := m.session.Expand(context.Background(), key); err != nil {
		m.statusMessage = err.Error()
	}
	m.refresh()
}

// collapseOrParent collapses an expanded folder, otherwise moves the cursor
// to the parent row.
func (m *Model) collapseOrParent() {
	n := m.currentNode()
	if n == nil {
		return
	}
	if n.IsFolder() && n.Expanded && n.Kind != tree.KindRoot {
		m.expand(n.Key)
		return
	}
	depth := m.rows[m.cursor].Depth
	for i := m.cursor - 1; i >= 0; i-- {
		if m.rows[i].Depth < depth {
			m.cursor = i
			return
		}
	}
}
