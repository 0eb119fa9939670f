// Package confirm is a yes/no dialog guarding actions that rewrite stored
// state of a page.
package confirm

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattsolo1/grove-core/tui/theme"
)

// Action names what the dialog is guarding.
type Action int

const (
	ActionNone Action = iota
	ActionPublish
	ActionUnpublish
	ActionClearCache
)

// ConfirmedMsg is sent when the user accepts the pending action.
type ConfirmedMsg struct{ Action Action }

// CancelledMsg is sent when the user dismisses the dialog.
type CancelledMsg struct{ Action Action }

// Model is the dialog state. The zero value is inactive and uses the
// default keys.
type Model struct {
	Active bool
	Prompt string
	Hint   string
	action Action
	keys   keyMap
}

func New() Model {
	return Model{keys: defaultKeyMap, Hint: "(y/n)"}
}

// Activate shows the dialog for action.
func (m *Model) Activate(action Action, prompt string) {
	m.action = action
	m.Prompt = prompt
	m.Active = true
}

// Pending returns the action awaiting an answer, or ActionNone.
func (m Model) Pending() Action {
	if !m.Active {
		return ActionNone
	}
	return m.action
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !m.Active || !ok {
		return m, nil
	}
	action := m.action
	switch {
	case key.Matches(km, m.keys.Confirm):
		m.Active, m.action = false, ActionNone
		return m, func() tea.Msg { return ConfirmedMsg{Action: action} }
	case key.Matches(km, m.keys.Cancel):
		m.Active, m.action = false, ActionNone
		return m, func() tea.Msg { return CancelledMsg{Action: action} }
	}
	return m, nil
}

func (m Model) View() string {
	if !m.Active {
		return ""
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.DefaultTheme.Colors.Orange).
		Padding(1, 2).
		Render(m.Prompt)

	hint := lipgloss.NewStyle().
		Faint(true).
		Width(lipgloss.Width(box)).
		Align(lipgloss.Center).
		Render("\n" + m.Hint)

	return lipgloss.JoinVertical(lipgloss.Left, box, hint)
}

type keyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

var defaultKeyMap = keyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y", "Y", "s", "S"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "N", "esc", "q"),
		key.WithHelp("n/esc", "cancel"),
	),
}
