package browser

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/mattsolo1/grove-core/tui/keymap"
)

// KeyMap defines the keybindings for the tree browser. Movement, help and
// quit come from the shared base map.
type KeyMap struct {
	keymap.Base
	PageUp     key.Binding
	PageDown   key.Binding
	GoToTop    key.Binding
	GoToBottom key.Binding
	Toggle     key.Binding
	Collapse   key.Binding
	Select     key.Binding
	ExpandAll  key.Binding
	FocusPanel key.Binding
	Reload     key.Binding
	ClearCache key.Binding
	Publish    key.Binding
	Unpublish  key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Select, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	baseHelp := k.Base.FullHelp()
	return append(baseHelp,
		[]key.Binding{k.PageUp, k.PageDown, k.GoToTop, k.GoToBottom},
		[]key.Binding{k.Toggle, k.Collapse, k.ExpandAll, k.Select, k.FocusPanel},
		[]key.Binding{k.Reload, k.ClearCache, k.Publish, k.Unpublish},
	)
}

var keys = KeyMap{
	Base: keymap.NewBase(),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("ctrl+u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("ctrl+d", "page down"),
	),
	GoToTop: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "go to top"),
	),
	GoToBottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "go to bottom"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "l", "right"),
		key.WithHelp("space/l", "expand/collapse"),
	),
	Collapse: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h", "collapse / parent"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open / preview"),
	),
	ExpandAll: key.NewBinding(
		key.WithKeys("E"),
		key.WithHelp("E", "expand all"),
	),
	FocusPanel: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "focus preview"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	ClearCache: key.NewBinding(
		key.WithKeys("C"),
		key.WithHelp("C", "clear cache + reload"),
	),
	Publish: key.NewBinding(
		key.WithKeys("P"),
		key.WithHelp("P", "publish snapshot"),
	),
	Unpublish: key.NewBinding(
		key.WithKeys("U"),
		key.WithHelp("U", "drop snapshot"),
	),
}
