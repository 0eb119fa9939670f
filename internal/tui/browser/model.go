package browser

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattsolo1/grove-core/tui/components/help"

	"github.com/mattsolo1/grove-metatree/internal/tui/browser/components/confirm"
	"github.com/mattsolo1/grove-metatree/pkg/i18n"
	"github.com/mattsolo1/grove-metatree/pkg/service"
	"github.com/mattsolo1/grove-metatree/pkg/tree"
)

// Model is the tree browser: the lazily expanded tree on the left and the
// preview of the selected group on the right.
type Model struct {
	session *service.Session
	bundle  *i18n.Bundle

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	panel   viewport.Model
	confirm confirm.Model

	// Flattened visible nodes of the current tree.
	rows         []tree.VisibleNode
	cursor       int
	scrollOffset int
	panelFocused bool

	width  int
	height int

	preview       *service.Preview
	statusMessage string
	lastOpened    string
}

// New creates the browser for a session. The session is mounted from Init.
func New(s *service.Session) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = infoStyle

	helpModel := help.NewBuilder().
		WithKeys(keys).
		WithTitle("Metadata Tree - Help").
		Build()

	dialog := confirm.New()
	dialog.Hint = s.Bundle().T("confirm_hint")

	return Model{
		session: s,
		bundle:  s.Bundle(),
		keys:    keys,
		help:    helpModel,
		spinner: sp,
		panel:   viewport.New(0, 0),
		confirm: dialog,
	}
}

// Init loads the configuration; items follow once it is known.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadConfigCmd(m.session))
}

// LastOpened returns the URL of the last opened document.
func (m Model) LastOpened() string {
	return m.lastOpened
}

// refresh rebuilds the visible rows from the session's current tree while
// keeping the cursor on the same key when it is still visible.
func (m *Model) refresh() {
	var currentKey string
	if m.cursor < len(m.rows) {
		currentKey = m.rows[m.cursor].Node.Key
	}

	st := m.session.State()
	if st.Root == nil {
		m.rows = nil
		m.cursor = 0
		m.scrollOffset = 0
		return
	}
	m.rows = tree.Visible(st.Root)

	m.cursor = 0
	for i, r := range m.rows {
		if r.Node.Key == currentKey {
			m.cursor = i
			break
		}
	}
	m.adjustScroll()
}

func (m Model) currentNode() *tree.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].Node
}

func (m Model) treeWidth() int {
	if m.width <= 0 {
		return 40
	}
	return m.width * 2 / 5
}

func (m Model) panelWidth() int {
	w := m.width - m.treeWidth() - 4
	if w < 10 {
		return 10
	}
	return w
}

// getViewportHeight returns the number of tree rows that fit on screen.
func (m Model) getViewportHeight() int {
	// header, blank, blank, status, help
	h := m.height - 6
	if h < 1 {
		return 1
	}
	return h
}

func (m *Model) adjustScroll() {
	vh := m.getViewportHeight()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+vh {
		m.scrollOffset = m.cursor - vh + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}
