package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattsolo1/grove-metatree/pkg/service"
	"github.com/mattsolo1/grove-metatree/pkg/tree"
)

func (m Model) View() string {
	if m.help.ShowAll {
		return m.help.View()
	}
	if m.confirm.Active {
		return "\n" + m.confirm.View()
	}

	st := m.session.State()

	header := headerStyle.Render("Metadata Tree")
	if st.Record != nil && st.Record.Library != "" {
		header += mutedStyle.Render(fmt.Sprintf("  %s [%s]", st.Record.Title(), strings.Join(st.Record.GroupingColumns(), " › ")))
	}
	if st.Origin != service.OriginNone {
		header += mutedStyle.Render("  (" + string(st.Origin) + ")")
	}

	var body string
	switch {
	case st.Loading:
		body = m.spinner.View() + " " + st.Message
	case st.Root == nil:
		style := mutedStyle
		if st.Err != nil {
			style = errorStyle
		}
		body = style.Render(st.Message)
	default:
		treePane := lipgloss.NewStyle().Width(m.treeWidth()).Render(m.renderTree())
		panel := panelStyle
		if m.panelFocused {
			panel = focusedPanelStyle
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top, treePane, panel.Render(m.panel.View()))
	}

	status := m.statusMessage
	if status == "" && st.Root != nil {
		status = st.Message
	}

	return "\n" + lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		body,
		"",
		infoStyle.Render(status),
		m.help.View(),
	)
}

func (m Model) renderTree() string {
	var b strings.Builder

	viewportHeight := m.getViewportHeight()
	start := m.scrollOffset
	end := m.scrollOffset + viewportHeight
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := start; i < end; i++ {
		row := m.rows[i]
		n := row.Node

		cursor := "  "
		if i == m.cursor {
			cursor = highlightStyle.Render("▶ ")
		}

		indicator := "▢ "
		if n.IsFolder() {
			indicator = "▶ "
			if n.Expanded {
				indicator = "▼ "
			}
		}

		line := fmt.Sprintf("%s%s%s%s", cursor, strings.Repeat("  ", row.Depth), indicator, n.Label)
		if n.IsFolder() && n.Loaded() && n.Kind == tree.KindGroup {
			line += mutedStyle.Render(fmt.Sprintf(" (%d)", len(n.Children)))
		}
		if i == m.cursor {
			if n.IsFolder() {
				line = lipgloss.NewStyle().Bold(true).Render(line)
			} else {
				line = selectedStyle.Render(line)
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(m.rows) > viewportHeight {
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" (%d-%d of %d)", start+1, end, len(m.rows))))
	}
	return b.String()
}

// setPanelContent renders the preview of the selected group into the panel
// viewport.
func (m *Model) setPanelContent() {
	m.panel.SetContent(m.renderPreview())
}

func (m Model) renderPreview() string {
	p := m.preview
	if p == nil {
		return mutedStyle.Render(m.bundle.T("preview_empty"))
	}

	var b strings.Builder
	var crumbs []string
	for _, n := range p.Path {
		if n.Kind == tree.KindGroup {
			crumbs = append(crumbs, m.bundle.ColumnTitle(n.Column())+": "+n.Label)
		}
	}
	if len(crumbs) > 0 {
		b.WriteString(headerStyle.Render(strings.Join(crumbs, " › ")))
		b.WriteString("\n")
	}
	b.WriteString(infoStyle.Render(p.URL))
	b.WriteString("\n")
	if p.Fallback {
		b.WriteString(errorStyle.Render(m.bundle.T("iframe_load_error")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(p.Rows) == 0 {
		b.WriteString(mutedStyle.Render(m.bundle.T("no_items_found_filter")))
		return b.String()
	}

	b.WriteString(tableHeader.Render(fmt.Sprintf("%-5s %-30s %s",
		m.bundle.T("column_id"), m.bundle.T("column_title"), m.bundle.T("column_file"))))
	b.WriteString("\n")
	for _, r := range p.Rows {
		title := r.Title
		if rs := []rune(title); len(rs) > 30 {
			title = string(rs[:29]) + "…"
		}
		fmt.Fprintf(&b, "%-5d %-30s %s\n", r.ID, title, r.FileName)
	}
	return b.String()
}
