package confirm

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConfirmCarriesAction(t *testing.T) {
	m := New()
	m.Activate(ActionClearCache, "Clear?")
	if m.Pending() != ActionClearCache {
		t.Fatalf("Pending() = %v, want ActionClearCache", m.Pending())
	}

	m, cmd := m.Update(keyMsg("y"))
	if m.Active {
		t.Error("dialog still active after confirm")
	}
	if cmd == nil {
		t.Fatal("expected a command")
	}
	got, ok := cmd().(ConfirmedMsg)
	if !ok || got.Action != ActionClearCache {
		t.Errorf("cmd() = %#v, want ConfirmedMsg{ActionClearCache}", got)
	}
	if m.Pending() != ActionNone {
		t.Errorf("Pending() after confirm = %v", m.Pending())
	}
}

func TestCancelAndIgnoredKeys(t *testing.T) {
	m := New()
	m.Activate(ActionPublish, "Publish?")

	m, cmd := m.Update(keyMsg("x"))
	if !m.Active || cmd != nil {
		t.Fatal("unrelated key should leave the dialog open")
	}

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Active {
		t.Error("dialog still active after esc")
	}
	if got, ok := cmd().(CancelledMsg); !ok || got.Action != ActionPublish {
		t.Errorf("cmd() = %#v, want CancelledMsg{ActionPublish}", got)
	}
}

func TestInactiveView(t *testing.T) {
	m := New()
	if m.View() != "" {
		t.Error("inactive dialog should render nothing")
	}
	_, cmd := m.Update(keyMsg("y"))
	if cmd != nil {
		t.Error("inactive dialog should ignore keys")
	}
}
