package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r, Text: string(r)} }

func testMenu(ran *[]string) Menu {
	item := func(label string, disabled bool) MenuItem {
		return MenuItem{Label: label, Disabled: disabled, Action: func() tea.Cmd {
			*ran = append(*ran, label)
			return nil
		}}
	}
	return NewMenu("Capture screenshot with", []MenuItem{
		item("claude", true),
		item("gemini", false),
		item("openai", false),
	})
}

func TestMenuSkipsDisabledAndWraps(t *testing.T) {
	var ran []string
	m := testMenu(&ran)
	if m.Selected != 1 {
		t.Fatalf("first enabled item should be selected, got %d", m.Selected)
	}

	m, _ = m.Update(key('j'))
	if m.Selected != 2 {
		t.Fatalf("down: selected %d, want 2", m.Selected)
	}
	m, _ = m.Update(key('j'))
	if m.Selected != 1 {
		t.Fatalf("down from last should wrap past the disabled item, got %d", m.Selected)
	}
	m, _ = m.Update(key('k'))
	if m.Selected != 2 {
		t.Fatalf("up should wrap to the last item, got %d", m.Selected)
	}
}

func TestMenuChoose(t *testing.T) {
	var ran []string
	m := testMenu(&ran)

	m, _ = m.Update(key('1'))
	if m.Chosen || len(ran) != 0 {
		t.Fatal("disabled item must not run")
	}
	m, _ = m.Update(key('3'))
	if !m.Chosen || len(ran) != 1 || ran[0] != "openai" {
		t.Fatalf("shortcut 3: chosen=%v ran=%v", m.Chosen, ran)
	}

	m = testMenu(&ran)
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !m.Chosen || ran[len(ran)-1] != "gemini" {
		t.Fatalf("enter ran %v", ran)
	}
}

func TestMenuView(t *testing.T) {
	var ran []string
	out := testMenu(&ran).View()
	if !strings.Contains(out, "Capture screenshot with") {
		t.Error("missing title")
	}
	if !strings.Contains(out, "▸ 2  gemini") {
		t.Errorf("selected item not marked:\n%s", out)
	}
}

func TestMenuAllDisabled(t *testing.T) {
	m := NewMenu("", []MenuItem{{Label: "claude", Disabled: true}})
	m, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil || m.Chosen {
		t.Fatal("nothing should run")
	}
}
