package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// TextInput is the single-line editor used for question notes.
type TextInput struct {
	Model textinput.Model
}

// NewTextInput starts focused with the cursor after value. A charLimit of
// zero leaves the bubbles default.
func NewTextInput(placeholder, value string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	ti.SetValue(value)
	ti.CursorEnd()
	ti.Focus()
	return TextInput{Model: ti}
}

func (t TextInput) Init() tea.Cmd { return t.Model.Focus() }

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	m, cmd := t.Model.Update(msg)
	t.Model = m
	return t, cmd
}

func (t TextInput) View() string  { return t.Model.View() }
func (t TextInput) Value() string { return t.Model.Value() }
