package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/jtoivan/ripasso/internal/ui/theme"
)

// AnswerInput wraps bubbles/textinput for typed drill answers.
type AnswerInput struct {
	Model     textinput.Model
	submitted bool
	valid     bool
}

// NewAnswerInput creates a focused answer input.
func NewAnswerInput(placeholder string) AnswerInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 80
	ti.Focus()
	return AnswerInput{Model: ti}
}

// Init returns the initial command.
func (a AnswerInput) Init() tea.Cmd {
	return a.Model.Focus()
}

// Update handles messages.
func (a AnswerInput) Update(msg tea.Msg) (AnswerInput, tea.Cmd) {
	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	return a, cmd
}

// View renders the input with a check or cross after submission.
func (a AnswerInput) View() string {
	view := a.Model.View()
	if a.submitted {
		if a.valid {
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		} else {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return view
}

// Value returns the current input value.
func (a AnswerInput) Value() string {
	return a.Model.Value()
}

// Submit marks the input as submitted with a validation result.
func (a *AnswerInput) Submit(valid bool) {
	a.submitted = true
	a.valid = valid
}

// Reset clears the input for the next answer.
func (a *AnswerInput) Reset() {
	a.Model.SetValue("")
	a.submitted = false
	a.valid = false
}
