package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-telescope/internal/input"
	"github.com/litescript/ls-telescope/internal/telescope"
)

// FormModel holds the date inputs for one variant plus focus position.
// Focus runs over the inputs, then the trigger, then the milestone list.
type FormModel struct {
	variant telescope.Variant
	inputs  []textinput.Model
	labels  []string
	focus   int
}

// NewFormModel builds the inputs for the collector's variant and fills them
// from its current values.
func NewFormModel(c *input.Collector) FormModel {
	f := FormModel{variant: c.Variant}

	if c.Variant == telescope.VariantExtended {
		f.labels = []string{"Year", "Month", "Day", "Time"}
		f.inputs = []textinput.Model{
			newInput("-2560", 7),
			newInput("1-12", 2),
			newInput("1-31", 2),
			newInput("HH:MM", 5),
		}
	} else {
		f.labels = []string{"Target date"}
		f.inputs = []textinput.Model{newInput("YYYY-MM-DDTHH:MM", 19)}
	}

	f.Load(c)
	f.inputs[0].Focus()
	return f
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = limit + 1
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0E0FF"))
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	return ti
}

// Load copies the collector's values into the inputs.
func (f *FormModel) Load(c *input.Collector) {
	if f.variant == telescope.VariantExtended {
		f.inputs[0].SetValue(c.Extended.Year)
		f.inputs[1].SetValue(c.Extended.Month)
		f.inputs[2].SetValue(c.Extended.Day)
		f.inputs[3].SetValue(c.Extended.Time)
		return
	}
	f.inputs[0].SetValue(c.Simple.DateTime)
}

// Store copies the inputs back into the collector.
func (f FormModel) Store(c *input.Collector) {
	if f.variant == telescope.VariantExtended {
		c.Extended = input.ExtendedForm{
			Year:  f.inputs[0].Value(),
			Month: f.inputs[1].Value(),
			Day:   f.inputs[2].Value(),
			Time:  f.inputs[3].Value(),
		}
		return
	}
	c.Simple = input.SimpleForm{DateTime: f.inputs[0].Value()}
}

// Focus positions past the inputs.
func (f FormModel) triggerIndex() int   { return len(f.inputs) }
func (f FormModel) milestoneIndex() int { return len(f.inputs) + 1 }
func (f FormModel) focusCount() int     { return len(f.inputs) + 2 }

// OnInput reports whether a text input has focus.
func (f FormModel) OnInput() bool { return f.focus < len(f.inputs) }

// OnTrigger reports whether the trigger has focus.
func (f FormModel) OnTrigger() bool { return f.focus == f.triggerIndex() }

// OnMilestones reports whether the milestone list has focus.
func (f FormModel) OnMilestones() bool { return f.focus == f.milestoneIndex() }

// Next moves focus forward, wrapping around.
func (f FormModel) Next() (FormModel, tea.Cmd) {
	return f.setFocus((f.focus + 1) % f.focusCount())
}

// Prev moves focus backward, wrapping around.
func (f FormModel) Prev() (FormModel, tea.Cmd) {
	return f.setFocus((f.focus - 1 + f.focusCount()) % f.focusCount())
}

// FocusTrigger moves focus to the trigger.
func (f FormModel) FocusTrigger() (FormModel, tea.Cmd) {
	return f.setFocus(f.triggerIndex())
}

func (f FormModel) setFocus(idx int) (FormModel, tea.Cmd) {
	f.focus = idx
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == idx {
			cmd = f.inputs[i].Focus()
			f.inputs[i].CursorEnd()
		} else {
			f.inputs[i].Blur()
		}
	}
	return f, cmd
}

// Update forwards a message to the focused input.
func (f FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	if !f.OnInput() {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// Values returns the raw input values in display order.
func (f FormModel) Values() []string {
	out := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		out[i] = in.Value()
	}
	return out
}

// View renders label/input rows.
func (f FormModel) View() string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60")).Width(13)
	activeLabel := labelStyle.Foreground(lipgloss.Color("#9D4EDD")).Bold(true)

	rows := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		label := labelStyle.Render(f.labels[i])
		if i == f.focus {
			label = activeLabel.Render(f.labels[i])
		}
		rows[i] = label + in.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
