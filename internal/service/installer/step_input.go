package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// inputField describes one text prompt. applies decides on entry whether the prompt is shown at all.
type inputField struct {
	applies     func(*InstallState) bool
	title       func(*InstallState) string
	placeholder func(*InstallState) string
	initial     func(*InstallState) string
	secret      bool
	optional    func(*InstallState) bool
	validate    func(string) error
	apply       func(*InstallState, string)
}

// InputStep is a single line prompt driven by an inputField.
type InputStep struct {
	field  inputField
	input  textinput.Model
	active bool
	err    error
}

func newInputStep(field inputField) *InputStep {
	return &InputStep{field: field}
}

func (s *InputStep) Init() tea.Cmd {
	return next
}

func (s *InputStep) activate(state *InstallState) {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 50
	if s.field.placeholder != nil {
		ti.Placeholder = s.field.placeholder(state)
	}
	if s.field.secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	if s.field.initial != nil {
		ti.SetValue(s.field.initial(state))
	}
	s.input = ti
	s.active = true
}

func (s *InputStep) optional(state *InstallState) bool {
	return s.field.optional != nil && s.field.optional(state)
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if !s.active {
		if s.field.applies != nil && !s.field.applies(state) {
			return nil, nil
		}
		s.activate(state)
		return s, textinput.Blink
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		value := strings.TrimSpace(s.input.Value())
		if value == "" && !s.optional(state) {
			s.err = fmt.Errorf("a value is required")
			return s, nil
		}
		if value != "" && s.field.validate != nil {
			if err := s.field.validate(value); err != nil {
				s.err = err
				return s, nil
			}
		}
		s.field.apply(state, value)
		return nil, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	if !s.active {
		return "Loading...\n"
	}

	hint := ""
	if s.optional(state) {
		hint = " (optional, press enter to skip)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Enter your %s%s:\n\n%s\n\n", s.field.title(state), hint, s.input.View())
	if s.err != nil {
		b.WriteString(errorStyle.Render(s.err.Error()) + "\n\n")
	}
	b.WriteString("(press enter to confirm)\n")
	return b.String()
}
