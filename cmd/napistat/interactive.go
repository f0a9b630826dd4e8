package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/hostbridge/errors"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	result   string
	statuses []errors.Status
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type modelState int

const (
	stateSelectStatus modelState = iota
	stateInputArgs
	stateShowResult
)

const (
	inputKind = iota
	inputReason
)

func newInteractiveModel() *interactiveModel {
	return &interactiveModel{
		statuses: errors.AllStatuses(),
		state:    stateSelectStatus,
	}
}

type materializedMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectStatus && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectStatus && m.selected < len(m.statuses)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectStatus:
				m.prepareInputs()
				m.state = stateInputArgs
				return m, nil

			case stateInputArgs:
				return m, m.materialize

			case stateShowResult:
				m.state = stateSelectStatus
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
				return m, nil
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectStatus
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectStatus
				m.result = ""
				m.err = nil
			}
		}

	case materializedMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	kind := textinput.New()
	kind.Prompt = "kind: "
	kind.Placeholder = "Error | TypeError | RangeError | SyntaxError"
	kind.Width = 40
	kind.Focus()

	reason := textinput.New()
	reason.Prompt = "reason: "
	reason.Placeholder = "text"
	reason.Width = 40

	m.inputs = []textinput.Model{inputKind: kind, inputReason: reason}
	m.focusIdx = inputKind
}

func (m *interactiveModel) materialize() tea.Msg {
	kind, err := parseKind(m.inputs[inputKind].Value())
	if err != nil {
		return materializedMsg{err: err}
	}
	result, err := materialize(m.statuses[m.selected], kind, m.inputs[inputReason].Value())
	return materializedMsg{result: result, err: err}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Status Explorer"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectStatus:
		b.WriteString("Select a status to materialize:\n\n")
		for i, st := range m.statuses {
			line := formatStatus(st)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter choose • q quit"))

	case stateInputArgs:
		st := m.statuses[m.selected]
		b.WriteString(fmt.Sprintf("Materializing %s\n\n", funcStyle.Render(st.String())))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter materialize • esc back"))

	case stateShowResult:
		st := m.statuses[m.selected]
		b.WriteString(fmt.Sprintf("Exception for %s:\n\n", funcStyle.Render(st.String())))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func formatStatus(st errors.Status) string {
	return typeStyle.Render(fmt.Sprintf("%4d", st.Code())) + "  " + funcStyle.Render(st.String())
}

func runInteractive() error {
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
