package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lumabrowser/script-engine/engine"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// maxTranscript bounds the number of retained REPL entries.
const maxTranscript = 200

type replEntry struct {
	input  string
	output string // print builtin output, may be empty
	result string
	isErr  bool
}

type replModel struct {
	eng        *engine.Engine
	printed    *bytes.Buffer
	input      textinput.Model
	transcript []replEntry
	evals      int
}

func newReplModel(opts engine.Options) *replModel {
	// Route the print builtin into a buffer so its output lands in the
	// transcript instead of fighting the TUI for the terminal.
	printed := &bytes.Buffer{}
	opts.Stdout = printed

	ti := textinput.New()
	ti.Prompt = promptStyle.Render("> ")
	ti.Placeholder = `1 + 2;  or  print("hi");`
	ti.Focus()

	return &replModel{
		eng:     engine.New(opts),
		printed: printed,
		input:   ti,
	}
}

func (m *replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d", "esc":
			m.eng.Shutdown()
			return m, tea.Quit

		case "enter":
			src := strings.TrimSpace(m.input.Value())
			if src == "" {
				return m, nil
			}
			m.eval(src)
			m.input.SetValue("")
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *replModel) eval(src string) {
	m.printed.Reset()
	result, err := m.eng.ExecuteScript([]byte(src), fmt.Sprintf("repl:%d", m.evals))
	m.evals++

	entry := replEntry{input: src, output: m.printed.String()}
	if err != nil {
		entry.result = err.Error()
		entry.isErr = true
	} else {
		entry.result = result.Inspect()
	}
	m.transcript = append(m.transcript, entry)
	if len(m.transcript) > maxTranscript {
		m.transcript = m.transcript[len(m.transcript)-maxTranscript:]
	}
}

func (m *replModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("script-engine"))
	b.WriteString(" ")
	b.WriteString(helpStyle.Render("enter run • esc quit"))
	b.WriteString("\n\n")

	for _, e := range m.transcript {
		b.WriteString(promptStyle.Render("> "))
		b.WriteString(e.input)
		b.WriteString("\n")
		if e.output != "" {
			b.WriteString(outputStyle.Render(strings.TrimRight(e.output, "\n")))
			b.WriteString("\n")
		}
		if e.isErr {
			b.WriteString(errorStyle.Render(e.result))
		} else {
			b.WriteString(resultStyle.Render(e.result))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	return b.String()
}

func runInteractive(opts engine.Options) error {
	p := tea.NewProgram(newReplModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
