package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/duk-runtime/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// maxTranscript bounds how many evaluated entries stay on screen.
const maxTranscript = 50

type entry struct {
	err    error
	input  string
	output string
	result string
}

type interactiveModel struct {
	rt         *runtime.Runtime
	stdout     *bytes.Buffer
	input      textinput.Model
	filename   string
	transcript []entry
	history    []string
	histIdx    int
}

func newInteractiveModel(rt *runtime.Runtime, stdout *bytes.Buffer, filename string) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render("duk> ")
	ti.Placeholder = "expression"
	ti.Width = 72
	ti.Focus()

	return &interactiveModel{
		rt:       rt,
		stdout:   stdout,
		input:    ti,
		filename: filename,
	}
}

// preloadedMsg asks Update to run the file given on the command line.
type preloadedMsg struct{}

func (m *interactiveModel) Init() tea.Cmd {
	if m.filename == "" {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, func() tea.Msg { return preloadedMsg{} })
}

// Update owns every heap access; the heap is never touched from a tea.Cmd
// goroutine.
func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			return m, tea.Quit

		case "up":
			if m.histIdx > 0 {
				m.histIdx--
				m.input.SetValue(m.history[m.histIdx])
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.histIdx < len(m.history)-1 {
				m.histIdx++
				m.input.SetValue(m.history[m.histIdx])
				m.input.CursorEnd()
			} else {
				m.histIdx = len(m.history)
				m.input.SetValue("")
			}
			return m, nil

		case "enter":
			src := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if src == "" {
				return m, nil
			}
			m.history = append(m.history, src)
			m.histIdx = len(m.history)
			m.record(m.evaluate(src))
			return m, nil
		}

	case preloadedMsg:
		m.stdout.Reset()
		err := m.rt.RunFile(m.filename)
		m.record(entry{input: "load " + m.filename, output: m.takeOutput(), err: err})
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) evaluate(src string) entry {
	m.stdout.Reset()
	v, err := m.rt.EvalValue(src)
	e := entry{input: src, output: m.takeOutput(), err: err}
	if err == nil && !v.IsAbsent() {
		e.result = v.CoerceString()
	}
	return e
}

func (m *interactiveModel) takeOutput() string {
	out := strings.TrimRight(m.stdout.String(), "\n")
	m.stdout.Reset()
	return out
}

func (m *interactiveModel) record(e entry) {
	m.transcript = append(m.transcript, e)
	if len(m.transcript) > maxTranscript {
		m.transcript = m.transcript[len(m.transcript)-maxTranscript:]
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Duktape REPL"))
	if m.filename != "" {
		b.WriteString(" ")
		b.WriteString(m.filename)
	}
	b.WriteString("\n\n")

	for _, e := range m.transcript {
		b.WriteString(promptStyle.Render("duk> "))
		b.WriteString(e.input)
		b.WriteString("\n")
		if e.output != "" {
			b.WriteString(outputStyle.Render(e.output))
			b.WriteString("\n")
		}
		if e.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", e.err)))
			b.WriteString("\n")
		} else if e.result != "" {
			b.WriteString(resultStyle.Render(e.result))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter evaluate • ↑/↓ history • ctrl+c quit"))
	return b.String()
}

func runInteractive(cfg *runtime.Config, filename string) error {
	var stdout bytes.Buffer
	cfg.Stdout = &stdout

	rt, err := runtime.New(cfg)
	if err != nil {
		return fmt.Errorf("create runtime: %w", err)
	}
	defer rt.Close()

	p := tea.NewProgram(newInteractiveModel(rt, &stdout, filename), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
