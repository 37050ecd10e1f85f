package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasm-jit-runtime/wasm"
)

var (
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
	ctx      context.Context
	err      error
	session  *session
	opts     *invokeOptions
	filename string
	result   string
	natives  []nativeInfo
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type nativeInfo struct {
	id  int
	key string
	sig *wasm.FuncType
}

type modelState int

const (
	stateSelectNative modelState = iota
	stateInputArgs
	stateShowResult
)

func newInteractiveModel(ctx context.Context, filename string, opts *invokeOptions) *interactiveModel {
	return &interactiveModel{
		ctx:      ctx,
		filename: filename,
		opts:     opts,
		state:    stateSelectNative,
	}
}

type loadedMsg struct {
	err     error
	session *session
	natives []nativeInfo
}

type callResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) load() tea.Msg {
	s, err := openSession(m.ctx, m.filename, m.opts.configPath, m.opts.hosts)
	if err != nil {
		return loadedMsg{err: err}
	}

	natives := make([]nativeInfo, 0, len(s.module.Natives))
	for i, n := range s.module.Natives {
		sig, ok := s.module.NativeType(uint32(i))
		if !ok {
			continue
		}
		natives = append(natives, nativeInfo{id: i, key: n.Module + "." + n.Field, sig: sig})
	}
	return loadedMsg{session: s, natives: natives}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateInputArgs && msg.String() == "q" {
				break
			}
			if m.session != nil {
				m.session.Close(m.ctx)
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectNative && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectNative && m.selected < len(m.natives)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectNative:
				if len(m.natives) == 0 {
					break
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callNative
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.callNative

			case stateShowResult:
				m.state = stateSelectNative
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectNative
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectNative
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.session = msg.session
		m.natives = msg.natives

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		cmds := make([]tea.Cmd, 0, len(m.inputs))
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
	n := m.natives[m.selected]
	m.inputs = make([]textinput.Model, len(n.sig.Params))
	for i, p := range n.sig.Params {
		ti := textinput.New()
		ti.Placeholder = p.String()
		ti.Prompt = fmt.Sprintf("arg%d: ", i)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) callNative() tea.Msg {
	if m.session == nil {
		return callResultMsg{err: fmt.Errorf("module not loaded")}
	}

	n := m.natives[m.selected]
	raw := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		raw[i] = input.Value()
	}
	args, err := parseArgs(raw, n.sig)
	if err != nil {
		return callResultMsg{err: err}
	}

	res, err := callNative(m.session.rt, n.id, args)
	if err != nil {
		return callResultMsg{err: err}
	}
	return callResultMsg{result: formatResult(res)}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.session == nil {
		return "Loading module..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Native Invoker"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectNative:
		if len(m.natives) == 0 {
			b.WriteString("The module declares no native imports.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}
		b.WriteString("Select a native import to call:\n\n")
		for i, n := range m.natives {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + formatNative(n)))
			} else {
				b.WriteString("  " + formatNative(n))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		n := m.natives[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(n.key)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(n.sig.Params[i].String()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		n := m.natives[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(n.key)))
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

func formatNative(n nativeInfo) string {
	return fmt.Sprintf("%d %s %s", n.id, funcStyle.Render(n.key), typeStyle.Render(n.sig.String()))
}

func runInteractive(ctx context.Context, filename string, opts *invokeOptions) error {
	p := tea.NewProgram(newInteractiveModel(ctx, filename, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
