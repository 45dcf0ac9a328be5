// internal/tui/tui.go
// Package tui runs the dispatch session inside a Bubble Tea program.
package tui

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/fncall/internal/dispatch"
	"github.com/mwiater/fncall/internal/textutil"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	inputStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	outputStyle = lipgloss.NewStyle().PaddingLeft(2)
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// Handler is the part of *dispatch.Session the UI needs.
type Handler interface {
	Handle(ctx context.Context, input string, out io.Writer)
}

type exchange struct {
	input  string
	output string
}

type replyMsg exchange

type model struct {
	ctx        context.Context
	handler    Handler
	input      textinput.Model
	spinner    spinner.Model
	viewport   viewport.Model
	transcript []exchange
	busy       bool
	width      int
}

func newModel(ctx context.Context, handler Handler) *model {
	ti := textinput.New()
	ti.Prompt = dispatch.Prompt
	ti.Placeholder = "What is the square of 7"
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &model{
		ctx:      ctx,
		handler:  handler,
		input:    ti,
		spinner:  s,
		viewport: viewport.New(100, 20),
		width:    100,
	}
}

// Start blocks until the user quits.
func Start(ctx context.Context, handler Handler) error {
	p := tea.NewProgram(newModel(ctx, handler), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init starts the cursor blinking.
func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses, resizes, spinner ticks and replies.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			value := m.input.Value()
			if dispatch.IsExit(value) {
				return m, tea.Quit
			}
			m.input.Reset()
			m.busy = true
			return m, tea.Batch(m.spinner.Tick, handleCmd(m.ctx, m.handler, value))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(dispatch.Prompt) - 2
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
		m.refresh()
		return m, nil

	case replyMsg:
		m.busy = false
		m.transcript = append(m.transcript, exchange(msg))
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *model) refresh() {
	var b strings.Builder
	for _, ex := range m.transcript {
		b.WriteString(inputStyle.Render(textutil.WrapToWidth("> "+ex.input, m.width)))
		b.WriteString("\n")
		b.WriteString(outputStyle.Width(m.width).Render(strings.TrimRight(ex.output, "\n")))
		b.WriteString("\n\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// View renders the transcript above the input line.
func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("fncall"))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.busy {
		b.WriteString(m.spinner.View() + " working...")
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter send  esc/ctrl+c quit  exit/quit end session"))
	return b.String()
}

func handleCmd(ctx context.Context, h Handler, input string) tea.Cmd {
	return func() tea.Msg {
		var buf bytes.Buffer
		h.Handle(ctx, input, &buf)
		return replyMsg{input: input, output: buf.String()}
	}
}
