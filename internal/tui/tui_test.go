// internal/tui/tui_test.go
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type echoHandler struct {
	inputs []string
}

func (h *echoHandler) Handle(_ context.Context, input string, out io.Writer) {
	h.inputs = append(h.inputs, input)
	fmt.Fprintf(out, "Result: %d\n", len(input))
}

func typeText(m *model, text string) *model {
	for _, r := range text {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(*model)
	}
	return m
}

// TestEnterRunsHandlerAndRecordsReply walks one prompt through the model:
// typing, sending, the handler command and the reply rendering.
func TestEnterRunsHandlerAndRecordsReply(t *testing.T) {
	h := &echoHandler{}
	m := newModel(context.Background(), h)
	_, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m = typeText(m, "What is the square of 7")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(*model)
	if !m.busy {
		t.Fatal("expected busy after enter")
	}
	if cmd == nil {
		t.Fatal("expected a command after enter")
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input reset, got %q", m.input.Value())
	}
	if !strings.Contains(m.View(), "working...") {
		t.Fatalf("expected spinner in view, got: %s", m.View())
	}

	msg := handleCmd(m.ctx, h, "What is the square of 7")()
	reply, ok := msg.(replyMsg)
	if !ok {
		t.Fatalf("expected replyMsg, got %T", msg)
	}
	next, _ = m.Update(reply)
	m = next.(*model)
	if m.busy {
		t.Fatal("expected not busy after reply")
	}
	if len(m.transcript) != 1 || m.transcript[0].input != "What is the square of 7" {
		t.Fatalf("unexpected transcript %+v", m.transcript)
	}
	if len(h.inputs) != 1 {
		t.Fatalf("expected handler called once, got %d", len(h.inputs))
	}
	view := m.View()
	if !strings.Contains(view, "Result: 23") {
		t.Fatalf("expected reply in view, got: %s", view)
	}
}

func TestEnterIgnoredWhileBusy(t *testing.T) {
	m := newModel(context.Background(), &echoHandler{})
	m.busy = true
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("expected no command while busy")
	}
}

func TestExitWordsQuit(t *testing.T) {
	for _, word := range []string{"exit", "QUIT"} {
		m := newModel(context.Background(), &echoHandler{})
		m = typeText(m, word)
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if cmd == nil {
			t.Fatalf("%s: expected quit command", word)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s: expected tea.QuitMsg", word)
		}
	}
}

func TestCtrlCQuits(t *testing.T) {
	m := newModel(context.Background(), &echoHandler{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}
