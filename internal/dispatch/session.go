package dispatch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/k0kubun/pp"

	"github.com/mwiater/fncall/internal/appconfig"
	"github.com/mwiater/fncall/internal/functions"
	"github.com/mwiater/fncall/internal/logging"
	"github.com/mwiater/fncall/internal/providers"
	"github.com/mwiater/fncall/internal/providers/ollama"
)

// Prompt is printed before every line of input.
const Prompt = "Ask me anything: "

var (
	promptLabel = color.New(color.FgMagenta, color.Bold).SprintFunc()
	traceLabel  = color.New(color.FgCyan).SprintFunc()
	resultLabel = color.New(color.FgGreen, color.Bold).SprintFunc()
	errorLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
)

func init() {
	// Keep pp in step with color so piped output stays free of escape codes.
	if color.NoColor {
		pp.ColoringEnabled = false
	}
}

// Session runs the classify-and-dispatch loop. It holds no state between lines.
type Session struct {
	caller    Caller
	generator providers.Generator
	model     string
	functions []providers.FunctionDeclaration
	log       *logging.Logger
}

// NewSession wires a session to the function server and the inference backend.
func NewSession(cfg *appconfig.Config, caller Caller, generator providers.Generator) *Session {
	return &Session{
		caller:    caller,
		generator: generator,
		model:     cfg.Model,
		functions: declarations(),
		log:       logging.New("client"),
	}
}

// declarations is the static list advertised to the inference backend.
func declarations() []providers.FunctionDeclaration {
	defs := functions.Declarations()
	out := make([]providers.FunctionDeclaration, len(defs))
	for i, d := range defs {
		out[i] = providers.FunctionDeclaration{Name: d.Name, Description: d.Description}
	}
	return out
}

// Run reads lines from in until EOF, exit or quit.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, promptLabel(Prompt))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if IsExit(line) {
			return nil
		}
		s.Handle(ctx, line, out)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// Handle classifies one line and performs exactly one outbound call. Failures
// are written to out; they never end the session.
func (s *Session) Handle(ctx context.Context, input string, out io.Writer) {
	intent, err := Classify(input)
	s.log.Debug("classified %q as %s", input, intent.Kind)
	if err != nil {
		fmt.Fprintf(out, "%s %v\n", errorLabel("Error:"), err)
		return
	}

	switch intent.Kind {
	case KindSquare:
		s.square(ctx, intent, out)
	case KindWeather:
		s.weather(ctx, intent, out)
	default:
		s.prompt(ctx, intent, out)
	}
}

func (s *Session) square(ctx context.Context, intent Intent, out io.Writer) {
	fmt.Fprintf(out, "%s %s\n", traceLabel("User input:"), intent.Input)
	fmt.Fprintf(out, "%s %d\n", traceLabel("Calling square function with argument:"), intent.Number)

	payload, ok := s.call(ctx, string(functions.Square), []any{intent.Number}, out)
	if !ok {
		return
	}
	value, found := payload["result"]
	if !found {
		fmt.Fprintf(out, "%s response has no result\n", errorLabel("Error:"))
		return
	}
	fmt.Fprintf(out, "%s %v\n", resultLabel("Result:"), value)
}

func (s *Session) weather(ctx context.Context, intent Intent, out io.Writer) {
	fmt.Fprintf(out, "%s %s\n", traceLabel("Calling get_weather function with argument:"), intent.Location)

	payload, ok := s.call(ctx, string(functions.GetWeather), []any{intent.Location}, out)
	if !ok {
		return
	}
	value, found := payload["temperature"]
	if !found {
		fmt.Fprintf(out, "%s response has no temperature\n", errorLabel("Error:"))
		return
	}
	fmt.Fprintf(out, "%s %v°C\n", resultLabel(fmt.Sprintf("Temperature in %s:", intent.Location)), value)
}

// call prints the request and raw response, then returns the payload when it
// is not an error payload.
func (s *Session) call(ctx context.Context, name string, args []any, out io.Writer) (map[string]any, bool) {
	resp, err := s.caller.Call(ctx, name, args)
	if len(resp.Request) > 0 {
		fmt.Fprintf(out, "%s %s\n", traceLabel("Request:"), resp.Request)
	}
	if len(resp.Raw) > 0 {
		fmt.Fprintf(out, "%s %s\n", traceLabel("Response:"), strings.TrimSpace(string(resp.Raw)))
	}
	if err != nil {
		s.log.Error("%v", err)
		fmt.Fprintf(out, "%s %v\n", errorLabel("Error:"), err)
		return nil, false
	}
	if msg, isErr := resp.ErrorMessage(); isErr {
		fmt.Fprintf(out, "%s %s (status %d)\n", errorLabel("Error:"), msg, resp.Status)
		return nil, false
	}
	return resp.Payload, true
}

func (s *Session) prompt(ctx context.Context, intent Intent, out io.Writer) {
	fmt.Fprintf(out, "%s %s\n", traceLabel("Prompt:"), intent.Input)

	body, err := s.generator.Generate(ctx, providers.GenerateRequest{
		Model:     s.model,
		Prompt:    intent.Input,
		Functions: s.functions,
	})
	if len(body) > 0 {
		fmt.Fprintf(out, "%s %s\n", traceLabel("Ollama Response:"), formatBody(body))
	}
	if err != nil {
		s.log.Error("%v", err)
		fmt.Fprintf(out, "%s %v\n", errorLabel("Error:"), err)
		return
	}
	if text, ok := ollama.ResponseText(body); ok && strings.TrimSpace(text) != "" {
		fmt.Fprintf(out, "%s %s\n", resultLabel("Answer:"), strings.TrimSpace(text))
	}
}

// formatBody pretty prints a single JSON document and leaves anything else,
// such as a newline-delimited stream, as it came.
func formatBody(body []byte) string {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return strings.TrimSpace(string(body))
	}
	return pp.Sprint(doc)
}
