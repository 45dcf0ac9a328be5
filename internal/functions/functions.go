// internal/functions/functions.go
// Package functions implements the function-call dispatch contract: a request
// names one function from a closed set and passes positional arguments; the
// dispatcher validates them, invokes the function and returns a result or a
// typed error carrying the HTTP status.
package functions

import (
	"context"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"github.com/mwiater/fncall/internal/logging"
)

// Name identifies one of the dispatchable functions.
type Name string

const (
	// Square is the canonical name of the squaring function.
	Square Name = "square"
	// GetWeather is the canonical name of the weather lookup function.
	GetWeather Name = "get_weather"
)

// Request is the body of POST /function.
type Request struct {
	Name string `json:"name"`
	Args []any  `json:"args"`
}

// Result is the body of every /function response. Exactly one field is set.
type Result struct {
	Result      any      `json:"result,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Definition describes a function to callers and to the inference backend.
// Parameters is the JSON schema for the positional args array.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Handler executes a function with already validated args.
type Handler func(ctx context.Context, args []any) (Result, error)

// Function binds a definition to its compiled args schema and implementation.
type Function struct {
	Definition Definition
	schema     *gojsonschema.Schema
	invalid    *Error
	call       Handler
}

// SquareDefinition describes the squaring function.
func SquareDefinition() Definition {
	return Definition{
		Name:        string(Square),
		Description: "Calculates the square of a number",
		Parameters: map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": []any{
				map[string]any{"type": "number", "description": "The number to square"},
			},
		},
	}
}

// GetWeatherDefinition describes the weather lookup function.
func GetWeatherDefinition() Definition {
	return Definition{
		Name:        string(GetWeather),
		Description: "Fetches the current weather for a location",
		Parameters: map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": []any{
				map[string]any{"type": "string", "description": "The city or place to look up, e.g. Paris"},
			},
		},
	}
}

// Declarations returns the definitions advertised to the inference backend,
// in the order the client announces them.
func Declarations() []Definition {
	return []Definition{SquareDefinition(), GetWeatherDefinition()}
}

// Dispatcher routes requests to the fixed set of functions.
type Dispatcher struct {
	functions map[Name]Function
	log       *logging.Logger
}

// NewDispatcher wires the function set. temps backs get_weather.
func NewDispatcher(temps TemperatureSource) *Dispatcher {
	return &Dispatcher{
		functions: map[Name]Function{
			Square: {
				Definition: SquareDefinition(),
				schema:     mustCompile(SquareDefinition().Parameters),
				invalid:    ErrInvalidSquareArgument,
				call:       squareHandler,
			},
			GetWeather: {
				Definition: GetWeatherDefinition(),
				schema:     mustCompile(GetWeatherDefinition().Parameters),
				invalid:    ErrInvalidWeatherArgument,
				call:       weatherHandler(temps),
			},
		},
		log: logging.New("functions"),
	}
}

// Definitions lists the registered functions sorted by name.
func (d *Dispatcher) Definitions() []Definition {
	defs := make([]Definition, 0, len(d.functions))
	for _, fn := range d.functions {
		defs = append(defs, fn.Definition)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Dispatch validates req.Args against the named function and invokes it.
// The returned error, when not nil, unwraps to an *Error.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Result, error) {
	fn, ok := d.functions[Name(req.Name)]
	if !ok {
		d.log.Warn("Function '%s' not found", req.Name)
		return Result{}, ErrFunctionNotFound
	}

	if err := validate(fn.schema, req.Args); err != nil {
		d.log.Warn("%s: %v", fn.invalid.Message, err)
		return Result{}, fn.invalid
	}

	res, err := fn.call(ctx, req.Args)
	if err != nil {
		d.log.Error("Unexpected error in %s: %v", req.Name, err)
		return Result{}, internal(err)
	}
	d.log.Debug("%s(%v) -> %+v", req.Name, req.Args, res)
	return res, nil
}

// Known reports whether name is one of the dispatchable functions.
func Known(name string) bool {
	switch Name(name) {
	case Square, GetWeather:
		return true
	}
	return false
}
