// internal/dispatch/classify.go
// Package dispatch is the interactive client: it classifies each line of input
// and either calls the function server or forwards the prompt to the
// inference backend.
package dispatch

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	squareTrigger  = "What is the square"
	weatherTrigger = "What is the weather"
	locationMarker = "for"
)

// Kind is the outcome of classifying one line of input.
type Kind int

const (
	// KindPrompt is free text for the inference backend.
	KindPrompt Kind = iota
	// KindSquare asks the function server to square Number.
	KindSquare
	// KindWeather asks the function server for the weather at Location.
	KindWeather
)

func (k Kind) String() string {
	switch k {
	case KindSquare:
		return "square"
	case KindWeather:
		return "weather"
	default:
		return "prompt"
	}
}

// Intent is a classified line of input.
type Intent struct {
	Kind     Kind
	Input    string
	Number   int
	Location string
}

// Classify applies the rules in order; the first match wins. For a square
// request whose last token is not an integer it returns the intent together
// with the parse error.
func Classify(input string) (Intent, error) {
	switch {
	case strings.Contains(input, squareTrigger):
		intent := Intent{Kind: KindSquare, Input: input}
		fields := strings.Fields(input)
		token := fields[len(fields)-1]
		n, err := strconv.Atoi(token)
		if err != nil {
			return intent, fmt.Errorf("invalid number %q: %w", token, err)
		}
		intent.Number = n
		return intent, nil

	case strings.Contains(input, weatherTrigger):
		location := input
		if i := strings.LastIndex(input, locationMarker); i >= 0 {
			location = input[i+len(locationMarker):]
		}
		return Intent{Kind: KindWeather, Input: input, Location: strings.TrimSpace(location)}, nil

	default:
		return Intent{Kind: KindPrompt, Input: input}, nil
	}
}

// IsExit reports whether input ends the session.
func IsExit(input string) bool {
	return strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit")
}
