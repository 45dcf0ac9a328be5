// internal/providers/provider.go

// Package providers defines the interface the dispatch client uses to reach an
// inference backend, independent of the backend implementation.
package providers

import "context"

// FunctionDeclaration names a callable function and what it does. It is sent
// to the backend as context metadata.
type FunctionDeclaration struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GenerateRequest is a single prompt plus the functions the backend may know about.
type GenerateRequest struct {
	Model     string
	Prompt    string
	Functions []FunctionDeclaration
}

// Generator sends a prompt and returns the backend's raw response body.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]byte, error)
}
