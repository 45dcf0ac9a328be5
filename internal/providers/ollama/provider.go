// internal/providers/ollama/provider.go
// Package ollama provides a Generator backed by the Ollama /api/generate endpoint.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mwiater/fncall/internal/appconfig"
	"github.com/mwiater/fncall/internal/logging"
	"github.com/mwiater/fncall/internal/providers"
)

// Provider implements providers.Generator using the Ollama HTTP API.
type Provider struct {
	client   *http.Client
	endpoint string
}

// New constructs a Provider configured with the application's request timeout.
func New(cfg *appconfig.Config) *Provider {
	return &Provider{
		client: &http.Client{
			Timeout:   cfg.RequestTimeout(),
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		endpoint: cfg.GenerateURL(),
	}
}

type generatePayload struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Context generateContext `json:"context"`
}

type generateContext struct {
	Functions []providers.FunctionDeclaration `json:"functions"`
}

// generateChunk is one JSON document of a (possibly streamed) generate response.
type generateChunk struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate posts the prompt and returns the response body untouched. A non-200
// status is reported as an error that includes the body.
func (p *Provider) Generate(ctx context.Context, req providers.GenerateRequest) ([]byte, error) {
	functions := req.Functions
	if functions == nil {
		functions = []providers.FunctionDeclaration{}
	}
	payload := generatePayload{
		Model:   req.Model,
		Prompt:  req.Prompt,
		Context: generateContext{Functions: functions},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	logging.LogRequest("fncall->llm", hostIdentifier(p.endpoint), "", body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama: /api/generate: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	logging.LogRequest("llm->fncall", hostIdentifier(p.endpoint), "", respBody)

	if resp.StatusCode != http.StatusOK {
		return respBody, fmt.Errorf("ollama: /api/generate returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}

// ResponseText joins the "response" fields of a generate body, which may be a
// single JSON document or newline-delimited stream chunks.
func ResponseText(body []byte) (string, bool) {
	var (
		text  strings.Builder
		found bool
	)
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), len(body)+1)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk generateChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return "", false
		}
		text.WriteString(chunk.Response)
		found = true
	}
	return text.String(), found
}

func hostIdentifier(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}
	return u.Host
}
