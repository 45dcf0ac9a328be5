package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/mwiater/fncall/internal/appconfig"
	"github.com/mwiater/fncall/internal/functions"
	"github.com/mwiater/fncall/internal/logging"
)

// Response is what the function server answered.
type Response struct {
	Status  int
	Request []byte
	Raw     []byte
	Payload map[string]any
}

// ErrorMessage returns the "error" field of the payload, if any.
func (r Response) ErrorMessage() (string, bool) {
	msg, ok := r.Payload["error"].(string)
	return msg, ok
}

// Caller invokes a named function on the function server.
type Caller interface {
	Call(ctx context.Context, name string, args []any) (Response, error)
}

// FunctionClient posts function calls to the configured /function URL.
type FunctionClient struct {
	url    string
	client *http.Client
}

// NewFunctionClient constructs a FunctionClient for cfg.FunctionURL.
func NewFunctionClient(cfg *appconfig.Config) *FunctionClient {
	return &FunctionClient{
		url:    cfg.FunctionURL,
		client: &http.Client{Timeout: cfg.RequestTimeout()},
	}
}

// Call sends {"name": name, "args": args}. Non-2xx answers are not errors:
// their JSON error payload is returned for the caller to show.
func (c *FunctionClient) Call(ctx context.Context, name string, args []any) (Response, error) {
	body, err := json.Marshal(functions.Request{Name: name, Args: args})
	if err != nil {
		return Response{}, err
	}
	logging.LogRequest("client->server", hostOf(c.url), name, body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Response{Request: body}, fmt.Errorf("call %s: %w", name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{Request: body}, fmt.Errorf("call %s: read response: %w", name, err)
	}
	logging.LogRequest("server->client", hostOf(c.url), name, raw)

	out := Response{Status: resp.StatusCode, Request: body, Raw: raw}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out.Payload); err != nil {
		return out, fmt.Errorf("call %s: decode response (status %d): %w", name, resp.StatusCode, err)
	}
	return out, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
