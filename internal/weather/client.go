// internal/weather/client.go
// Package weather queries a WeatherAPI-compatible provider for the current temperature.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/mwiater/fncall/internal/appconfig"
	"github.com/mwiater/fncall/internal/logging"
)

var (
	// ErrUpstream means the provider could not be reached, answered with a
	// non-2xx status or sent a body that is not JSON.
	ErrUpstream = errors.New("weather provider request failed")
	// ErrNoReading means the provider answered with JSON that carries no
	// numeric current.temp_c.
	ErrNoReading = errors.New("weather provider response has no current.temp_c")
)

// currentResponse defines the fields we need from the provider.
type currentResponse struct {
	Current *struct {
		TempC *float64 `json:"temp_c"`
	} `json:"current"`
}

// Client talks to the provider configured in appconfig.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// New constructs a Client from the weather settings in cfg.
func New(cfg *appconfig.Config) *Client {
	return &Client{
		endpoint: cfg.WeatherAPIURL,
		apiKey:   cfg.WeatherAPIKey,
		client:   &http.Client{Timeout: cfg.RequestTimeout()},
	}
}

// CurrentTemperature returns the provider's current Celsius reading for location.
func (c *Client) CurrentTemperature(ctx context.Context, location string) (float64, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return 0, fmt.Errorf("%w: parse endpoint: %v", ErrUpstream, err)
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	q.Set("q", location)
	u.RawQuery = q.Encode()

	logging.LogRequest("fncall->weather", u.Host, "get_weather", map[string]string{"method": http.MethodGet, "q": location})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	logging.LogRequest("weather->fncall", u.Host, "get_weather", body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%w: provider returned status %s", ErrUpstream, resp.Status)
	}

	var parsed currentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return 0, fmt.Errorf("%w: %v", ErrNoReading, err)
		}
		return 0, fmt.Errorf("%w: decode body: %v", ErrUpstream, err)
	}
	if parsed.Current == nil || parsed.Current.TempC == nil {
		return 0, ErrNoReading
	}
	return *parsed.Current.TempC, nil
}
