package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mwiater/fncall/internal/appconfig"
	"github.com/mwiater/fncall/internal/functions"
	"github.com/mwiater/fncall/internal/weather"
)

type stubTemps struct {
	temp  float64
	err   error
	panic bool
}

func (s stubTemps) CurrentTemperature(context.Context, string) (float64, error) {
	if s.panic {
		panic("provider exploded")
	}
	return s.temp, s.err
}

func newTestServer(t *testing.T, temps functions.TemperatureSource, withMetrics bool) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := appconfig.Defaults()
	cfg.Metrics = withMetrics
	cfg.Debug = true
	return New(&cfg, functions.NewDispatcher(temps))
}

func post(t *testing.T, h http.Handler, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/function", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code, strings.TrimSpace(rec.Body.String())
}

func TestFunctionEndpoint(t *testing.T) {
	s := newTestServer(t, stubTemps{temp: 18.5}, false)
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"square", `{"name":"square","args":[5]}`, http.StatusOK, `{"result":25}`},
		{"square float", `{"name":"square","args":[1.5]}`, http.StatusOK, `{"result":2.25}`},
		{"square integral float", `{"name":"square","args":[5.0]}`, http.StatusOK, `{"result":25.0}`},
		{"square beyond float range", `{"name":"square","args":[1e200]}`, http.StatusInternalServerError, `{"error":"Internal server error"}`},
		{"trailing data", `{"name":"square","args":[5]} trailing`, http.StatusBadRequest, `{"error":"Invalid request format"}`},
		{"weather", `{"name":"get_weather","args":["Paris"]}`, http.StatusOK, `{"temperature":18.5}`},
		{"empty object", `{}`, http.StatusBadRequest, `{"error":"Invalid request format"}`},
		{"missing args", `{"name":"square"}`, http.StatusBadRequest, `{"error":"Invalid request format"}`},
		{"missing args unknown name", `{"name":"nope"}`, http.StatusBadRequest, `{"error":"Invalid request format"}`},
		{"not json", `name=square`, http.StatusBadRequest, `{"error":"Invalid request format"}`},
		{"square empty args", `{"name":"square","args":[]}`, http.StatusBadRequest, `{"error":"Invalid argument for square"}`},
		{"square string", `{"name":"square","args":["not a number"]}`, http.StatusBadRequest, `{"error":"Invalid argument for square"}`},
		{"weather number", `{"name":"get_weather","args":[123]}`, http.StatusBadRequest, `{"error":"Invalid argument for get_weather"}`},
		{"unknown", `{"name":"unknown_fn","args":[1]}`, http.StatusNotFound, `{"error":"Function not found"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, s.Handler(), tt.body)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", status, tt.wantStatus, body)
			}
			if body != tt.wantBody {
				t.Fatalf("body = %s, want %s", body, tt.wantBody)
			}
		})
	}
}

// Provider failures are reported with status 200 and an error payload, not a 5xx.
func TestFunctionEndpointWeatherProviderFailureKeeps200(t *testing.T) {
	s := newTestServer(t, stubTemps{err: fmt.Errorf("%w: timeout", weather.ErrUpstream)}, false)
	status, body := post(t, s.Handler(), `{"name":"get_weather","args":["Paris"]}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body != `{"error":"Failed to fetch weather data"}` {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestFunctionEndpointRecoversFromPanic(t *testing.T) {
	s := newTestServer(t, stubTemps{panic: true}, false)
	status, body := post(t, s.Handler(), `{"name":"get_weather","args":["Paris"]}`)
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if body != `{"error":"Internal server error"}` {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestFunctionEndpointMissingReadingIs500(t *testing.T) {
	s := newTestServer(t, stubTemps{err: weather.ErrNoReading}, false)
	status, body := post(t, s.Handler(), `{"name":"get_weather","args":["Paris"]}`)
	if status != http.StatusInternalServerError || body != `{"error":"Internal server error"}` {
		t.Fatalf("unexpected response %d %s", status, body)
	}
}

func TestFunctionEndpointRejectsOversizedBody(t *testing.T) {
	s := newTestServer(t, stubTemps{}, false)
	big := `{"name":"square","args":[1],"pad":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	status, _ := post(t, s.Handler(), big)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestFunctionEndpointWithProviderServer(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "Tokyo" {
			http.Error(w, "bad location", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"current":{"temp_c":21.3}}`))
	}))
	defer provider.Close()

	gin.SetMode(gin.TestMode)
	cfg := appconfig.Defaults()
	cfg.WeatherAPIURL = provider.URL
	s := New(&cfg, functions.NewDispatcher(weather.New(&cfg)))

	status, body := post(t, s.Handler(), `{"name":"get_weather","args":["Tokyo"]}`)
	if status != http.StatusOK || body != `{"temperature":21.3}` {
		t.Fatalf("unexpected response %d %s", status, body)
	}
}

func TestFunctionEndpointWronglyTypedReadingIs500(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"current":{"temp_c":"warm"}}`))
	}))
	defer provider.Close()

	gin.SetMode(gin.TestMode)
	cfg := appconfig.Defaults()
	cfg.WeatherAPIURL = provider.URL
	s := New(&cfg, functions.NewDispatcher(weather.New(&cfg)))

	status, body := post(t, s.Handler(), `{"name":"get_weather","args":["Tokyo"]}`)
	if status != http.StatusInternalServerError || body != `{"error":"Internal server error"}` {
		t.Fatalf("unexpected response %d %s", status, body)
	}
}

func TestHealthzAndDefinitions(t *testing.T) {
	s := newTestServer(t, stubTemps{}, false)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/functions", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var defs []functions.Definition
	if err := json.Unmarshal(rec.Body.Bytes(), &defs); err != nil {
		t.Fatalf("decode definitions: %v", err)
	}
	if len(defs) != 2 || defs[0].Name != "get_weather" || defs[1].Name != "square" {
		t.Fatalf("unexpected definitions %+v", defs)
	}
}

func TestFunctionEndpointRejectsGet(t *testing.T) {
	s := newTestServer(t, stubTemps{}, false)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/function", nil))
	if rec.Code == http.StatusOK {
		t.Fatalf("expected GET /function to be rejected")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, stubTemps{}, true)
	post(t, s.Handler(), `{"name":"square","args":[3]}`)
	post(t, s.Handler(), `{"name":"bogus","args":[3]}`)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	out := rec.Body.String()
	if !strings.Contains(out, `fncall_function_calls_total{function="square",status="200"} 1`) {
		t.Fatalf("expected square counter, got:\n%s", out)
	}
	if !strings.Contains(out, `fncall_function_calls_total{function="unknown",status="404"} 1`) {
		t.Fatalf("expected unknown counter, got:\n%s", out)
	}
}

func TestMetricsDisabled(t *testing.T) {
	s := newTestServer(t, stubTemps{}, false)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when metrics disabled, got %d", rec.Code)
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	gin.SetMode(gin.TestMode)
	cfg := appconfig.Defaults()
	cfg.Port = port
	s := New(&cfg, functions.NewDispatcher(stubTemps{}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	url := fmt.Sprintf("http://%s/healthz", cfg.ListenAddr())
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
