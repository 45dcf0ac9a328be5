package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCountsByFunctionAndStatus(t *testing.T) {
	c := New()
	c.Observe("square", 200, 5*time.Millisecond)
	c.Observe("square", 200, 2*time.Millisecond)
	c.Observe("square", 400, time.Millisecond)
	c.Observe("unknown", 404, time.Millisecond)

	if got := testutil.ToFloat64(c.calls.WithLabelValues("square", "200")); got != 2 {
		t.Fatalf("expected 2 square/200 calls, got %v", got)
	}
	if got := testutil.ToFloat64(c.calls.WithLabelValues("unknown", "404")); got != 1 {
		t.Fatalf("expected 1 unknown/404 call, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := New()
	c.Observe("get_weather", 200, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `fncall_function_calls_total{function="get_weather",status="200"} 1`) {
		t.Fatalf("expected counter in exposition, got:\n%s", body)
	}
	if !strings.Contains(string(body), "fncall_function_duration_seconds_bucket") {
		t.Fatalf("expected histogram in exposition")
	}
}
