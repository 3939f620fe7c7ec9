package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

func TestMetricsRecordsRequests(t *testing.T) {
	registry := prometheus.NewRegistry()
	handler := Metrics(WithRegistry(registry))(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}

	metricsReq := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metricsRec := httptest.NewRecorder()
	promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP(metricsRec, metricsReq)

	body := metricsRec.Body.String()
	if !strings.Contains(body, `gantry_http_requests_total{method="GET",path="/api/search",status="200"} 3`) {
		t.Errorf("request counter missing or wrong:\n%s", body)
	}
	if !strings.Contains(body, "gantry_http_request_duration_seconds") {
		t.Errorf("duration histogram missing:\n%s", body)
	}
}

func TestMetricsRecordsStatus(t *testing.T) {
	registry := prometheus.NewRegistry()
	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})
	handler := Metrics(WithRegistry(registry))(failing)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	metricsRec := httptest.NewRecorder()
	promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP(metricsRec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(metricsRec.Body.String(), `status="500"`) {
		t.Error("error status not recorded")
	}
}

func TestMetricsOptions(t *testing.T) {
	registry := prometheus.NewRegistry()
	handler := Metrics(
		WithRegistry(registry),
		WithNamespace("nebulus"),
		WithSubsystem("api"),
		WithConstLabels(prometheus.Labels{"instance": "test"}),
		WithBuckets([]float64{0.1, 1}),
	)(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	metricsRec := httptest.NewRecorder()
	promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP(metricsRec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := metricsRec.Body.String()
	if !strings.Contains(body, "nebulus_api_requests_total") {
		t.Errorf("custom namespace/subsystem not applied:\n%s", body)
	}
	if !strings.Contains(body, `instance="test"`) {
		t.Errorf("const labels not applied:\n%s", body)
	}
}

func TestOpenTelemetryPassesThrough(t *testing.T) {
	handler := OpenTelemetry()(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/traced", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("middleware altered the response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestOpenTelemetryFilter(t *testing.T) {
	handler := OpenTelemetry(
		WithTracerName("test"),
		WithRequestFilter(func(r *http.Request) bool {
			return !strings.HasPrefix(r.URL.Path, "/healthz")
		}),
	)(okHandler())

	// Filtered and unfiltered requests both succeed.
	for _, path := range []string{"/healthz", "/api/search"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
