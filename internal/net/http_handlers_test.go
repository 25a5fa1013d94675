package net

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"stealth-guard/server"
	"stealth-guard/server/internal/guard"
	"stealth-guard/server/internal/observability"
	"stealth-guard/server/internal/telemetry"
	"stealth-guard/server/internal/world"
	"stealth-guard/server/logging"
)

func newTestHub(t *testing.T, metrics telemetry.Metrics) *server.Hub {
	t.Helper()
	w, err := world.New(world.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("failed to build world: %v", err)
	}
	cfg := server.DefaultHubConfig()
	cfg.Logger = telemetry.LoggerFunc(func(string, ...any) {})
	cfg.Metrics = metrics
	return server.NewHub(cfg, w)
}

func serve(handler http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	if contentType := resp.Header().Get("Content-Type"); contentType != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", contentType)
	}
	var payload map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	return payload
}

func TestHealth(t *testing.T) {
	handler := NewHTTPHandler(newTestHub(t, nil), HTTPHandlerConfig{})
	resp := serve(handler, http.MethodGet, "/health")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 OK, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != "ok" {
		t.Fatalf("expected body ok, got %q", body)
	}
}

func TestDiagnosticsReportsGuardsAndMetrics(t *testing.T) {
	counters := telemetry.NewCounters()
	hub := newTestHub(t, counters)
	hub.Advance(context.Background(), 0.1)
	hub.ApplyInput(world.Input{DZ: 1})

	handler := NewHTTPHandler(hub, HTTPHandlerConfig{
		Metrics:  counters,
		LogStats: func() logging.RouterStats { return logging.RouterStats{EventsTotal: 4, DroppedTotal: 1} },
	})
	resp := serve(handler, http.MethodGet, "/diagnostics")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 OK, got %d", resp.Code)
	}
	payload := decode(t, resp)

	if tickRate, ok := payload["tickRate"].(float64); !ok || int(tickRate) != hub.TickRate() {
		t.Fatalf("expected tick rate %d, got %v", hub.TickRate(), payload["tickRate"])
	}
	diagnostics, ok := payload["diagnostics"].(map[string]any)
	if !ok {
		t.Fatalf("expected diagnostics object, got %T", payload["diagnostics"])
	}
	guards, ok := diagnostics["guards"].([]any)
	if !ok || len(guards) != 2 {
		t.Fatalf("expected 2 guards, got %v", diagnostics["guards"])
	}
	first, ok := guards[0].(map[string]any)
	if !ok {
		t.Fatalf("expected guard object, got %T", guards[0])
	}
	if mode, ok := first["mode"].(string); !ok || (mode != "patrol" && mode != "pursue") {
		t.Fatalf("expected a motion mode after one tick, got %v", first["mode"])
	}
	metrics, ok := payload["metrics"].(map[string]any)
	if !ok {
		t.Fatalf("expected metrics object, got %T", payload["metrics"])
	}
	if applied, ok := metrics["inputs_applied"].(float64); !ok || applied != 1 {
		t.Fatalf("expected inputs_applied 1, got %v", metrics["inputs_applied"])
	}
	logStats, ok := payload["logging"].(map[string]any)
	if !ok || logStats["eventsTotal"] != float64(4) || logStats["droppedTotal"] != float64(1) {
		t.Fatalf("expected router stats, got %v", payload["logging"])
	}
}

func TestConfigViews(t *testing.T) {
	hub := newTestHub(t, nil)
	handler := NewHTTPHandler(hub, HTTPHandlerConfig{})

	tests := []struct {
		name   string
		target string
		key    string
	}{
		{name: "world", target: "/config", key: "guards"},
		{name: "guard", target: "/config?view=guard", key: "detectionRange"},
		{name: "layout", target: "/config?view=layout", key: "obstacles"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := serve(handler, http.MethodGet, tc.target)
			if resp.Code != http.StatusOK {
				t.Fatalf("expected status 200 OK, got %d", resp.Code)
			}
			payload := decode(t, resp)
			if _, ok := payload[tc.key]; !ok {
				t.Fatalf("expected key %q in %s", tc.key, resp.Body.String())
			}
		})
	}

	if resp := serve(handler, http.MethodGet, "/config?view=bogus"); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown view, got %d", resp.Code)
	}
	if resp := serve(handler, http.MethodPost, "/config"); resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405 for POST, got %d", resp.Code)
	}
}

func TestConfigGuardsViewReportsSpawnOverrides(t *testing.T) {
	override := guard.DefaultConfig()
	override.DetectionRange = 25
	cfg := world.DefaultConfig()
	cfg.Guards = []world.GuardSpawn{
		{ID: "stock", Position: guard.Vec3{X: 10, Z: 30}},
		{ID: "keen", Position: guard.Vec3{X: 30, Z: 10}, Config: &override},
	}
	w, err := world.New(cfg, nil)
	if err != nil {
		t.Fatalf("failed to build world: %v", err)
	}
	handler := NewHTTPHandler(server.NewHub(server.DefaultHubConfig(), w), HTTPHandlerConfig{})

	resp := serve(handler, http.MethodGet, "/config?view=guards")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 OK, got %d", resp.Code)
	}
	var payload map[string]guard.Config
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload["stock"].DetectionRange != guard.DefaultConfig().DetectionRange {
		t.Fatalf("expected stock guard on world tuning, got %+v", payload["stock"])
	}
	if payload["keen"].DetectionRange != 25 {
		t.Fatalf("expected override detection range 25, got %+v", payload["keen"])
	}
}

func TestPprofRequiresOptIn(t *testing.T) {
	hub := newTestHub(t, nil)

	disabled := NewHTTPHandler(hub, HTTPHandlerConfig{})
	if resp := serve(disabled, http.MethodGet, "/debug/pprof/"); resp.Code != http.StatusNotFound {
		t.Fatalf("expected pprof to be hidden by default, got %d", resp.Code)
	}

	enabled := NewHTTPHandler(hub, HTTPHandlerConfig{
		Observability: observability.Config{EnablePprofTrace: true},
	})
	if resp := serve(enabled, http.MethodGet, "/debug/pprof/"); resp.Code != http.StatusOK {
		t.Fatalf("expected pprof index when enabled, got %d", resp.Code)
	}
}
