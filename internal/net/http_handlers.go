package net

import (
	"encoding/json"
	"log"
	nethttp "net/http"
	"net/http/pprof"
	"time"

	"stealth-guard/server"
	"stealth-guard/server/internal/net/ws"
	"stealth-guard/server/internal/observability"
	"stealth-guard/server/internal/telemetry"
	"stealth-guard/server/logging"
)

type HTTPHandlerConfig struct {
	Logger        *log.Logger
	Observability observability.Config
	// Metrics, when set, is exposed under /diagnostics.
	Metrics       *telemetry.Counters
	// LogStats, when set, reports event router throughput under /diagnostics.
	LogStats      func() logging.RouterStats
}

func NewHTTPHandler(hub *server.Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status      string               `json:"status"`
			ServerTime  int64                `json:"serverTime"`
			TickRate    int                  `json:"tickRate"`
			Diagnostics server.Diagnostics   `json:"diagnostics"`
			Telemetry   any                  `json:"telemetry"`
			Metrics     map[string]uint64    `json:"metrics,omitempty"`
			Logging     *logging.RouterStats `json:"logging,omitempty"`
		}{
			Status:      "ok",
			ServerTime:  time.Now().UnixMilli(),
			TickRate:    hub.TickRate(),
			Diagnostics: hub.DiagnosticsSnapshot(),
			Telemetry:   hub.TelemetrySnapshot(),
		}
		if cfg.Metrics != nil {
			payload.Metrics = cfg.Metrics.Snapshot()
		}
		if cfg.LogStats != nil {
			stats := cfg.LogStats()
			payload.Logging = &stats
		}
		writeJSON(w, payload)
	})

	mux.HandleFunc("/config", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		worldCfg := hub.WorldConfig()
		switch r.URL.Query().Get("view") {
		case "", "world":
			writeJSON(w, worldCfg)
		case "guard":
			writeJSON(w, worldCfg.Guard)
		case "guards":
			writeJSON(w, hub.GuardConfigs())
		case "layout":
			writeJSON(w, hub.Layout())
		default:
			httpError(w, "unknown view", nethttp.StatusBadRequest)
		}
	})

	wsHandler := ws.NewHandler(hub, ws.HandlerConfig{Logger: logger})
	mux.HandleFunc("/ws", wsHandler.Handle)

	if cfg.Observability.EnablePprofTrace {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
		logger.Printf("pprof handlers enabled under /debug/pprof/")
	}

	return mux
}

func writeJSON(w nethttp.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
