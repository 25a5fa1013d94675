package server

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"stealth-guard/server/internal/telemetry"
)

type telemetryCounters struct {
	bytesSent          atomic.Uint64
	framesSent         atomic.Uint64
	ticks              atomic.Uint64
	tickDurationMillis atomic.Int64
	lastBroadcastBytes atomic.Uint64
	subscribers        atomic.Int64
	inputsApplied      atomic.Uint64
	bouncesRequested   atomic.Uint64
	writeFailures      atomic.Uint64
	debug              bool
	metrics            telemetry.Metrics
}

type telemetrySnapshot struct {
	BytesSent        uint64 `json:"bytesSent"`
	FramesSent       uint64 `json:"framesSent"`
	Ticks            uint64 `json:"ticks"`
	TickDuration     int64  `json:"tickDurationMillis"`
	LastFrameBytes   uint64 `json:"lastFrameBytes"`
	Subscribers      int64  `json:"subscribers"`
	InputsApplied    uint64 `json:"inputsApplied"`
	BouncesRequested uint64 `json:"bouncesRequested"`
	WriteFailures    uint64 `json:"writeFailures"`
}

func newTelemetryCounters(metrics telemetry.Metrics) *telemetryCounters {
	t := &telemetryCounters{metrics: metrics}
	if os.Getenv("DEBUG_TELEMETRY") == "1" {
		t.debug = true
	}
	return t
}

func (t *telemetryCounters) add(key string, delta uint64) {
	if t.metrics != nil {
		t.metrics.Add(key, delta)
	}
}

func (t *telemetryCounters) RecordBroadcast(bytes, frames int) {
	if bytes < 0 {
		bytes = 0
	}
	if frames < 0 {
		frames = 0
	}
	t.bytesSent.Add(uint64(bytes) * uint64(frames))
	t.framesSent.Add(uint64(frames))
	t.lastBroadcastBytes.Store(uint64(bytes))
	t.add("broadcast_bytes", uint64(bytes)*uint64(frames))
	t.add("broadcast_frames", uint64(frames))
}

func (t *telemetryCounters) RecordTickDuration(duration time.Duration) {
	millis := duration.Milliseconds()
	if millis < 0 {
		millis = 0
	}
	t.ticks.Add(1)
	t.tickDurationMillis.Store(millis)
	t.add("ticks", 1)
	if t.metrics != nil {
		t.metrics.Store("tick_duration_ms", uint64(millis))
	}
	if t.debug {
		fmt.Printf(
			"[telemetry] tick=%dms frameBytes=%d totalBytes=%d subscribers=%d\n",
			millis,
			t.lastBroadcastBytes.Load(),
			t.bytesSent.Load(),
			t.subscribers.Load(),
		)
	}
}

func (t *telemetryCounters) RecordSubscribers(count int) {
	t.subscribers.Store(int64(count))
	if t.metrics != nil && count >= 0 {
		t.metrics.Store("subscribers", uint64(count))
	}
}

func (t *telemetryCounters) IncrementInputs() {
	t.inputsApplied.Add(1)
	t.add("inputs_applied", 1)
}

func (t *telemetryCounters) IncrementBounceRequests() {
	t.bouncesRequested.Add(1)
	t.add("bounce_requests", 1)
}

func (t *telemetryCounters) IncrementWriteFailures() {
	t.writeFailures.Add(1)
	t.add("write_failures", 1)
}

func (t *telemetryCounters) Snapshot() telemetrySnapshot {
	return telemetrySnapshot{
		BytesSent:        t.bytesSent.Load(),
		FramesSent:       t.framesSent.Load(),
		Ticks:            t.ticks.Load(),
		TickDuration:     t.tickDurationMillis.Load(),
		LastFrameBytes:   t.lastBroadcastBytes.Load(),
		Subscribers:      t.subscribers.Load(),
		InputsApplied:    t.inputsApplied.Load(),
		BouncesRequested: t.bouncesRequested.Load(),
		WriteFailures:    t.writeFailures.Load(),
	}
}
