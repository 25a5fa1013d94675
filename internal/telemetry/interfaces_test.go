package telemetry

import (
	"bytes"
	"log"
	"testing"
)

func TestWrapLogger(t *testing.T) {
	t.Run("nil logger", func(t *testing.T) {
		logger := WrapLogger(nil)
		logger.Printf("ignored %d", 42)
	})

	t.Run("forwards to logger", func(t *testing.T) {
		var buf bytes.Buffer
		base := log.New(&buf, "", 0)
		logger := WrapLogger(base)
		logger.Printf("hello %s", "world")
		if got := buf.String(); got != "hello world\n" {
			t.Fatalf("unexpected log output: %q", got)
		}
	})

	t.Run("exposes standard logger", func(t *testing.T) {
		base := log.New(&bytes.Buffer{}, "", 0)
		provider, ok := WrapLogger(base).(interface{ StandardLogger() *log.Logger })
		if !ok {
			t.Fatalf("expected adapter to expose StandardLogger")
		}
		if provider.StandardLogger() != base {
			t.Fatalf("expected wrapped logger to be returned")
		}
	})
}

func TestCounters(t *testing.T) {
	counters := NewCounters()

	counters.Add("test_counter", 2)
	counters.Store("test_counter", 5)
	counters.Add("test_counter", 3)
	counters.Add("another", 1)
	counters.Add("", 7)

	snapshot := counters.Snapshot()
	if got := snapshot["test_counter"]; got != 8 {
		t.Fatalf("unexpected metric value: %d", got)
	}
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 counters, got %d", len(snapshot))
	}
	keys := counters.Keys()
	if len(keys) != 2 || keys[0] != "another" || keys[1] != "test_counter" {
		t.Fatalf("expected sorted keys, got %v", keys)
	}

	// Ensure nil counters do not panic.
	var nilCounters *Counters
	var metrics Metrics = nilCounters
	metrics.Add("ignored", 1)
	metrics.Store("ignored", 1)
	if len(nilCounters.Snapshot()) != 0 {
		t.Fatalf("expected empty snapshot from nil counters")
	}
}
