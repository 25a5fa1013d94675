package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildSchemaCoversGuardTuning(t *testing.T) {
	schema := buildSchema()
	if schema.Title != "Stealth Guard Server" {
		t.Fatalf("unexpected title %q", schema.Title)
	}

	data, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("failed to marshal schema: %v", err)
	}
	text := string(data)
	for _, key := range []string{`"listenAddr"`, `"detectionRange"`, `"stationaryTimeout"`, `"tickRate"`, `"enabledSinks"`} {
		if !strings.Contains(text, key) {
			t.Fatalf("expected schema to mention %s", key)
		}
	}
}

func TestWriteSchemaCreatesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "guard.schema.json")
	if err := writeSchema(out, buildSchema()); err != nil {
		t.Fatalf("failed to write schema: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read schema: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("expected valid JSON, got %v", err)
	}
	if _, err := os.Stat(out + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be renamed away, got %v", err)
	}
}
