package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	server "stealth-guard/server"
	"stealth-guard/server/internal/observability"
	"stealth-guard/server/internal/telemetry"
	"stealth-guard/server/internal/world"
	"stealth-guard/server/logging"
)

// Environment variables read by Run.
const (
	EnvConfigFile  = "GUARD_CONFIG_FILE"
	EnvTickRate    = "TICK_RATE"
	EnvWorldSeed   = "WORLD_SEED"
	EnvListenAddr  = "LISTEN_ADDR"
	EnvPprofTrace  = "ENABLE_PPROF_TRACE"
	EnvLogSinks    = "LOG_SINKS"
	EnvLogJSONPath = "LOG_JSON_PATH"
	EnvLogLevel    = "LOG_LEVEL"
)

const defaultListenAddr = ":8080"

// FileConfig is the on-disk server configuration.
type FileConfig struct {
	ListenAddr    string               `json:"listenAddr,omitempty" jsonschema:"description=HTTP listen address"`
	World         world.Config         `json:"world"`
	Hub           server.HubConfig     `json:"hub"`
	Logging       logging.Config       `json:"logging"`
	Observability observability.Config `json:"observability"`
}

// DefaultFileConfig returns the configuration used when no file is given.
func DefaultFileConfig() FileConfig {
	return FileConfig{
		ListenAddr: defaultListenAddr,
		World:      world.DefaultConfig(),
		Hub:        server.DefaultHubConfig(),
		Logging:    logging.DefaultConfig(),
	}
}

// LoadFileConfig overlays the JSON file at path onto the defaults. An empty
// path returns the defaults unchanged.
func LoadFileConfig(path string) (FileConfig, error) {
	cfg := DefaultFileConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseFileConfig(raw)
}

// ParseFileConfig decodes raw JSON over the defaults, rejecting unknown
// fields.
func ParseFileConfig(raw []byte) (FileConfig, error) {
	cfg := DefaultFileConfig()
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.World.Normalized().Guard.Validate(); err != nil {
		return cfg, fmt.Errorf("config world.guard: %w", err)
	}
	for i, spawn := range cfg.World.Guards {
		if spawn.Config == nil {
			continue
		}
		if err := spawn.Config.Validate(); err != nil {
			return cfg, fmt.Errorf("config world.guards[%d]: %w", i, err)
		}
	}
	return cfg, nil
}

// applyEnv layers environment overrides on top of the file configuration.
// Invalid values are logged and ignored.
func applyEnv(cfg *FileConfig, getenv func(string) string, logger telemetry.Logger) {
	if raw := getenv(EnvTickRate); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.Hub.TickRate = value
		} else {
			logger.Printf("invalid %s=%q", EnvTickRate, raw)
		}
	}
	if raw := strings.TrimSpace(getenv(EnvWorldSeed)); raw != "" {
		cfg.World.Seed = raw
	}
	if raw := getenv(EnvListenAddr); raw != "" {
		cfg.ListenAddr = raw
	}
	if raw := getenv(EnvPprofTrace); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.Observability.EnablePprofTrace = value
		} else {
			logger.Printf("invalid %s=%q: %v", EnvPprofTrace, raw, err)
		}
	}
	if raw := getenv(EnvLogSinks); raw != "" {
		var sinks []string
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				sinks = append(sinks, name)
			}
		}
		cfg.Logging.EnabledSinks = sinks
	}
	if raw := getenv(EnvLogJSONPath); raw != "" {
		cfg.Logging.JSON.FilePath = raw
		if !cfg.Logging.HasSink("json") {
			cfg.Logging.EnabledSinks = append(cfg.Logging.EnabledSinks, "json")
		}
	}
	if raw := getenv(EnvLogLevel); raw != "" {
		if severity, ok := logging.ParseSeverity(raw); ok {
			cfg.Logging.MinimumSeverity = severity
		} else {
			logger.Printf("invalid %s=%q", EnvLogLevel, raw)
		}
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
}
