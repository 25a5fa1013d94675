package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	server "stealth-guard/server"
	servernet "stealth-guard/server/internal/net"
	"stealth-guard/server/internal/observability"
	"stealth-guard/server/internal/telemetry"
	"stealth-guard/server/internal/world"
	"stealth-guard/server/logging"
	loggingSinks "stealth-guard/server/logging/sinks"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Logger        telemetry.Logger
	Observability observability.Config
	// ConfigPath overrides GUARD_CONFIG_FILE.
	ConfigPath    string
	// Getenv defaults to os.Getenv.
	Getenv        func(string) string
}

func Run(ctx context.Context, cfg Config) error {
	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}
	getenv := cfg.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	fallbackLogger := log.Default()
	if provider, ok := telemetryLogger.(interface{ StandardLogger() *log.Logger }); ok {
		if candidate := provider.StandardLogger(); candidate != nil {
			fallbackLogger = candidate
		}
	}

	path := cfg.ConfigPath
	if path == "" {
		path = getenv(EnvConfigFile)
	}
	fileCfg, err := LoadFileConfig(path)
	if err != nil {
		return err
	}
	if cfg.Observability.EnablePprofTrace {
		fileCfg.Observability.EnablePprofTrace = true
	}
	applyEnv(&fileCfg, getenv, telemetryLogger)

	sinks, closeFiles, err := buildSinks(fileCfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to construct logging sinks: %w", err)
	}
	defer closeFiles()

	router, err := logging.NewRouter(fileCfg.Logging, logging.SystemClock{}, fallbackLogger, sinks)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	w, err := world.New(fileCfg.World, router)
	if err != nil {
		return fmt.Errorf("failed to build world: %w", err)
	}

	counters := telemetry.NewCounters()
	hubCfg := fileCfg.Hub
	hubCfg.Logger = telemetryLogger
	hubCfg.Metrics = counters
	hub := server.NewHub(hubCfg, w)

	simCtx, stopSim := context.WithCancel(ctx)
	defer stopSim()
	go hub.RunSimulation(simCtx)

	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{
		Logger:        fallbackLogger,
		Observability: fileCfg.Observability,
		Metrics:       counters,
		LogStats:      router.Stats,
	})

	srv := &http.Server{Addr: fileCfg.ListenAddr, Handler: handler}
	telemetryLogger.Printf("server listening on %s (%d guards, tick rate %d)", srv.Addr, len(w.Guards()), hub.TickRate())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func buildSinks(cfg logging.Config) ([]logging.NamedSink, func(), error) {
	var (
		sinks []logging.NamedSink
		files []*os.File
	)
	closeFiles := func() {
		for _, f := range files {
			f.Close()
		}
	}
	for _, name := range cfg.EnabledSinks {
		switch name {
		case "console":
			sinks = append(sinks, logging.NamedSink{Name: name, Sink: loggingSinks.NewConsoleSink(os.Stdout, cfg.Console)})
		case "json":
			out := os.Stdout
			if cfg.JSON.FilePath != "" {
				f, err := os.OpenFile(cfg.JSON.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					closeFiles()
					return nil, nil, fmt.Errorf("open %s: %w", cfg.JSON.FilePath, err)
				}
				files = append(files, f)
				out = f
			}
			sinks = append(sinks, logging.NamedSink{Name: name, Sink: loggingSinks.NewJSON(out, cfg.JSON.FlushInterval)})
		default:
			closeFiles()
			return nil, nil, fmt.Errorf("unknown sink %q", name)
		}
	}
	return sinks, closeFiles, nil
}
