// Command mockapi serves a deterministic stand-in for the SafeStride
// prediction backend, or writes a sample persisted history for fixtures.
//
// Usage:
//
//	go run ./cmd/mockapi -addr :8000 -shape legacy
//	go run ./cmd/mockapi -history-out testdata/history.json -entries 10
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/safestride-client/internal/config"
	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/history"
	"github.com/couchcryptid/safestride-client/internal/mockapi"
)

func main() {
	if err := run(); err != nil {
		slog.Error("mockapi failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", ":8000", "listen address")
	shapeFlag := flag.String("shape", string(domain.ShapeBinary), "response shape: binary or legacy")
	latency := flag.Duration("latency", 0, "delay added to every prediction")
	degraded := flag.Bool("degraded", false, "report the model as not loaded")
	historyOut := flag.String("history-out", "", "write a sample history to this path and exit")
	entries := flag.Int("entries", history.Capacity, "number of entries in the sample history")
	flag.Parse()

	shape := domain.Shape(*shapeFlag)
	if shape != domain.ShapeBinary && shape != domain.ShapeLegacy {
		flag.Usage()
		return fmt.Errorf("unknown shape %q", *shapeFlag)
	}

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	logger := sharedobs.NewLogger(sharedcfg.EnvOrDefault("LOG_LEVEL", "info"), sharedcfg.EnvOrDefault("LOG_FORMAT", "text"))

	if *historyOut != "" {
		return writeHistory(*historyOut, *entries, shape, logger)
	}

	opts := []mockapi.Option{mockapi.WithShape(shape), mockapi.WithLatency(*latency)}
	if *degraded {
		opts = append(opts, mockapi.WithDegraded())
	}
	srv := &http.Server{
		Addr:              *addr,
		Handler:           mockapi.NewHandler(logger, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mock backend listening", "addr", *addr, "shape", shape)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func writeHistory(path string, n int, shape domain.Shape, logger *slog.Logger) error {
	if n < 0 {
		return fmt.Errorf("entries must not be negative, got %d", n)
	}
	data, err := json.MarshalIndent(mockapi.SampleHistory(n, shape), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("wrote sample history", "path", path, "entries", n, "shape", shape)
	return nil
}
