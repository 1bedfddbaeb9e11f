package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	kafkaadapter "github.com/couchcryptid/safestride-client/internal/adapter/kafka"
	"github.com/couchcryptid/safestride-client/internal/adapter/mapbox"
	"github.com/couchcryptid/safestride-client/internal/adapter/predictapi"
	"github.com/couchcryptid/safestride-client/internal/adapter/sqlite"
	"github.com/couchcryptid/safestride-client/internal/config"
	"github.com/couchcryptid/safestride-client/internal/export"
	"github.com/couchcryptid/safestride-client/internal/observability"
	"github.com/couchcryptid/safestride-client/internal/pipeline"
	"github.com/couchcryptid/safestride-client/internal/session"
)

// metrics is registered once per process.
var metrics = sync.OnceValue(observability.NewMetrics)

// app is the wired client: configuration, persistent session, prediction
// client and submission pipeline.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *observability.Metrics
	store     *sqlite.Store
	session   *session.Session
	client    *predictapi.Client
	pipeline  *pipeline.Pipeline
	exporter  *export.Exporter
	publisher *kafkaadapter.Publisher
}

func loadConfig() (*config.Config, error) {
	var files []string
	if rootFlags.envFile != "" {
		files = append(files, rootFlags.envFile)
	}
	if err := config.LoadDotEnv(files...); err != nil {
		return nil, err
	}
	return config.Load()
}

// openCLI builds the app with a stderr logger for interactive commands.
func openCLI(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openApp(ctx, cfg, observability.NewCLILogger(os.Stderr, rootFlags.logLevel))
}

func openApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	m := metrics()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	sess, err := session.Open(ctx, store, m, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open session: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		store:    store,
		session:  sess,
		client:   predictapi.NewClient(cfg.APIURL, cfg.PredictTimeout, m, logger),
		exporter: export.NewExporter(m),
	}

	var opts []pipeline.Option
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, m, logger)
		geocoder := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, m)
		opts = append(opts, pipeline.WithEnricher(pipeline.NewLocationEnricher(geocoder, logger)))
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Debug("mapbox geocoding disabled")
	}
	if cfg.PublishEnabled() {
		a.publisher = kafkaadapter.NewPublisher(cfg, m, logger)
		opts = append(opts, pipeline.WithPublisher(a.publisher))
		logger.Info("assessment publishing enabled", "topic", cfg.KafkaTopic)
	}
	a.pipeline = pipeline.New(a.client, sess.History(), logger, m, opts...)

	return a, nil
}

func (a *app) Close() error {
	var errs []error
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}

// CheckReadiness reports ready when both the store and the backend are.
func (a *app) CheckReadiness(ctx context.Context) error {
	if err := a.store.CheckReadiness(ctx); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return a.client.CheckReadiness(ctx)
}

// withApp opens the app for the duration of fn.
func withApp(ctx context.Context, fn func(*app) error) (err error) {
	a, err := openCLI(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}
