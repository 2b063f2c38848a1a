package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/pixelpilot"
	"github.com/aretw0/pixelpilot/internal/config"
	"github.com/aretw0/pixelpilot/internal/presentation/tui"
	"github.com/aretw0/pixelpilot/pkg/adapters/file"
	"github.com/aretw0/pixelpilot/pkg/adapters/memory"
	"github.com/aretw0/pixelpilot/pkg/adapters/provider"
	"github.com/aretw0/pixelpilot/pkg/adapters/redis"
	"github.com/aretw0/pixelpilot/pkg/adapters/sqlite"
	"github.com/aretw0/pixelpilot/pkg/adapters/stub"
	"github.com/aretw0/pixelpilot/pkg/observability"
	"github.com/aretw0/pixelpilot/pkg/ports"
	"github.com/aretw0/pixelpilot/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
)

// app holds everything a long-running command wires around the engine.
type app struct {
	engine  *pixelpilot.Engine
	state   ports.StateStore
	metrics *prometheus.Registry
	client  *backend.Client
	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func redisClient(c config.Config) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	})
}

// newApp builds the engine with the configured state backend, headless
// providers and diagnostics. Extra sinks receive engine events too.
func newApp(ctx context.Context, name string, sinks ...ports.EventSink) (*app, error) {
	a := &app{metrics: prometheus.NewRegistry()}

	switch cfg.State.Backend {
	case config.BackendRedis:
		a.client = redisClient(cfg)
		if err := a.client.Ping(ctx).Err(); err != nil {
			_ = a.client.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		store := redis.NewFromClient(a.client, redis.WithPrefix(cfg.Redis.Prefix))
		a.state = store
		a.closers = append(a.closers, store.Close)
	default:
		a.state = memory.NewStore()
	}

	vision := provider.SelectVision(logger, provider.VisionCandidate{
		Name: "headless",
		New: func() (ports.VisionProvider, error) {
			return stub.NewVision(cfg.Vision.SentinelRGB), nil
		},
	})
	input := provider.SelectInput(logger, provider.InputCandidate{
		Name: "dry-run",
		New: func() (ports.InputProvider, error) {
			return &provider.LogInput{Logger: logger}, nil
		},
	})

	fan := observability.Fanout{observability.NewLogSink(logger), observability.NewMetrics(a.metrics)}
	fan = append(fan, sinks...)

	eng, err := pixelpilot.New(vision, input, a.state,
		pixelpilot.WithTargetHz(cfg.Engine.TargetHz),
		pixelpilot.WithMaxPasses(cfg.Engine.MaxPasses),
		pixelpilot.WithLogger(logger),
		pixelpilot.WithEventSink(fan),
		pixelpilot.WithName(name),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.engine = eng
	return a, nil
}

// loadGraph reads a document from a file, or from the library when fromLibrary
// is set, and validates it against the engine's catalogue before loading.
func (a *app) loadGraph(ctx context.Context, path string, fromLibrary bool) error {
	var (
		doc *schema.Document
		err error
	)
	if fromLibrary {
		repo, closeRepo, oerr := openLibrary()
		if oerr != nil {
			return oerr
		}
		defer closeRepo()
		doc, err = repo.Load(ctx, path)
	} else {
		doc, err = schema.ReadFile(path)
	}
	if err != nil {
		return err
	}
	if err := schema.ValidateDocument(doc, a.engine.Registry()); err != nil {
		return err
	}
	if err := a.engine.Load(doc); err != nil {
		return err
	}
	if doc.Name != "" {
		a.engine.Name = doc.Name
	}
	logger.Info("graph loaded", "source", path, "nodes", len(doc.Nodes), "links", len(doc.Links), "rules", len(doc.Rules))
	return nil
}

// openLibrary opens the configured graph repository.
func openLibrary() (ports.GraphRepository, func() error, error) {
	path := cfg.Library.LibraryPath()
	switch cfg.Library.Backend {
	case config.LibraryFile:
		return file.New(path), func() error { return nil }, nil
	case config.LibraryRedis:
		client := redisClient(cfg)
		return redis.NewLibrary(client, cfg.Redis.Prefix), client.Close, nil
	default:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create library directory: %w", err)
		}
		repo, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	}
}

func banner() {
	if tui.IsTerminal(os.Stdout) {
		tui.PrintBanner(os.Stdout, pixelpilot.Version)
	}
}
