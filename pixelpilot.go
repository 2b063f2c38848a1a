package pixelpilot

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/pixelpilot/internal/runtime"
	"github.com/aretw0/pixelpilot/pkg/graph"
	"github.com/aretw0/pixelpilot/pkg/ports"
	"github.com/aretw0/pixelpilot/pkg/registry"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Status is a point-in-time view of the scheduler.
type Status = runtime.Status

// TickReport describes one completed tick.
type TickReport = runtime.TickReport

// Engine is the high-level entry point for the PixelPilot library.
// It wraps the internal runtime and exposes its control surface.
type Engine struct {
	*runtime.Engine

	runtimeOpts []runtime.EngineOption
	logger      *slog.Logger
	Name        string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithTargetHz sets the tick rate (default 30).
func WithTargetHz(hz float64) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithTargetHz(hz))
	}
}

// WithMaxPasses bounds graph relaxation per tick (default 3).
func WithMaxPasses(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithMaxPasses(n))
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEventSink registers a diagnostics sink.
func WithEventSink(sink ports.EventSink) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithEventSink(sink))
	}
}

// WithGraph starts from an existing graph.
func WithGraph(g *graph.Graph) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithGraph(g))
	}
}

// WithRegistry replaces the built-in block catalogue.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithRegistry(r))
	}
}

// WithClock overrides the time source handed to blocks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithClock(now))
	}
}

// WithName labels the engine in logs.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// New initializes an idle engine bound to the given providers and state store.
func New(vision ports.VisionProvider, input ports.InputProvider, state ports.StateStore, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	// Ensure logger is initialized (so we don't pass nil to runtime, which would overwrite its default)
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("graph", eng.Name)
	}

	runtimeOpts := append([]runtime.EngineOption{runtime.WithLogger(eng.logger)}, eng.runtimeOpts...)
	rt, err := runtime.NewEngine(vision, input, state, runtimeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}
	eng.Engine = rt
	return eng, nil
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }
