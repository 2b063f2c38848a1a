// Package runtime hosts the fixed-rate scheduler that drives a block graph and
// the legacy rules against the shared state and capability providers.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/pixelpilot/internal/logging"
	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/graph"
	"github.com/aretw0/pixelpilot/pkg/ports"
	"github.com/aretw0/pixelpilot/pkg/registry"
	"github.com/aretw0/pixelpilot/pkg/rules"
	"github.com/aretw0/pixelpilot/pkg/schema"
)

// Defaults applied by NewEngine.
const (
	DefaultTargetHz  = 30.0
	DefaultMaxPasses = graph.DefaultMaxPasses
)

// Status is a point-in-time view of the scheduler.
type Status struct {
	Running      bool          `json:"running"`
	TargetHz     float64       `json:"target_hz"`
	Ticks        uint64        `json:"ticks"`
	Overruns     uint64        `json:"overruns"`
	LastTick     time.Time     `json:"last_tick,omitempty"`
	LastDuration time.Duration `json:"last_duration"`
	Nodes        int           `json:"nodes"`
	Rules        int           `json:"rules"`
}

// Engine owns the graph, the rule list and the tick goroutine.
//
// mu is the snapshot lock: mutations of rules, graph and providers take the
// write side, and each tick takes the read side only long enough to copy what
// it needs. Ticks are serialized by tickMu, lifecycle transitions by runMu.
type Engine struct {
	mu     sync.RWMutex
	graph  *graph.Graph
	rules  []*rules.Rule
	vision ports.VisionProvider
	input  ports.InputProvider
	state  ports.StateStore

	registry  *registry.Registry
	targetHz  float64
	maxPasses int
	logger    *slog.Logger
	sink      ports.EventSink
	now       func() time.Time

	runMu   sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running atomic.Bool

	tickMu   sync.Mutex
	ticks    atomic.Uint64
	overruns atomic.Uint64
	lastTick atomic.Int64 // unix nanos
	lastDur  atomic.Int64
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithTargetHz sets the tick rate.
func WithTargetHz(hz float64) EngineOption {
	return func(e *Engine) {
		e.targetHz = hz
	}
}

// WithMaxPasses bounds graph relaxation per tick.
func WithMaxPasses(n int) EngineOption {
	return func(e *Engine) {
		e.maxPasses = n
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEventSink receives tick and fault diagnostics.
func WithEventSink(sink ports.EventSink) EngineOption {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithGraph starts the engine with an existing graph.
func WithGraph(g *graph.Graph) EngineOption {
	return func(e *Engine) {
		e.graph = g
	}
}

// WithRegistry sets the block catalogue used for rules and documents.
func WithRegistry(r *registry.Registry) EngineOption {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithClock overrides the time source handed to blocks.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an idle engine.
func NewEngine(vision ports.VisionProvider, input ports.InputProvider, state ports.StateStore, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		vision:    vision,
		input:     input,
		state:     state,
		targetHz:  DefaultTargetHz,
		maxPasses: DefaultMaxPasses,
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	switch {
	case e.targetHz <= 0:
		return nil, &domain.ConfigurationError{Op: "new_engine", Subject: "target_hz",
			Err: fmt.Errorf("%w: must be positive, got %v", domain.ErrInvalidConfig, e.targetHz)}
	case e.maxPasses < 1:
		return nil, &domain.ConfigurationError{Op: "new_engine", Subject: "max_passes",
			Err: fmt.Errorf("%w: must be at least 1, got %d", domain.ErrInvalidConfig, e.maxPasses)}
	case state == nil:
		return nil, &domain.ConfigurationError{Op: "new_engine", Subject: "state",
			Err: fmt.Errorf("%w: a state store is required", domain.ErrInvalidConfig)}
	}
	if e.registry == nil {
		e.registry = registry.Default()
	}
	if e.graph == nil {
		e.graph = graph.New(graph.WithFactory(e.registry))
	}
	if e.sink == nil {
		e.sink = ports.EventSinkFunc(func(context.Context, domain.Event) {})
	}
	return e, nil
}

// Period is the time budget of one tick.
func (e *Engine) Period() time.Duration {
	return time.Duration(float64(time.Second) / e.targetHz)
}

// IsRunning reports whether the tick goroutine is active.
func (e *Engine) IsRunning() bool { return e.running.Load() }

// Status reports counters and sizes.
func (e *Engine) Status() Status {
	e.mu.RLock()
	nRules := len(e.rules)
	nNodes := e.graph.Len()
	e.mu.RUnlock()

	s := Status{
		Running:      e.running.Load(),
		TargetHz:     e.targetHz,
		Ticks:        e.ticks.Load(),
		Overruns:     e.overruns.Load(),
		LastDuration: time.Duration(e.lastDur.Load()),
		Nodes:        nNodes,
		Rules:        nRules,
	}
	if ns := e.lastTick.Load(); ns != 0 {
		s.LastTick = time.Unix(0, ns)
	}
	return s
}

// State returns the shared state store.
func (e *Engine) State() ports.StateStore { return e.state }

// Registry returns the block catalogue.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// Graph returns the live graph. Callers should mutate it through Mutate so that
// changes are serialized with rule updates.
func (e *Engine) Graph() *graph.Graph {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph
}

// SetProviders swaps the capability providers. Only allowed while idle.
func (e *Engine) SetProviders(vision ports.VisionProvider, input ports.InputProvider) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.running.Load() {
		return &domain.ConcurrencyViolation{Op: "set_providers", State: "running", Err: domain.ErrEngineRunning}
	}
	e.mu.Lock()
	e.vision, e.input = vision, input
	e.mu.Unlock()
	return nil
}

// Providers returns the current capability providers.
func (e *Engine) Providers() (ports.VisionProvider, ports.InputProvider) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vision, e.input
}

// Mutate applies one graph operation under the snapshot lock and returns the
// affected node id.
func (e *Engine) Mutate(op graph.Op) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.Apply(op)
}

// MutateAll applies ops in order, stopping at the first failure.
func (e *Engine) MutateAll(ops []graph.Op) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.ApplyAll(ops)
}

// AddRule appends a rule. Rules are checked in insertion order.
func (e *Engine) AddRule(r *rules.Rule) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, existing := range e.rules {
		if existing.ID == r.ID {
			return &domain.ConfigurationError{Op: "add_rule", Subject: r.ID, Err: domain.ErrDuplicateRule}
		}
	}
	e.rules = append(e.rules, r)
	return nil
}

// AddRuleSpec builds a rule from its declarative form and appends it.
func (e *Engine) AddRuleSpec(spec domain.RuleSpec) (string, error) {
	r, err := rules.FromSpec(spec, e.registry)
	if err != nil {
		return "", err
	}
	return r.ID, e.AddRule(r)
}

// RemoveRule deletes a rule by id.
func (e *Engine) RemoveRule(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, r := range e.rules {
		if r.ID == id {
			e.rules = append(e.rules[:i:i], e.rules[i+1:]...)
			return nil
		}
	}
	return &domain.ConfigurationError{Op: "remove_rule", Subject: id, Err: domain.ErrUnknownRule}
}

// Rules lists the rule specs in evaluation order.
func (e *Engine) Rules() []domain.RuleSpec {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]domain.RuleSpec, 0, len(e.rules))
	for _, r := range e.rules {
		out = append(out, r.Spec())
	}
	return out
}

// Document captures the graph and the rules that have a declarative form.
// Rules built directly from Go values are skipped.
func (e *Engine) Document(name string) *schema.Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	doc := e.graph.Document(name)
	for _, r := range e.rules {
		if !r.Declarative() {
			e.logger.Debug("rule left out of document", "rule", r.ID)
			continue
		}
		doc.Rules = append(doc.Rules, r.Spec())
	}
	return doc
}

// Load replaces the graph and rules with the document's contents. Nothing is
// replaced if any part of the document is rejected.
func (e *Engine) Load(doc *schema.Document) error {
	g, err := graph.Build(doc, graph.WithFactory(e.registry))
	if err != nil {
		return err
	}
	rs := make([]*rules.Rule, 0, len(doc.Rules))
	seen := make(map[string]bool, len(doc.Rules))
	for i, spec := range doc.Rules {
		r, err := rules.FromSpec(spec, e.registry)
		if err != nil {
			return fmt.Errorf("rules[%d]: %w", i, err)
		}
		if seen[r.ID] {
			return fmt.Errorf("rules[%d]: %w", i, &domain.ConfigurationError{Op: "add_rule", Subject: r.ID, Err: domain.ErrDuplicateRule})
		}
		seen[r.ID] = true
		rs = append(rs, r)
	}

	e.mu.Lock()
	e.graph, e.rules = g, rs
	e.mu.Unlock()
	return nil
}

func (e *Engine) emit(ctx context.Context, ev domain.Event) {
	e.sink.Emit(ctx, ev)
}
