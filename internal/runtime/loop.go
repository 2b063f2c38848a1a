package runtime

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/aretw0/pixelpilot/pkg/blocks"
	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/graph"
)

// TickReport describes one completed tick.
type TickReport struct {
	Tick       uint64
	Started    time.Time
	Duration   time.Duration
	Overrun    bool
	Passes     int
	Converged  bool
	RulesFired []string
	Fired      []string
	Faults     []graph.Fault // node and rule faults, rules first
}

// Start launches the tick goroutine. The loop runs until Stop is called or ctx
// is cancelled.
func (e *Engine) Start(ctx context.Context) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.running.Load() {
		return &domain.ConcurrencyViolation{Op: "start", State: "running", Err: domain.ErrAlreadyRunning}
	}
	if e.done != nil {
		// A previous loop exited on its own when its context ended.
		<-e.done
	}

	loopCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})
	e.running.Store(true)

	e.logger.Info("engine started", "target_hz", e.targetHz, "max_passes", e.maxPasses)
	e.emit(ctx, domain.NewEvent(domain.EventEngineStarted, e.now()))

	go e.loop(loopCtx, e.done)
	return nil
}

// Stop cancels the loop and waits for the in-flight tick to finish. Stopping an
// idle engine is a no-op.
func (e *Engine) Stop() error {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.cancel == nil {
		return nil
	}
	e.cancel()
	<-e.done
	e.cancel = nil
	e.done = nil
	return nil
}

// Step runs exactly one tick on the caller's goroutine.
func (e *Engine) Step(ctx context.Context) (TickReport, error) {
	if e.running.Load() {
		return TickReport{}, &domain.ConcurrencyViolation{Op: "step", State: "running", Err: domain.ErrEngineRunning}
	}
	return e.tick(ctx), nil
}

func (e *Engine) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		e.running.Store(false)
		e.logger.Info("engine stopped", "ticks", e.ticks.Load(), "overruns", e.overruns.Load())
		e.emit(context.WithoutCancel(ctx), domain.NewEvent(domain.EventEngineStopped, e.now()))
		close(done)
	}()

	period := e.Period()
	timer := time.NewTimer(period)
	timer.Stop()
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		e.tick(ctx)
		elapsed := time.Since(start)
		if elapsed >= period {
			// Overrun: start the next tick immediately, never catch up.
			continue
		}
		timer.Reset(period - elapsed)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

func (e *Engine) tick(ctx context.Context) TickReport {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	wall := time.Now()
	now := e.now()

	e.mu.RLock()
	rs := slices.Clone(e.rules)
	plan := e.graph.Snapshot()
	env := blocks.Env{State: e.state, Vision: e.vision, Input: e.input, Now: now}
	e.mu.RUnlock()

	rep := TickReport{Tick: e.ticks.Add(1), Started: now}
	ev := domain.NewEvent(domain.EventTickStarted, now)
	ev.Tick = rep.Tick
	e.emit(ctx, ev)

	for _, r := range rs {
		if ctx.Err() != nil {
			break
		}
		fired, err := r.Check(ctx, env)
		if err != nil {
			rep.Faults = append(rep.Faults, graph.Fault{NodeID: r.ID, Err: err})
			e.ruleFault(ctx, rep.Tick, r.ID, err)
			continue
		}
		if fired {
			rep.RulesFired = append(rep.RulesFired, r.ID)
			ev := domain.NewEvent(domain.EventActionFired, now)
			ev.Tick, ev.RuleID = rep.Tick, r.ID
			e.emit(ctx, ev)
		}
	}

	res := plan.Evaluate(ctx, env, e.maxPasses)
	rep.Passes, rep.Converged, rep.Fired = res.Passes, res.Converged, res.Fired
	for _, f := range res.Faults {
		rep.Faults = append(rep.Faults, f)
		e.nodeFault(ctx, rep.Tick, f)
	}
	for _, id := range res.Fired {
		ev := domain.NewEvent(domain.EventActionFired, now)
		ev.Tick, ev.NodeID = rep.Tick, id
		e.emit(ctx, ev)
	}

	rep.Duration = time.Since(wall)
	rep.Overrun = rep.Duration > e.Period()
	if rep.Overrun {
		e.overruns.Add(1)
	}
	e.lastTick.Store(now.UnixNano())
	e.lastDur.Store(int64(rep.Duration))

	ev = domain.NewEvent(domain.EventTickFinished, e.now())
	ev.Tick, ev.Duration, ev.Passes, ev.Overrun = rep.Tick, rep.Duration, rep.Passes, rep.Overrun
	e.emit(ctx, ev)
	return rep
}

func (e *Engine) ruleFault(ctx context.Context, tick uint64, id string, err error) {
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		e.logger.Warn("rule provider error", "rule", id, "provider", pe.Provider, "error", err)
		ev := domain.NewEvent(domain.EventProviderError, e.now()).WithErr(err)
		ev.Tick, ev.RuleID, ev.Provider = tick, id, pe.Provider
		e.emit(ctx, ev)
		return
	}
	e.logger.Warn("rule fault", "rule", id, "error", err)
	ev := domain.NewEvent(domain.EventRuleFault, e.now()).WithErr(err)
	ev.Tick, ev.RuleID = tick, id
	e.emit(ctx, ev)
}

func (e *Engine) nodeFault(ctx context.Context, tick uint64, f graph.Fault) {
	var pe *domain.ProviderError
	if errors.As(f.Err, &pe) {
		e.logger.Warn("node provider error", "node", f.NodeID, "provider", pe.Provider, "error", f.Err)
		ev := domain.NewEvent(domain.EventProviderError, e.now()).WithErr(f.Err)
		ev.Tick, ev.NodeID, ev.Provider = tick, f.NodeID, pe.Provider
		e.emit(ctx, ev)
		return
	}
	e.logger.Warn("node fault", "node", f.NodeID, "error", f.Err)
	ev := domain.NewEvent(domain.EventNodeFault, e.now()).WithErr(f.Err)
	ev.Tick, ev.NodeID = tick, f.NodeID
	e.emit(ctx, ev)
}
