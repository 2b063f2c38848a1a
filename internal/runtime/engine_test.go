package runtime_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/pixelpilot/internal/runtime"
	"github.com/aretw0/pixelpilot/pkg/adapters/memory"
	"github.com/aretw0/pixelpilot/pkg/adapters/stub"
	"github.com/aretw0/pixelpilot/pkg/blocks"
	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/graph"
	"github.com/aretw0/pixelpilot/pkg/rules"
	"github.com/aretw0/pixelpilot/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recorder) Emit(_ context.Context, ev domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) count(t domain.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func (r *recorder) times(t domain.EventType) []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []time.Time
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev.Timestamp)
		}
	}
	return out
}

func (r *recorder) first(t domain.EventType) (domain.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.Type == t {
			return ev, true
		}
	}
	return domain.Event{}, false
}

type fixture struct {
	engine *runtime.Engine
	vision *stub.Vision
	input  *stub.Input
	state  *memory.Store
	events *recorder
}

func newFixture(t *testing.T, opts ...runtime.EngineOption) fixture {
	t.Helper()
	f := fixture{
		vision: stub.NewVision(domain.Black),
		input:  stub.NewInput(),
		state:  memory.NewStore(),
		events: &recorder{},
	}
	opts = append([]runtime.EngineOption{runtime.WithEventSink(f.events)}, opts...)
	e, err := runtime.NewEngine(f.vision, f.input, f.state, opts...)
	require.NoError(t, err)
	f.engine = e
	t.Cleanup(func() { _ = e.Stop() })
	return f
}

func addPixelPress(t *testing.T, e *runtime.Engine) {
	t.Helper()
	ops := []graph.Op{
		graph.AddNode(domain.NodeSpec{ID: "white", Kind: domain.KindInput, Type: "pixel_color",
			Config: map[string]any{"x": 10, "y": 10, "target_rgb": "#ffffff"}}),
		graph.AddNode(domain.NodeSpec{ID: "space", Kind: domain.KindOutput, Type: "key_press",
			Config: map[string]any{"key": "space"}}),
		graph.AddLink(domain.Link{FromNode: "white", FromPort: "Out", ToNode: "space", ToPort: "Trig"}),
	}
	require.NoError(t, e.MutateAll(ops))
}

func TestNewEngine_RejectsBadOptions(t *testing.T) {
	_, err := runtime.NewEngine(nil, nil, memory.NewStore(), runtime.WithTargetHz(0))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = runtime.NewEngine(nil, nil, memory.NewStore(), runtime.WithMaxPasses(0))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = runtime.NewEngine(nil, nil, nil)
	assert.True(t, domain.IsConfigurationError(err))
}

func TestEngine_Lifecycle(t *testing.T) {
	f := newFixture(t, runtime.WithTargetHz(200))
	e := f.engine
	ctx := context.Background()

	assert.False(t, e.IsRunning())
	assert.NoError(t, e.Stop(), "stopping an idle engine is a no-op")

	require.NoError(t, e.Start(ctx))
	assert.True(t, e.IsRunning())

	err := e.Start(ctx)
	assert.ErrorIs(t, err, domain.ErrAlreadyRunning)
	assert.True(t, domain.IsConcurrencyViolation(err))

	_, err = e.Step(ctx)
	assert.True(t, domain.IsConcurrencyViolation(err))

	err = e.SetProviders(stub.NewVision(domain.White), stub.NewInput())
	assert.True(t, domain.IsConcurrencyViolation(err))

	require.Eventually(t, func() bool { return e.Status().Ticks > 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, e.Stop())
	assert.False(t, e.IsRunning())

	ticks := e.Status().Ticks
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, ticks, e.Status().Ticks, "no ticks after Stop returns")

	assert.Equal(t, 1, f.events.count(domain.EventEngineStarted))
	assert.Equal(t, 1, f.events.count(domain.EventEngineStopped))
	assert.Equal(t, f.events.count(domain.EventTickStarted), f.events.count(domain.EventTickFinished))

	// Restart after stop.
	require.NoError(t, e.Start(ctx))
	require.NoError(t, e.Stop())
}

func TestEngine_StopsWhenContextEnds(t *testing.T) {
	f := newFixture(t, runtime.WithTargetHz(200))
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, f.engine.Start(ctx))
	cancel()
	require.Eventually(t, func() bool { return !f.engine.IsRunning() }, time.Second, 5*time.Millisecond)

	require.NoError(t, f.engine.Start(context.Background()))
	require.NoError(t, f.engine.Stop())
}

func TestEngine_LoopPeriod(t *testing.T) {
	f := newFixture(t, runtime.WithTargetHz(100))
	require.NoError(t, f.engine.MutateAll([]graph.Op{
		graph.AddNode(domain.NodeSpec{ID: "on", Kind: domain.KindInput, Type: "constant", Config: map[string]any{"value": true}}),
		graph.AddNode(domain.NodeSpec{ID: "work", Kind: domain.KindOutput, Type: "wait", Config: map[string]any{"duration": "2ms"}}),
		graph.AddLink(domain.Link{FromNode: "on", FromPort: "Out", ToNode: "work", ToPort: "Trig"}),
	}))

	require.NoError(t, f.engine.Start(context.Background()))
	time.Sleep(600 * time.Millisecond)
	require.NoError(t, f.engine.Stop())

	starts := f.events.times(domain.EventTickStarted)
	require.GreaterOrEqual(t, len(starts), 20)
	mean := starts[len(starts)-1].Sub(starts[0]) / time.Duration(len(starts)-1)
	assert.InDelta(t, float64(10*time.Millisecond), float64(mean), float64(1500*time.Microsecond),
		"mean period %s", mean)
	assert.GreaterOrEqual(t, f.engine.Status().LastDuration, 2*time.Millisecond)
}

func TestEngine_StatusDuringLoad(t *testing.T) {
	f := newFixture(t)
	doc := schema.NewDocument("swap")
	doc.Nodes = []domain.NodeSpec{{ID: "on", Kind: domain.KindInput, Type: "constant", Config: map[string]any{"value": true}}}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			assert.NoError(t, f.engine.Load(doc))
		}
	}()
	for i := 0; i < 200; i++ {
		assert.LessOrEqual(t, f.engine.Status().Nodes, 1)
	}
	wg.Wait()
	assert.Equal(t, 1, f.engine.Status().Nodes)
}

func TestEngine_OverrunsDoNotQueue(t *testing.T) {
	f := newFixture(t, runtime.WithTargetHz(100))
	require.NoError(t, f.engine.MutateAll([]graph.Op{
		graph.AddNode(domain.NodeSpec{ID: "on", Kind: domain.KindInput, Type: "constant", Config: map[string]any{"value": true}}),
		graph.AddNode(domain.NodeSpec{ID: "slow", Kind: domain.KindOutput, Type: "wait", Config: map[string]any{"duration": "30ms"}}),
		graph.AddLink(domain.Link{FromNode: "on", FromPort: "Out", ToNode: "slow", ToPort: "Trig"}),
	}))

	require.NoError(t, f.engine.Start(context.Background()))
	time.Sleep(300 * time.Millisecond)
	require.NoError(t, f.engine.Stop())

	st := f.engine.Status()
	assert.LessOrEqual(t, st.Ticks, uint64(12), "overrunning ticks run back to back without a backlog")
	assert.GreaterOrEqual(t, st.Overruns+1, st.Ticks)
	assert.Greater(t, st.LastDuration, 10*time.Millisecond)
}

func TestEngine_StepPressesWhilePixelIsWhite(t *testing.T) {
	f := newFixture(t)
	addPixelPress(t, f.engine)
	ctx := context.Background()

	f.vision.SetSentinel(domain.White)
	for i := 1; i <= 3; i++ {
		rep, err := f.engine.Step(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"space"}, rep.Fired)
		assert.Equal(t, i, f.input.Presses("space"))
	}

	f.vision.SetSentinel(domain.Black)
	for i := 0; i < 3; i++ {
		_, err := f.engine.Step(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, f.input.Presses("space"))
	assert.Equal(t, 3, f.events.count(domain.EventActionFired))
}

func TestEngine_RulesRunBeforeGraph(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.AddRuleSpec(domain.RuleSpec{
		ID:         "arm",
		Conditions: []domain.BlockSpec{{Type: "constant", Config: map[string]any{"value": true}}},
		Actions:    []domain.BlockSpec{{Type: "set_state", Config: map[string]any{"key": "armed", "value": true}}},
	})
	require.NoError(t, err)
	require.NoError(t, f.engine.MutateAll([]graph.Op{
		graph.AddNode(domain.NodeSpec{ID: "armed", Kind: domain.KindInput, Type: "state_equals", Config: map[string]any{"key": "armed"}}),
		graph.AddNode(domain.NodeSpec{ID: "fire", Kind: domain.KindOutput, Type: "key_press", Config: map[string]any{"key": "f"}}),
		graph.AddLink(domain.Link{FromNode: "armed", FromPort: "Out", ToNode: "fire", ToPort: "Trig"}),
	}))

	rep, err := f.engine.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"arm"}, rep.RulesFired)
	assert.Equal(t, []string{"fire"}, rep.Fired)
	assert.Equal(t, 1, f.input.Presses("f"))
}

func TestEngine_RuleBookkeeping(t *testing.T) {
	f := newFixture(t)
	spec := domain.RuleSpec{
		ID:         "r1",
		Conditions: []domain.BlockSpec{{Type: "constant"}},
		Actions:    []domain.BlockSpec{{Type: "key_press", Config: map[string]any{"key": "a"}}},
	}
	_, err := f.engine.AddRuleSpec(spec)
	require.NoError(t, err)

	_, err = f.engine.AddRuleSpec(spec)
	assert.ErrorIs(t, err, domain.ErrDuplicateRule)

	assert.Len(t, f.engine.Rules(), 1)
	assert.ErrorIs(t, f.engine.RemoveRule("nope"), domain.ErrUnknownRule)
	require.NoError(t, f.engine.RemoveRule("r1"))
	assert.Empty(t, f.engine.Rules())
}

func TestEngine_FaultsAreReportedAndIsolated(t *testing.T) {
	f := newFixture(t)
	addPixelPress(t, f.engine)
	_, err := f.engine.AddRuleSpec(domain.RuleSpec{
		ID:         "count",
		Conditions: []domain.BlockSpec{{Type: "constant", Config: map[string]any{"value": true}}},
		Actions:    []domain.BlockSpec{{Type: "increment", Config: map[string]any{"key": "ticks"}}},
	})
	require.NoError(t, err)

	f.vision.FailWith(fmt.Errorf("capture: %w", domain.ErrUnavailable))
	rep, err := f.engine.Step(context.Background())
	require.NoError(t, err)

	require.Len(t, rep.Faults, 1)
	assert.Equal(t, "white", rep.Faults[0].NodeID)
	assert.ErrorIs(t, rep.Faults[0].Err, domain.ErrUnavailable)
	assert.Equal(t, []string{"count"}, rep.RulesFired)

	ev, ok := f.events.first(domain.EventProviderError)
	require.True(t, ok)
	assert.Equal(t, "white", ev.NodeID)
	assert.Equal(t, "stub", ev.Provider)
	assert.NotEmpty(t, ev.Err)
}

func TestEngine_ConcurrentMutationWhileRunning(t *testing.T) {
	f := newFixture(t, runtime.WithTargetHz(500))
	require.NoError(t, f.engine.Start(context.Background()))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				in := fmt.Sprintf("in-%d-%d", w, i)
				out := fmt.Sprintf("out-%d-%d", w, i)
				assert.NoError(t, f.engine.MutateAll([]graph.Op{
					graph.AddNode(domain.NodeSpec{ID: in, Kind: domain.KindInput, Type: "constant", Config: map[string]any{"value": true}}),
					graph.AddNode(domain.NodeSpec{ID: out, Kind: domain.KindOutput, Type: "increment", Config: map[string]any{"key": "hits"}}),
					graph.AddLink(domain.Link{FromNode: in, FromPort: "Out", ToNode: out, ToPort: "Trig"}),
				}))
				_ = f.engine.Status()
				_ = f.engine.Document("live")
			}
		}(w)
	}
	wg.Wait()
	require.NoError(t, f.engine.Stop())
	assert.Equal(t, 200, f.engine.Status().Nodes)
}

func TestEngine_DocumentSkipsCodeBuiltRules(t *testing.T) {
	f := newFixture(t)
	on, err := blocks.NewConstant(map[string]any{"value": true})
	require.NoError(t, err)
	bump, err := blocks.NewIncrement(map[string]any{"key": "n"})
	require.NoError(t, err)
	require.NoError(t, f.engine.AddRule(rules.NewRule("inline", on, bump)))
	_, err = f.engine.AddRuleSpec(domain.RuleSpec{
		ID:         "declared",
		Conditions: []domain.BlockSpec{{Type: "constant", Config: map[string]any{"value": true}}},
		Actions:    []domain.BlockSpec{{Type: "increment", Config: map[string]any{"key": "m"}}},
	})
	require.NoError(t, err)

	doc := f.engine.Document("saved")
	require.Len(t, doc.Rules, 1)
	assert.Equal(t, "declared", doc.Rules[0].ID)

	other := newFixture(t)
	require.NoError(t, other.engine.Load(doc))
	assert.Len(t, other.engine.Rules(), 1)
}

func TestEngine_DocumentRoundTrip(t *testing.T) {
	f := newFixture(t)
	addPixelPress(t, f.engine)
	_, err := f.engine.AddRuleSpec(domain.RuleSpec{
		ID:         "r",
		Conditions: []domain.BlockSpec{{Type: "key_down", Config: map[string]any{"key": "q"}}},
		Actions:    []domain.BlockSpec{{Type: "key_press", Config: map[string]any{"key": "e"}}},
	})
	require.NoError(t, err)

	doc := f.engine.Document("demo")
	assert.Len(t, doc.Nodes, 2)
	assert.Len(t, doc.Links, 1)
	assert.Len(t, doc.Rules, 1)

	g := newFixture(t)
	require.NoError(t, g.engine.Load(doc))
	assert.Equal(t, doc.Nodes, g.engine.Document("demo").Nodes)
	assert.Equal(t, doc.Rules, g.engine.Rules())

	doc.Rules = append(doc.Rules, doc.Rules[0])
	err = g.engine.Load(doc)
	assert.ErrorIs(t, err, domain.ErrDuplicateRule)
}

func TestEngine_SetProvidersWhileIdle(t *testing.T) {
	f := newFixture(t)
	addPixelPress(t, f.engine)

	white := stub.NewVision(domain.White)
	in := stub.NewInput()
	require.NoError(t, f.engine.SetProviders(white, in))

	_, err := f.engine.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, in.Presses("space"))
	assert.Zero(t, f.input.Presses("space"))
}
