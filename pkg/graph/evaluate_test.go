package graph_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/pixelpilot/pkg/adapters/memory"
	"github.com/aretw0/pixelpilot/pkg/adapters/stub"
	"github.com/aretw0/pixelpilot/pkg/blocks"
	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/graph"
	"github.com/aretw0/pixelpilot/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tick0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newEnv() (blocks.Env, *stub.Vision, *stub.Input) {
	v := stub.NewVision(domain.Black)
	in := stub.NewInput()
	return blocks.Env{State: memory.NewStore(), Vision: v, Input: in, Now: tick0}, v, in
}

func TestEvaluate_AndGateTruthTable(t *testing.T) {
	for _, tc := range []struct{ a, b, want bool }{
		{false, false, false},
		{false, true, false},
		{true, false, false},
		{true, true, true},
	} {
		g := graph.New()
		mustAdd(t, g, constant("a", tc.a), constant("b", tc.b), gate("and", "and"))
		require.NoError(t, g.AddLink(link("a", "Out", "and", "In1")))
		require.NoError(t, g.AddLink(link("b", "Out", "and", "In2")))

		env, _, _ := newEnv()
		res := g.Snapshot().Evaluate(context.Background(), env, 3)
		assert.Equal(t, tc.want, res.Values["and"], "a=%v b=%v", tc.a, tc.b)
		assert.Empty(t, res.Faults)
	}
}

func TestEvaluate_AcyclicConvergesAndIsIdempotent(t *testing.T) {
	g := graph.New()
	// Chain inserted backwards: not3 <- not2 <- not1 <- in
	mustAdd(t, g, gate("not3", "not"), gate("not2", "not"), gate("not1", "not"), constant("in", true))
	require.NoError(t, g.AddLink(link("in", "Out", "not1", "In1")))
	require.NoError(t, g.AddLink(link("not1", "Out", "not2", "In1")))
	require.NoError(t, g.AddLink(link("not2", "Out", "not3", "In1")))

	env, _, _ := newEnv()
	plan := g.Snapshot()
	first := plan.Evaluate(context.Background(), env, 3)
	assert.True(t, first.Converged)
	assert.Equal(t, 1, first.Passes)
	assert.Equal(t, map[string]bool{"in": true, "not1": false, "not2": true, "not3": false}, first.Values)

	second := plan.Evaluate(context.Background(), env, 3)
	assert.Equal(t, first.Values, second.Values)
}

func TestEvaluate_SelfLoopTerminates(t *testing.T) {
	g := graph.New()
	mustAdd(t, g, gate("osc", "not"))
	require.NoError(t, g.AddLink(link("osc", "Out", "osc", "In1")))

	env, _, _ := newEnv()
	plan := g.Snapshot()
	for i := 0; i < 200; i++ {
		res := plan.Evaluate(context.Background(), env, 3)
		assert.LessOrEqual(t, res.Passes, 3)
		assert.False(t, res.Converged)
		assert.Len(t, res.Values, 1)
	}
}

func TestEvaluate_StableCycleConverges(t *testing.T) {
	// Latch: or(set, self) stays high once set.
	g := graph.New()
	mustAdd(t, g, constant("set", true), gate("latch", "or"))
	require.NoError(t, g.AddLink(link("set", "Out", "latch", "In1")))
	require.NoError(t, g.AddLink(link("latch", "Out", "latch", "In2")))

	env, _, _ := newEnv()
	res := g.Snapshot().Evaluate(context.Background(), env, 3)
	assert.True(t, res.Converged)
	assert.Equal(t, 2, res.Passes)
	assert.True(t, res.Values["latch"])
}

func TestEvaluate_WhitePixelPressesSpaceOncePerTick(t *testing.T) {
	g := graph.New()
	mustAdd(t, g,
		domain.NodeSpec{ID: "white", Kind: domain.KindInput, Type: "pixel_color",
			Config: map[string]any{"x": 10, "y": 10, "target_rgb": []any{255, 255, 255}}},
		press("space", "space"),
	)
	require.NoError(t, g.AddLink(link("white", "Out", "space", "Trig")))

	env, vision, input := newEnv()
	vision.SetSentinel(domain.White)
	plan := g.Snapshot()

	for i := 1; i <= 5; i++ {
		res := plan.Evaluate(context.Background(), env, 3)
		assert.Equal(t, []string{"space"}, res.Fired)
		assert.Equal(t, i, input.Presses("space"))
	}

	vision.SetSentinel(domain.Black)
	for i := 0; i < 5; i++ {
		res := plan.Evaluate(context.Background(), env, 3)
		assert.Empty(t, res.Fired)
	}
	assert.Equal(t, 5, input.Presses("space"))
}

func TestEvaluate_RisingEdgeOutput(t *testing.T) {
	g := graph.New()
	mustAdd(t, g,
		domain.NodeSpec{ID: "held", Kind: domain.KindInput, Type: "key_down", Config: map[string]any{"key": "f"}},
		domain.NodeSpec{ID: "once", Kind: domain.KindOutput, Type: "key_press", Config: map[string]any{"key": "e", "edge": "rising"}},
	)
	require.NoError(t, g.AddLink(link("held", "Out", "once", "Trig")))

	env, _, input := newEnv()
	plan := g.Snapshot()
	input.SetKeyDown("f", true)
	for i := 0; i < 3; i++ {
		plan.Evaluate(context.Background(), env, 3)
	}
	assert.Equal(t, 1, input.Presses("e"))

	input.SetKeyDown("f", false)
	plan.Evaluate(context.Background(), env, 3)
	input.SetKeyDown("f", true)
	plan.Evaluate(context.Background(), env, 3)
	assert.Equal(t, 2, input.Presses("e"))
}

func TestEvaluate_UnconnectedOutputNeverFires(t *testing.T) {
	g := graph.New()
	mustAdd(t, g, press("lonely", "z"))
	env, _, input := newEnv()
	res := g.Snapshot().Evaluate(context.Background(), env, 3)
	assert.Empty(t, res.Fired)
	assert.Zero(t, input.Presses("z"))
}

type panicky struct{}

func (panicky) Evaluate(context.Context, blocks.Env) (bool, error) { panic("boom") }

func TestEvaluate_FaultsAreIsolated(t *testing.T) {
	reg := registry.Default()
	reg.RegisterCondition("panicky", registry.ConditionType{
		New: func(map[string]any) (blocks.Condition, error) { return panicky{}, nil },
	})
	g := graph.New(graph.WithFactory(reg))
	mustAdd(t, g,
		domain.NodeSpec{ID: "bad", Kind: domain.KindInput, Type: "panicky"},
		domain.NodeSpec{ID: "pix", Kind: domain.KindInput, Type: "pixel_color",
			Config: map[string]any{"x": 0, "y": 0, "target_rgb": "#000000"}},
		constant("ok", true),
		press("p1", "a"),
		press("p2", "b"),
	)
	require.NoError(t, g.AddLink(link("bad", "Out", "p1", "Trig")))
	require.NoError(t, g.AddLink(link("ok", "Out", "p2", "Trig")))

	env, vision, input := newEnv()
	vision.FailWith(errors.New("no display"))
	res := g.Snapshot().Evaluate(context.Background(), env, 3)

	require.Len(t, res.Faults, 2)
	assert.Equal(t, "bad", res.Faults[0].NodeID)
	assert.True(t, domain.IsEvaluationFault(res.Faults[0].Err))
	assert.Equal(t, "pix", res.Faults[1].NodeID)
	assert.True(t, domain.IsProviderError(res.Faults[1].Err))

	assert.False(t, res.Values["bad"])
	assert.Equal(t, []string{"p2"}, res.Fired)
	assert.Equal(t, 1, input.Presses("b"))
}

func TestEvaluate_TimerNodePulsesPerInterval(t *testing.T) {
	g := graph.New()
	mustAdd(t, g,
		domain.NodeSpec{ID: "every", Kind: domain.KindInput, Type: "timer",
			Config: map[string]any{"interval": "1s", "timer_id": "t"}},
		domain.NodeSpec{ID: "count", Kind: domain.KindOutput, Type: "increment", Config: map[string]any{"key": "n"}},
	)
	require.NoError(t, g.AddLink(link("every", "Out", "count", "Trig")))

	env, _, _ := newEnv()
	plan := g.Snapshot()
	for i := 0; i < 30; i++ {
		env.Now = tick0.Add(time.Duration(i) * 100 * time.Millisecond)
		plan.Evaluate(context.Background(), env, 3)
	}
	v, _, _ := env.State.Get(context.Background(), "n")
	assert.Equal(t, domain.Int(3), v, "fires at 0s, 1s and 2s")
}

func TestEvaluate_ToggleFlipFlopAcrossTicks(t *testing.T) {
	g := graph.New()
	mustAdd(t, g,
		domain.NodeSpec{ID: "btn", Kind: domain.KindInput, Type: "key_down", Config: map[string]any{"key": "t"}},
		gate("ff", "toggle"),
	)
	require.NoError(t, g.AddLink(link("btn", "Out", "ff", "Trig")))

	env, _, input := newEnv()
	plan := g.Snapshot()
	seq := []struct{ down, want bool }{
		{true, true}, {true, true}, {false, true}, {true, false}, {false, false},
	}
	for i, s := range seq {
		input.SetKeyDown("t", s.down)
		res := plan.Evaluate(context.Background(), env, 3)
		assert.Equal(t, s.want, res.Values["ff"], "tick %d", i)
	}
}

func TestEvaluate_UnwiredProcessNodesReadFalse(t *testing.T) {
	configs := map[string]map[string]any{
		"and": nil, "or": nil, "nand": nil, "nor": nil, "xor": nil, "not": nil, "toggle": nil,
		"ton":   {"delay": "0s"},
		"tof":   {"delay": "1s"},
		"tp":    {"duration": "1s"},
		"blink": {"on": "1s", "off": "1s"},
	}
	for op, cfg := range configs {
		t.Run(op, func(t *testing.T) {
			spec := gate("g", op)
			spec.Config = cfg
			g := graph.New()
			mustAdd(t, g, spec, press("p", "space"))
			require.NoError(t, g.AddLink(link("g", "Out", "p", "Trig")))

			env, _, input := newEnv()
			plan := g.Snapshot()
			for i := 0; i < 3; i++ {
				res := plan.Evaluate(context.Background(), env, 3)
				assert.False(t, res.Values["g"])
				assert.Empty(t, res.Fired)
				assert.Empty(t, res.Faults)
			}
			assert.Zero(t, input.Presses("space"))
		})
	}
}

func TestEvaluate_PartlyWiredGateReadsUnconnectedPortsFalse(t *testing.T) {
	g := graph.New()
	mustAdd(t, g, constant("a", true), gate("nand", "nand"), press("p", "space"))
	require.NoError(t, g.AddLink(link("a", "Out", "nand", "In1")))
	require.NoError(t, g.AddLink(link("nand", "Out", "p", "Trig")))

	env, _, input := newEnv()
	res := g.Snapshot().Evaluate(context.Background(), env, 3)
	assert.True(t, res.Values["nand"], "In2 reads false")
	assert.Equal(t, []string{"p"}, res.Fired)
	assert.Equal(t, 1, input.Presses("space"))
}

func TestEvaluate_UnlinkingGateDropsItsOutput(t *testing.T) {
	g := graph.New()
	mustAdd(t, g, constant("a", false), gate("n", "not"))
	require.NoError(t, g.AddLink(link("a", "Out", "n", "In1")))

	env, _, _ := newEnv()
	assert.True(t, g.Snapshot().Evaluate(context.Background(), env, 3).Values["n"])

	require.NoError(t, g.RemoveLink(link("a", "Out", "n", "In1")))
	assert.False(t, g.Snapshot().Evaluate(context.Background(), env, 3).Values["n"])
}

type panickyCommit struct{}

func (panickyCommit) Ports() []string                           { return []string{"In1"} }
func (panickyCommit) Compute(in blocks.Inputs, _ time.Time) bool { return in["In1"] }
func (panickyCommit) Commit(blocks.Inputs, time.Time)           { panic("latch broke") }

func TestEvaluate_CommitPanicIsReportedAsFault(t *testing.T) {
	reg := registry.Default()
	reg.RegisterLogic("fragile", registry.LogicType{
		New: func(map[string]any) (blocks.Logic, error) { return panickyCommit{}, nil },
	})
	g := graph.New(graph.WithFactory(reg))
	mustAdd(t, g, constant("a", true), domain.NodeSpec{ID: "f", Kind: domain.KindProcess, Type: "fragile"})
	require.NoError(t, g.AddLink(link("a", "Out", "f", "In1")))

	env, _, _ := newEnv()
	res := g.Snapshot().Evaluate(context.Background(), env, 3)
	require.Len(t, res.Faults, 1)
	assert.Equal(t, "f", res.Faults[0].NodeID)
	assert.True(t, domain.IsEvaluationFault(res.Faults[0].Err))
	assert.True(t, res.Values["f"])
}
