package rules_test

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
	"github.com/aretw0/pixelpilot/pkg/rules"
	"github.com/aretw0/pixelpilot/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newEnv() (blocks.Env, *stub.Vision, *stub.Input) {
	v := stub.NewVision(domain.Black)
	in := stub.NewInput()
	return blocks.Env{State: memory.NewStore(), Vision: v, Input: in, Now: start}, v, in
}

func whiteSpace(id, logic string) domain.RuleSpec {
	return domain.RuleSpec{
		ID:    id,
		Logic: logic,
		Conditions: []domain.BlockSpec{
			{Type: "pixel_color", Config: map[string]any{"x": 10, "y": 10, "target_rgb": []any{255, 255, 255}}},
			{Type: "key_down", Config: map[string]any{"key": "shift"}},
		},
		Actions: []domain.BlockSpec{{Type: "key_press", Config: map[string]any{"key": "space"}}},
	}
}

func TestFromSpec_Logic(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		logic        string
		white, shift bool
		want         bool
	}{
		{"and", true, true, true},
		{"and", true, false, false},
		{"AND", false, true, false},
		{"or", true, false, true},
		{"or", false, true, true},
		{"or", false, false, false},
		{"", true, false, false},
	} {
		r, err := rules.FromSpec(whiteSpace("r", tc.logic), registry.Default())
		require.NoError(t, err)

		env, v, in := newEnv()
		if tc.white {
			v.SetSentinel(domain.White)
		}
		in.SetKeyDown("shift", tc.shift)

		fired, err := r.Check(ctx, env)
		require.NoError(t, err)
		assert.Equal(t, tc.want, fired, "%+v", tc)
		if tc.want {
			assert.Equal(t, 1, in.Presses("space"))
		} else {
			assert.Zero(t, in.Presses("space"))
		}
	}
}

func TestFromSpec_Invalid(t *testing.T) {
	reg := registry.Default()

	_, err := rules.FromSpec(domain.RuleSpec{ID: "x", Logic: "xor",
		Conditions: []domain.BlockSpec{{Type: "constant"}},
		Actions:    []domain.BlockSpec{{Type: "wait"}}}, reg)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	assert.True(t, domain.IsConfigurationError(err))

	_, err = rules.FromSpec(domain.RuleSpec{ID: "x"}, reg)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = rules.FromSpec(domain.RuleSpec{ID: "x",
		Conditions: []domain.BlockSpec{{Type: "no_such"}},
		Actions:    []domain.BlockSpec{{Type: "wait"}}}, reg)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "conditions[0]")
}

func TestFromSpec_GeneratesID(t *testing.T) {
	spec := whiteSpace("", "and")
	r, err := rules.FromSpec(spec, registry.Default())
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, r.ID, r.Spec().ID)
}

func TestCheck_Requires(t *testing.T) {
	ctx := context.Background()
	spec := domain.RuleSpec{
		ID:         "bump",
		Conditions: []domain.BlockSpec{{Type: "constant", Config: map[string]any{"value": true}}},
		Actions:    []domain.BlockSpec{{Type: "increment", Config: map[string]any{"key": "count"}}},
		Requires:   &domain.StateRequirement{Key: "mode", Value: "farm"},
	}
	r, err := rules.FromSpec(spec, registry.Default())
	require.NoError(t, err)

	env, _, _ := newEnv()
	fired, err := r.Check(ctx, env)
	require.NoError(t, err)
	assert.False(t, fired)

	require.NoError(t, env.State.Set(ctx, "mode", domain.String("farm")))
	fired, err = r.Check(ctx, env)
	require.NoError(t, err)
	assert.True(t, fired)

	v, ok, err := env.State.Get(ctx, "count")
	require.NoError(t, err)
	require.True(t, ok)
	n, _ := v.AsInt()
	assert.EqualValues(t, 1, n)
}

func TestCheck_TimerResetsAfterFiring(t *testing.T) {
	ctx := context.Background()
	spec := domain.RuleSpec{
		ID:         "every-second",
		Conditions: []domain.BlockSpec{{Type: "timer", Config: map[string]any{"interval": "1s", "timer_id": "t"}}},
		Actions:    []domain.BlockSpec{{Type: "key_press", Config: map[string]any{"key": "f"}}},
	}
	r, err := rules.FromSpec(spec, registry.Default())
	require.NoError(t, err)

	env, _, in := newEnv()
	// 30 Hz for three seconds.
	for i := 0; i < 90; i++ {
		env.Now = start.Add(time.Duration(i) * time.Second / 30)
		_, err := r.Check(ctx, env)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, in.Presses("f"))
}

func TestCheck_ProviderErrorAbortsRule(t *testing.T) {
	ctx := context.Background()
	r, err := rules.FromSpec(whiteSpace("r", "and"), registry.Default())
	require.NoError(t, err)

	env, v, in := newEnv()
	v.FailWith(errors.New("capture lost"))

	fired, err := r.Check(ctx, env)
	assert.False(t, fired)
	assert.True(t, domain.IsProviderError(err))
	assert.Zero(t, in.Presses("space"))
}

type panicky struct{}

func (panicky) Evaluate(context.Context, blocks.Env) (bool, error) { panic("boom") }

func TestCheck_PanicBecomesFault(t *testing.T) {
	act, err := blocks.NewKeyPress(map[string]any{"key": "a"})
	require.NoError(t, err)
	r := rules.NewRule("p", panicky{}, act)

	env, _, _ := newEnv()
	fired, err := r.Check(context.Background(), env)
	assert.False(t, fired)
	assert.True(t, domain.IsEvaluationFault(err))
}

func TestDeclarative(t *testing.T) {
	act, err := blocks.NewKeyPress(map[string]any{"key": "a"})
	require.NoError(t, err)
	assert.False(t, rules.NewRule("inline", panicky{}, act).Declarative())

	r, err := rules.FromSpec(whiteSpace("ws", "or"), registry.Default())
	require.NoError(t, err)
	assert.True(t, r.Declarative())
}

func TestLower_BehavesLikeRule(t *testing.T) {
	ctx := context.Background()
	spec := whiteSpace("ws", "and")
	spec.Requires = &domain.StateRequirement{Key: "armed", Value: true}

	ops, err := rules.Lower(spec)
	require.NoError(t, err)

	g := graph.New()
	require.NoError(t, g.ApplyAll(ops))
	assert.Equal(t, 6, g.Len())

	env, v, in := newEnv()
	v.SetSentinel(domain.White)
	in.SetKeyDown("shift", true)

	res := g.Snapshot().Evaluate(ctx, env, graph.DefaultMaxPasses)
	assert.Empty(t, res.Faults)
	assert.Zero(t, in.Presses("space"))

	require.NoError(t, env.State.Set(ctx, "armed", domain.Bool(true)))
	res = g.Snapshot().Evaluate(ctx, env, graph.DefaultMaxPasses)
	assert.Equal(t, []string{"ws.a1"}, res.Fired)
	assert.Equal(t, 1, in.Presses("space"))
}

func TestLowerDocument(t *testing.T) {
	doc := schema.NewDocument("mixed")
	doc.Nodes = []domain.NodeSpec{{ID: "on", Kind: domain.KindInput, Type: "constant", Config: map[string]any{"value": true}}}
	doc.Rules = []domain.RuleSpec{
		whiteSpace("ws", "or"),
		{ID: "off", Disabled: true,
			Conditions: []domain.BlockSpec{{Type: "constant", Config: map[string]any{"value": true}}},
			Actions:    []domain.BlockSpec{{Type: "key_press", Config: map[string]any{"key": "x"}}}},
	}

	out, err := rules.LowerDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, "mixed", out.Name)
	assert.Empty(t, out.Rules)
	assert.Len(t, doc.Rules, 2, "input is left untouched")

	ids := make([]string, 0, len(out.Nodes))
	for _, n := range out.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Contains(t, ids, "on")
	assert.Contains(t, ids, "ws.a1")
	assert.NotContains(t, ids, "off.a1")

	clash := schema.NewDocument("clash")
	clash.Nodes = []domain.NodeSpec{{ID: "ws.c1", Kind: domain.KindInput, Type: "constant", Config: map[string]any{"value": true}}}
	clash.Rules = []domain.RuleSpec{whiteSpace("ws", "and")}
	_, err = rules.LowerDocument(clash)
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
}

func TestLower_SingleCondition(t *testing.T) {
	ops, err := rules.Lower(domain.RuleSpec{
		ID:         "one",
		Conditions: []domain.BlockSpec{{Type: "constant", Config: map[string]any{"value": true}}},
		Actions:    []domain.BlockSpec{{Type: "wait", Config: map[string]any{"duration": "1ms"}}},
	})
	require.NoError(t, err)
	// input, output, link
	assert.Len(t, ops, 3)

	_, err = rules.Lower(domain.RuleSpec{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
