package dsl_test

import (
	"context"
	"testing"

	"github.com/aretw0/pixelpilot"
	"github.com/aretw0/pixelpilot/pkg/adapters/memory"
	"github.com/aretw0/pixelpilot/pkg/adapters/stub"
	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/dsl"
	"github.com/aretw0/pixelpilot/pkg/registry"
	"github.com/aretw0/pixelpilot/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func farm() *dsl.Builder {
	b := dsl.New("farm")
	b.PixelColor("white", 10, 10, "#ffffff").Tolerance(5).Name("White pixel").To("gate", "In1")
	b.Input("armed", "state_equals").Set("key", "armed").To("gate", "In2")
	b.Process("gate", "and").At(200, 40)
	b.KeyPress("space", "space").Rising()
	b.Link("gate", "space", "Trig")
	b.Rule("count").
		When("constant", map[string]any{"value": true}).
		Then("increment", map[string]any{"key": "ticks"})
	return b
}

func TestBuilder_Document(t *testing.T) {
	doc := farm().Document()

	assert.Equal(t, "farm", doc.Name)
	assert.Equal(t, schema.DocumentType, doc.Type)
	require.Len(t, doc.Nodes, 4)
	assert.Equal(t, []string{"white", "armed", "gate", "space"},
		[]string{doc.Nodes[0].ID, doc.Nodes[1].ID, doc.Nodes[2].ID, doc.Nodes[3].ID})
	assert.Equal(t, "White pixel", doc.Nodes[0].Name)
	assert.Equal(t, 5, doc.Nodes[0].Config["tolerance"])
	assert.Equal(t, &domain.Point{X: 200, Y: 40}, doc.Nodes[2].Position)
	assert.Equal(t, "rising", doc.Nodes[3].Config["edge"])
	assert.Equal(t, []domain.Link{
		{FromNode: "white", FromPort: "Out", ToNode: "gate", ToPort: "In1"},
		{FromNode: "armed", FromPort: "Out", ToNode: "gate", ToPort: "In2"},
		{FromNode: "gate", FromPort: "Out", ToNode: "space", ToPort: "Trig"},
	}, doc.Links)
	require.Len(t, doc.Rules, 1)
	assert.Equal(t, domain.LogicAnd, doc.Rules[0].Logic)

	require.NoError(t, schema.ValidateDocument(doc, registry.Default()))
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := dsl.New("x")
	first := b.Input("a", "key_down").Set("key", "q")
	again := b.Input("a", "pixel_color")
	assert.Same(t, first, again)
	assert.Equal(t, "key_down", again.Spec().Type)

	r := b.Rule("r").Any().Requires("mode", "combat")
	assert.Same(t, r, b.Rule("r"))
	assert.Equal(t, domain.LogicOr, r.Spec().Logic)
	assert.Equal(t, "mode", r.Spec().Requires.Key)
}

func TestBuilder_RunsOnEngine(t *testing.T) {
	vision := stub.NewVision(domain.White)
	input := stub.NewInput()
	state := memory.NewStore()
	eng, err := pixelpilot.New(vision, input, state)
	require.NoError(t, err)
	require.NoError(t, eng.Load(farm().Document()))

	ctx := context.Background()
	_, err = eng.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, input.Presses("space"), "not armed yet")

	require.NoError(t, state.Set(ctx, "armed", domain.Bool(true)))
	for i := 0; i < 3; i++ {
		_, err = eng.Step(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, input.Presses("space"), "rising edge fires once")

	n, _, err := state.Get(ctx, "ticks")
	require.NoError(t, err)
	assert.Equal(t, domain.Int(4), n)
}

func TestBuilder_OpsAndBuild(t *testing.T) {
	b := farm()
	assert.Len(t, b.Ops(), 7)

	g, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 4, g.Len())

	b.Link("white", "gate", "In1")
	_, err = b.Build()
	assert.ErrorIs(t, err, domain.ErrPortOccupied)
}
