package graph_test

import (
	"testing"

	"github.com/aretw0/pixelpilot/internal/presentation/graph"
	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/schema"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func sampleDocument() *schema.Document {
	doc := schema.NewDocument("farm")
	doc.Nodes = []domain.NodeSpec{
		{ID: "hp-low", Kind: domain.KindInput, Name: "HP bar red", Type: "pixel_color"},
		{ID: "armed", Kind: domain.KindInput, Type: "state_equals"},
		{ID: "gate", Kind: domain.KindProcess, Type: "and"},
		{ID: "potion", Kind: domain.KindOutput, Type: "key_press"},
	}
	doc.Links = []domain.Link{
		{FromNode: "hp-low", FromPort: "Out", ToNode: "gate", ToPort: "In1"},
		{FromNode: "armed", FromPort: "Out", ToNode: "gate", ToPort: "In2"},
		{FromNode: "gate", FromPort: "Out", ToNode: "potion", ToPort: "Trig"},
	}
	doc.Rules = []domain.RuleSpec{{
		ID:         "loot.pickup",
		Logic:      "or",
		Conditions: []domain.BlockSpec{{Type: "key_down"}, {Type: "timer"}},
		Actions:    []domain.BlockSpec{{Type: "key_press"}},
	}}
	return doc
}

func TestGenerateMermaid_Golden(t *testing.T) {
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))

	out := graph.GenerateMermaid(sampleDocument(), &graph.GraphOverlay{
		Active:  []string{"hp-low", "gate", "gate"},
		Faulted: []string{"armed"},
	})
	g.Assert(t, "farm", []byte(out))
}

func TestGenerateMermaid_Shapes(t *testing.T) {
	out := graph.GenerateMermaid(sampleDocument(), nil)
	assert.Contains(t, out, `hp_low[/"HP bar red <br/> pixel_color"/]`)
	assert.Contains(t, out, `gate{{"gate <br/> and"}}`)
	assert.Contains(t, out, `potion[["potion <br/> key_press"]]`)
	assert.Contains(t, out, `gate -- "Out:Trig" --> potion`)
	assert.NotContains(t, out, "classDef")
}
