package graph_test

import (
	"testing"

	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/graph"
	"github.com/aretw0/pixelpilot/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_RoundTrip(t *testing.T) {
	doc := schema.NewDocument("demo")
	doc.Nodes = []domain.NodeSpec{
		constant("a", true),
		gate("n", "not"),
		press("p", "space"),
	}
	doc.Links = []domain.Link{
		link("a", "Out", "n", "In1"),
		link("n", "Out", "p", "Trig"),
	}

	g, err := graph.Build(doc)
	require.NoError(t, err)

	back := g.Document("demo")
	assert.Equal(t, doc.Nodes, back.Nodes)
	assert.Equal(t, doc.Links, back.Links)
}

func TestBuild_ReportsPosition(t *testing.T) {
	doc := schema.NewDocument("bad")
	doc.Nodes = []domain.NodeSpec{constant("a", true), gate("g", "and")}
	doc.Links = []domain.Link{
		link("a", "Out", "g", "In1"),
		link("a", "Out", "g", "In1"),
	}
	_, err := graph.Build(doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPortOccupied)
	assert.Contains(t, err.Error(), "links[1]")
}
