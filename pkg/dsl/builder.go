package dsl

import (
	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/graph"
	"github.com/aretw0/pixelpilot/pkg/schema"
)

// Builder manages the graph construction. Nodes, links and rules keep the
// order in which they were added.
type Builder struct {
	name  string
	nodes []*NodeBuilder
	index map[string]*NodeBuilder
	links []domain.Link
	rules []*RuleBuilder
}

// New creates a new graph builder.
func New(name string) *Builder {
	return &Builder{
		name:  name,
		index: make(map[string]*NodeBuilder),
	}
}

// Add creates a node of the given kind and type.
// If the node already exists, it returns the existing builder unchanged.
func (b *Builder) Add(id string, kind domain.NodeKind, typ string) *NodeBuilder {
	if nb, ok := b.index[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		spec:    domain.NodeSpec{ID: id, Kind: kind, Type: typ},
		builder: b,
	}
	b.nodes = append(b.nodes, nb)
	b.index[id] = nb
	return nb
}

func (b *Builder) Input(id, typ string) *NodeBuilder   { return b.Add(id, domain.KindInput, typ) }
func (b *Builder) Process(id, typ string) *NodeBuilder { return b.Add(id, domain.KindProcess, typ) }
func (b *Builder) Output(id, typ string) *NodeBuilder  { return b.Add(id, domain.KindOutput, typ) }

// PixelColor adds a pixel_color input matching rgb ("#rrggbb") at (x, y).
func (b *Builder) PixelColor(id string, x, y int, rgb string) *NodeBuilder {
	return b.Input(id, "pixel_color").Set("x", x).Set("y", y).Set("target_rgb", rgb)
}

// KeyPress adds a key_press output.
func (b *Builder) KeyPress(id, key string) *NodeBuilder {
	return b.Output(id, "key_press").Set("key", key)
}

// Link connects from's Out port to the named input port of to.
func (b *Builder) Link(from, to, port string) *Builder {
	b.links = append(b.links, domain.Link{FromNode: from, FromPort: domain.PortOut, ToNode: to, ToPort: port})
	return b
}

// Rule starts a condition/action rule. An existing id returns its builder.
func (b *Builder) Rule(id string) *RuleBuilder {
	for _, rb := range b.rules {
		if rb.spec.ID == id {
			return rb
		}
	}
	rb := &RuleBuilder{spec: domain.RuleSpec{ID: id, Logic: domain.LogicAnd}}
	b.rules = append(b.rules, rb)
	return rb
}

// Document returns the graph as a document.
func (b *Builder) Document() *schema.Document {
	doc := schema.NewDocument(b.name)
	for _, nb := range b.nodes {
		doc.Nodes = append(doc.Nodes, nb.spec.Clone())
	}
	doc.Links = append(doc.Links, b.links...)
	for _, rb := range b.rules {
		doc.Rules = append(doc.Rules, rb.Spec())
	}
	return doc
}

// Ops returns the graph mutations that build the nodes and links, for
// applying to a live graph. Rules are not included.
func (b *Builder) Ops() []graph.Op {
	ops := make([]graph.Op, 0, len(b.nodes)+len(b.links))
	for _, nb := range b.nodes {
		ops = append(ops, graph.AddNode(nb.spec.Clone()))
	}
	for _, l := range b.links {
		ops = append(ops, graph.AddLink(l))
	}
	return ops
}

// Build compiles the nodes and links into a graph.
func (b *Builder) Build(opts ...graph.Option) (*graph.Graph, error) {
	return graph.Build(b.Document(), opts...)
}
