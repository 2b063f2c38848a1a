package graph

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/registry"
	"github.com/google/uuid"
)

// Graph is the mutable node/link arena. Safe for concurrent use.
type Graph struct {
	mu      sync.RWMutex
	factory BlockFactory

	nodes map[string]*Node
	order []string // node ids in insertion order

	links     map[domain.PortRef]domain.Link // keyed by target input port
	linkOrder []domain.PortRef

	version uint64
	plan    *Plan
}

// Option configures a Graph.
type Option func(*Graph)

// WithFactory sets the block factory. Defaults to registry.Default().
func WithFactory(f BlockFactory) Option {
	return func(g *Graph) {
		g.factory = f
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		nodes: make(map[string]*Node),
		links: make(map[domain.PortRef]domain.Link),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.factory == nil {
		g.factory = registry.Default()
	}
	return g
}

// Version increases with every successful structural mutation.
func (g *Graph) Version() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.version
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns the node specs in insertion order.
func (g *Graph) Nodes() []domain.NodeSpec {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodeSpecs()
}

func (g *Graph) nodeSpecs() []domain.NodeSpec {
	out := make([]domain.NodeSpec, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id].Spec())
	}
	return out
}

// Links returns the links in insertion order.
func (g *Graph) Links() []domain.Link {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.linkList()
}

func (g *Graph) linkList() []domain.Link {
	out := make([]domain.Link, 0, len(g.linkOrder))
	for _, target := range g.linkOrder {
		out = append(out, g.links[target])
	}
	return out
}

// Values returns the last computed output of every node that has one.
func (g *Graph) Values() map[string]bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]bool, len(g.nodes))
	for id, n := range g.nodes {
		if len(n.outputs) > 0 {
			out[id] = n.Value()
		}
	}
	return out
}

// AddNode validates spec, builds its block and inserts it. An empty id is
// replaced by a generated one, which is returned.
func (g *Graph) AddNode(spec domain.NodeSpec) (string, error) {
	spec = spec.Clone()
	spec.ID = strings.TrimSpace(spec.ID)
	if spec.ID == "" {
		spec.ID = uuid.Must(uuid.NewV7()).String()
	}

	// Block construction may be slow; do it outside the lock.
	n, err := newNode(spec, g.factory)
	if err != nil {
		return "", &domain.ConfigurationError{Op: string(OpAddNode), Subject: spec.ID, Err: err}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.nodes[spec.ID]; exists {
		return "", &domain.ConfigurationError{Op: string(OpAddNode), Subject: spec.ID, Err: domain.ErrDuplicateID}
	}
	g.nodes[spec.ID] = n
	g.order = append(g.order, spec.ID)
	g.touch()
	return spec.ID, nil
}

// RemoveNode deletes a node together with every incident link.
func (g *Graph) RemoveNode(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.nodes[id]; !ok {
		return &domain.ConfigurationError{Op: string(OpRemoveNode), Subject: id, Err: domain.ErrUnknownNode}
	}

	kept := g.linkOrder[:0]
	for _, target := range g.linkOrder {
		l := g.links[target]
		if l.FromNode == id || l.ToNode == id {
			delete(g.links, target)
			continue
		}
		kept = append(kept, target)
	}
	g.linkOrder = kept

	delete(g.nodes, id)
	for i, nid := range g.order {
		if nid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	g.touch()
	return nil
}

// AddLink connects an output port to a free input port.
func (g *Graph) AddLink(l domain.Link) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	fail := func(err error) error {
		return &domain.ConfigurationError{Op: string(OpAddLink), Subject: l.String(), Err: err}
	}

	from, ok := g.nodes[l.FromNode]
	if !ok {
		return fail(fmt.Errorf("%w: %s", domain.ErrUnknownNode, l.FromNode))
	}
	to, ok := g.nodes[l.ToNode]
	if !ok {
		return fail(fmt.Errorf("%w: %s", domain.ErrUnknownNode, l.ToNode))
	}
	if !from.hasPort(l.FromPort, domain.PortOutput) {
		return fail(fmt.Errorf("%w: %s has no output %q", domain.ErrUnknownPort, l.FromNode, l.FromPort))
	}
	if !to.hasPort(l.ToPort, domain.PortInput) {
		return fail(fmt.Errorf("%w: %s has no input %q", domain.ErrUnknownPort, l.ToNode, l.ToPort))
	}
	target := l.Target()
	if existing, taken := g.links[target]; taken {
		return fail(fmt.Errorf("%w: %s is fed by %s.%s", domain.ErrPortOccupied, target, existing.FromNode, existing.FromPort))
	}

	g.links[target] = l
	g.linkOrder = append(g.linkOrder, target)
	g.touch()
	return nil
}

// RemoveLink deletes the link feeding l's target port. When l names a source,
// it must match the stored link.
func (g *Graph) RemoveLink(l domain.Link) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	target := l.Target()
	existing, ok := g.links[target]
	if !ok || (l.FromNode != "" && (existing.FromNode != l.FromNode || existing.FromPort != l.FromPort)) {
		return &domain.ConfigurationError{Op: string(OpRemoveLink), Subject: l.String(), Err: domain.ErrUnknownLink}
	}
	delete(g.links, target)
	for i, t := range g.linkOrder {
		if t == target {
			g.linkOrder = append(g.linkOrder[:i], g.linkOrder[i+1:]...)
			break
		}
	}
	g.touch()
	return nil
}

// touch invalidates the cached plan. Callers hold the write lock.
func (g *Graph) touch() {
	g.version++
	g.plan = nil
}
