package graph

import "github.com/aretw0/pixelpilot/pkg/domain"

// Plan is an immutable evaluation snapshot. It shares node runtimes with the
// graph but never observes later structural mutations.
type Plan struct {
	version uint64
	inputs  []*Node
	process []*Node // topological order, cyclic remainder appended in insertion order
	outputs []*Node
	sources map[domain.PortRef]string // target input port -> source node id
	unwired map[string]bool           // process nodes with no incoming link
	cyclic  bool
}

// Version is the graph version the plan was built from.
func (p *Plan) Version() uint64 { return p.version }

// Cyclic reports whether the process section contains a cycle.
func (p *Plan) Cyclic() bool { return p.cyclic }

// Order returns the process node ids in evaluation order.
func (p *Plan) Order() []string {
	out := make([]string, len(p.process))
	for i, n := range p.process {
		out[i] = n.ID()
	}
	return out
}

// Snapshot returns the plan for the current structure, rebuilding it only
// after a structural mutation.
func (g *Graph) Snapshot() *Plan {
	g.mu.RLock()
	p := g.plan
	g.mu.RUnlock()
	if p != nil {
		return p
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.plan == nil {
		g.plan = g.buildPlan()
	}
	return g.plan
}

// buildPlan runs Kahn's algorithm over process nodes. Callers hold the write lock.
func (g *Graph) buildPlan() *Plan {
	p := &Plan{
		version: g.version,
		sources: make(map[domain.PortRef]string, len(g.links)),
		unwired: make(map[string]bool),
	}
	wired := make(map[string]bool, len(g.links))
	for target, l := range g.links {
		p.sources[target] = l.FromNode
		wired[l.ToNode] = true
	}

	indegree := make(map[string]int)
	var procOrder []string
	for _, id := range g.order {
		n := g.nodes[id]
		switch n.Kind() {
		case domain.KindInput:
			p.inputs = append(p.inputs, n)
		case domain.KindOutput:
			p.outputs = append(p.outputs, n)
		case domain.KindProcess:
			procOrder = append(procOrder, id)
			indegree[id] = 0
			if !wired[id] {
				p.unwired[id] = true
			}
		}
	}

	succ := make(map[string][]string)
	for _, target := range g.linkOrder {
		l := g.links[target]
		_, fromProc := indegree[l.FromNode]
		_, toProc := indegree[l.ToNode]
		if fromProc && toProc {
			succ[l.FromNode] = append(succ[l.FromNode], l.ToNode)
			indegree[l.ToNode]++
		}
	}

	// Ready nodes are released in insertion order so the result is stable.
	done := make(map[string]bool, len(procOrder))
	for {
		progressed := false
		for _, id := range procOrder {
			if done[id] || indegree[id] > 0 {
				continue
			}
			done[id] = true
			progressed = true
			p.process = append(p.process, g.nodes[id])
			for _, next := range succ[id] {
				indegree[next]--
			}
		}
		if !progressed {
			break
		}
	}

	for _, id := range procOrder {
		if !done[id] {
			p.cyclic = true
			p.process = append(p.process, g.nodes[id])
		}
	}
	return p
}
