package graph

import (
	"context"
	"fmt"

	"github.com/aretw0/pixelpilot/pkg/blocks"
	"github.com/aretw0/pixelpilot/pkg/domain"
)

// DefaultMaxPasses bounds relaxation when the caller does not choose a value.
const DefaultMaxPasses = 3

// Fault is a failure isolated to one node during a tick.
type Fault struct {
	NodeID string
	Err    error
}

// Result summarises one evaluation.
type Result struct {
	Passes    int
	Converged bool
	Values    map[string]bool // node id -> Out after relaxation
	Fired     []string        // output node ids whose action ran
	Faults    []Fault
}

// Evaluate runs one tick of the plan against env.
//
// Input conditions are evaluated once. Process nodes are then recomputed for
// at most maxPasses passes, stopping as soon as a pass changes nothing; each
// pass reads values already updated earlier in the same pass, and the first
// pass starts from the previous tick's outputs. An acyclic plan needs a single
// pass. Process nodes with no connected input read false without computing.
// Finally stateful logic commits and Output actions fire at most once.
func (p *Plan) Evaluate(ctx context.Context, env blocks.Env, maxPasses int) Result {
	if maxPasses < 1 {
		maxPasses = DefaultMaxPasses
	}
	res := Result{Values: make(map[string]bool, len(p.inputs)+len(p.process))}

	for _, n := range p.inputs {
		v, err := evalCondition(ctx, n, env)
		if err != nil {
			res.Faults = append(res.Faults, Fault{NodeID: n.ID(), Err: err})
			v = false
		}
		res.Values[n.ID()] = v
	}

	for _, n := range p.process {
		res.Values[n.ID()] = n.Value()
	}
	limit := maxPasses
	if !p.cyclic {
		limit = 1
	}
	failed := make(map[string]bool)
	for pass := 1; pass <= limit; pass++ {
		res.Passes = pass
		changed := false
		for _, n := range p.process {
			if p.unwired[n.ID()] {
				if res.Values[n.ID()] {
					changed = true
					res.Values[n.ID()] = false
				}
				continue
			}
			v, err := computeLogic(n, p.gather(n, res.Values), env)
			if err != nil {
				if !failed[n.ID()] {
					res.Faults = append(res.Faults, Fault{NodeID: n.ID(), Err: err})
					failed[n.ID()] = true
				}
				v = false
			}
			if v != res.Values[n.ID()] {
				changed = true
				res.Values[n.ID()] = v
			}
		}
		if !changed || !p.cyclic {
			res.Converged = true
			break
		}
	}

	for _, n := range p.process {
		if err := commitLogic(n, p.gather(n, res.Values), env); err != nil && !failed[n.ID()] {
			res.Faults = append(res.Faults, Fault{NodeID: n.ID(), Err: err})
			failed[n.ID()] = true
		}
	}
	for _, n := range p.inputs {
		n.out.Store(res.Values[n.ID()])
	}
	for _, n := range p.process {
		n.out.Store(res.Values[n.ID()])
	}

	for _, n := range p.outputs {
		trig := res.Values[p.sources[domain.PortRef{Node: n.ID(), Port: domain.PortTrig, Direction: domain.PortInput}]]
		fire := trig
		if n.rising {
			fire = trig && !n.lastTrig.Load()
		}
		n.lastTrig.Store(trig)
		if !fire {
			continue
		}
		if err := execAction(ctx, n, env); err != nil {
			res.Faults = append(res.Faults, Fault{NodeID: n.ID(), Err: err})
			continue
		}
		res.Fired = append(res.Fired, n.ID())
	}
	return res
}

// gather reads n's inputs from values. Unconnected ports read false.
func (p *Plan) gather(n *Node, values map[string]bool) blocks.Inputs {
	in := make(blocks.Inputs, len(n.inputs))
	for _, port := range n.inputs {
		src, ok := p.sources[domain.PortRef{Node: n.ID(), Port: port, Direction: domain.PortInput}]
		in[port] = ok && values[src]
	}
	return in
}

func evalCondition(ctx context.Context, n *Node, env blocks.Env) (ok bool, err error) {
	defer recoverFault(n.ID(), &err)
	ok, err = n.cond.Evaluate(ctx, env)
	if err != nil {
		return false, classify(n.ID(), err)
	}
	if r, resettable := n.cond.(blocks.Resetter); ok && resettable {
		if err := r.Reset(ctx, env); err != nil {
			return ok, classify(n.ID(), err)
		}
	}
	return ok, nil
}

func computeLogic(n *Node, in blocks.Inputs, env blocks.Env) (v bool, err error) {
	defer recoverFault(n.ID(), &err)
	return n.logic.Compute(in, env.Now), nil
}

func commitLogic(n *Node, in blocks.Inputs, env blocks.Env) (err error) {
	defer recoverFault(n.ID(), &err)
	n.logic.Commit(in, env.Now)
	return nil
}

func execAction(ctx context.Context, n *Node, env blocks.Env) (err error) {
	defer recoverFault(n.ID(), &err)
	if err := n.action.Execute(ctx, env); err != nil {
		return classify(n.ID(), err)
	}
	return nil
}

// classify keeps provider errors as they are and wraps everything else as an
// EvaluationFault.
func classify(nodeID string, err error) error {
	if domain.IsProviderError(err) || domain.IsEvaluationFault(err) {
		return err
	}
	return &domain.EvaluationFault{NodeID: nodeID, Cause: err}
}

func recoverFault(nodeID string, err *error) {
	if r := recover(); r != nil {
		*err = &domain.EvaluationFault{NodeID: nodeID, Cause: fmt.Errorf("panic: %v", r)}
	}
}
