package graph

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/aretw0/pixelpilot/pkg/blocks"
	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/registry"
)

// Firing modes for Output nodes.
const (
	EdgeLevel  = "level"
	EdgeRising = "rising"
)

// BlockFactory builds block behaviour from configuration. *registry.Registry
// implements it.
type BlockFactory interface {
	NewCondition(typ string, cfg map[string]any) (blocks.Condition, error)
	NewLogic(typ string, cfg map[string]any) (blocks.Logic, error)
	NewAction(typ string, cfg map[string]any) (blocks.Action, error)
}

// Node is a block instance. Its spec is immutable once added; the runtime
// fields are written only by the evaluating goroutine.
type Node struct {
	spec    domain.NodeSpec
	inputs  []string
	outputs []string

	cond   blocks.Condition
	logic  blocks.Logic
	action blocks.Action
	rising bool

	out      atomic.Bool // last computed value of Out
	lastTrig atomic.Bool // Output nodes: trigger level on the previous tick
}

func newNode(spec domain.NodeSpec, factory BlockFactory) (*Node, error) {
	kind, err := domain.ParseNodeKind(string(spec.Kind))
	if err != nil {
		return nil, err
	}
	spec.Kind = kind
	spec.Type = strings.ToLower(strings.TrimSpace(spec.Type))
	if spec.Type == "" {
		return nil, fmt.Errorf("%w: block type is required", domain.ErrInvalidConfig)
	}

	n := &Node{spec: spec}
	switch kind {
	case domain.KindInput:
		n.cond, err = factory.NewCondition(spec.Type, spec.Config)
		n.outputs = []string{domain.PortOut}
	case domain.KindProcess:
		n.logic, err = factory.NewLogic(spec.Type, spec.Config)
		if err == nil {
			n.inputs = append([]string(nil), n.logic.Ports()...)
		}
		n.outputs = []string{domain.PortOut}
	case domain.KindOutput:
		n.rising, err = edgeMode(spec.Config)
		if err == nil {
			n.action, err = factory.NewAction(spec.Type, spec.Config)
		}
		n.inputs = []string{domain.PortTrig}
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func edgeMode(cfg map[string]any) (bool, error) {
	raw, ok := cfg[registry.EdgeKey]
	if !ok {
		return false, nil
	}
	s, _ := raw.(string)
	switch strings.ToLower(s) {
	case EdgeLevel:
		return false, nil
	case EdgeRising:
		return true, nil
	}
	return false, fmt.Errorf("%w: edge must be %q or %q", domain.ErrInvalidConfig, EdgeLevel, EdgeRising)
}

func (n *Node) ID() string { return n.spec.ID }
func (n *Node) Kind() domain.NodeKind { return n.spec.Kind }
func (n *Node) Spec() domain.NodeSpec { return n.spec.Clone() }
func (n *Node) InputPorts() []string { return append([]string(nil), n.inputs...) }
func (n *Node) OutputPorts() []string { return append([]string(nil), n.outputs...) }
func (n *Node) Value() bool { return n.out.Load() }

func (n *Node) hasPort(name string, dir domain.PortDirection) bool {
	ports := n.inputs
	if dir == domain.PortOutput {
		ports = n.outputs
	}
	for _, p := range ports {
		if p == name {
			return true
		}
	}
	return false
}
