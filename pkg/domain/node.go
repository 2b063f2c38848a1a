package domain

import (
	"fmt"
	"strings"
)

// NodeKind is the role a block plays in the graph.
type NodeKind string

const (
	// KindInput senses the environment. It has no input ports.
	KindInput NodeKind = "input"
	// KindProcess combines signals.
	KindProcess NodeKind = "process"
	// KindOutput performs side effects. It has no output ports.
	KindOutput NodeKind = "output"
)

// ParseNodeKind accepts the kind names case-insensitively.
func ParseNodeKind(s string) (NodeKind, error) {
	switch NodeKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindInput:
		return KindInput, nil
	case KindProcess:
		return KindProcess, nil
	case KindOutput:
		return KindOutput, nil
	}
	return "", fmt.Errorf("%w: unknown node kind %q", ErrInvalidConfig, s)
}

// Well-known port names.
const (
	PortOut   = "Out"
	PortTrig  = "Trig"
	PortReset = "Reset"
)

// InputPort returns the name of the i-th (1-based) gate input.
func InputPort(i int) string {
	return fmt.Sprintf("In%d", i)
}

// PortDirection distinguishes input from output ports.
type PortDirection uint8

const (
	PortInput PortDirection = iota + 1
	PortOutput
)

func (d PortDirection) String() string {
	if d == PortOutput {
		return "output"
	}
	return "input"
}

// PortRef addresses a port on a node.
type PortRef struct {
	Node      string
	Port      string
	Direction PortDirection
}

func (p PortRef) String() string {
	return p.Node + "." + p.Port
}

// NodeSpec is the declarative description of a block.
type NodeSpec struct {
	ID       string         `json:"id" yaml:"id"`
	Kind     NodeKind       `json:"kind" yaml:"kind"`
	Name     string         `json:"name,omitempty" yaml:"name,omitempty"`
	Type     string         `json:"type" yaml:"type"`
	Config   map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
	Position *Point         `json:"position,omitempty" yaml:"position,omitempty"`
}

// Clone returns a copy that shares no maps with n.
func (n NodeSpec) Clone() NodeSpec {
	out := n
	if n.Config != nil {
		out.Config = make(map[string]any, len(n.Config))
		for k, v := range n.Config {
			out.Config[k] = v
		}
	}
	if n.Position != nil {
		p := *n.Position
		out.Position = &p
	}
	return out
}
