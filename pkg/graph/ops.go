package graph

import (
	"fmt"

	"github.com/aretw0/pixelpilot/pkg/domain"
)

// OpKind names a graph mutation.
type OpKind string

const (
	OpAddNode    OpKind = "add_node"
	OpRemoveNode OpKind = "remove_node"
	OpAddLink    OpKind = "add_link"
	OpRemoveLink OpKind = "remove_link"
)

// Op is a serialisable graph mutation.
type Op struct {
	Kind   OpKind          `json:"op"`
	Node   domain.NodeSpec `json:"node,omitempty"`
	NodeID string          `json:"node_id,omitempty"`
	Link   domain.Link     `json:"link,omitempty"`
}

func AddNode(spec domain.NodeSpec) Op { return Op{Kind: OpAddNode, Node: spec} }
func RemoveNode(id string) Op { return Op{Kind: OpRemoveNode, NodeID: id} }
func AddLink(l domain.Link) Op { return Op{Kind: OpAddLink, Link: l} }
func RemoveLink(l domain.Link) Op { return Op{Kind: OpRemoveLink, Link: l} }

// Apply performs op. For add_node the (possibly generated) node id is returned.
func (g *Graph) Apply(op Op) (string, error) {
	switch op.Kind {
	case OpAddNode:
		return g.AddNode(op.Node)
	case OpRemoveNode:
		return op.NodeID, g.RemoveNode(op.NodeID)
	case OpAddLink:
		return "", g.AddLink(op.Link)
	case OpRemoveLink:
		return "", g.RemoveLink(op.Link)
	}
	return "", &domain.ConfigurationError{Op: string(op.Kind), Err: fmt.Errorf("%w: unknown operation", domain.ErrInvalidConfig)}
}

// ApplyAll applies ops in order and stops at the first failure. Ops applied
// before the failure are kept.
func (g *Graph) ApplyAll(ops []Op) error {
	for i, op := range ops {
		if _, err := g.Apply(op); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
	}
	return nil
}
