package dsl

import "github.com/aretw0/pixelpilot/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	spec    domain.NodeSpec
	builder *Builder
}

// Name sets the display name.
func (n *NodeBuilder) Name(name string) *NodeBuilder {
	n.spec.Name = name
	return n
}

// Set adds a configuration value.
func (n *NodeBuilder) Set(key string, value any) *NodeBuilder {
	if n.spec.Config == nil {
		n.spec.Config = make(map[string]any)
	}
	n.spec.Config[key] = value
	return n
}

// Tolerance sets the color tolerance of pixel and region inputs.
func (n *NodeBuilder) Tolerance(t int) *NodeBuilder { return n.Set("tolerance", t) }

// Rising makes an output fire only on the rising edge of Trig.
func (n *NodeBuilder) Rising() *NodeBuilder { return n.Set("edge", "rising") }

// At records the editor position.
func (n *NodeBuilder) At(x, y int) *NodeBuilder {
	n.spec.Position = &domain.Point{X: x, Y: y}
	return n
}

// To links this node's Out port to port on target.
func (n *NodeBuilder) To(target, port string) *NodeBuilder {
	n.builder.Link(n.spec.ID, target, port)
	return n
}

// Spec returns a copy of the node being built.
func (n *NodeBuilder) Spec() domain.NodeSpec {
	return n.spec.Clone()
}

// RuleBuilder provides a fluent API for configuring a rule.
type RuleBuilder struct {
	spec domain.RuleSpec
}

// When adds a condition.
func (r *RuleBuilder) When(typ string, cfg map[string]any) *RuleBuilder {
	r.spec.Conditions = append(r.spec.Conditions, domain.BlockSpec{Type: typ, Config: cfg})
	return r
}

// Then adds an action. Actions run in the order they were added.
func (r *RuleBuilder) Then(typ string, cfg map[string]any) *RuleBuilder {
	r.spec.Actions = append(r.spec.Actions, domain.BlockSpec{Type: typ, Config: cfg})
	return r
}

// Any switches the rule to OR logic.
func (r *RuleBuilder) Any() *RuleBuilder {
	r.spec.Logic = domain.LogicOr
	return r
}

// Requires gates the rule on a shared-state value.
func (r *RuleBuilder) Requires(key string, value any) *RuleBuilder {
	r.spec.Requires = &domain.StateRequirement{Key: key, Value: value}
	return r
}

func (r *RuleBuilder) Disabled() *RuleBuilder {
	r.spec.Disabled = true
	return r
}

// Spec returns the rule being built.
func (r *RuleBuilder) Spec() domain.RuleSpec {
	out := r.spec
	out.Conditions = append([]domain.BlockSpec(nil), r.spec.Conditions...)
	out.Actions = append([]domain.BlockSpec(nil), r.spec.Actions...)
	return out
}
