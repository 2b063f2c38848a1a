package domain

// BlockSpec names a condition or action by catalogue type plus its configuration.
type BlockSpec struct {
	Type   string         `json:"type" yaml:"type"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// StateRequirement gates a rule on a shared-state value.
type StateRequirement struct {
	Key   string `json:"key" yaml:"key"`
	Value any    `json:"value" yaml:"value"`
}

// Rule logic modes.
const (
	LogicAnd = "and"
	LogicOr  = "or"
)

// RuleSpec is the declarative form of a legacy condition/action rule.
type RuleSpec struct {
	ID         string            `json:"id" yaml:"id"`
	Name       string            `json:"name,omitempty" yaml:"name,omitempty"`
	Logic      string            `json:"logic,omitempty" yaml:"logic,omitempty"`
	Conditions []BlockSpec       `json:"conditions" yaml:"conditions"`
	Actions    []BlockSpec       `json:"actions" yaml:"actions"`
	Requires   *StateRequirement `json:"requires,omitempty" yaml:"requires,omitempty"`
	Disabled   bool              `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}
