// Package rules implements legacy condition/action rules. Rules run beside the
// block graph: each tick the engine checks every rule, in insertion order,
// before the graph is evaluated.
package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/pixelpilot/pkg/blocks"
	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/google/uuid"
)

// Factory builds conditions and actions by type. *registry.Registry implements it.
type Factory interface {
	NewCondition(typ string, cfg map[string]any) (blocks.Condition, error)
	NewAction(typ string, cfg map[string]any) (blocks.Action, error)
}

// Requirement gates a rule on a shared-state value.
type Requirement struct {
	Key   string
	Value domain.Value
}

// Rule fires its actions when its conditions hold.
type Rule struct {
	ID         string
	Name       string
	Logic      string
	Conditions []blocks.Condition
	Actions    []blocks.Action
	Requires   *Requirement

	spec domain.RuleSpec
}

// NewRule builds the basic single condition, single action form. Such a rule
// has no declarative form and is left out of saved documents.
func NewRule(id string, cond blocks.Condition, act blocks.Action) *Rule {
	return &Rule{
		ID:         id,
		Logic:      domain.LogicAnd,
		Conditions: []blocks.Condition{cond},
		Actions:    []blocks.Action{act},
		spec:       domain.RuleSpec{ID: id, Logic: domain.LogicAnd},
	}
}

// FromSpec builds a rule from its declarative form. An empty id is generated.
func FromSpec(spec domain.RuleSpec, f Factory) (*Rule, error) {
	if spec.ID == "" {
		spec.ID = uuid.Must(uuid.NewV7()).String()
	}
	fail := func(err error) (*Rule, error) {
		return nil, &domain.ConfigurationError{Op: "add_rule", Subject: spec.ID, Err: err}
	}

	logic := strings.ToLower(spec.Logic)
	switch logic {
	case "":
		logic = domain.LogicAnd
	case domain.LogicAnd, domain.LogicOr:
	default:
		return fail(fmt.Errorf("%w: logic must be and|or, got %q", domain.ErrInvalidConfig, spec.Logic))
	}
	spec.Logic = logic
	if len(spec.Conditions) == 0 || len(spec.Actions) == 0 {
		return fail(fmt.Errorf("%w: a rule needs at least one condition and one action", domain.ErrInvalidConfig))
	}

	r := &Rule{ID: spec.ID, Name: spec.Name, Logic: logic, spec: spec}
	for i, c := range spec.Conditions {
		cond, err := f.NewCondition(c.Type, c.Config)
		if err != nil {
			return fail(fmt.Errorf("conditions[%d]: %w", i, err))
		}
		r.Conditions = append(r.Conditions, cond)
	}
	for i, a := range spec.Actions {
		act, err := f.NewAction(a.Type, a.Config)
		if err != nil {
			return fail(fmt.Errorf("actions[%d]: %w", i, err))
		}
		r.Actions = append(r.Actions, act)
	}
	if spec.Requires != nil {
		v, err := domain.FromAny(spec.Requires.Value)
		if err != nil {
			return fail(fmt.Errorf("requires: %w", err))
		}
		if strings.TrimSpace(spec.Requires.Key) == "" {
			return fail(fmt.Errorf("requires: %w", domain.ErrInvalidKey))
		}
		r.Requires = &Requirement{Key: spec.Requires.Key, Value: v}
	}
	return r, nil
}

// Spec returns the declarative form the rule was built from.
func (r *Rule) Spec() domain.RuleSpec { return r.spec }

// Declarative reports whether Spec can rebuild the rule through FromSpec.
func (r *Rule) Declarative() bool {
	return len(r.spec.Conditions) > 0 && len(r.spec.Actions) > 0
}

// Check evaluates the rule and, if it matches, runs its actions in order and
// resets any timer conditions. The first failing condition or action aborts
// the rule for this tick.
func (r *Rule) Check(ctx context.Context, env blocks.Env) (fired bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			fired = false
			err = &domain.EvaluationFault{NodeID: r.ID, Cause: fmt.Errorf("panic: %v", p)}
		}
	}()

	if r.Requires != nil {
		v, ok, err := env.State.Get(ctx, r.Requires.Key)
		if err != nil {
			return false, err
		}
		if !ok || !v.Equal(r.Requires.Value) {
			return false, nil
		}
	}

	match, err := r.match(ctx, env)
	if err != nil || !match {
		return false, err
	}

	for i, a := range r.Actions {
		if err := a.Execute(ctx, env); err != nil {
			return true, fmt.Errorf("action %d: %w", i, err)
		}
	}
	for _, c := range r.Conditions {
		if rs, ok := c.(blocks.Resetter); ok {
			if err := rs.Reset(ctx, env); err != nil {
				return true, err
			}
		}
	}
	return true, nil
}

func (r *Rule) match(ctx context.Context, env blocks.Env) (bool, error) {
	for i, c := range r.Conditions {
		ok, err := c.Evaluate(ctx, env)
		if err != nil {
			return false, fmt.Errorf("condition %d: %w", i, err)
		}
		if r.Logic == domain.LogicOr && ok {
			return true, nil
		}
		if r.Logic != domain.LogicOr && !ok {
			return false, nil
		}
	}
	return r.Logic != domain.LogicOr, nil
}
