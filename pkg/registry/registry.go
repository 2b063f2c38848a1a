// Package registry maps block type names to their constructors and parameter
// schemas. It is the catalogue consulted when graph nodes and rules are built
// from configuration.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/pixelpilot/pkg/blocks"
	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/schema"
)

// ConditionType describes a condition block.
type ConditionType struct {
	Description string
	Params      schema.Schema
	New         func(cfg map[string]any) (blocks.Condition, error)
}

// LogicType describes a logic block.
type LogicType struct {
	Description string
	Params      schema.Schema
	New         func(cfg map[string]any) (blocks.Logic, error)
}

// ActionType describes an action block.
type ActionType struct {
	Description string
	Params      schema.Schema
	New         func(cfg map[string]any) (blocks.Action, error)
}

// Info is the public description of a registered block type.
type Info struct {
	Kind        domain.NodeKind `json:"kind"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Params      schema.Schema   `json:"params"`
}

// Registry manages the available block types.
type Registry struct {
	mu         sync.RWMutex
	conditions map[string]ConditionType
	logic      map[string]LogicType
	actions    map[string]ActionType
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conditions: make(map[string]ConditionType),
		logic:      make(map[string]LogicType),
		actions:    make(map[string]ActionType),
	}
}

func normalize(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// RegisterCondition adds a condition type. An existing type with the same name is overwritten.
func (r *Registry) RegisterCondition(name string, t ConditionType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conditions[normalize(name)] = t
}

// RegisterLogic adds a logic type. An existing type with the same name is overwritten.
func (r *Registry) RegisterLogic(name string, t LogicType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logic[normalize(name)] = t
}

// RegisterAction adds an action type. An existing type with the same name is overwritten.
func (r *Registry) RegisterAction(name string, t ActionType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[normalize(name)] = t
}

// NewCondition validates cfg and builds a condition.
func (r *Registry) NewCondition(name string, cfg map[string]any) (blocks.Condition, error) {
	r.mu.RLock()
	t, ok := r.conditions[normalize(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown condition type %q", domain.ErrInvalidConfig, name)
	}
	if err := check(t.Params, cfg); err != nil {
		return nil, err
	}
	return t.New(cfg)
}

// NewLogic validates cfg and builds a logic block.
func (r *Registry) NewLogic(name string, cfg map[string]any) (blocks.Logic, error) {
	r.mu.RLock()
	t, ok := r.logic[normalize(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown logic type %q", domain.ErrInvalidConfig, name)
	}
	if err := check(t.Params, cfg); err != nil {
		return nil, err
	}
	return t.New(cfg)
}

// NewAction validates cfg and builds an action.
func (r *Registry) NewAction(name string, cfg map[string]any) (blocks.Action, error) {
	r.mu.RLock()
	t, ok := r.actions[normalize(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown action type %q", domain.ErrInvalidConfig, name)
	}
	if err := check(t.Params, withoutEdge(cfg)); err != nil {
		return nil, err
	}
	return t.New(withoutEdge(cfg))
}

// EdgeKey is the output-node option selecting level or rising-edge firing.
const EdgeKey = "edge"

// withoutEdge strips the output-node option that is handled by the graph.
func withoutEdge(cfg map[string]any) map[string]any {
	if _, ok := cfg[EdgeKey]; !ok {
		return cfg
	}
	out := make(map[string]any, len(cfg)-1)
	for k, v := range cfg {
		if k != EdgeKey {
			out[k] = v
		}
	}
	return out
}

func check(params schema.Schema, cfg map[string]any) error {
	if params == nil {
		return nil
	}
	if err := schema.Validate(params, cfg); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

// NodeParams implements schema.Catalog. Output nodes additionally accept "edge".
func (r *Registry) NodeParams(kind domain.NodeKind, typ string) (schema.Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch kind {
	case domain.KindInput:
		t, ok := r.conditions[normalize(typ)]
		return t.Params, ok
	case domain.KindProcess:
		t, ok := r.logic[normalize(typ)]
		return t.Params, ok
	case domain.KindOutput:
		t, ok := r.actions[normalize(typ)]
		if !ok {
			return nil, false
		}
		params := make(schema.Schema, len(t.Params)+1)
		for k, v := range t.Params {
			params[k] = v
		}
		params[EdgeKey] = schema.Optional(schema.String())
		return params, true
	}
	return nil, false
}

// ConditionParams implements schema.Catalog.
func (r *Registry) ConditionParams(typ string) (schema.Schema, bool) {
	return r.NodeParams(domain.KindInput, typ)
}

// ActionParams implements schema.Catalog.
func (r *Registry) ActionParams(typ string) (schema.Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.actions[normalize(typ)]
	return t.Params, ok
}

// List describes every registered type, ordered by kind then name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.conditions)+len(r.logic)+len(r.actions))
	for name, t := range r.conditions {
		out = append(out, Info{Kind: domain.KindInput, Type: name, Description: t.Description, Params: t.Params})
	}
	for name, t := range r.logic {
		out = append(out, Info{Kind: domain.KindProcess, Type: name, Description: t.Description, Params: t.Params})
	}
	for name, t := range r.actions {
		out = append(out, Info{Kind: domain.KindOutput, Type: name, Description: t.Description, Params: t.Params})
	}
	rank := map[domain.NodeKind]int{domain.KindInput: 0, domain.KindProcess: 1, domain.KindOutput: 2}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return rank[out[i].Kind] < rank[out[j].Kind]
		}
		return out[i].Type < out[j].Type
	})
	return out
}
