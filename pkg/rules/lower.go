package rules

import (
	"fmt"
	"strings"

	"github.com/aretw0/pixelpilot/pkg/blocks"
	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/graph"
	"github.com/aretw0/pixelpilot/pkg/schema"
)

// Lower translates a rule spec into graph mutations: one Input node per
// condition (plus a state_equals node for the requirement), an and/or gate
// when more than one signal feeds the actions, and one Output node per action.
// Node ids are prefixed with the rule id.
//
// Timer conditions become timer nodes, which reset whenever they fire rather
// than only when the whole rule fires.
func Lower(spec domain.RuleSpec) ([]graph.Op, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("%w: rule id is required to lower a rule", domain.ErrInvalidConfig)
	}
	logic := strings.ToLower(spec.Logic)
	if logic == "" {
		logic = domain.LogicAnd
	}

	var ops []graph.Op
	var signals []string
	for i, c := range spec.Conditions {
		id := fmt.Sprintf("%s.c%d", spec.ID, i+1)
		ops = append(ops, graph.AddNode(domain.NodeSpec{ID: id, Kind: domain.KindInput, Type: c.Type, Config: c.Config}))
		signals = append(signals, id)
	}

	switch {
	case len(signals) == 0:
		return nil, fmt.Errorf("%w: rule %s has no conditions", domain.ErrInvalidConfig, spec.ID)
	case len(signals) > blocks.MaxGateInputs:
		return nil, fmt.Errorf("%w: rule %s has more than %d conditions", domain.ErrInvalidConfig, spec.ID, blocks.MaxGateInputs)
	}

	driver := signals[0]
	if len(signals) > 1 {
		driver = spec.ID + ".logic"
		ops = append(ops, graph.AddNode(domain.NodeSpec{
			ID: driver, Kind: domain.KindProcess, Type: logic,
			Config: map[string]any{"inputs": len(signals)},
		}))
		for i, s := range signals {
			ops = append(ops, graph.AddLink(domain.Link{FromNode: s, FromPort: domain.PortOut, ToNode: driver, ToPort: domain.InputPort(i + 1)}))
		}
	}

	if spec.Requires != nil {
		reqID := spec.ID + ".requires"
		andID := spec.ID + ".gate"
		ops = append(ops,
			graph.AddNode(domain.NodeSpec{ID: reqID, Kind: domain.KindInput, Type: "state_equals",
				Config: map[string]any{"key": spec.Requires.Key, "value": spec.Requires.Value}}),
			graph.AddNode(domain.NodeSpec{ID: andID, Kind: domain.KindProcess, Type: blocks.OpAnd}),
			graph.AddLink(domain.Link{FromNode: driver, FromPort: domain.PortOut, ToNode: andID, ToPort: domain.InputPort(1)}),
			graph.AddLink(domain.Link{FromNode: reqID, FromPort: domain.PortOut, ToNode: andID, ToPort: domain.InputPort(2)}),
		)
		driver = andID
	}

	for i, a := range spec.Actions {
		id := fmt.Sprintf("%s.a%d", spec.ID, i+1)
		ops = append(ops,
			graph.AddNode(domain.NodeSpec{ID: id, Kind: domain.KindOutput, Type: a.Type, Config: a.Config}),
			graph.AddLink(domain.Link{FromNode: driver, FromPort: domain.PortOut, ToNode: id, ToPort: domain.PortTrig}),
		)
	}
	return ops, nil
}

// LowerDocument returns a copy of doc whose rules have been folded into its
// graph. Disabled rules are dropped. The result has no rules section.
func LowerDocument(doc *schema.Document, opts ...graph.Option) (*schema.Document, error) {
	g, err := graph.Build(doc, opts...)
	if err != nil {
		return nil, err
	}
	for i, spec := range doc.Rules {
		if spec.Disabled {
			continue
		}
		ops, err := Lower(spec)
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		if err := g.ApplyAll(ops); err != nil {
			return nil, fmt.Errorf("rules[%d] %s: %w", i, spec.ID, err)
		}
	}
	return g.Document(doc.Name), nil
}
