package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/pixelpilot/pkg/domain"
	"gopkg.in/yaml.v3"
)

const (
	// DocumentType identifies graph files.
	DocumentType = "PixelPilot_Graph"
	// DocumentVersion is the version written by Encode.
	DocumentVersion = "1.0"
)

var (
	// ErrNotAGraph is returned for files without the PixelPilot header.
	ErrNotAGraph = errors.New("not a PixelPilot graph document")
	// ErrIncompatibleVersion is returned when the major version differs.
	ErrIncompatibleVersion = errors.New("incompatible document version")
)

// Format selects the document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the encoding from a file extension. Unknown extensions are JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Document is the persisted form of a block graph plus legacy rules.
type Document struct {
	Type    string            `json:"type" yaml:"type"`
	Version string            `json:"version" yaml:"version"`
	Name    string            `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes   []domain.NodeSpec `json:"nodes" yaml:"nodes"`
	Links   []domain.Link     `json:"links" yaml:"links"`
	Rules   []domain.RuleSpec `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// NewDocument returns an empty document with the current header.
func NewDocument(name string) *Document {
	return &Document{
		Type:    DocumentType,
		Version: DocumentVersion,
		Name:    name,
		Nodes:   []domain.NodeSpec{},
		Links:   []domain.Link{},
	}
}

// CompatibleVersion reports whether a file version shares the current major version.
func CompatibleVersion(version string) bool {
	major, _, _ := strings.Cut(version, ".")
	current, _, _ := strings.Cut(DocumentVersion, ".")
	return major != "" && major == current
}

// Encode writes the document in the given format.
func Encode(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode yaml document: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode json document: %w", err)
		}
		return append(data, '\n'), nil
	}
}

// Decode parses a document. JSON is detected by a leading '{'; anything else is
// parsed as YAML. The header is checked before returning.
func Decode(data []byte) (*Document, error) {
	var doc Document
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse json document: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse yaml document: %w", err)
		}
	}

	if doc.Type != DocumentType {
		return nil, fmt.Errorf("%w: type %q", ErrNotAGraph, doc.Type)
	}
	if !CompatibleVersion(doc.Version) {
		return nil, fmt.Errorf("%w: %q (supported %s)", ErrIncompatibleVersion, doc.Version, DocumentVersion)
	}
	return &doc, nil
}

// ReadFile loads and decodes a document from disk.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file %s: %w", path, err)
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Catalog resolves the parameter schema of a block type.
type Catalog interface {
	NodeParams(kind domain.NodeKind, typ string) (Schema, bool)
	ConditionParams(typ string) (Schema, bool)
	ActionParams(typ string) (Schema, bool)
}

// ValidateDocument checks a document for structural problems: node ids, kinds,
// known types and parameters, link endpoints, single-link inputs and rules.
// Port names are checked when the graph is built. All problems are returned
// together as an *AggregateError.
func ValidateDocument(doc *Document, catalog Catalog) error {
	var errs []error
	add := func(key, reason string, value any) {
		errs = append(errs, &ValidationError{Key: key, Reason: reason, Value: value})
	}

	ids := make(map[string]domain.NodeKind, len(doc.Nodes))
	for i, n := range doc.Nodes {
		key := fmt.Sprintf("nodes[%d]", i)
		if strings.TrimSpace(n.ID) == "" {
			add(key+".id", "required", nil)
		} else if _, dup := ids[n.ID]; dup {
			add(key+".id", "duplicate id", n.ID)
		}
		kind, err := domain.ParseNodeKind(string(n.Kind))
		if err != nil {
			add(key+".kind", err.Error(), string(n.Kind))
			continue
		}
		ids[n.ID] = kind
		if catalog == nil {
			continue
		}
		params, ok := catalog.NodeParams(kind, n.Type)
		if !ok {
			add(key+".type", fmt.Sprintf("unknown %s block", kind), n.Type)
			continue
		}
		errs = append(errs, Prefix(key+".config", Validate(params, n.Config))...)
	}

	occupied := make(map[string]bool, len(doc.Links))
	for i, l := range doc.Links {
		key := fmt.Sprintf("links[%d]", i)
		if kind, ok := ids[l.FromNode]; !ok {
			add(key+".from_node", "unknown node", l.FromNode)
		} else if kind == domain.KindOutput {
			add(key+".from_node", "output nodes have no output ports", l.FromNode)
		}
		if kind, ok := ids[l.ToNode]; !ok {
			add(key+".to_node", "unknown node", l.ToNode)
		} else if kind == domain.KindInput {
			add(key+".to_node", "input nodes have no input ports", l.ToNode)
		}
		target := l.Target().String()
		if occupied[target] {
			add(key+".to_port", "input port already connected", target)
		}
		occupied[target] = true
	}

	ruleIDs := make(map[string]bool, len(doc.Rules))
	for i, r := range doc.Rules {
		key := fmt.Sprintf("rules[%d]", i)
		if r.ID != "" && ruleIDs[r.ID] {
			add(key+".id", "duplicate id", r.ID)
		}
		ruleIDs[r.ID] = true
		switch strings.ToLower(r.Logic) {
		case "", domain.LogicAnd, domain.LogicOr:
		default:
			add(key+".logic", "expected and|or", r.Logic)
		}
		if len(r.Conditions) == 0 {
			add(key+".conditions", "at least one condition required", nil)
		}
		if len(r.Actions) == 0 {
			add(key+".actions", "at least one action required", nil)
		}
		if r.Requires != nil && strings.TrimSpace(r.Requires.Key) == "" {
			add(key+".requires.key", "required", nil)
		}
		if catalog == nil {
			continue
		}
		for j, c := range r.Conditions {
			ckey := fmt.Sprintf("%s.conditions[%d]", key, j)
			params, ok := catalog.ConditionParams(c.Type)
			if !ok {
				add(ckey+".type", "unknown condition", c.Type)
				continue
			}
			errs = append(errs, Prefix(ckey+".config", Validate(params, c.Config))...)
		}
		for j, a := range r.Actions {
			akey := fmt.Sprintf("%s.actions[%d]", key, j)
			params, ok := catalog.ActionParams(a.Type)
			if !ok {
				add(akey+".type", "unknown action", a.Type)
				continue
			}
			errs = append(errs, Prefix(akey+".config", Validate(params, a.Config))...)
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
