package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Field is the wire form of one schema entry.
type Field struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Required bool   `json:"required" yaml:"required"`
}

// Fields lists the schema entries sorted by name.
func (s Schema) Fields() []Field {
	out := make([]Field, 0, len(s))
	for _, key := range s.Keys() {
		typ := s[key]
		out = append(out, Field{
			Name:     key,
			Type:     strings.TrimSuffix(typ.Name(), "?"),
			Required: !isOptional(typ),
		})
	}
	return out
}

// MarshalJSON serializes the schema as a sorted list of fields.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	for key, typ := range s {
		if typ == nil {
			return nil, fmt.Errorf("field %s: type is nil", key)
		}
	}
	return json.Marshal(s.Fields())
}

// UnmarshalJSON accepts the field list produced by MarshalJSON.
func (s *Schema) UnmarshalJSON(data []byte) error {
	if s == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}
	if string(data) == "null" {
		*s = nil
		return nil
	}

	var fields []Field
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	parsed := make(Schema, len(fields))
	for _, f := range fields {
		typ, err := ParseType(f.Type)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		if !f.Required {
			typ = Optional(typ)
		}
		parsed[f.Name] = typ
	}
	*s = parsed
	return nil
}
