package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ValueKind identifies the variant held by a Value.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueBool
	ValueInt
	ValueFloat
	ValueString
)

func (k ValueKind) String() string {
	switch k {
	case ValueBool:
		return "bool"
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	case ValueString:
		return "string"
	default:
		return "none"
	}
}

// Value is a shared-state entry. The zero Value is "none" and is never stored.
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	s    string
}

func Bool(b bool) Value { return Value{kind: ValueBool, b: b} }
func Int(i int64) Value { return Value{kind: ValueInt, i: i} }
func Float(f float64) Value { return Value{kind: ValueFloat, f: f} }
func String(s string) Value { return Value{kind: ValueString, s: s} }
func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsZero() bool { return v.kind == ValueNone }

// AsBool returns the boolean payload and whether the value is a bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == ValueBool }

// AsInt returns the integer payload and whether the value is an int.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == ValueInt }

// AsFloat returns the value as float64 for both numeric kinds.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case ValueFloat:
		return v.f, true
	case ValueInt:
		return float64(v.i), true
	}
	return 0, false
}

// AsString returns the string payload and whether the value is a string.
func (v Value) AsString() (string, bool) { return v.s, v.kind == ValueString }

// Truthy reports the boolean interpretation used by conditions:
// false, 0, 0.0, "" and none are false.
func (v Value) Truthy() bool {
	switch v.kind {
	case ValueBool:
		return v.b
	case ValueInt:
		return v.i != 0
	case ValueFloat:
		return v.f != 0
	case ValueString:
		return v.s != ""
	}
	return false
}

// Equal compares two values. Ints and floats compare numerically.
func (v Value) Equal(o Value) bool {
	if v.kind == o.kind {
		switch v.kind {
		case ValueBool:
			return v.b == o.b
		case ValueInt:
			return v.i == o.i
		case ValueFloat:
			return v.f == o.f
		case ValueString:
			return v.s == o.s
		default:
			return true
		}
	}
	a, ok1 := v.AsFloat()
	b, ok2 := o.AsFloat()
	return ok1 && ok2 && a == b
}

// Any returns the Go representation of the value (nil for none).
func (v Value) Any() any {
	switch v.kind {
	case ValueBool:
		return v.b
	case ValueInt:
		return v.i
	case ValueFloat:
		return v.f
	case ValueString:
		return v.s
	}
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case ValueBool:
		return strconv.FormatBool(v.b)
	case ValueInt:
		return strconv.FormatInt(v.i, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case ValueString:
		return v.s
	}
	return "<none>"
}

// FromAny converts a decoded JSON/YAML scalar into a Value.
// Integral floats stay floats; use Int for counters.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return Int(int64(t)), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		if t > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: integer %d overflows int64", ErrInvalidConfig, t)
		}
		return Int(int64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case string:
		return String(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		return Float(f), nil
	}
	return Value{}, fmt.Errorf("%w: unsupported value type %T", ErrInvalidConfig, x)
}

// ParseValue interprets raw text: true/false, integers, floats, otherwise a string.
func ParseValue(raw string) Value {
	switch raw {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Float(f)
	}
	return String(raw)
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Value{}
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
