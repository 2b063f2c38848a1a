package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Type defines the contract for field validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case float64:
		// JSON numbers decode as float64.
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	case json.Number:
		if _, err := v.Int64(); err != nil {
			return fmt.Errorf("expected int, got %s", v)
		}
		return nil
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// FloatType validates numeric values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// ScalarType accepts any shared-state value: bool, number or string.
type ScalarType struct{}

func (t *ScalarType) Name() string { return "scalar" }

func (t *ScalarType) Validate(value any) error {
	if (&BoolType{}).Validate(value) == nil || (&FloatType{}).Validate(value) == nil || (&StringType{}).Validate(value) == nil {
		return nil
	}
	return fmt.Errorf("expected bool, number or string, got %T", value)
}

// DurationType accepts a Go duration string ("250ms") or a number of milliseconds.
type DurationType struct{}

func (t *DurationType) Name() string { return "duration" }

func (t *DurationType) Validate(value any) error {
	if s, ok := value.(string); ok {
		if s == "" {
			return fmt.Errorf("empty duration")
		}
		return nil
	}
	if err := (&FloatType{}).Validate(value); err != nil {
		return fmt.Errorf("expected duration string or milliseconds, got %T", value)
	}
	return nil
}

// ColorType accepts "#rrggbb" strings or [r, g, b] lists.
type ColorType struct{}

func (t *ColorType) Name() string { return "color" }

func (t *ColorType) Validate(value any) error {
	if s, ok := value.(string); ok {
		if len(strings.TrimPrefix(s, "#")) != 6 {
			return fmt.Errorf("expected #rrggbb, got %q", s)
		}
		return nil
	}
	return fixedInts(value, 3, 0, 255)
}

// RectType accepts [x, y, w, h] lists.
type RectType struct{}

func (t *RectType) Name() string { return "rect" }

func (t *RectType) Validate(value any) error {
	return fixedInts(value, 4, -1<<31, 1<<31-1)
}

func fixedInts(value any, n int, lo, hi int64) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected list of %d integers, got %T", n, value)
	}
	if rv.Len() != n {
		return fmt.Errorf("expected %d elements, got %d", n, rv.Len())
	}
	for i := 0; i < n; i++ {
		elem := rv.Index(i).Interface()
		if err := (&IntType{}).Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		if v := toInt64(elem); v < lo || v > hi {
			return fmt.Errorf("element %d: %d out of range [%d, %d]", i, v, lo, hi)
		}
	}
	return nil
}

func toInt64(v any) int64 {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float())
	}
	if n, ok := v.(json.Number); ok {
		i, _ := n.Int64()
		return i
	}
	return 0
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}

	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// OptionalType marks a field that may be absent.
type OptionalType struct {
	inner Type
}

func (t *OptionalType) Name() string { return t.inner.Name() + "?" }

func (t *OptionalType) Validate(value any) error {
	return t.inner.Validate(value)
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// --- Factory Functions ---

func String() Type { return &StringType{} }
func Int() Type { return &IntType{} }
func Float() Type { return &FloatType{} }
func Bool() Type { return &BoolType{} }
func Scalar() Type { return &ScalarType{} }
func Duration() Type { return &DurationType{} }
func Color() Type { return &ColorType{} }
func Rect() Type { return &RectType{} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Optional wraps t so that a missing field is not an error.
func Optional(t Type) Type {
	if _, ok := t.(*OptionalType); ok {
		return t
	}
	return &OptionalType{inner: t}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

func isOptional(t Type) bool {
	_, ok := t.(*OptionalType)
	return ok
}

// ParseType converts a type name to a Type.
// Supports "string", "int", "float", "bool", "scalar", "duration", "color", "rect",
// slices such as "[int]", and a trailing "?" for optional fields.
func ParseType(typeStr string) (Type, error) {
	if strings.HasSuffix(typeStr, "?") {
		inner, err := ParseType(strings.TrimSuffix(typeStr, "?"))
		if err != nil {
			return nil, err
		}
		return Optional(inner), nil
	}

	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemType, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	switch typeStr {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "scalar":
		return Scalar(), nil
	case "duration":
		return Duration(), nil
	case "color":
		return Color(), nil
	case "rect":
		return Rect(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// ParseTypeMap converts a map of field names to type strings into a Schema.
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema)
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}
