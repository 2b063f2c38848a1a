package schema

import (
	"encoding/json"
	"testing"
)

func TestIntType(t *testing.T) {
	typ := Int()
	tests := []struct {
		value   any
		wantErr bool
	}{
		{3, false},
		{int64(-2), false},
		{uint8(7), false},
		{float64(4), false},
		{4.5, true},
		{json.Number("12"), false},
		{"3", true},
	}
	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestScalarType(t *testing.T) {
	typ := Scalar()
	for _, v := range []any{true, 1, 2.5, "on"} {
		if err := typ.Validate(v); err != nil {
			t.Errorf("Validate(%v) unexpected error: %v", v, err)
		}
	}
	if err := typ.Validate([]int{1}); err == nil {
		t.Error("Validate([]int) should fail")
	}
}

func TestColorType(t *testing.T) {
	typ := Color()
	tests := []struct {
		value   any
		wantErr bool
	}{
		{"#ffffff", false},
		{"00ff00", false},
		{"#fff", true},
		{[]any{255, 255, 255}, false},
		{[]any{float64(10), float64(20), float64(30)}, false},
		{[]any{256, 0, 0}, true},
		{[]any{1, 2}, true},
		{42, true},
	}
	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestRectType(t *testing.T) {
	if err := Rect().Validate([]any{0, 0, 100, 50}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Rect().Validate([]any{0, 0, 100}); err == nil {
		t.Error("3-element rect should fail")
	}
}

func TestDurationType(t *testing.T) {
	for _, v := range []any{"250ms", 100, 1.5} {
		if err := Duration().Validate(v); err != nil {
			t.Errorf("Validate(%v) unexpected error: %v", v, err)
		}
	}
	if err := Duration().Validate(""); err == nil {
		t.Error("empty duration should fail")
	}
}

func TestSliceType(t *testing.T) {
	typ := Slice(String())
	if typ.Name() != "[string]" {
		t.Errorf("Name() = %q", typ.Name())
	}
	if err := typ.Validate([]any{"a", "b"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := typ.Validate([]any{"a", 1}); err == nil {
		t.Error("mixed slice should fail")
	}
}

func TestOptional(t *testing.T) {
	typ := Optional(Int())
	if typ.Name() != "int?" {
		t.Errorf("Name() = %q, want int?", typ.Name())
	}
	if Optional(typ) != typ {
		t.Error("Optional should not double wrap")
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		wantErr  bool
		wantName string
	}{
		{"string", false, "string"},
		{"color", false, "color"},
		{"rect", false, "rect"},
		{"int?", false, "int?"},
		{"[int]", false, "[int]"},
		{"[[string]]", false, "[[string]]"},
		{"invalid", true, ""},
		{"[invalid]", true, ""},
	}

	for _, tt := range tests {
		typ, err := ParseType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && typ.Name() != tt.wantName {
			t.Errorf("ParseType(%q) Name() = %q, want %q", tt.input, typ.Name(), tt.wantName)
		}
	}
}

func TestSchemaJSONRoundTrip(t *testing.T) {
	in := Schema{"x": Int(), "tolerance": Optional(Int()), "target_rgb": Color()}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `[{"name":"target_rgb","type":"color","required":true},{"name":"tolerance","type":"int","required":false},{"name":"x","type":"int","required":true}]`
	if string(data) != want {
		t.Fatalf("Marshal = %s\nwant %s", data, want)
	}

	var out Schema
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out["tolerance"].Name() != "int?" {
		t.Errorf("tolerance = %q, want int?", out["tolerance"].Name())
	}
}
