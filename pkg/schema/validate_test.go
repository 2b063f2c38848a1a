package schema

import (
	"strings"
	"testing"
)

func TestValidate_Success(t *testing.T) {
	s := Schema{
		"x":          Int(),
		"y":          Int(),
		"target_rgb": Color(),
		"tolerance":  Optional(Int()),
	}
	data := map[string]any{
		"x":          10,
		"y":          10,
		"target_rgb": []any{255, 255, 255},
	}
	if err := Validate(s, data); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_ReportsEveryProblemInKeyOrder(t *testing.T) {
	s := Schema{
		"key":   String(),
		"delta": Optional(Int()),
		"x":     Int(),
	}
	data := map[string]any{
		"delta": "many",
		"x":     1,
		"bogus": true,
	}

	errs := ValidationErrors(Validate(s, data))
	if len(errs) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(errs), errs)
	}
	keys := make([]string, 0, len(errs))
	for _, e := range errs {
		keys = append(keys, e.(*ValidationError).Key)
	}
	if got := strings.Join(keys, ","); got != "delta,key,bogus" {
		t.Errorf("keys = %s, want delta,key,bogus", got)
	}
}

func TestValidate_EmptySchemaRejectsFields(t *testing.T) {
	if err := Validate(Schema{}, nil); err != nil {
		t.Errorf("empty data should pass: %v", err)
	}
	if err := Validate(Schema{}, map[string]any{"x": 1}); err == nil {
		t.Error("unknown field should fail")
	}
}

func TestPrefix(t *testing.T) {
	err := Validate(Schema{"x": Int()}, map[string]any{})
	errs := Prefix("nodes[0].config", err)
	if len(errs) != 1 {
		t.Fatalf("got %d errors", len(errs))
	}
	if k := errs[0].(*ValidationError).Key; k != "nodes[0].config.x" {
		t.Errorf("Key = %q", k)
	}
	if Prefix("p", nil) != nil {
		t.Error("nil error should yield nil")
	}
}

func TestAggregateError_String(t *testing.T) {
	err := &AggregateError{Errors: []error{
		&ValidationError{Key: "a", Reason: "required"},
		&ValidationError{Key: "b", Reason: "bad", Value: 1},
	}}
	msg := err.Error()
	if !strings.Contains(msg, "2 validation errors") || !strings.Contains(msg, `field "b": bad (got int)`) {
		t.Errorf("unexpected message: %s", msg)
	}
}
