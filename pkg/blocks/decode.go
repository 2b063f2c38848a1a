package blocks

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

var (
	colorType    = reflect.TypeOf(domain.Color{})
	rectType     = reflect.TypeOf(domain.Rect{})
	valueType    = reflect.TypeOf(domain.Value{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// Decode fills out from a configuration bag. Numbers are weakly typed, unknown
// keys are rejected, and the following conversions apply:
//
//	color:    "#rrggbb" or [r, g, b]
//	rect:     [x, y, w, h]
//	duration: "250ms" or a number of milliseconds
//	value:    any scalar
func Decode(cfg map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			durationHook,
			colorHook,
			rectHook,
			valueHook,
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

func durationHook(from, to reflect.Type, data any) (any, error) {
	if to != durationType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return time.ParseDuration(v)
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case uint64:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	}
	return data, nil
}

func colorHook(from, to reflect.Type, data any) (any, error) {
	if to != colorType {
		return data, nil
	}
	if list, ok := asList(data); ok {
		data = list
	}
	switch v := data.(type) {
	case string:
		raw, err := hex.DecodeString(strings.TrimPrefix(v, "#"))
		if err != nil || len(raw) != 3 {
			return nil, fmt.Errorf("invalid color %q, expected #rrggbb", v)
		}
		return domain.Color{R: raw[0], G: raw[1], B: raw[2]}, nil
	case []any:
		n, err := ints(v, 3)
		if err != nil {
			return nil, fmt.Errorf("invalid color: %w", err)
		}
		for _, c := range n {
			if c < 0 || c > 255 {
				return nil, fmt.Errorf("invalid color component %d", c)
			}
		}
		return domain.Color{R: uint8(n[0]), G: uint8(n[1]), B: uint8(n[2])}, nil
	}
	return data, nil
}

func rectHook(from, to reflect.Type, data any) (any, error) {
	if to != rectType {
		return data, nil
	}
	if v, ok := asList(data); ok {
		n, err := ints(v, 4)
		if err != nil {
			return nil, fmt.Errorf("invalid region: %w", err)
		}
		return domain.Rect{X: n[0], Y: n[1], W: n[2], H: n[3]}, nil
	}
	return data, nil
}

func valueHook(from, to reflect.Type, data any) (any, error) {
	if to != valueType {
		return data, nil
	}
	return domain.FromAny(data)
}

// asList converts any slice or array to []any.
func asList(data any) ([]any, bool) {
	if v, ok := data.([]any); ok {
		return v, true
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func ints(list []any, n int) ([]int, error) {
	if len(list) != n {
		return nil, fmt.Errorf("expected %d numbers, got %d", n, len(list))
	}
	out := make([]int, n)
	for i, raw := range list {
		switch v := raw.(type) {
		case int:
			out[i] = v
		case int64:
			out[i] = int(v)
		case uint64:
			out[i] = int(v)
		case uint8:
			out[i] = int(v)
		case float64:
			if v != float64(int(v)) {
				return nil, fmt.Errorf("element %d is not an integer", i)
			}
			out[i] = int(v)
		default:
			return nil, fmt.Errorf("element %d: unexpected %T", i, raw)
		}
	}
	return out, nil
}
