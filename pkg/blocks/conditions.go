package blocks

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/pixelpilot/pkg/domain"
)

func visionError(env Env, op string, err error) error {
	name := "vision"
	if env.Vision != nil {
		name = env.Vision.Name()
	}
	return &domain.ProviderError{Provider: name, Op: op, Err: err}
}

func inputError(env Env, op string, err error) error {
	name := "input"
	if env.Input != nil {
		name = env.Input.Name()
	}
	return &domain.ProviderError{Provider: name, Op: op, Err: err}
}

// PixelColor matches when the pixel at (X, Y) is within Tolerance of Target.
type PixelColor struct {
	X         int          `mapstructure:"x"`
	Y         int          `mapstructure:"y"`
	Target    domain.Color `mapstructure:"target_rgb"`
	Tolerance int          `mapstructure:"tolerance"`
}

// NewPixelColor decodes a pixel_color condition.
func NewPixelColor(cfg map[string]any) (Condition, error) {
	c := &PixelColor{Tolerance: domain.DefaultTolerance}
	if err := Decode(cfg, c); err != nil {
		return nil, err
	}
	if c.Tolerance < 0 {
		return nil, fmt.Errorf("%w: tolerance must not be negative", domain.ErrInvalidConfig)
	}
	return c, nil
}

func (c *PixelColor) Evaluate(ctx context.Context, env Env) (bool, error) {
	if env.Vision == nil {
		return false, visionError(env, "sample_pixel", domain.ErrUnavailable)
	}
	got, err := env.Vision.SamplePixel(ctx, c.X, c.Y)
	if err != nil {
		return false, visionError(env, "sample_pixel", err)
	}
	return got.Matches(c.Target, c.Tolerance), nil
}

// RegionColor matches when any pixel inside Region is within Tolerance of Target.
type RegionColor struct {
	Region    domain.Rect  `mapstructure:"region"`
	Target    domain.Color `mapstructure:"target_rgb"`
	Tolerance int          `mapstructure:"tolerance"`
}

// NewRegionColor decodes a region_color condition.
func NewRegionColor(cfg map[string]any) (Condition, error) {
	c := &RegionColor{Tolerance: domain.DefaultTolerance}
	if err := Decode(cfg, c); err != nil {
		return nil, err
	}
	if c.Region.Empty() {
		return nil, fmt.Errorf("%w: region must have positive width and height", domain.ErrInvalidConfig)
	}
	return c, nil
}

func (c *RegionColor) Evaluate(ctx context.Context, env Env) (bool, error) {
	if env.Vision == nil {
		return false, visionError(env, "search_region", domain.ErrUnavailable)
	}
	_, found, err := env.Vision.SearchRegion(ctx, c.Region, c.Target, c.Tolerance)
	if err != nil {
		return false, visionError(env, "search_region", err)
	}
	return found, nil
}

// KeyDown matches while Key is held.
type KeyDown struct {
	Key string `mapstructure:"key"`
}

// NewKeyDown decodes a key_down condition.
func NewKeyDown(cfg map[string]any) (Condition, error) {
	c := &KeyDown{}
	if err := Decode(cfg, c); err != nil {
		return nil, err
	}
	if c.Key == "" {
		return nil, fmt.Errorf("%w: key is required", domain.ErrInvalidConfig)
	}
	return c, nil
}

func (c *KeyDown) Evaluate(ctx context.Context, env Env) (bool, error) {
	if env.Input == nil {
		return false, inputError(env, "is_key_down", domain.ErrUnavailable)
	}
	down, err := env.Input.IsKeyDown(ctx, c.Key)
	if err != nil {
		return false, inputError(env, "is_key_down", err)
	}
	return down, nil
}

// Timer matches once Interval has elapsed since it was last reset. The last
// reset time lives in shared state under "timer_<id>", so a timer that was
// never reset matches immediately.
type Timer struct {
	Interval time.Duration `mapstructure:"interval"`
	ID       string        `mapstructure:"timer_id"`
}

// NewTimer decodes a timer condition.
func NewTimer(cfg map[string]any) (Condition, error) {
	c := &Timer{}
	if err := Decode(cfg, c); err != nil {
		return nil, err
	}
	if c.ID == "" {
		return nil, fmt.Errorf("%w: timer_id is required", domain.ErrInvalidConfig)
	}
	if c.Interval < 0 {
		return nil, fmt.Errorf("%w: interval must not be negative", domain.ErrInvalidConfig)
	}
	return c, nil
}

// StateKey is the shared-state key holding the last reset time in Unix milliseconds.
func (c *Timer) StateKey() string { return "timer_" + c.ID }

func (c *Timer) Evaluate(ctx context.Context, env Env) (bool, error) {
	v, ok, err := env.State.Get(ctx, c.StateKey())
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	last, isInt := v.AsInt()
	if !isInt {
		return true, nil
	}
	return env.Now.Sub(time.UnixMilli(last)) >= c.Interval, nil
}

// Reset stamps the timer with the tick time.
func (c *Timer) Reset(ctx context.Context, env Env) error {
	return env.State.Set(ctx, c.StateKey(), domain.Int(env.Now.UnixMilli()))
}

// StateEquals matches when the shared-state entry Key equals Value.
// Without a value it matches when the entry is truthy.
type StateEquals struct {
	Key   string       `mapstructure:"key"`
	Value domain.Value `mapstructure:"value"`
}

// NewStateEquals decodes a state_equals condition.
func NewStateEquals(cfg map[string]any) (Condition, error) {
	c := &StateEquals{}
	if err := Decode(cfg, c); err != nil {
		return nil, err
	}
	if c.Key == "" {
		return nil, fmt.Errorf("%w: key is required", domain.ErrInvalidConfig)
	}
	return c, nil
}

func (c *StateEquals) Evaluate(ctx context.Context, env Env) (bool, error) {
	v, ok, err := env.State.Get(ctx, c.Key)
	if err != nil || !ok {
		return false, err
	}
	if c.Value.IsZero() {
		return v.Truthy(), nil
	}
	return v.Equal(c.Value), nil
}

// Constant always reports Value.
type Constant struct {
	Value bool `mapstructure:"value"`
}

// NewConstant decodes a constant condition.
func NewConstant(cfg map[string]any) (Condition, error) {
	c := &Constant{}
	if err := Decode(cfg, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Constant) Evaluate(context.Context, Env) (bool, error) { return c.Value, nil }
