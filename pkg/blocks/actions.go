package blocks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/ports"
)

// MaxWait caps the Wait action so a single block cannot stall the loop.
const MaxWait = time.Second

// KeyPress taps Key.
type KeyPress struct {
	Key string `mapstructure:"key"`
}

// NewKeyPress decodes a key_press action.
func NewKeyPress(cfg map[string]any) (Action, error) {
	a := &KeyPress{}
	if err := Decode(cfg, a); err != nil {
		return nil, err
	}
	if a.Key == "" {
		return nil, fmt.Errorf("%w: key is required", domain.ErrInvalidConfig)
	}
	return a, nil
}

func (a *KeyPress) Execute(ctx context.Context, env Env) error {
	if env.Input == nil {
		return inputError(env, "press_key", domain.ErrUnavailable)
	}
	if err := env.Input.PressKey(ctx, a.Key); err != nil {
		return inputError(env, "press_key", err)
	}
	return nil
}

// MouseClick clicks Button at (X, Y).
type MouseClick struct {
	X      int    `mapstructure:"x"`
	Y      int    `mapstructure:"y"`
	Button string `mapstructure:"button"`
}

// NewMouseClick decodes a mouse_click action.
func NewMouseClick(cfg map[string]any) (Action, error) {
	a := &MouseClick{Button: ports.ButtonLeft}
	if err := Decode(cfg, a); err != nil {
		return nil, err
	}
	a.Button = strings.ToLower(a.Button)
	switch a.Button {
	case ports.ButtonLeft, ports.ButtonRight, ports.ButtonMiddle:
	default:
		return nil, fmt.Errorf("%w: unknown mouse button %q", domain.ErrInvalidConfig, a.Button)
	}
	return a, nil
}

func (a *MouseClick) Execute(ctx context.Context, env Env) error {
	if env.Input == nil {
		return inputError(env, "click", domain.ErrUnavailable)
	}
	if err := env.Input.Click(ctx, a.X, a.Y, a.Button); err != nil {
		return inputError(env, "click", err)
	}
	return nil
}

// MovePointer moves the pointer to (X, Y).
type MovePointer struct {
	X int `mapstructure:"x"`
	Y int `mapstructure:"y"`
}

// NewMovePointer decodes a move_pointer action.
func NewMovePointer(cfg map[string]any) (Action, error) {
	a := &MovePointer{}
	if err := Decode(cfg, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *MovePointer) Execute(ctx context.Context, env Env) error {
	if env.Input == nil {
		return inputError(env, "move_pointer", domain.ErrUnavailable)
	}
	if err := env.Input.MovePointer(ctx, a.X, a.Y); err != nil {
		return inputError(env, "move_pointer", err)
	}
	return nil
}

// SetState writes Value to Key.
type SetState struct {
	Key   string       `mapstructure:"key"`
	Value domain.Value `mapstructure:"value"`
}

// NewSetState decodes a set_state action.
func NewSetState(cfg map[string]any) (Action, error) {
	a := &SetState{}
	if err := Decode(cfg, a); err != nil {
		return nil, err
	}
	if a.Key == "" || a.Value.IsZero() {
		return nil, fmt.Errorf("%w: key and value are required", domain.ErrInvalidConfig)
	}
	return a, nil
}

func (a *SetState) Execute(ctx context.Context, env Env) error {
	return env.State.Set(ctx, a.Key, a.Value)
}

// ToggleState flips the boolean entry Key.
type ToggleState struct {
	Key string `mapstructure:"key"`
}

// NewToggleState decodes a toggle_state action.
func NewToggleState(cfg map[string]any) (Action, error) {
	a := &ToggleState{}
	if err := Decode(cfg, a); err != nil {
		return nil, err
	}
	if a.Key == "" {
		return nil, fmt.Errorf("%w: key is required", domain.ErrInvalidConfig)
	}
	return a, nil
}

func (a *ToggleState) Execute(ctx context.Context, env Env) error {
	_, err := env.State.Toggle(ctx, a.Key)
	return err
}

// Increment adds Delta to the counter Key.
type Increment struct {
	Key   string `mapstructure:"key"`
	Delta int64  `mapstructure:"delta"`
}

// NewIncrement decodes an increment action.
func NewIncrement(cfg map[string]any) (Action, error) {
	a := &Increment{Delta: 1}
	if err := Decode(cfg, a); err != nil {
		return nil, err
	}
	if a.Key == "" {
		return nil, fmt.Errorf("%w: key is required", domain.ErrInvalidConfig)
	}
	return a, nil
}

func (a *Increment) Execute(ctx context.Context, env Env) error {
	_, err := env.State.Increment(ctx, a.Key, a.Delta)
	return err
}

// Wait pauses the tick for Duration, returning early if ctx is canceled.
type Wait struct {
	Duration time.Duration `mapstructure:"duration"`
}

// NewWait decodes a wait action.
func NewWait(cfg map[string]any) (Action, error) {
	a := &Wait{}
	if err := Decode(cfg, a); err != nil {
		return nil, err
	}
	if a.Duration < 0 || a.Duration > MaxWait {
		return nil, fmt.Errorf("%w: duration must be between 0 and %s", domain.ErrInvalidConfig, MaxWait)
	}
	return a, nil
}

func (a *Wait) Execute(ctx context.Context, _ Env) error {
	if a.Duration == 0 {
		return nil
	}
	timer := time.NewTimer(a.Duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
