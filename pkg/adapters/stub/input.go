package stub

import (
	"context"
	"sync"
)

// Input operations recorded by the stub.
const (
	OpPressKey    = "press_key"
	OpClick       = "click"
	OpMovePointer = "move_pointer"
)

// InputEvent is one recorded call.
type InputEvent struct {
	Op     string
	Key    string
	X, Y   int
	Button string
}

// Input records every injected event and tracks simulated key state.
type Input struct {
	mu     sync.Mutex
	down   map[string]bool
	events []InputEvent
	err    error
}

// NewInput creates an empty recorder.
func NewInput() *Input {
	return &Input{down: make(map[string]bool)}
}

func (in *Input) Name() string { return "stub" }

// SetKeyDown simulates a held or released key.
func (in *Input) SetKeyDown(key string, down bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.down[key] = down
}

// FailWith makes injection calls return err until called again with nil.
func (in *Input) FailWith(err error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.err = err
}

// Events returns a copy of the recorded calls.
func (in *Input) Events() []InputEvent {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]InputEvent, len(in.events))
	copy(out, in.events)
	return out
}

// Presses counts recorded presses of key.
func (in *Input) Presses(key string) int {
	in.mu.Lock()
	defer in.mu.Unlock()
	n := 0
	for _, e := range in.events {
		if e.Op == OpPressKey && e.Key == key {
			n++
		}
	}
	return n
}

// Reset clears recorded events.
func (in *Input) Reset() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.events = nil
}

func (in *Input) IsKeyDown(ctx context.Context, key string) (bool, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.err != nil {
		return false, in.err
	}
	return in.down[key], nil
}

func (in *Input) PressKey(ctx context.Context, key string) error {
	return in.record(InputEvent{Op: OpPressKey, Key: key})
}

func (in *Input) Click(ctx context.Context, x, y int, button string) error {
	return in.record(InputEvent{Op: OpClick, X: x, Y: y, Button: button})
}

func (in *Input) MovePointer(ctx context.Context, x, y int) error {
	return in.record(InputEvent{Op: OpMovePointer, X: x, Y: y})
}

func (in *Input) record(e InputEvent) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.err != nil {
		return in.err
	}
	in.events = append(in.events, e)
	return nil
}
