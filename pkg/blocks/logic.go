package blocks

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/pixelpilot/pkg/domain"
)

// Gate operators.
const (
	OpAnd  = "and"
	OpOr   = "or"
	OpNot  = "not"
	OpNand = "nand"
	OpNor  = "nor"
	OpXor  = "xor"
)

// MaxGateInputs bounds the number of dynamic gate inputs.
const MaxGateInputs = 16

// Gate is a combinational logic block over In1..InN.
type Gate struct {
	stateless
	Op     string `mapstructure:"-"`
	Inputs int    `mapstructure:"inputs"`
	ports  []string
}

// NewGate returns a constructor for the given operator.
func NewGate(op string) func(cfg map[string]any) (Logic, error) {
	return func(cfg map[string]any) (Logic, error) {
		g := &Gate{Op: strings.ToLower(op), Inputs: 2}
		if g.Op == OpNot {
			g.Inputs = 1
		}
		if err := Decode(cfg, g); err != nil {
			return nil, err
		}
		switch {
		case g.Op == OpNot && g.Inputs != 1:
			return nil, fmt.Errorf("%w: not takes exactly one input", domain.ErrInvalidConfig)
		case g.Inputs < 1 || g.Inputs > MaxGateInputs:
			return nil, fmt.Errorf("%w: inputs must be between 1 and %d", domain.ErrInvalidConfig, MaxGateInputs)
		}
		g.ports = make([]string, g.Inputs)
		for i := range g.ports {
			g.ports[i] = domain.InputPort(i + 1)
		}
		return g, nil
	}
}

func (g *Gate) Ports() []string { return g.ports }

func (g *Gate) Compute(in Inputs, _ time.Time) bool {
	high := 0
	for _, p := range g.ports {
		if in[p] {
			high++
		}
	}
	switch g.Op {
	case OpAnd:
		return high == len(g.ports)
	case OpOr:
		return high > 0
	case OpNot:
		return high == 0
	case OpNand:
		return high != len(g.ports)
	case OpNor:
		return high == 0
	case OpXor:
		return high%2 == 1
	}
	return false
}

// OnDelay (TON) goes high once its input has been high for Delay.
type OnDelay struct {
	Delay  time.Duration `mapstructure:"delay"`
	active bool
	since  time.Time
}

// NewOnDelay decodes a ton block.
func NewOnDelay(cfg map[string]any) (Logic, error) {
	t := &OnDelay{}
	if err := decodeTimer(cfg, t, &t.Delay); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *OnDelay) Ports() []string { return singleInput }

func (t *OnDelay) Compute(in Inputs, now time.Time) bool {
	if !in[domain.InputPort(1)] {
		return false
	}
	start := now
	if t.active {
		start = t.since
	}
	return now.Sub(start) >= t.Delay
}

func (t *OnDelay) Commit(in Inputs, now time.Time) {
	high := in[domain.InputPort(1)]
	if high && !t.active {
		t.since = now
	}
	t.active = high
}

// OffDelay (TOF) follows its input high and holds the output for Delay after
// the input falls.
type OffDelay struct {
	Delay   time.Duration `mapstructure:"delay"`
	prev    bool
	holding bool
	fellAt  time.Time
}

// NewOffDelay decodes a tof block.
func NewOffDelay(cfg map[string]any) (Logic, error) {
	t := &OffDelay{}
	if err := decodeTimer(cfg, t, &t.Delay); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *OffDelay) Ports() []string { return singleInput }

func (t *OffDelay) Compute(in Inputs, now time.Time) bool {
	if in[domain.InputPort(1)] {
		return true
	}
	if t.prev {
		return t.Delay > 0
	}
	return t.holding && now.Sub(t.fellAt) < t.Delay
}

func (t *OffDelay) Commit(in Inputs, now time.Time) {
	high := in[domain.InputPort(1)]
	switch {
	case high:
		t.holding = false
	case t.prev:
		t.holding = true
		t.fellAt = now
	}
	t.prev = high
}

// Pulse (TP) emits a pulse of Duration on each rising edge. Edges during a
// pulse are ignored.
type Pulse struct {
	Duration  time.Duration `mapstructure:"duration"`
	prev      bool
	pulsing   bool
	startedAt time.Time
}

// NewPulse decodes a tp block.
func NewPulse(cfg map[string]any) (Logic, error) {
	t := &Pulse{}
	if err := decodeTimer(cfg, t, &t.Duration); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Pulse) Ports() []string { return singleInput }

func (t *Pulse) running(now time.Time) bool {
	return t.pulsing && now.Sub(t.startedAt) < t.Duration
}

func (t *Pulse) Compute(in Inputs, now time.Time) bool {
	if t.running(now) {
		return true
	}
	return in[domain.InputPort(1)] && !t.prev && t.Duration > 0
}

func (t *Pulse) Commit(in Inputs, now time.Time) {
	high := in[domain.InputPort(1)]
	if !t.running(now) {
		t.pulsing = false
		if high && !t.prev && t.Duration > 0 {
			t.pulsing = true
			t.startedAt = now
		}
	}
	t.prev = high
}

// Blink oscillates while its input is high: On high, then Off low.
type Blink struct {
	On     time.Duration `mapstructure:"on"`
	Off    time.Duration `mapstructure:"off"`
	active bool
	since  time.Time
}

// NewBlink decodes a blink block.
func NewBlink(cfg map[string]any) (Logic, error) {
	b := &Blink{On: 500 * time.Millisecond, Off: 500 * time.Millisecond}
	if err := Decode(cfg, b); err != nil {
		return nil, err
	}
	if b.On < 0 || b.Off < 0 {
		return nil, fmt.Errorf("%w: on and off must not be negative", domain.ErrInvalidConfig)
	}
	return b, nil
}

func (b *Blink) Ports() []string { return singleInput }

func (b *Blink) Compute(in Inputs, now time.Time) bool {
	if !in[domain.InputPort(1)] {
		return false
	}
	period := b.On + b.Off
	if period <= 0 {
		return true
	}
	start := now
	if b.active {
		start = b.since
	}
	return now.Sub(start)%period < b.On
}

func (b *Blink) Commit(in Inputs, now time.Time) {
	high := in[domain.InputPort(1)]
	if high && !b.active {
		b.since = now
	}
	b.active = high
}

// Toggle is a flip-flop: each rising edge on Trig inverts the output and Reset
// forces it low.
type Toggle struct {
	out  bool
	prev bool
}

// NewToggle decodes a toggle block. It takes no parameters.
func NewToggle(cfg map[string]any) (Logic, error) {
	t := &Toggle{}
	if err := Decode(cfg, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Toggle) Ports() []string { return []string{domain.PortTrig, domain.PortReset} }

func (t *Toggle) Compute(in Inputs, _ time.Time) bool {
	if in[domain.PortReset] {
		return false
	}
	if in[domain.PortTrig] && !t.prev {
		return !t.out
	}
	return t.out
}

func (t *Toggle) Commit(in Inputs, now time.Time) {
	t.out = t.Compute(in, now)
	t.prev = in[domain.PortTrig]
}

var singleInput = []string{domain.InputPort(1)}

func decodeTimer(cfg map[string]any, out any, d *time.Duration) error {
	if err := Decode(cfg, out); err != nil {
		return err
	}
	if *d < 0 {
		return fmt.Errorf("%w: duration must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}
