package registry

import (
	"github.com/aretw0/pixelpilot/pkg/blocks"
	"github.com/aretw0/pixelpilot/pkg/schema"
)

var optInt = schema.Optional(schema.Int())

// Default returns a registry holding the built-in block catalogue.
func Default() *Registry {
	r := NewRegistry()

	r.RegisterCondition("pixel_color", ConditionType{
		Description: "Pixel at (x, y) is within tolerance of target_rgb",
		Params:      schema.Schema{"x": schema.Int(), "y": schema.Int(), "target_rgb": schema.Color(), "tolerance": optInt},
		New:         blocks.NewPixelColor,
	})
	r.RegisterCondition("region_color", ConditionType{
		Description: "Any pixel inside region [x, y, w, h] is within tolerance of target_rgb",
		Params:      schema.Schema{"region": schema.Rect(), "target_rgb": schema.Color(), "tolerance": optInt},
		New:         blocks.NewRegionColor,
	})
	r.RegisterCondition("key_down", ConditionType{
		Description: "Key is currently held",
		Params:      schema.Schema{"key": schema.String()},
		New:         blocks.NewKeyDown,
	})
	r.RegisterCondition("timer", ConditionType{
		Description: "Interval has elapsed since the timer was last reset",
		Params:      schema.Schema{"interval": schema.Duration(), "timer_id": schema.String()},
		New:         blocks.NewTimer,
	})
	r.RegisterCondition("state_equals", ConditionType{
		Description: "Shared-state key equals value (or is truthy when value is omitted)",
		Params:      schema.Schema{"key": schema.String(), "value": schema.Optional(schema.Scalar())},
		New:         blocks.NewStateEquals,
	})
	r.RegisterCondition("constant", ConditionType{
		Description: "Always reports value",
		Params:      schema.Schema{"value": schema.Optional(schema.Bool())},
		New:         blocks.NewConstant,
	})

	gates := map[string]string{
		blocks.OpAnd:  "High when every input is high",
		blocks.OpOr:   "High when any input is high",
		blocks.OpNand: "Low only when every input is high",
		blocks.OpNor:  "High only when every input is low",
		blocks.OpXor:  "High when an odd number of inputs are high",
		blocks.OpNot:  "Inverts In1",
	}
	for op, desc := range gates {
		r.RegisterLogic(op, LogicType{
			Description: desc,
			Params:      schema.Schema{"inputs": optInt},
			New:         blocks.NewGate(op),
		})
	}
	r.RegisterLogic("ton", LogicType{
		Description: "On-delay: high once In1 has been high for delay",
		Params:      schema.Schema{"delay": schema.Duration()},
		New:         blocks.NewOnDelay,
	})
	r.RegisterLogic("tof", LogicType{
		Description: "Off-delay: holds high for delay after In1 falls",
		Params:      schema.Schema{"delay": schema.Duration()},
		New:         blocks.NewOffDelay,
	})
	r.RegisterLogic("tp", LogicType{
		Description: "Pulse: high for duration after each rising edge of In1",
		Params:      schema.Schema{"duration": schema.Duration()},
		New:         blocks.NewPulse,
	})
	r.RegisterLogic("blink", LogicType{
		Description: "Oscillates on/off while In1 is high",
		Params:      schema.Schema{"on": schema.Optional(schema.Duration()), "off": schema.Optional(schema.Duration())},
		New:         blocks.NewBlink,
	})
	r.RegisterLogic("toggle", LogicType{
		Description: "Flip-flop: rising edge on Trig inverts, Reset forces low",
		Params:      schema.Schema{},
		New:         blocks.NewToggle,
	})

	r.RegisterAction("key_press", ActionType{
		Description: "Taps key",
		Params:      schema.Schema{"key": schema.String()},
		New:         blocks.NewKeyPress,
	})
	r.RegisterAction("mouse_click", ActionType{
		Description: "Clicks button (left, right, middle) at (x, y)",
		Params:      schema.Schema{"x": schema.Int(), "y": schema.Int(), "button": schema.Optional(schema.String())},
		New:         blocks.NewMouseClick,
	})
	r.RegisterAction("move_pointer", ActionType{
		Description: "Moves the pointer to (x, y)",
		Params:      schema.Schema{"x": schema.Int(), "y": schema.Int()},
		New:         blocks.NewMovePointer,
	})
	r.RegisterAction("set_state", ActionType{
		Description: "Writes value to a shared-state key",
		Params:      schema.Schema{"key": schema.String(), "value": schema.Scalar()},
		New:         blocks.NewSetState,
	})
	r.RegisterAction("toggle_state", ActionType{
		Description: "Flips a boolean shared-state key",
		Params:      schema.Schema{"key": schema.String()},
		New:         blocks.NewToggleState,
	})
	r.RegisterAction("increment", ActionType{
		Description: "Adds delta (default 1) to a shared-state counter",
		Params:      schema.Schema{"key": schema.String(), "delta": optInt},
		New:         blocks.NewIncrement,
	})
	r.RegisterAction("wait", ActionType{
		Description: "Pauses the tick for duration (at most one second)",
		Params:      schema.Schema{"duration": schema.Duration()},
		New:         blocks.NewWait,
	})

	return r
}
