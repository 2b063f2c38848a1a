package domain

import "time"

// EventType defines the category of the event.
type EventType string

const (
	EventEngineStarted EventType = "engine_started"
	EventEngineStopped EventType = "engine_stopped"
	EventTickStarted   EventType = "tick_started"
	EventTickFinished  EventType = "tick_finished"
	EventNodeFault     EventType = "node_fault"
	EventRuleFault     EventType = "rule_fault"
	EventProviderError EventType = "provider_error"
	EventActionFired   EventType = "action_fired"
)

// Event is a diagnostic emitted by the scheduler.
type Event struct {
	Type      EventType     `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Tick      uint64        `json:"tick,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Passes    int           `json:"passes,omitempty"`
	Overrun   bool          `json:"overrun,omitempty"`
	NodeID    string        `json:"node_id,omitempty"`
	RuleID    string        `json:"rule_id,omitempty"`
	Provider  string        `json:"provider,omitempty"`
	Err       string        `json:"error,omitempty"`
}

// NewEvent stamps an event of the given type.
func NewEvent(t EventType, at time.Time) Event {
	return Event{Type: t, Timestamp: at}
}

// WithErr records err on the event, if any.
func (e Event) WithErr(err error) Event {
	if err != nil {
		e.Err = err.Error()
	}
	return e
}
