package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateID is returned when a node id is already present in the graph.
	ErrDuplicateID = errors.New("duplicate node id")
	// ErrPortOccupied is returned when an input port already has a link.
	ErrPortOccupied = errors.New("input port already connected")
	// ErrUnknownNode is returned when an operation references a missing node.
	ErrUnknownNode = errors.New("unknown node")
	// ErrUnknownPort is returned when a port does not exist or has the wrong direction.
	ErrUnknownPort = errors.New("unknown port")
	// ErrUnknownLink is returned when removing a link that does not exist.
	ErrUnknownLink = errors.New("unknown link")
	// ErrInvalidConfig is returned for malformed block kinds, types or configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	ErrDuplicateRule = errors.New("duplicate rule id")
	ErrUnknownRule   = errors.New("unknown rule")

	// ErrAlreadyRunning is returned by Start when the loop is active.
	ErrAlreadyRunning = errors.New("engine already running")
	// ErrEngineRunning is returned by operations that require an idle engine.
	ErrEngineRunning = errors.New("operation requires an idle engine")

	// ErrInvalidKey is returned for empty shared-state keys.
	ErrInvalidKey = errors.New("invalid state key")

	// ErrUnavailable is returned by capability providers without a working backend.
	ErrUnavailable = errors.New("capability unavailable")
)

// ConfigurationError is a graph or rule mutation rejected at apply time.
type ConfigurationError struct {
	Op      string
	Subject string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Subject, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ProviderError wraps a failure reported by a vision or input provider.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// EvaluationFault is an unexpected failure while evaluating a node or rule.
// Faults are isolated: the offending output becomes false for the tick.
type EvaluationFault struct {
	NodeID string
	Cause  error
}

func (e *EvaluationFault) Error() string {
	return fmt.Sprintf("evaluation fault in %s: %v", e.NodeID, e.Cause)
}

func (e *EvaluationFault) Unwrap() error { return e.Cause }

// ConcurrencyViolation is an illegal lifecycle transition.
type ConcurrencyViolation struct {
	Op    string
	State string
	Err   error
}

func (e *ConcurrencyViolation) Error() string {
	return fmt.Sprintf("%s while %s: %v", e.Op, e.State, e.Err)
}

func (e *ConcurrencyViolation) Unwrap() error { return e.Err }

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// IsProviderError reports whether err is a ProviderError.
func IsProviderError(err error) bool {
	var e *ProviderError
	return errors.As(err, &e)
}

// IsEvaluationFault reports whether err is an EvaluationFault.
func IsEvaluationFault(err error) bool {
	var e *EvaluationFault
	return errors.As(err, &e)
}

// IsConcurrencyViolation reports whether err is a ConcurrencyViolation.
func IsConcurrencyViolation(err error) bool {
	var e *ConcurrencyViolation
	return errors.As(err, &e)
}
