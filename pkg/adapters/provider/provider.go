// Package provider selects capability backends by rank.
//
// Candidates are tried in order and the first constructor that succeeds wins.
// When none succeeds the caller gets an Unavailable provider whose calls fail
// with domain.ErrUnavailable, so the engine keeps running and every dependent
// block reads false.
package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/ports"
)

// Candidate is one ranked backend constructor.
type Candidate[T any] struct {
	Name string
	New  func() (T, error)
}

// VisionCandidate constructs a vision backend.
type VisionCandidate = Candidate[ports.VisionProvider]

// InputCandidate constructs an input backend.
type InputCandidate = Candidate[ports.InputProvider]

func selectFirst[T any](logger *slog.Logger, kind string, candidates []Candidate[T]) (T, []error) {
	var errs []error
	for _, c := range candidates {
		p, err := c.New()
		if err == nil {
			logger.Info("capability backend selected", "capability", kind, "backend", c.Name)
			return p, nil
		}
		logger.Debug("capability backend rejected", "capability", kind, "backend", c.Name, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
	}
	var zero T
	return zero, errs
}

// SelectVision returns the first vision backend that can be constructed.
func SelectVision(logger *slog.Logger, candidates ...VisionCandidate) ports.VisionProvider {
	p, errs := selectFirst(logger, "vision", candidates)
	if len(errs) == len(candidates) {
		logger.Warn("no vision backend available", "tried", len(candidates))
		return &UnavailableVision{Tried: errs}
	}
	return p
}

// SelectInput returns the first input backend that can be constructed.
func SelectInput(logger *slog.Logger, candidates ...InputCandidate) ports.InputProvider {
	p, errs := selectFirst(logger, "input", candidates)
	if len(errs) == len(candidates) {
		logger.Warn("no input backend available", "tried", len(candidates))
		return &UnavailableInput{Tried: errs}
	}
	return p
}

// UnavailableVision is the null vision backend.
type UnavailableVision struct {
	Tried []error
}

func (u *UnavailableVision) Name() string { return "unavailable" }

func (u *UnavailableVision) SamplePixel(context.Context, int, int) (domain.Color, error) {
	return domain.Color{}, domain.ErrUnavailable
}

func (u *UnavailableVision) SearchRegion(context.Context, domain.Rect, domain.Color, int) (domain.Point, bool, error) {
	return domain.Point{}, false, domain.ErrUnavailable
}

// UnavailableInput is the null input backend.
type UnavailableInput struct {
	Tried []error
}

func (u *UnavailableInput) Name() string { return "unavailable" }

func (u *UnavailableInput) IsKeyDown(context.Context, string) (bool, error) {
	return false, domain.ErrUnavailable
}

func (u *UnavailableInput) PressKey(context.Context, string) error { return domain.ErrUnavailable }

func (u *UnavailableInput) Click(context.Context, int, int, string) error {
	return domain.ErrUnavailable
}

func (u *UnavailableInput) MovePointer(context.Context, int, int) error { return domain.ErrUnavailable }

// LogInput is a dry-run input backend: injected events are logged, never
// performed, and no key ever reads as held.
type LogInput struct {
	Logger *slog.Logger
}

func (l *LogInput) Name() string { return "dry-run" }

func (l *LogInput) IsKeyDown(context.Context, string) (bool, error) { return false, nil }

func (l *LogInput) PressKey(ctx context.Context, key string) error {
	l.Logger.InfoContext(ctx, "dry-run key press", "key", key)
	return nil
}

func (l *LogInput) Click(ctx context.Context, x, y int, button string) error {
	l.Logger.InfoContext(ctx, "dry-run click", "x", x, "y", y, "button", button)
	return nil
}

func (l *LogInput) MovePointer(ctx context.Context, x, y int) error {
	l.Logger.DebugContext(ctx, "dry-run pointer move", "x", x, "y", y)
	return nil
}
