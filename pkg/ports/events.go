package ports

import (
	"context"

	"github.com/aretw0/pixelpilot/pkg/domain"
)

// EventSink receives scheduler diagnostics. Emit is called from the tick goroutine
// and must not block for long.
type EventSink interface {
	Emit(ctx context.Context, event domain.Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ctx context.Context, event domain.Event)

func (f EventSinkFunc) Emit(ctx context.Context, event domain.Event) { f(ctx, event) }
