package observability

import (
	"context"

	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/ports"
)

// Fanout forwards every event to each sink in order. Nil sinks are skipped.
type Fanout []ports.EventSink

func (f Fanout) Emit(ctx context.Context, ev domain.Event) {
	for _, s := range f {
		if s != nil {
			s.Emit(ctx, ev)
		}
	}
}
