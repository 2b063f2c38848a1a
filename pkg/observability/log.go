package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/pixelpilot/pkg/domain"
)

// LogSink writes events to a slog logger. Per-tick events are logged at debug
// level; faults at warn.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(ctx context.Context, ev domain.Event) {
	level := slog.LevelDebug
	switch ev.Type {
	case domain.EventEngineStarted, domain.EventEngineStopped:
		level = slog.LevelInfo
	case domain.EventNodeFault, domain.EventRuleFault, domain.EventProviderError:
		level = slog.LevelWarn
	case domain.EventTickFinished:
		if ev.Overrun {
			level = slog.LevelWarn
		}
	}
	if !s.logger.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, 6)
	if ev.Tick != 0 {
		attrs = append(attrs, slog.Uint64("tick", ev.Tick))
	}
	if ev.Type == domain.EventTickFinished {
		attrs = append(attrs, slog.Duration("duration", ev.Duration), slog.Int("passes", ev.Passes), slog.Bool("overrun", ev.Overrun))
	}
	if ev.NodeID != "" {
		attrs = append(attrs, slog.String("node", ev.NodeID))
	}
	if ev.RuleID != "" {
		attrs = append(attrs, slog.String("rule", ev.RuleID))
	}
	if ev.Provider != "" {
		attrs = append(attrs, slog.String("provider", ev.Provider))
	}
	if ev.Err != "" {
		attrs = append(attrs, slog.String("error", ev.Err))
	}
	s.logger.LogAttrs(ctx, level, string(ev.Type), attrs...)
}
