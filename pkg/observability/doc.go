/*
Package observability turns scheduler events into logs and metrics.

Every sink implements ports.EventSink and is fed by the engine's tick goroutine.
Combine several sinks with Fanout:

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	sink := observability.Fanout{observability.NewLogSink(logger), metrics}
	eng, _ := pixelpilot.New(vision, input, state, pixelpilot.WithEventSink(sink))
*/
package observability
