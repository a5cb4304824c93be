package compose

import (
	"go.opentelemetry.io/otel/metric"

	intotel "github.com/prik73/mediasoup-concept-2/internal/otel"
)

var (
	activeSessions   metric.Int64UpDownCounter
	streamsStarted   metric.Int64Counter
	streamsStopped   metric.Int64Counter
	streamsFailed    metric.Int64Counter
	consumersResumed metric.Int64Counter
)

func init() {
	f := intotel.NewFactory("mixers.compose", intotel.PrefixComposer)

	f.Int64UpDownCounter(&activeSessions, "sessions.active",
		metric.WithDescription("Number of live composition sessions"))

	f.Int64Counter(&streamsStarted, "streams.started",
		metric.WithDescription("Total composition streams started"))

	f.Int64Counter(&streamsStopped, "streams.stopped",
		metric.WithDescription("Total composition streams stopped"))

	f.Int64Counter(&streamsFailed, "streams.failed",
		metric.WithDescription("Total composition start failures"))

	f.Int64Counter(&consumersResumed, "consumers.resumed",
		metric.WithDescription("Total resume timer firings serviced"))
}
