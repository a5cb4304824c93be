package ffmpeg

import (
	"go.opentelemetry.io/otel/metric"

	intotel "github.com/prik73/mediasoup-concept-2/internal/otel"
)

var (
	// Package-level metrics
	activeProcesses  metric.Int64UpDownCounter
	processesStarted metric.Int64Counter
	processesStopped metric.Int64Counter
	processesFailed  metric.Int64Counter
	liveSignals      metric.Int64Counter
)

func init() {
	f := intotel.NewFactory("mixers.ffmpeg", intotel.PrefixFFmpeg)

	f.Int64UpDownCounter(&activeProcesses, "processes.active",
		metric.WithDescription("Number of active encoder processes"))

	f.Int64Counter(&processesStarted, "processes.started",
		metric.WithDescription("Total number of encoder processes started"))

	f.Int64Counter(&processesStopped, "processes.stopped",
		metric.WithDescription("Total number of encoder processes stopped"))

	f.Int64Counter(&processesFailed, "processes.failed",
		metric.WithDescription("Total number of encoder processes that failed to start"))

	f.Int64Counter(&liveSignals, "live.signals",
		metric.WithDescription("Total first-frame signals observed"))
}
