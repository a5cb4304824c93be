package transport

import (
	"go.opentelemetry.io/otel/metric"

	intotel "github.com/prik73/mediasoup-concept-2/internal/otel"
)

var (
	// Stream control metrics
	streamStarts       metric.Int64Counter
	streamStartsFailed metric.Int64Counter
	streamStops        metric.Int64Counter

	// HLS serving metrics
	hlsFilesServed  metric.Int64Counter
	hlsCacheHits    metric.Int64Counter
	hlsCacheMisses  metric.Int64Counter
	hlsAuthFailures metric.Int64Counter
)

func init() {
	f := intotel.NewFactory("wsgateway.transport", intotel.PrefixComposer)

	f.Int64Counter(&streamStarts, "stream.starts",
		metric.WithDescription("Total stream start requests accepted"))

	f.Int64Counter(&streamStartsFailed, "stream.starts.failed",
		metric.WithDescription("Total failed stream start requests"))

	f.Int64Counter(&streamStops, "stream.stops",
		metric.WithDescription("Total stream stop requests"))

	f.Int64Counter(&hlsFilesServed, "hls.files.served",
		metric.WithDescription("Total playlist and segment files served"))

	f.Int64Counter(&hlsCacheHits, "hls.handler.cache_hits",
		metric.WithDescription("Room file handler cache hits"))

	f.Int64Counter(&hlsCacheMisses, "hls.handler.cache_misses",
		metric.WithDescription("Room file handler cache misses"))

	f.Int64Counter(&hlsAuthFailures, "hls.auth.failures",
		metric.WithDescription("Playback authorization failures"))
}
