package registry

import (
	"go.opentelemetry.io/otel/metric"

	intotel "github.com/prik73/mediasoup-concept-2/internal/otel"
)

var (
	roomsActive     metric.Int64UpDownCounter
	peersActive     metric.Int64UpDownCounter
	producersActive metric.Int64UpDownCounter
	consumersActive metric.Int64UpDownCounter
)

func init() {
	f := intotel.NewFactory("sessions.registry", intotel.PrefixSessions)

	f.Int64UpDownCounter(&roomsActive, "rooms.active",
		metric.WithDescription("Number of rooms with a live router"))

	f.Int64UpDownCounter(&peersActive, "peers.active",
		metric.WithDescription("Number of connected peers"))

	f.Int64UpDownCounter(&producersActive, "producers.active",
		metric.WithDescription("Number of live producers"))

	f.Int64UpDownCounter(&consumersActive, "consumers.active",
		metric.WithDescription("Number of live consumers"))
}
