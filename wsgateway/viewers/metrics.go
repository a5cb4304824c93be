package viewers

import (
	"go.opentelemetry.io/otel/metric"

	intotel "github.com/prik73/mediasoup-concept-2/internal/otel"
)

var (
	viewerConnections metric.Int64UpDownCounter
	viewerJoins       metric.Int64Counter
	viewerLeaves      metric.Int64Counter
	roomsTracked      metric.Int64UpDownCounter
)

func init() {
	f := intotel.NewFactory("wsgateway.viewers", intotel.PrefixViewers)

	f.Int64UpDownCounter(&viewerConnections, "connections.active",
		metric.WithDescription("Number of active viewer channel connections"))

	f.Int64Counter(&viewerJoins, "joins.total",
		metric.WithDescription("Total viewer room joins"))

	f.Int64Counter(&viewerLeaves, "leaves.total",
		metric.WithDescription("Total viewer room leaves"))

	f.Int64UpDownCounter(&roomsTracked, "rooms.tracked",
		metric.WithDescription("Number of rooms with at least one viewer"))
}
