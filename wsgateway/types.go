package wsgateway

import "context"

// Composer drives HLS composition of a room's producers. Implemented by
// mixers/compose; consumed by the REST control surface.
type Composer interface {
	StreamStatus(roomName string) bool
	StartStream(ctx context.Context, roomName string) error
	StopStream(ctx context.Context, roomName string) error
	ActiveStreams() []string
}
