package compose

import "github.com/prik73/mediasoup-concept-2/internal/errors"

var (
	ErrNoVideoProducer = errors.Code("no_video_producer")
	ErrRoomNotFound    = errors.Code("room_not_found")
	ErrRelaySetup      = errors.Code("relay_setup_failed")
	ErrEncoderSpawn    = errors.Code("encoder_spawn_failed")
)
