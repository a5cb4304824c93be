package sessions

import "github.com/prik73/mediasoup-concept-2/internal/errors"

const (
	ErrValidation     errors.Code = "validation error"
	ErrRoomNotFound   errors.Code = "room not found"
	ErrPeerNotJoined  errors.Code = "peer not joined"
	ErrNotFound       errors.Code = "not found"
	ErrTransportState errors.Code = "invalid transport state"
	ErrEngineFailure  errors.Code = "media engine failure"
)
