package mediasoup

import "github.com/prik73/mediasoup-concept-2/internal/errors"

const (
	ErrFailedRequest       errors.Code = "fail to make request"
	ErrInvalidPayload      errors.Code = "invalid payload"
	ErrNoneSuccessResponse errors.Code = "none success response"
	ErrNotFound            errors.Code = "not found"
	ErrCannotConsume       errors.Code = "cannot consume"
	ErrWorkerDown          errors.Code = "worker down"
)
