package chatsync_errors

import "errors"

// Common errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnknownKind      = errors.New("unknown update kind")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrBusNotStarted    = errors.New("event bus not started")
)
