package server

import (
	"errors"

	chatsync_errors "chatsync/pkg/errors"
)

type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func NewSuccessResponse[T any](data T) Response[T] {
	return Response[T]{
		Success: true,
		Data:    data,
	}
}

func NewErrorResponse(err string, code string) Response[any] {
	return Response[any]{
		Success: false,
		Error:   err,
		Code:    code,
	}
}

// errorCode maps sentinel errors onto stable API codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, chatsync_errors.ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, chatsync_errors.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, chatsync_errors.ErrUnknownKind):
		return "UNKNOWN_KIND"
	case errors.Is(err, chatsync_errors.ErrMalformedPayload):
		return "MALFORMED_PAYLOAD"
	case errors.Is(err, chatsync_errors.ErrInvalidInput):
		return "INVALID_INPUT"
	default:
		return "INTERNAL"
	}
}
