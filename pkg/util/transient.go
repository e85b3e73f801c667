package util

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// IsTransientError returns true for errors that indicate the remote
// endpoint failed to produce a response: the server was unavailable,
// the call deadline expired, or the connection went away mid call.
// Callers use this to distinguish endpoint health problems from errors
// that are part of regular application behavior, such as requests that
// are malformed or not permitted.
//
// Cancellation initiated by the caller's own context is deliberately
// not classified as transient, as it says nothing about the health of
// the endpoint that happened to serve the call.
func IsTransientError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}
