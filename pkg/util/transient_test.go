package util_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kvmesh/kvmesh/pkg/util"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsTransientError(t *testing.T) {
	t.Run("Transient", func(t *testing.T) {
		for _, err := range []error{
			status.Error(codes.Unavailable, "Server offline"),
			status.Error(codes.DeadlineExceeded, "Request timed out"),
			context.DeadlineExceeded,
			fmt.Errorf("fetching page: %w", context.DeadlineExceeded),
		} {
			require.True(t, util.IsTransientError(err), "%v", err)
		}
	})

	t.Run("NotTransient", func(t *testing.T) {
		for _, err := range []error{
			status.Error(codes.NotFound, "Key does not exist"),
			status.Error(codes.InvalidArgument, "Malformed key"),
			status.Error(codes.PermissionDenied, "No access"),
			// Cancelation originates with the caller, not the
			// backend, so it says nothing about backend health.
			context.Canceled,
			status.Error(codes.Canceled, "Request canceled"),
			errors.New("unclassified failure"),
			nil,
		} {
			require.False(t, util.IsTransientError(err), "%v", err)
		}
	})
}
