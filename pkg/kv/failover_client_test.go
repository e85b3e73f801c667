package kv_test

import (
	"context"
	"testing"
	"time"

	"github.com/kvmesh/kvmesh/internal/mock"
	"github.com/kvmesh/kvmesh/pkg/kv"
	"github.com/kvmesh/kvmesh/pkg/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	clientv3 "go.etcd.io/etcd/client/v3"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestFailoverClientInvalidBackend(t *testing.T) {
	ctrl := gomock.NewController(t)

	_, err := kv.NewFailoverClient(
		[]kv.Client{mock.NewMockClient(ctrl), nil},
		mock.NewMockClock(ctrl),
		mock.NewMockThreadSafeGenerator(ctrl),
		mock.NewMockErrorLogger(ctrl))
	testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Backend at index 1 does not provide the key-value capability set"), err)
}

func TestFailoverClientBalancedDispatch(t *testing.T) {
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	backendA := mock.NewMockClient(ctrl)
	backendB := mock.NewMockClient(ctrl)
	backendC := mock.NewMockClient(ctrl)
	generator := mock.NewMockThreadSafeGenerator(ctrl)
	failoverClient, err := kv.NewFailoverClient(
		[]kv.Client{backendA, backendB, backendC},
		mock.NewMockClock(ctrl),
		generator,
		mock.NewMockErrorLogger(ctrl))
	require.NoError(t, err)

	t.Run("Get", func(t *testing.T) {
		// With balancing enabled, each attempt picks a uniformly
		// random backend in rotation.
		generator.EXPECT().IntN(3).Return(1)
		backendB.EXPECT().Get(ctx, "key").Return(&kv.KeyValue{
			Key:         "key",
			Value:       []byte("contents"),
			ModRevision: 7,
		}, nil)

		entry, err := failoverClient.Get(ctx, "key")
		require.NoError(t, err)
		require.Equal(t, []byte("contents"), entry.Value)
	})

	t.Run("RevokeLease", func(t *testing.T) {
		generator.EXPECT().IntN(3).Return(0)
		backendA.EXPECT().RevokeLease(ctx, clientv3.LeaseID(42)).Return(nil)

		require.NoError(t, failoverClient.RevokeLease(ctx, clientv3.LeaseID(42)))
	})

	t.Run("Hostname", func(t *testing.T) {
		// Local operations go through the same backend selection
		// as remote ones.
		generator.EXPECT().IntN(3).Return(2)
		backendC.EXPECT().Hostname("").Return("backend-c", nil)

		hostname, err := failoverClient.Hostname("")
		require.NoError(t, err)
		require.Equal(t, "backend-c", hostname)
	})
}

func TestFailoverClientNonTransientErrorsPropagate(t *testing.T) {
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	backend := mock.NewMockClient(ctrl)
	failoverClient, err := kv.NewFailoverClient(
		[]kv.Client{backend},
		mock.NewMockClock(ctrl),
		mock.NewMockThreadSafeGenerator(ctrl),
		mock.NewMockErrorLogger(ctrl))
	require.NoError(t, err)
	failoverClient.Balancing = false

	// Errors that are part of application behavior must reach the
	// caller unchanged, without retrying and without affecting the
	// backend's health.
	backend.EXPECT().Put(ctx, "key", "value", nil).Return(nil, status.Error(codes.PermissionDenied, "No access to key"))
	_, err = failoverClient.Put(ctx, "key", "value", nil)
	testutil.RequireEqualStatus(t, status.Error(codes.PermissionDenied, "No access to key"), err)

	// Failures of local operations are not health signals either.
	backend.EXPECT().NewGetOp("").Return(clientv3.Op{}, status.Error(codes.InvalidArgument, "Empty key"))
	_, err = failoverClient.NewGetOp("")
	testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Empty key"), err)

	// The backend must still be in rotation afterwards.
	backend.EXPECT().Get(ctx, "key").Return(&kv.KeyValue{Key: "key"}, nil)
	_, err = failoverClient.Get(ctx, "key")
	require.NoError(t, err)
}

func TestFailoverClientCounterResetOnSuccess(t *testing.T) {
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	backend := mock.NewMockClient(ctrl)
	clock := mock.NewMockClock(ctrl)
	errorLogger := mock.NewMockErrorLogger(ctrl)
	failoverClient, err := kv.NewFailoverClient(
		[]kv.Client{backend},
		clock,
		mock.NewMockThreadSafeGenerator(ctrl),
		errorLogger)
	require.NoError(t, err)
	failoverClient.Balancing = false
	failoverClient.MaxRetries = 2
	failoverClient.HoldoffTime = time.Second

	serverOffline := status.Error(codes.Unavailable, "Server offline")

	// A transient failure followed by a success must clear the
	// failure counter.
	backend.EXPECT().Get(ctx, "key").Return(nil, serverOffline)
	backend.EXPECT().Get(ctx, "key").Return(&kv.KeyValue{Key: "key"}, nil)
	_, err = failoverClient.Get(ctx, "key")
	require.NoError(t, err)

	// Eviction must therefore require the full number of transient
	// failures again.
	backend.EXPECT().Get(ctx, "key").Return(nil, serverOffline).Times(2)
	clock.EXPECT().Now().Return(time.Unix(1000, 0)).Times(2)
	errorLogger.EXPECT().Log(testutil.EqStatus(t, status.Error(codes.Unavailable, "Backend 0 evicted after 2 transient failures: Server offline")))
	_, err = failoverClient.Get(ctx, "key")
	testutil.RequireEqualStatus(t, status.Error(codes.Unavailable, "No backends available"), err)
}

func TestFailoverClientEvictionAndReinstatement(t *testing.T) {
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	backendA := mock.NewMockClient(ctrl)
	backendB := mock.NewMockClient(ctrl)
	backendC := mock.NewMockClient(ctrl)
	clock := mock.NewMockClock(ctrl)
	errorLogger := mock.NewMockErrorLogger(ctrl)
	failoverClient, err := kv.NewFailoverClient(
		[]kv.Client{backendA, backendB, backendC},
		clock,
		mock.NewMockThreadSafeGenerator(ctrl),
		errorLogger)
	require.NoError(t, err)
	failoverClient.Balancing = false
	failoverClient.MaxRetries = 2
	failoverClient.HoldoffTime = time.Second

	serverOffline := status.Error(codes.Unavailable, "Server offline")

	// Two consecutive transient failures on the first backend in
	// line must evict it and let the call complete on the next one.
	backendA.EXPECT().Get(ctx, "key").Return(nil, serverOffline).Times(2)
	clock.EXPECT().Now().Return(time.Unix(1000, 0)).Times(2)
	errorLogger.EXPECT().Log(testutil.EqStatus(t, status.Error(codes.Unavailable, "Backend 0 evicted after 2 transient failures: Server offline")))
	backendB.EXPECT().Get(ctx, "key").Return(&kv.KeyValue{Key: "key", Value: []byte("b")}, nil)
	entry, err := failoverClient.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, []byte("b"), entry.Value)

	// While the holdoff has not expired, dispatch sticks to the
	// backends that remain in rotation.
	clock.EXPECT().Now().Return(time.Unix(1000, 500000000))
	backendB.EXPECT().Get(ctx, "key").Return(&kv.KeyValue{Key: "key", Value: []byte("b")}, nil)
	_, err = failoverClient.Get(ctx, "key")
	require.NoError(t, err)

	// Evicting the remaining backends as well must exhaust the
	// rotation and fail the call.
	clock.EXPECT().Now().Return(time.Unix(1000, 600000000)).Times(7)
	backendB.EXPECT().Get(ctx, "key").Return(nil, serverOffline).Times(2)
	errorLogger.EXPECT().Log(testutil.EqStatus(t, status.Error(codes.Unavailable, "Backend 1 evicted after 2 transient failures: Server offline")))
	backendC.EXPECT().Get(ctx, "key").Return(nil, serverOffline).Times(2)
	errorLogger.EXPECT().Log(testutil.EqStatus(t, status.Error(codes.Unavailable, "Backend 2 evicted after 2 transient failures: Server offline")))
	_, err = failoverClient.Get(ctx, "key")
	testutil.RequireEqualStatus(t, status.Error(codes.Unavailable, "No backends available"), err)

	// Once the holdoff expires, backends re-enter the rotation in
	// eviction order, so the first backend serves traffic again.
	clock.EXPECT().Now().Return(time.Unix(1002, 0))
	backendA.EXPECT().Get(ctx, "key").Return(&kv.KeyValue{Key: "key", Value: []byte("a")}, nil)
	entry, err = failoverClient.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, []byte("a"), entry.Value)

	// Reinstatement does not clear failure counters. The other two
	// backends were reinstated at their eviction threshold, so a
	// single transient failure evicts them right away.
	clock.EXPECT().Now().Return(time.Unix(1002, 100000000)).Times(6)
	backendA.EXPECT().Get(ctx, "key").Return(nil, serverOffline).Times(2)
	errorLogger.EXPECT().Log(testutil.EqStatus(t, status.Error(codes.Unavailable, "Backend 0 evicted after 2 transient failures: Server offline")))
	backendB.EXPECT().Get(ctx, "key").Return(nil, serverOffline)
	errorLogger.EXPECT().Log(testutil.EqStatus(t, status.Error(codes.Unavailable, "Backend 1 evicted after 3 transient failures: Server offline")))
	backendC.EXPECT().Get(ctx, "key").Return(nil, serverOffline)
	errorLogger.EXPECT().Log(testutil.EqStatus(t, status.Error(codes.Unavailable, "Backend 2 evicted after 3 transient failures: Server offline")))
	_, err = failoverClient.Get(ctx, "key")
	testutil.RequireEqualStatus(t, status.Error(codes.Unavailable, "No backends available"), err)
}

func TestFailoverClientReinstatementOrder(t *testing.T) {
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	backendA := mock.NewMockClient(ctrl)
	backendB := mock.NewMockClient(ctrl)
	backendC := mock.NewMockClient(ctrl)
	clock := mock.NewMockClock(ctrl)
	errorLogger := mock.NewMockErrorLogger(ctrl)
	failoverClient, err := kv.NewFailoverClient(
		[]kv.Client{backendA, backendB, backendC},
		clock,
		mock.NewMockThreadSafeGenerator(ctrl),
		errorLogger)
	require.NoError(t, err)
	failoverClient.Balancing = false
	failoverClient.MaxRetries = 2
	failoverClient.HoldoffTime = time.Second

	serverOffline := status.Error(codes.Unavailable, "Server offline")
	get := func() string {
		entry, err := failoverClient.Get(ctx, "key")
		require.NoError(t, err)
		return string(entry.Value)
	}

	// Evict the first backend.
	backendA.EXPECT().Get(ctx, "key").Return(nil, serverOffline).Times(2)
	clock.EXPECT().Now().Return(time.Unix(1000, 0)).Times(2)
	errorLogger.EXPECT().Log(testutil.EqStatus(t, status.Error(codes.Unavailable, "Backend 0 evicted after 2 transient failures: Server offline")))
	backendB.EXPECT().Get(ctx, "key").Return(&kv.KeyValue{Key: "key", Value: []byte("b")}, nil)
	require.Equal(t, "b", get())

	// A reinstated backend joins at the back of the rotation, so
	// even after the holdoff expires the second backend stays first.
	clock.EXPECT().Now().Return(time.Unix(1002, 0))
	backendB.EXPECT().Get(ctx, "key").Return(&kv.KeyValue{Key: "key", Value: []byte("b")}, nil)
	require.Equal(t, "b", get())

	// Evicting the second backend moves traffic to the third, and
	// evicting that one finally reaches the reinstated first backend.
	backendB.EXPECT().Get(ctx, "key").Return(nil, serverOffline).Times(2)
	clock.EXPECT().Now().Return(time.Unix(1002, 100000000)).Times(2)
	errorLogger.EXPECT().Log(testutil.EqStatus(t, status.Error(codes.Unavailable, "Backend 1 evicted after 2 transient failures: Server offline")))
	backendC.EXPECT().Get(ctx, "key").Return(&kv.KeyValue{Key: "key", Value: []byte("c")}, nil)
	require.Equal(t, "c", get())

	backendC.EXPECT().Get(ctx, "key").Return(nil, serverOffline).Times(2)
	clock.EXPECT().Now().Return(time.Unix(1002, 200000000)).Times(4)
	errorLogger.EXPECT().Log(testutil.EqStatus(t, status.Error(codes.Unavailable, "Backend 2 evicted after 2 transient failures: Server offline")))
	backendA.EXPECT().Get(ctx, "key").Return(&kv.KeyValue{Key: "key", Value: []byte("a")}, nil)
	require.Equal(t, "a", get())
}

func TestFailoverClientExhaustionWithoutBackends(t *testing.T) {
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	failoverClient, err := kv.NewFailoverClient(
		nil,
		mock.NewMockClock(ctrl),
		mock.NewMockThreadSafeGenerator(ctrl),
		mock.NewMockErrorLogger(ctrl))
	require.NoError(t, err)

	_, err = failoverClient.Get(ctx, "key")
	testutil.RequireEqualStatus(t, status.Error(codes.Unavailable, "No backends available"), err)

	// The lazy GetPrefix() sequence reports exhaustion on its first
	// iteration instead.
	for _, err := range failoverClient.GetPrefix(ctx, "prefix/", 0) {
		testutil.RequireEqualStatus(t, status.Error(codes.Unavailable, "No backends available"), err)
	}
}

func TestFailoverClientGetPrefix(t *testing.T) {
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	backend := mock.NewMockClient(ctrl)
	failoverClient, err := kv.NewFailoverClient(
		[]kv.Client{backend},
		mock.NewMockClock(ctrl),
		mock.NewMockThreadSafeGenerator(ctrl),
		mock.NewMockErrorLogger(ctrl))
	require.NoError(t, err)
	failoverClient.Balancing = false

	backend.EXPECT().GetPrefix(ctx, "prefix/", int64(10)).Return(
		func(yield func(kv.KeyValue, error) bool) {
			if !yield(kv.KeyValue{Key: "prefix/a", Value: []byte("1")}, nil) {
				return
			}
			yield(kv.KeyValue{Key: "prefix/b", Value: []byte("2")}, nil)
		})

	var keys []string
	for entry, err := range failoverClient.GetPrefix(ctx, "prefix/", 10) {
		require.NoError(t, err)
		keys = append(keys, entry.Key)
	}
	require.Equal(t, []string{"prefix/a", "prefix/b"}, keys)
}
