package kv_test

import (
	"context"
	"testing"

	"github.com/kvmesh/kvmesh/internal/mock"
	"github.com/kvmesh/kvmesh/pkg/kv"
	"github.com/kvmesh/kvmesh/pkg/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	clientv3 "go.etcd.io/etcd/client/v3"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestShardingClientInvalidBackend(t *testing.T) {
	ctrl := gomock.NewController(t)

	_, err := kv.NewShardingClient(
		[]kv.Client{nil, mock.NewMockClient(ctrl)},
		mock.NewMockThreadSafeGenerator(ctrl))
	testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Backend at index 0 does not provide the key-value capability set"), err)
}

func TestShardingClientDeterministicRouting(t *testing.T) {
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	backendA := mock.NewMockClient(ctrl)
	backendB := mock.NewMockClient(ctrl)
	shardingClient, err := kv.NewShardingClient(
		[]kv.Client{backendA, backendB},
		mock.NewMockThreadSafeGenerator(ctrl))
	require.NoError(t, err)

	// The hash ring is built exactly once, on first resolution. The
	// identifier of each backend is only requested at that point.
	backendA.EXPECT().Hostname("").Return("shard-a", nil)
	backendB.EXPECT().Hostname("").Return("shard-b", nil)

	// Which backend owns the key depends on the hash placement, but
	// every lookup of the same key must land on the same one.
	callsA, callsB := 0, 0
	backendA.EXPECT().Get(ctx, "key").DoAndReturn(
		func(ctx context.Context, key string) (*kv.KeyValue, error) {
			callsA++
			return &kv.KeyValue{Key: key}, nil
		}).AnyTimes()
	backendB.EXPECT().Get(ctx, "key").DoAndReturn(
		func(ctx context.Context, key string) (*kv.KeyValue, error) {
			callsB++
			return &kv.KeyValue{Key: key}, nil
		}).AnyTimes()

	for i := 0; i < 100; i++ {
		_, err := shardingClient.Get(ctx, "key")
		require.NoError(t, err)
	}
	require.Equal(t, 100, callsA+callsB)
	require.True(t, callsA == 0 || callsB == 0)

	// Hostname() with a key reports the owning backend, consistently
	// with where the reads went.
	owner, err := shardingClient.Hostname("key")
	require.NoError(t, err)
	if callsA > 0 {
		require.Equal(t, "shard-a", owner)
	} else {
		require.Equal(t, "shard-b", owner)
	}

	// Hostname() without a key names the full backend set.
	hostname, err := shardingClient.Hostname("")
	require.NoError(t, err)
	require.Equal(t, "shard-a,shard-b", hostname)
}

func TestShardingClientDuplicateIdentifiers(t *testing.T) {
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	backendA := mock.NewMockClient(ctrl)
	backendB := mock.NewMockClient(ctrl)
	shardingClient, err := kv.NewShardingClient(
		[]kv.Client{backendA, backendB},
		mock.NewMockThreadSafeGenerator(ctrl))
	require.NoError(t, err)

	backendA.EXPECT().Hostname("").Return("shard", nil)
	backendB.EXPECT().Hostname("").Return("shard", nil)

	_, err = shardingClient.Get(ctx, "key")
	testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Backend 1 reuses identifier \"shard\""), err)

	// The failure is sticky. The ring is not rebuilt on later calls.
	_, err = shardingClient.Get(ctx, "other")
	testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Backend 1 reuses identifier \"shard\""), err)
}

func TestShardingClientIdentifierResolutionFailure(t *testing.T) {
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	backend := mock.NewMockClient(ctrl)
	shardingClient, err := kv.NewShardingClient(
		[]kv.Client{backend},
		mock.NewMockThreadSafeGenerator(ctrl))
	require.NoError(t, err)

	backend.EXPECT().Hostname("").Return("", status.Error(codes.Unavailable, "No backends available"))

	_, err = shardingClient.Get(ctx, "key")
	testutil.RequireEqualStatus(t, status.Error(codes.Unavailable, "Failed to resolve the identifier of backend 0: No backends available"), err)
}

func TestShardingClientKeylessOperations(t *testing.T) {
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	backendA := mock.NewMockClient(ctrl)
	backendB := mock.NewMockClient(ctrl)
	generator := mock.NewMockThreadSafeGenerator(ctrl)
	shardingClient, err := kv.NewShardingClient(
		[]kv.Client{backendA, backendB},
		generator)
	require.NoError(t, err)

	// Operations that do not address a key go to a random backend.
	// No hash ring is needed for them.
	t.Run("GrantLease", func(t *testing.T) {
		generator.EXPECT().IntN(2).Return(1)
		backendB.EXPECT().GrantLease(ctx, int64(30)).Return(clientv3.LeaseID(42), nil)

		leaseID, err := shardingClient.GrantLease(ctx, 30)
		require.NoError(t, err)
		require.Equal(t, clientv3.LeaseID(42), leaseID)
	})

	t.Run("RefreshLease", func(t *testing.T) {
		generator.EXPECT().IntN(2).Return(0)
		backendA.EXPECT().RefreshLease(ctx, clientv3.LeaseID(42)).Return(int64(30), nil)

		ttl, err := shardingClient.RefreshLease(ctx, clientv3.LeaseID(42))
		require.NoError(t, err)
		require.Equal(t, int64(30), ttl)
	})

	t.Run("Txn", func(t *testing.T) {
		generator.EXPECT().IntN(2).Return(0)
		resp := &clientv3.TxnResponse{Succeeded: true}
		backendA.EXPECT().Txn(ctx, nil, nil, nil).Return(resp, nil)

		got, err := shardingClient.Txn(ctx, nil, nil, nil)
		require.NoError(t, err)
		require.Same(t, resp, got)
	})

	t.Run("NewCompare", func(t *testing.T) {
		generator.EXPECT().IntN(2).Return(1)
		cmp := clientv3.Compare(clientv3.Value("key"), "=", "value")
		backendB.EXPECT().NewCompare("key", kv.CompareValue, kv.CompareEqual, "value").Return(cmp, nil)

		got, err := shardingClient.NewCompare("key", kv.CompareValue, kv.CompareEqual, "value")
		require.NoError(t, err)
		require.Equal(t, cmp, got)
	})
}

func TestShardingClientKeylessWithoutBackends(t *testing.T) {
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	shardingClient, err := kv.NewShardingClient(
		nil, mock.NewMockThreadSafeGenerator(ctrl))
	require.NoError(t, err)

	_, err = shardingClient.GrantLease(ctx, 30)
	testutil.RequireEqualStatus(t, status.Error(codes.Unavailable, "No backends available"), err)
}

func TestShardingClientGetPrefix(t *testing.T) {
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	backend := mock.NewMockClient(ctrl)
	shardingClient, err := kv.NewShardingClient(
		[]kv.Client{backend},
		mock.NewMockThreadSafeGenerator(ctrl))
	require.NoError(t, err)

	backend.EXPECT().Hostname("").Return("shard", nil)
	backend.EXPECT().GetPrefix(ctx, "prefix/", int64(0)).Return(
		func(yield func(kv.KeyValue, error) bool) {
			yield(kv.KeyValue{Key: "prefix/a"}, nil)
		})

	var keys []string
	for entry, err := range shardingClient.GetPrefix(ctx, "prefix/", 0) {
		require.NoError(t, err)
		keys = append(keys, entry.Key)
	}
	require.Equal(t, []string{"prefix/a"}, keys)
}
