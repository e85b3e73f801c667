package kv

import (
	"context"
	"iter"
	"strings"
	"sync"

	"github.com/kvmesh/kvmesh/pkg/random"
	"github.com/kvmesh/kvmesh/pkg/util"
	"github.com/serialx/hashring"

	clientv3 "go.etcd.io/etcd/client/v3"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ShardingClient is a Client that partitions the keyspace across a set
// of backends using consistent hashing. Every key-addressed operation
// is forwarded to the backend that owns the key; operations without a
// key, such as transactions and lease management, go to a uniformly
// random backend. The client performs no health tracking of its own.
// Deployments that need both partitioning and failover wrap every
// shard's replica set in a FailoverClient and hand those to a
// ShardingClient.
type ShardingClient struct {
	backends  []Client
	generator random.ThreadSafeGenerator

	// The hash ring is built at most once, from the full backend
	// set, the first time a key needs to be resolved. Backends are
	// placed on the ring under the identifier they report at that
	// point in time.
	buildRing    sync.Once
	ring         *hashring.HashRing
	backendsByID map[string]Client
	identifiers  []string
	buildErr     error

	lock sync.Mutex
	// Previously resolved keys. Entries are never invalidated, so a
	// key keeps going to the backend it first resolved to for the
	// lifetime of the client.
	cachedTargets map[string]string
}

var _ Client = (*ShardingClient)(nil)

// NewShardingClient creates a Client that distributes operations over
// the provided backends by hashing the keys they address.
func NewShardingClient(backends []Client, generator random.ThreadSafeGenerator) (*ShardingClient, error) {
	for index, backend := range backends {
		if backend == nil {
			return nil, status.Errorf(codes.InvalidArgument, "Backend at index %d does not provide the key-value capability set", index)
		}
	}
	return &ShardingClient{
		backends:  backends,
		generator: generator,

		cachedTargets: map[string]string{},
	}, nil
}

func (sc *ShardingClient) ensureRing() error {
	sc.buildRing.Do(func() {
		backendsByID := make(map[string]Client, len(sc.backends))
		identifiers := make([]string, 0, len(sc.backends))
		for index, backend := range sc.backends {
			identifier, err := backend.Hostname("")
			if err != nil {
				sc.buildErr = util.StatusWrapf(err, "Failed to resolve the identifier of backend %d", index)
				return
			}
			if _, ok := backendsByID[identifier]; ok {
				sc.buildErr = status.Errorf(codes.InvalidArgument, "Backend %d reuses identifier %#v", index, identifier)
				return
			}
			backendsByID[identifier] = backend
			identifiers = append(identifiers, identifier)
		}
		sc.ring = hashring.New(identifiers)
		sc.backendsByID = backendsByID
		sc.identifiers = identifiers
	})
	return sc.buildErr
}

func (sc *ShardingClient) getIdentifierFromKey(key string) (string, error) {
	sc.lock.Lock()
	identifier, ok := sc.cachedTargets[key]
	sc.lock.Unlock()
	if ok {
		return identifier, nil
	}

	if err := sc.ensureRing(); err != nil {
		return "", err
	}
	identifier, ok = sc.ring.GetNode(key)
	if !ok {
		return "", status.Error(codes.Unavailable, "Hash ring contains no backends")
	}

	sc.lock.Lock()
	sc.cachedTargets[key] = identifier
	sc.lock.Unlock()
	return identifier, nil
}

func (sc *ShardingClient) getClientFromKey(key string) (Client, error) {
	identifier, err := sc.getIdentifierFromKey(key)
	if err != nil {
		return nil, err
	}
	return sc.backendsByID[identifier], nil
}

func (sc *ShardingClient) pickRandomBackend() (Client, error) {
	if len(sc.backends) == 0 {
		return nil, status.Error(codes.Unavailable, "No backends available")
	}
	return sc.backends[sc.generator.IntN(len(sc.backends))], nil
}

func (sc *ShardingClient) Hostname(key string) (string, error) {
	if key != "" {
		return sc.getIdentifierFromKey(key)
	}
	// Without a key there is no single serving backend. Return a
	// synthetic identifier that names all of them, which is what
	// gets used in diagnostics output.
	if err := sc.ensureRing(); err != nil {
		return "", err
	}
	return strings.Join(sc.identifiers, ","), nil
}

func (sc *ShardingClient) Put(ctx context.Context, key, value string, opts *PutOptions) (*KeyValue, error) {
	backend, err := sc.getClientFromKey(key)
	if err != nil {
		return nil, err
	}
	return backend.Put(ctx, key, value, opts)
}

func (sc *ShardingClient) Get(ctx context.Context, key string) (*KeyValue, error) {
	backend, err := sc.getClientFromKey(key)
	if err != nil {
		return nil, err
	}
	return backend.Get(ctx, key)
}

func (sc *ShardingClient) GetPrefix(ctx context.Context, prefix string, limit int64) iter.Seq2[KeyValue, error] {
	// Prefixes hash like keys, so that a prefix scan stays on the
	// backend that owns keys starting with it.
	backend, err := sc.getClientFromKey(prefix)
	if err != nil {
		return func(yield func(KeyValue, error) bool) {
			yield(KeyValue{}, err)
		}
	}
	return backend.GetPrefix(ctx, prefix, limit)
}

func (sc *ShardingClient) Delete(ctx context.Context, key string) (bool, error) {
	backend, err := sc.getClientFromKey(key)
	if err != nil {
		return false, err
	}
	return backend.Delete(ctx, key)
}

func (sc *ShardingClient) PutIf(ctx context.Context, key, value string, expected *string, returnOnFail bool) (bool, *KeyValue, error) {
	backend, err := sc.getClientFromKey(key)
	if err != nil {
		return false, nil, err
	}
	return backend.PutIf(ctx, key, value, expected, returnOnFail)
}

func (sc *ShardingClient) DeleteIf(ctx context.Context, key string, expected *string, returnOnFail bool) (bool, *KeyValue, error) {
	backend, err := sc.getClientFromKey(key)
	if err != nil {
		return false, nil, err
	}
	return backend.DeleteIf(ctx, key, expected, returnOnFail)
}

func (sc *ShardingClient) Txn(ctx context.Context, cmps []clientv3.Cmp, success, failure []clientv3.Op) (*clientv3.TxnResponse, error) {
	// Transactions may address keys on multiple shards, so there is
	// no single correct owner. Callers are expected to constrain
	// their transactions to keys of one shard themselves.
	backend, err := sc.pickRandomBackend()
	if err != nil {
		return nil, err
	}
	return backend.Txn(ctx, cmps, success, failure)
}

func (sc *ShardingClient) NewCompare(key string, target CompareTarget, result CompareResult, value string) (clientv3.Cmp, error) {
	backend, err := sc.pickRandomBackend()
	if err != nil {
		return clientv3.Cmp{}, err
	}
	return backend.NewCompare(key, target, result, value)
}

func (sc *ShardingClient) NewGetOp(key string) (clientv3.Op, error) {
	backend, err := sc.getClientFromKey(key)
	if err != nil {
		return clientv3.Op{}, err
	}
	return backend.NewGetOp(key)
}

func (sc *ShardingClient) NewPutOp(key, value string, leaseID clientv3.LeaseID) (clientv3.Op, error) {
	backend, err := sc.getClientFromKey(key)
	if err != nil {
		return clientv3.Op{}, err
	}
	return backend.NewPutOp(key, value, leaseID)
}

func (sc *ShardingClient) NewDeleteOp(key string) (clientv3.Op, error) {
	backend, err := sc.getClientFromKey(key)
	if err != nil {
		return clientv3.Op{}, err
	}
	return backend.NewDeleteOp(key)
}

func (sc *ShardingClient) ParseTxnResponse(resp *clientv3.TxnResponse, filter OpKind, flatten bool) ([]TxnOpResult, error) {
	backend, err := sc.pickRandomBackend()
	if err != nil {
		return nil, err
	}
	return backend.ParseTxnResponse(resp, filter, flatten)
}

func (sc *ShardingClient) GrantLease(ctx context.Context, ttl int64) (clientv3.LeaseID, error) {
	backend, err := sc.pickRandomBackend()
	if err != nil {
		return clientv3.NoLease, err
	}
	return backend.GrantLease(ctx, ttl)
}

func (sc *ShardingClient) RevokeLease(ctx context.Context, id clientv3.LeaseID) error {
	backend, err := sc.pickRandomBackend()
	if err != nil {
		return err
	}
	return backend.RevokeLease(ctx, id)
}

func (sc *ShardingClient) RefreshLease(ctx context.Context, id clientv3.LeaseID) (int64, error) {
	backend, err := sc.pickRandomBackend()
	if err != nil {
		return 0, err
	}
	return backend.RefreshLease(ctx, id)
}
