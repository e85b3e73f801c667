package kv

import (
	"context"
	"iter"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// KeyValue is a single stored entry, together with the revision
// bookkeeping the store maintains for it.
type KeyValue struct {
	// Key is the full key under which the entry is stored.
	Key string
	// Value is the entry's current contents.
	Value []byte
	// Version counts modifications since the key was last created.
	Version int64
	// CreateRevision is the store revision at which the key was
	// last created.
	CreateRevision int64
	// ModRevision is the store revision of the last modification.
	ModRevision int64
	// Lease is the identifier of the lease attached to the key, or
	// zero if the key has no lease.
	Lease int64
}

// PutOptions modifies the behavior of Client.Put.
type PutOptions struct {
	// ReturnPrevious causes Put to return the key-value pair that
	// the write replaced, if any.
	ReturnPrevious bool
	// LeaseID attaches the written key to an existing lease.
	LeaseID clientv3.LeaseID
	// IgnoreLease updates the value while keeping whatever lease is
	// currently attached to the key.
	IgnoreLease bool
	// IgnoreValue updates the lease while keeping the key's current
	// value.
	IgnoreValue bool
}

// CompareTarget denotes which attribute of a key a transaction
// comparison inspects.
type CompareTarget int

const (
	// CompareValue compares the key's value.
	CompareValue CompareTarget = iota
	// CompareVersion compares the key's version counter.
	CompareVersion
	// CompareCreateRevision compares the revision at which the key
	// was created.
	CompareCreateRevision
	// CompareModRevision compares the revision at which the key was
	// last modified.
	CompareModRevision
)

// CompareResult denotes the relation a transaction comparison requires
// between the inspected attribute and the provided operand.
type CompareResult int

const (
	// CompareEqual requires both to be equal.
	CompareEqual CompareResult = iota
	// CompareNotEqual requires both to differ.
	CompareNotEqual
	// CompareGreater requires the attribute to exceed the operand.
	CompareGreater
	// CompareLess requires the attribute to be below the operand.
	CompareLess
)

// OpKind identifies the kind of operation a transaction response entry
// corresponds to. It is used to filter the output of
// Client.ParseTxnResponse.
type OpKind int

const (
	// OpAny matches every operation kind.
	OpAny OpKind = iota
	// OpGet matches range reads.
	OpGet
	// OpPut matches writes.
	OpPut
	// OpDelete matches deletions.
	OpDelete
)

// TxnOpResult is one entry of a parsed transaction response.
type TxnOpResult struct {
	// Kind is the kind of operation that produced this entry.
	Kind OpKind
	// KVs holds the key-value pairs the operation returned: the
	// matched pairs of a read, or the previous pairs of a write or
	// deletion that requested them.
	KVs []KeyValue
}

// Client is the capability set of a key-value store endpoint. It is
// implemented both by backends that perform actual remote calls
// (RemoteClient) and by routing decorators (FailoverClient,
// ShardingClient, MetricsClient), which makes the routers freely
// nestable: a sharded deployment where every shard is a replica set is
// expressed as a ShardingClient holding one FailoverClient per shard.
//
// The NewCompare, NewGetOp, NewPutOp, NewDeleteOp and ParseTxnResponse
// operations are pure local computation. Routers still forward them to
// one of their backends for uniformity, but their outcome has no effect
// on backend health accounting. The same holds for GetPrefix, whose
// remote calls only happen during iteration of the returned sequence.
type Client interface {
	// Hostname returns the identifier of the endpoint that serves
	// the provided key. With an empty key it returns an identifier
	// for the client as a whole, which for routers may be synthetic.
	Hostname(key string) (string, error)

	// Put stores a value under a key. The returned key-value pair is
	// the replaced entry, and is only non-nil if
	// PutOptions.ReturnPrevious was set and the key existed.
	Put(ctx context.Context, key, value string, opts *PutOptions) (*KeyValue, error)
	// Get returns the entry stored under a key, or nil if the key is
	// absent.
	Get(ctx context.Context, key string) (*KeyValue, error)
	// GetPrefix returns a lazy sequence of the entries whose keys
	// start with the provided prefix, in ascending key order. A
	// non-positive limit returns all of them. The sequence is finite
	// and may be re-invoked from the start, but an interrupted
	// iteration cannot be resumed.
	GetPrefix(ctx context.Context, prefix string, limit int64) iter.Seq2[KeyValue, error]
	// Delete removes the entry stored under a key, reporting whether
	// the key was present.
	Delete(ctx context.Context, key string) (bool, error)

	// PutIf stores a value under a key, provided the key currently
	// holds the expected value. A nil expected value requires the
	// key to be absent. On failure with returnOnFail set, the key's
	// current entry is returned.
	PutIf(ctx context.Context, key, value string, expected *string, returnOnFail bool) (bool, *KeyValue, error)
	// DeleteIf removes a key, provided it currently holds the
	// expected value. A nil expected value requires the key to be
	// absent. On failure with returnOnFail set, the key's current
	// entry is returned.
	DeleteIf(ctx context.Context, key string, expected *string, returnOnFail bool) (bool, *KeyValue, error)

	// Txn atomically evaluates the comparisons and executes either
	// the success or the failure operations.
	Txn(ctx context.Context, cmps []clientv3.Cmp, success, failure []clientv3.Op) (*clientv3.TxnResponse, error)
	// NewCompare builds a transaction comparison clause. For targets
	// other than CompareValue, the operand must be the decimal
	// representation of a 64-bit integer.
	NewCompare(key string, target CompareTarget, result CompareResult, value string) (clientv3.Cmp, error)
	// NewGetOp builds a transaction read operation.
	NewGetOp(key string) (clientv3.Op, error)
	// NewPutOp builds a transaction write operation. A zero lease
	// identifier writes the key without a lease.
	NewPutOp(key, value string, leaseID clientv3.LeaseID) (clientv3.Op, error)
	// NewDeleteOp builds a transaction delete operation.
	NewDeleteOp(key string) (clientv3.Op, error)
	// ParseTxnResponse decomposes a transaction response into one
	// result per executed operation, descending into nested
	// transactions. A filter other than OpAny drops entries of other
	// kinds; flatten additionally emits one entry per key-value
	// pair.
	ParseTxnResponse(resp *clientv3.TxnResponse, filter OpKind, flatten bool) ([]TxnOpResult, error)

	// GrantLease creates a lease with the provided time to live in
	// seconds.
	GrantLease(ctx context.Context, ttl int64) (clientv3.LeaseID, error)
	// RevokeLease destroys a lease, deleting the keys attached to it.
	RevokeLease(ctx context.Context, id clientv3.LeaseID) error
	// RefreshLease resets a lease's time to live, returning the new
	// value in seconds.
	RefreshLease(ctx context.Context, id clientv3.LeaseID) (int64, error)
}
