package kv

import (
	"context"
	"iter"
	"strconv"

	"go.etcd.io/etcd/api/v3/etcdserverpb"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// getPrefixPageSize is the number of entries fetched per range request
// while iterating a GetPrefix() sequence.
const getPrefixPageSize = 1000

type remoteClient struct {
	client   *clientv3.Client
	hostname string
}

// NewRemoteClient creates a Client that performs all of its operations
// against a single store endpoint. Every method is a direct translation
// to the underlying RPC protocol; connection management, transport
// security and authentication are handled by the provided etcd client.
//
// The hostname is used as the endpoint's stable identifier. Routers use
// it for hash ring placement and for diagnostics, so it must be unique
// within a deployment.
func NewRemoteClient(client *clientv3.Client, hostname string) Client {
	return &remoteClient{
		client:   client,
		hostname: hostname,
	}
}

func newKeyValue(entry *mvccpb.KeyValue) KeyValue {
	return KeyValue{
		Key:            string(entry.Key),
		Value:          entry.Value,
		Version:        entry.Version,
		CreateRevision: entry.CreateRevision,
		ModRevision:    entry.ModRevision,
		Lease:          entry.Lease,
	}
}

func (rc *remoteClient) Hostname(key string) (string, error) {
	return rc.hostname, nil
}

func (rc *remoteClient) Put(ctx context.Context, key, value string, opts *PutOptions) (*KeyValue, error) {
	var options []clientv3.OpOption
	if opts != nil {
		if opts.ReturnPrevious {
			options = append(options, clientv3.WithPrevKV())
		}
		if opts.LeaseID != clientv3.NoLease {
			options = append(options, clientv3.WithLease(opts.LeaseID))
		}
		if opts.IgnoreLease {
			options = append(options, clientv3.WithIgnoreLease())
		}
		if opts.IgnoreValue {
			options = append(options, clientv3.WithIgnoreValue())
		}
	}
	resp, err := rc.client.Put(ctx, key, value, options...)
	if err != nil {
		return nil, err
	}
	if resp.PrevKv == nil {
		return nil, nil
	}
	previous := newKeyValue(resp.PrevKv)
	return &previous, nil
}

func (rc *remoteClient) Get(ctx context.Context, key string) (*KeyValue, error) {
	resp, err := rc.client.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(resp.Kvs) == 0 {
		return nil, nil
	}
	entry := newKeyValue(resp.Kvs[0])
	return &entry, nil
}

func (rc *remoteClient) GetPrefix(ctx context.Context, prefix string, limit int64) iter.Seq2[KeyValue, error] {
	return func(yield func(KeyValue, error) bool) {
		rangeEnd := clientv3.GetPrefixRangeEnd(prefix)
		startKey := prefix
		var yielded int64
		for {
			pageSize := int64(getPrefixPageSize)
			if limit > 0 && limit-yielded < pageSize {
				pageSize = limit - yielded
			}
			resp, err := rc.client.Get(
				ctx,
				startKey,
				clientv3.WithRange(rangeEnd),
				clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend),
				clientv3.WithLimit(pageSize))
			if err != nil {
				yield(KeyValue{}, err)
				return
			}
			for _, entry := range resp.Kvs {
				if !yield(newKeyValue(entry), nil) {
					return
				}
				yielded++
				if limit > 0 && yielded >= limit {
					return
				}
			}
			if !resp.More || len(resp.Kvs) == 0 {
				return
			}
			// Resume immediately after the last returned key.
			startKey = string(resp.Kvs[len(resp.Kvs)-1].Key) + "\x00"
		}
	}
}

func (rc *remoteClient) Delete(ctx context.Context, key string) (bool, error) {
	resp, err := rc.client.Delete(ctx, key)
	if err != nil {
		return false, err
	}
	return resp.Deleted > 0, nil
}

// compareCurrentValue builds the comparison clause shared by PutIf()
// and DeleteIf(): the key either holds the expected value, or has never
// been created when no expected value is provided.
func compareCurrentValue(key string, expected *string) clientv3.Cmp {
	if expected == nil {
		return clientv3.Compare(clientv3.CreateRevision(key), "=", 0)
	}
	return clientv3.Compare(clientv3.Value(key), "=", *expected)
}

// firstElseEntry extracts the key-value pair returned by the read that
// conditional operations schedule in their failure branch.
func firstElseEntry(resp *clientv3.TxnResponse) *KeyValue {
	for _, response := range resp.Responses {
		if rangeResponse, ok := response.Response.(*etcdserverpb.ResponseOp_ResponseRange); ok {
			if kvs := rangeResponse.ResponseRange.Kvs; len(kvs) > 0 {
				entry := newKeyValue(kvs[0])
				return &entry
			}
		}
	}
	return nil
}

func (rc *remoteClient) PutIf(ctx context.Context, key, value string, expected *string, returnOnFail bool) (bool, *KeyValue, error) {
	txn := rc.client.Txn(ctx).
		If(compareCurrentValue(key, expected)).
		Then(clientv3.OpPut(key, value))
	if returnOnFail {
		txn = txn.Else(clientv3.OpGet(key))
	}
	resp, err := txn.Commit()
	if err != nil {
		return false, nil, err
	}
	if resp.Succeeded {
		return true, nil, nil
	}
	return false, firstElseEntry(resp), nil
}

func (rc *remoteClient) DeleteIf(ctx context.Context, key string, expected *string, returnOnFail bool) (bool, *KeyValue, error) {
	txn := rc.client.Txn(ctx).
		If(compareCurrentValue(key, expected)).
		Then(clientv3.OpDelete(key))
	if returnOnFail {
		txn = txn.Else(clientv3.OpGet(key))
	}
	resp, err := txn.Commit()
	if err != nil {
		return false, nil, err
	}
	if resp.Succeeded {
		return true, nil, nil
	}
	return false, firstElseEntry(resp), nil
}

func (rc *remoteClient) Txn(ctx context.Context, cmps []clientv3.Cmp, success, failure []clientv3.Op) (*clientv3.TxnResponse, error) {
	return rc.client.Txn(ctx).
		If(cmps...).
		Then(success...).
		Else(failure...).
		Commit()
}

func (rc *remoteClient) NewCompare(key string, target CompareTarget, result CompareResult, value string) (clientv3.Cmp, error) {
	var relation string
	switch result {
	case CompareEqual:
		relation = "="
	case CompareNotEqual:
		relation = "!="
	case CompareGreater:
		relation = ">"
	case CompareLess:
		relation = "<"
	default:
		return clientv3.Cmp{}, status.Errorf(codes.InvalidArgument, "Unknown comparison result %d", result)
	}
	if target == CompareValue {
		return clientv3.Compare(clientv3.Value(key), relation, value), nil
	}
	operand, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return clientv3.Cmp{}, status.Errorf(codes.InvalidArgument, "Comparison operand %#v is not a valid integer", value)
	}
	switch target {
	case CompareVersion:
		return clientv3.Compare(clientv3.Version(key), relation, operand), nil
	case CompareCreateRevision:
		return clientv3.Compare(clientv3.CreateRevision(key), relation, operand), nil
	case CompareModRevision:
		return clientv3.Compare(clientv3.ModRevision(key), relation, operand), nil
	default:
		return clientv3.Cmp{}, status.Errorf(codes.InvalidArgument, "Unknown comparison target %d", target)
	}
}

func (rc *remoteClient) NewGetOp(key string) (clientv3.Op, error) {
	return clientv3.OpGet(key), nil
}

func (rc *remoteClient) NewPutOp(key, value string, leaseID clientv3.LeaseID) (clientv3.Op, error) {
	if leaseID != clientv3.NoLease {
		return clientv3.OpPut(key, value, clientv3.WithLease(leaseID)), nil
	}
	return clientv3.OpPut(key, value), nil
}

func (rc *remoteClient) NewDeleteOp(key string) (clientv3.Op, error) {
	return clientv3.OpDelete(key), nil
}

func (rc *remoteClient) ParseTxnResponse(resp *clientv3.TxnResponse, filter OpKind, flatten bool) ([]TxnOpResult, error) {
	if resp == nil {
		return nil, status.Error(codes.InvalidArgument, "No transaction response provided")
	}
	return parseTxnResponseOps(resp.Responses, filter, flatten), nil
}

func parseTxnResponseOps(responses []*etcdserverpb.ResponseOp, filter OpKind, flatten bool) []TxnOpResult {
	var results []TxnOpResult
	for _, response := range responses {
		var result TxnOpResult
		switch op := response.Response.(type) {
		case *etcdserverpb.ResponseOp_ResponseRange:
			result.Kind = OpGet
			for _, entry := range op.ResponseRange.Kvs {
				result.KVs = append(result.KVs, newKeyValue(entry))
			}
		case *etcdserverpb.ResponseOp_ResponsePut:
			result.Kind = OpPut
			if op.ResponsePut.PrevKv != nil {
				result.KVs = append(result.KVs, newKeyValue(op.ResponsePut.PrevKv))
			}
		case *etcdserverpb.ResponseOp_ResponseDeleteRange:
			result.Kind = OpDelete
			for _, entry := range op.ResponseDeleteRange.PrevKvs {
				result.KVs = append(result.KVs, newKeyValue(entry))
			}
		case *etcdserverpb.ResponseOp_ResponseTxn:
			results = append(results, parseTxnResponseOps(op.ResponseTxn.Responses, filter, flatten)...)
			continue
		default:
			continue
		}
		if filter != OpAny && result.Kind != filter {
			continue
		}
		if flatten {
			for _, entry := range result.KVs {
				results = append(results, TxnOpResult{
					Kind: result.Kind,
					KVs:  []KeyValue{entry},
				})
			}
		} else {
			results = append(results, result)
		}
	}
	return results
}

func (rc *remoteClient) GrantLease(ctx context.Context, ttl int64) (clientv3.LeaseID, error) {
	resp, err := rc.client.Grant(ctx, ttl)
	if err != nil {
		return clientv3.NoLease, err
	}
	return resp.ID, nil
}

func (rc *remoteClient) RevokeLease(ctx context.Context, id clientv3.LeaseID) error {
	_, err := rc.client.Revoke(ctx, id)
	return err
}

func (rc *remoteClient) RefreshLease(ctx context.Context, id clientv3.LeaseID) (int64, error) {
	resp, err := rc.client.KeepAliveOnce(ctx, id)
	if err != nil {
		return 0, err
	}
	return resp.TTL, nil
}
