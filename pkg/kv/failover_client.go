package kv

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/kvmesh/kvmesh/pkg/clock"
	"github.com/kvmesh/kvmesh/pkg/random"
	"github.com/kvmesh/kvmesh/pkg/util"
	"github.com/prometheus/client_golang/prometheus"

	clientv3 "go.etcd.io/etcd/client/v3"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	failoverClientPrometheusMetrics sync.Once

	failoverClientBackendTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kvmesh",
			Subsystem: "kv",
			Name:      "failover_client_backend_transitions_total",
			Help:      "Number of times backends were evicted from or reinstated into failover clients.",
		},
		[]string{"transition"})
	failoverClientBackendTransitionsEvicted    = failoverClientBackendTransitions.WithLabelValues("Evicted")
	failoverClientBackendTransitionsReinstated = failoverClientBackendTransitions.WithLabelValues("Reinstated")
)

const (
	// DefaultHoldoffTime is the default minimum amount of time an
	// evicted backend remains out of rotation.
	DefaultHoldoffTime = 120 * time.Second
	// DefaultMaxRetries is the default number of transient failures,
	// uninterrupted by a success, after which a backend is evicted.
	DefaultMaxRetries = 3
)

type failoverBackend struct {
	client Client
	index  int
	// Transient failures observed since the last successful remote
	// call. Not cleared when the backend is reinstated after an
	// eviction, so a backend that keeps failing gets evicted again
	// on its first failure after reinstatement.
	failures int
}

type evictedBackend struct {
	backend      *failoverBackend
	evictionTime time.Time
}

// FailoverClient is a Client that spreads operations across a set of
// equivalent replica backends. Backends that repeatedly fail to respond
// are taken out of rotation and put back after a holdoff period, so
// that a single unreachable replica does not keep absorbing traffic.
//
// Errors that are part of regular application behavior pass through
// unchanged and have no effect on backend health.
type FailoverClient struct {
	// HoldoffTime is the minimum amount of time an evicted backend
	// remains out of rotation. May be adjusted after construction.
	HoldoffTime time.Duration
	// MaxRetries is the number of transient failures, uninterrupted
	// by a success, after which a backend is evicted. May be
	// adjusted after construction.
	MaxRetries int
	// Balancing selects backends uniformly at random when set. When
	// cleared, operations stick to the oldest backend in rotation
	// until it gets evicted. May be adjusted after construction.
	Balancing bool

	clock       clock.Clock
	generator   random.ThreadSafeGenerator
	errorLogger util.ErrorLogger

	lock sync.Mutex
	// Backends currently in rotation, ordered by the time they
	// entered it. Every constructed backend is in exactly one of
	// these two lists.
	active []*failoverBackend
	// Backends out of rotation, ordered by eviction time.
	evicted []evictedBackend
}

var _ Client = (*FailoverClient)(nil)

// NewFailoverClient creates a Client that forwards every operation to
// one of the provided backends, which are all expected to give access
// to the same data. The provided ErrorLogger receives the transient
// errors that cause evictions, as those are normally absorbed by
// failing over instead of being returned to the caller.
func NewFailoverClient(backends []Client, clock clock.Clock, generator random.ThreadSafeGenerator, errorLogger util.ErrorLogger) (*FailoverClient, error) {
	failoverClientPrometheusMetrics.Do(func() {
		prometheus.MustRegister(failoverClientBackendTransitions)
	})

	active := make([]*failoverBackend, 0, len(backends))
	for index, backend := range backends {
		if backend == nil {
			return nil, status.Errorf(codes.InvalidArgument, "Backend at index %d does not provide the key-value capability set", index)
		}
		active = append(active, &failoverBackend{
			client: backend,
			index:  index,
		})
	}
	return &FailoverClient{
		HoldoffTime: DefaultHoldoffTime,
		MaxRetries:  DefaultMaxRetries,
		Balancing:   true,

		clock:       clock,
		generator:   generator,
		errorLogger: errorLogger,

		active: active,
	}, nil
}

// selectBackend reinstates backends whose holdoff has expired and picks
// the backend that should serve the next attempt.
//
// Reinstatement only considers the prefix of the evicted list that has
// aged out. Entries behind a not yet expired one are left alone until a
// later call, which keeps re-entry ordered by eviction time.
func (fc *FailoverClient) selectBackend() (*failoverBackend, error) {
	fc.lock.Lock()
	defer fc.lock.Unlock()

	if len(fc.evicted) > 0 {
		now := fc.clock.Now()
		for len(fc.evicted) > 0 && now.After(fc.evicted[0].evictionTime.Add(fc.HoldoffTime)) {
			fc.active = append(fc.active, fc.evicted[0].backend)
			fc.evicted = fc.evicted[1:]
			failoverClientBackendTransitionsReinstated.Inc()
		}
	}

	if len(fc.active) == 0 {
		return nil, status.Error(codes.Unavailable, "No backends available")
	}
	index := 0
	if fc.Balancing {
		index = fc.generator.IntN(len(fc.active))
	}
	return fc.active[index], nil
}

func (fc *FailoverClient) recordSuccess(backend *failoverBackend) {
	fc.lock.Lock()
	backend.failures = 0
	fc.lock.Unlock()
}

func (fc *FailoverClient) recordFailure(backend *failoverBackend, err error) {
	fc.lock.Lock()
	defer fc.lock.Unlock()

	backend.failures++
	if backend.failures < fc.MaxRetries {
		return
	}
	for i, active := range fc.active {
		if active == backend {
			fc.active = append(fc.active[:i:i], fc.active[i+1:]...)
			fc.evicted = append(fc.evicted, evictedBackend{
				backend:      backend,
				evictionTime: fc.clock.Now(),
			})
			failoverClientBackendTransitionsEvicted.Inc()
			fc.errorLogger.Log(util.StatusWrapf(err, "Backend %d evicted after %d transient failures", backend.index, backend.failures))
			return
		}
	}
}

// callFailover runs a single logical operation, retrying on other
// backends for as long as attempts fail transiently. Local-only
// operations still consume a backend slot for uniformity, but their
// outcome has no effect on failure accounting.
//
// The loop needs no explicit retry bound: every transient failure
// either advances a failure counter or shrinks the set of backends in
// rotation, so it terminates with a result, a non-transient error, or
// an exhaustion error once no backends remain.
func callFailover[T any](fc *FailoverClient, localOnly bool, call func(Client) (T, error)) (T, error) {
	for {
		backend, err := fc.selectBackend()
		if err != nil {
			var zero T
			return zero, err
		}
		result, err := call(backend.client)
		if localOnly {
			return result, err
		}
		if err == nil {
			fc.recordSuccess(backend)
			return result, nil
		}
		if !util.IsTransientError(err) {
			return result, err
		}
		fc.recordFailure(backend, err)
	}
}

type conditionalOutcome struct {
	succeeded bool
	current   *KeyValue
}

func (fc *FailoverClient) Hostname(key string) (string, error) {
	return callFailover(fc, true, func(c Client) (string, error) {
		return c.Hostname(key)
	})
}

func (fc *FailoverClient) Put(ctx context.Context, key, value string, opts *PutOptions) (*KeyValue, error) {
	return callFailover(fc, false, func(c Client) (*KeyValue, error) {
		return c.Put(ctx, key, value, opts)
	})
}

func (fc *FailoverClient) Get(ctx context.Context, key string) (*KeyValue, error) {
	return callFailover(fc, false, func(c Client) (*KeyValue, error) {
		return c.Get(ctx, key)
	})
}

func (fc *FailoverClient) GetPrefix(ctx context.Context, prefix string, limit int64) iter.Seq2[KeyValue, error] {
	// Only the selection of a backend happens here. The remote calls
	// take place during iteration, outside the dispatch loop, so
	// their errors reach the caller without failover.
	seq, err := callFailover(fc, true, func(c Client) (iter.Seq2[KeyValue, error], error) {
		return c.GetPrefix(ctx, prefix, limit), nil
	})
	if err != nil {
		return func(yield func(KeyValue, error) bool) {
			yield(KeyValue{}, err)
		}
	}
	return seq
}

func (fc *FailoverClient) Delete(ctx context.Context, key string) (bool, error) {
	return callFailover(fc, false, func(c Client) (bool, error) {
		return c.Delete(ctx, key)
	})
}

func (fc *FailoverClient) PutIf(ctx context.Context, key, value string, expected *string, returnOnFail bool) (bool, *KeyValue, error) {
	outcome, err := callFailover(fc, false, func(c Client) (conditionalOutcome, error) {
		succeeded, current, err := c.PutIf(ctx, key, value, expected, returnOnFail)
		return conditionalOutcome{succeeded: succeeded, current: current}, err
	})
	return outcome.succeeded, outcome.current, err
}

func (fc *FailoverClient) DeleteIf(ctx context.Context, key string, expected *string, returnOnFail bool) (bool, *KeyValue, error) {
	outcome, err := callFailover(fc, false, func(c Client) (conditionalOutcome, error) {
		succeeded, current, err := c.DeleteIf(ctx, key, expected, returnOnFail)
		return conditionalOutcome{succeeded: succeeded, current: current}, err
	})
	return outcome.succeeded, outcome.current, err
}

func (fc *FailoverClient) Txn(ctx context.Context, cmps []clientv3.Cmp, success, failure []clientv3.Op) (*clientv3.TxnResponse, error) {
	return callFailover(fc, false, func(c Client) (*clientv3.TxnResponse, error) {
		return c.Txn(ctx, cmps, success, failure)
	})
}

func (fc *FailoverClient) NewCompare(key string, target CompareTarget, result CompareResult, value string) (clientv3.Cmp, error) {
	return callFailover(fc, true, func(c Client) (clientv3.Cmp, error) {
		return c.NewCompare(key, target, result, value)
	})
}

func (fc *FailoverClient) NewGetOp(key string) (clientv3.Op, error) {
	return callFailover(fc, true, func(c Client) (clientv3.Op, error) {
		return c.NewGetOp(key)
	})
}

func (fc *FailoverClient) NewPutOp(key, value string, leaseID clientv3.LeaseID) (clientv3.Op, error) {
	return callFailover(fc, true, func(c Client) (clientv3.Op, error) {
		return c.NewPutOp(key, value, leaseID)
	})
}

func (fc *FailoverClient) NewDeleteOp(key string) (clientv3.Op, error) {
	return callFailover(fc, true, func(c Client) (clientv3.Op, error) {
		return c.NewDeleteOp(key)
	})
}

func (fc *FailoverClient) ParseTxnResponse(resp *clientv3.TxnResponse, filter OpKind, flatten bool) ([]TxnOpResult, error) {
	return callFailover(fc, true, func(c Client) ([]TxnOpResult, error) {
		return c.ParseTxnResponse(resp, filter, flatten)
	})
}

func (fc *FailoverClient) GrantLease(ctx context.Context, ttl int64) (clientv3.LeaseID, error) {
	return callFailover(fc, false, func(c Client) (clientv3.LeaseID, error) {
		return c.GrantLease(ctx, ttl)
	})
}

func (fc *FailoverClient) RevokeLease(ctx context.Context, id clientv3.LeaseID) error {
	_, err := callFailover(fc, false, func(c Client) (struct{}, error) {
		return struct{}{}, c.RevokeLease(ctx, id)
	})
	return err
}

func (fc *FailoverClient) RefreshLease(ctx context.Context, id clientv3.LeaseID) (int64, error) {
	return callFailover(fc, false, func(c Client) (int64, error) {
		return c.RefreshLease(ctx, id)
	})
}
