package kv

import (
	"context"
	"sync"

	"github.com/kvmesh/kvmesh/pkg/clock"
	"github.com/prometheus/client_golang/prometheus"

	clientv3 "go.etcd.io/etcd/client/v3"
	"google.golang.org/grpc/status"
)

var (
	metricsClientPrometheusMetrics sync.Once

	metricsClientOperationsStartedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kvmesh",
			Subsystem: "kv",
			Name:      "client_operations_started_total",
			Help:      "Total number of remote operations started on key-value clients.",
		},
		[]string{"name", "operation"})
	metricsClientOperationsDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kvmesh",
			Subsystem: "kv",
			Name:      "client_operations_duration_seconds",
			Help:      "Amount of time spent per remote operation on key-value clients, in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2.0, 16),
		},
		[]string{"name", "operation", "grpc_code"})
)

type metricsClient struct {
	Client
	name  string
	clock clock.Clock
}

// NewMetricsClient creates an adapter for Client that adds basic
// instrumentation in the form of Prometheus metrics. The local-only
// request building operations and the lazy GetPrefix() sequence pass
// through uninstrumented, as they perform no remote calls at dispatch
// time.
func NewMetricsClient(base Client, name string, clock clock.Clock) Client {
	metricsClientPrometheusMetrics.Do(func() {
		prometheus.MustRegister(metricsClientOperationsStartedTotal)
		prometheus.MustRegister(metricsClientOperationsDurationSeconds)
	})

	return &metricsClient{
		Client: base,
		name:   name,
		clock:  clock,
	}
}

func (mc *metricsClient) startOperation(operation string) func(err error) {
	metricsClientOperationsStartedTotal.WithLabelValues(mc.name, operation).Inc()
	timeStart := mc.clock.Now()
	return func(err error) {
		metricsClientOperationsDurationSeconds.
			WithLabelValues(mc.name, operation, status.Code(err).String()).
			Observe(mc.clock.Now().Sub(timeStart).Seconds())
	}
}

func (mc *metricsClient) Put(ctx context.Context, key, value string, opts *PutOptions) (*KeyValue, error) {
	finish := mc.startOperation("Put")
	previous, err := mc.Client.Put(ctx, key, value, opts)
	finish(err)
	return previous, err
}

func (mc *metricsClient) Get(ctx context.Context, key string) (*KeyValue, error) {
	finish := mc.startOperation("Get")
	entry, err := mc.Client.Get(ctx, key)
	finish(err)
	return entry, err
}

func (mc *metricsClient) Delete(ctx context.Context, key string) (bool, error) {
	finish := mc.startOperation("Delete")
	deleted, err := mc.Client.Delete(ctx, key)
	finish(err)
	return deleted, err
}

func (mc *metricsClient) PutIf(ctx context.Context, key, value string, expected *string, returnOnFail bool) (bool, *KeyValue, error) {
	finish := mc.startOperation("PutIf")
	succeeded, current, err := mc.Client.PutIf(ctx, key, value, expected, returnOnFail)
	finish(err)
	return succeeded, current, err
}

func (mc *metricsClient) DeleteIf(ctx context.Context, key string, expected *string, returnOnFail bool) (bool, *KeyValue, error) {
	finish := mc.startOperation("DeleteIf")
	succeeded, current, err := mc.Client.DeleteIf(ctx, key, expected, returnOnFail)
	finish(err)
	return succeeded, current, err
}

func (mc *metricsClient) Txn(ctx context.Context, cmps []clientv3.Cmp, success, failure []clientv3.Op) (*clientv3.TxnResponse, error) {
	finish := mc.startOperation("Txn")
	resp, err := mc.Client.Txn(ctx, cmps, success, failure)
	finish(err)
	return resp, err
}

func (mc *metricsClient) GrantLease(ctx context.Context, ttl int64) (clientv3.LeaseID, error) {
	finish := mc.startOperation("GrantLease")
	id, err := mc.Client.GrantLease(ctx, ttl)
	finish(err)
	return id, err
}

func (mc *metricsClient) RevokeLease(ctx context.Context, id clientv3.LeaseID) error {
	finish := mc.startOperation("RevokeLease")
	err := mc.Client.RevokeLease(ctx, id)
	finish(err)
	return err
}

func (mc *metricsClient) RefreshLease(ctx context.Context, id clientv3.LeaseID) (int64, error) {
	finish := mc.startOperation("RefreshLease")
	ttl, err := mc.Client.RefreshLease(ctx, id)
	finish(err)
	return ttl, err
}
