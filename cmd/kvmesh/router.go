package main

import (
	"fmt"
	"log"
	"os"

	"github.com/kvmesh/kvmesh/internal/config"
	"github.com/kvmesh/kvmesh/pkg/clock"
	"github.com/kvmesh/kvmesh/pkg/kv"
	"github.com/kvmesh/kvmesh/pkg/random"
	"github.com/kvmesh/kvmesh/pkg/util"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// newRouter assembles the routing stack described by the configuration:
// one endpoint client per replica, a failover client per shard, and a
// sharding client that partitions the keyspace over the shards.
func newRouter(cfg *config.Config, clientID string) (kv.Client, func(), error) {
	errorLogger := util.NewLoggerErrorLogger(
		log.New(os.Stderr, "kvmesh/"+clientID+" ", log.LstdFlags))

	var endpointClients []*clientv3.Client
	cleanup := func() {
		for _, client := range endpointClients {
			client.Close()
		}
	}

	shards := make([]kv.Client, 0, len(cfg.Shards))
	for _, shard := range cfg.Shards {
		replicas := make([]kv.Client, 0, len(shard.Endpoints))
		for _, endpoint := range shard.Endpoints {
			endpointClient, err := clientv3.New(clientv3.Config{
				Endpoints:         []string{endpoint},
				DialTimeout:       cfg.DialTimeout(),
				DialKeepAliveTime: cfg.DialKeepAliveTime(),
			})
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("failed to create a client for endpoint %q of shard %q: %w", endpoint, shard.Name, err)
			}
			endpointClients = append(endpointClients, endpointClient)
			// Replicas of a shard share the shard's identifier,
			// so that hash ring placement stays stable regardless
			// of which replica serves traffic.
			replicas = append(replicas, kv.NewRemoteClient(endpointClient, shard.Name))
		}

		failoverClient, err := kv.NewFailoverClient(
			replicas,
			clock.SystemClock,
			random.FastThreadSafeGenerator,
			errorLogger)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to create a failover client for shard %q: %w", shard.Name, err)
		}
		failoverClient.HoldoffTime = cfg.HoldoffTime()
		failoverClient.MaxRetries = cfg.Failover.MaxRetries
		if cfg.Failover.Balancing != nil {
			failoverClient.Balancing = *cfg.Failover.Balancing
		}

		shards = append(shards, kv.NewMetricsClient(failoverClient, shard.Name, clock.SystemClock))
	}

	shardingClient, err := kv.NewShardingClient(shards, random.FastThreadSafeGenerator)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create the sharding client: %w", err)
	}
	return shardingClient, cleanup, nil
}
