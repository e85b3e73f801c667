package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kvmesh/kvmesh/internal/config"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kvmesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
shards:
  - name: shard-0
    endpoints:
      - https://store-0a.example.com:2379
      - https://store-0b.example.com:2379
  - name: shard-1
    endpoints:
      - https://store-1a.example.com:2379
failover:
  holdoffSeconds: 60
  maxRetries: 5
  balancing: false
`))
	require.NoError(t, err)

	require.Len(t, cfg.Shards, 2)
	require.Equal(t, "shard-0", cfg.Shards[0].Name)
	require.Len(t, cfg.Shards[0].Endpoints, 2)
	require.Equal(t, time.Minute, cfg.HoldoffTime())
	require.Equal(t, 5, cfg.Failover.MaxRetries)
	require.False(t, *cfg.Failover.Balancing)

	// Fields the file does not set keep their defaults.
	require.Equal(t, 5*time.Second, cfg.DialTimeout())
	require.Equal(t, 30*time.Second, cfg.DialKeepAliveTime())
	require.Equal(t, ":9090", cfg.Metrics.ListenAddr)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
shards:
  - name: shard-0
    endpoints:
      - https://store-0.example.com:2379
`))
	require.NoError(t, err)

	require.Equal(t, 2*time.Minute, cfg.HoldoffTime())
	require.Equal(t, 3, cfg.Failover.MaxRetries)
	require.True(t, *cfg.Failover.Balancing)
}

func TestLoadMetricsDisabled(t *testing.T) {
	// An explicitly empty listen address turns the metrics endpoint
	// off, overriding the default.
	cfg, err := config.Load(writeConfig(t, `
shards:
  - name: shard-0
    endpoints: [a:2379]
metrics:
  listenAddr: ""
`))
	require.NoError(t, err)
	require.Empty(t, cfg.Metrics.ListenAddr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.ErrorContains(t, err, "failed to read configuration file")
}

func TestLoadMalformedFile(t *testing.T) {
	_, err := config.Load(writeConfig(t, "shards: [unclosed"))
	require.ErrorContains(t, err, "failed to parse configuration file")
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name     string
		contents string
		message  string
	}{
		{
			name:     "NoShards",
			contents: "failover:\n  maxRetries: 3\n",
			message:  "at least one shard must be configured",
		},
		{
			name:     "UnnamedShard",
			contents: "shards:\n  - endpoints: [https://store.example.com:2379]\n",
			message:  "shard 0 has no name",
		},
		{
			name:     "DuplicateShardName",
			contents: "shards:\n  - name: shard-0\n    endpoints: [a:2379]\n  - name: shard-0\n    endpoints: [b:2379]\n",
			message:  `shard name "shard-0" is used more than once`,
		},
		{
			name:     "NoEndpoints",
			contents: "shards:\n  - name: shard-0\n",
			message:  `shard "shard-0" has no endpoints`,
		},
		{
			name:     "NegativeHoldoff",
			contents: "shards:\n  - name: shard-0\n    endpoints: [a:2379]\nfailover:\n  holdoffSeconds: -1\n",
			message:  "failover holdoff may not be negative",
		},
		{
			name:     "ZeroRetries",
			contents: "shards:\n  - name: shard-0\n    endpoints: [a:2379]\nfailover:\n  maxRetries: 0\n",
			message:  "failover must permit at least one attempt",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tc.contents))
			require.EqualError(t, err, tc.message)
		})
	}
}
