// Package config provides configuration loading and validation for the
// kvmesh routing layer. Configuration is read from a YAML file that
// describes the shard topology and the routing behavior.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full client-side routing topology.
type Config struct {
	Shards   []ShardConfig  `yaml:"shards"`
	Failover FailoverConfig `yaml:"failover"`
	Dial     DialConfig     `yaml:"dial"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ShardConfig describes one partition of the keyspace: a name under
// which the shard is placed on the hash ring, and the replica endpoints
// that hold its data.
type ShardConfig struct {
	Name      string   `yaml:"name"`
	Endpoints []string `yaml:"endpoints"`
}

// FailoverConfig tunes the per-shard replica health tracking.
type FailoverConfig struct {
	HoldoffSeconds int64 `yaml:"holdoffSeconds"`
	MaxRetries     int   `yaml:"maxRetries"`
	// Balancing spreads requests uniformly over the healthy replicas
	// of a shard. When disabled, requests stick to the first healthy
	// replica. Defaults to enabled when omitted.
	Balancing *bool `yaml:"balancing"`
}

// DialConfig tunes the connections to the store endpoints.
type DialConfig struct {
	TimeoutSeconds   int64 `yaml:"timeoutSeconds"`
	KeepAliveSeconds int64 `yaml:"keepAliveSeconds"`
}

// MetricsConfig controls the HTTP endpoint on which the Prometheus
// registry is exposed while a command runs. An empty listen address
// disables the endpoint.
type MetricsConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}

// Default returns a Config with sensible defaults. It carries no shard
// topology, which callers have to provide themselves.
func Default() *Config {
	balancing := true
	return &Config{
		Failover: FailoverConfig{
			HoldoffSeconds: 120,
			MaxRetries:     3,
			Balancing:      &balancing,
		},
		Dial: DialConfig{
			TimeoutSeconds:   5,
			KeepAliveSeconds: 30,
		},
		Metrics: MetricsConfig{
			ListenAddr: ":9090",
		},
	}
}

// Load reads the configuration file at the given path, applying the
// defaults for all fields the file does not set.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies that would
// otherwise only surface once traffic flows.
func (c *Config) Validate() error {
	if len(c.Shards) == 0 {
		return fmt.Errorf("at least one shard must be configured")
	}
	names := make(map[string]bool, len(c.Shards))
	for index, shard := range c.Shards {
		if shard.Name == "" {
			return fmt.Errorf("shard %d has no name", index)
		}
		if names[shard.Name] {
			return fmt.Errorf("shard name %q is used more than once", shard.Name)
		}
		names[shard.Name] = true
		if len(shard.Endpoints) == 0 {
			return fmt.Errorf("shard %q has no endpoints", shard.Name)
		}
	}
	if c.Failover.HoldoffSeconds < 0 {
		return fmt.Errorf("failover holdoff may not be negative")
	}
	if c.Failover.MaxRetries < 1 {
		return fmt.Errorf("failover must permit at least one attempt")
	}
	return nil
}

// HoldoffTime returns the eviction holdoff as a duration.
func (c *Config) HoldoffTime() time.Duration {
	return time.Duration(c.Failover.HoldoffSeconds) * time.Second
}

// DialTimeout returns the endpoint dial timeout as a duration.
func (c *Config) DialTimeout() time.Duration {
	return time.Duration(c.Dial.TimeoutSeconds) * time.Second
}

// DialKeepAliveTime returns the connection keepalive interval as a
// duration.
func (c *Config) DialKeepAliveTime() time.Duration {
	return time.Duration(c.Dial.KeepAliveSeconds) * time.Second
}
