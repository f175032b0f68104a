package tokenmap

import (
	"github.com/justloop/tokenmap/utils"
	"github.com/rcrowley/go-metrics"
)

const (
	// defaultMetricsPrefix is the default prefix of every metric name
	defaultMetricsPrefix = "tokenmap"
)

// Config is the configuration related to TokenMap
type Config struct {
	// Partitioner is the partitioner class name of the cluster, required,
	// short (Murmur3Partitioner) or fully qualified (org.apache.cassandra.dht.Murmur3Partitioner)
	Partitioner string

	// Registry is where the metrics are registered, optional, default a private registry
	Registry metrics.Registry

	// MetricsPrefix is the prefix of the metric names, optional, default "tokenmap"
	MetricsPrefix string
}

// setDefaultConfig sets the default config
func setDefaultConfig(config *Config) *Config {
	if config.Registry == nil {
		config.Registry = metrics.NewRegistry()
	}
	config.MetricsPrefix = utils.SelectString(config.MetricsPrefix, defaultMetricsPrefix)
	return config
}
