package tokenmap

import (
	"github.com/rcrowley/go-metrics"
)

// tokenMapMetrics are the metrics reported by a TokenMap
type tokenMapMetrics struct {
	// build times every Build
	build metrics.Timer
	// hit counts lookups answered with replicas
	hit metrics.Counter
	// miss counts lookups of unknown keyspaces or empty rings
	miss metrics.Counter
	// tokens is the number of tokens in the published ring
	tokens metrics.Gauge
	// hosts is the number of hosts in the published ring
	hosts metrics.Gauge
	// keyspaces is the number of published replica tables
	keyspaces metrics.Gauge
}

func newTokenMapMetrics(config *Config) *tokenMapMetrics {
	name := func(n string) string {
		return config.MetricsPrefix + "." + n
	}
	return &tokenMapMetrics{
		build:     metrics.GetOrRegisterTimer(name("build"), config.Registry),
		hit:       metrics.GetOrRegisterCounter(name("lookup.hit"), config.Registry),
		miss:      metrics.GetOrRegisterCounter(name("lookup.miss"), config.Registry),
		tokens:    metrics.GetOrRegisterGauge(name("ring.tokens"), config.Registry),
		hosts:     metrics.GetOrRegisterGauge(name("ring.hosts"), config.Registry),
		keyspaces: metrics.GetOrRegisterGauge(name("keyspaces"), config.Registry),
	}
}

func (m *tokenMapMetrics) published(s *snapshot) {
	m.tokens.Update(int64(s.ring.Len()))
	m.hosts.Update(int64(s.ring.NumHosts()))
	m.keyspaces.Update(int64(len(s.tables)))
}
