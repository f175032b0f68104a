package replication

import (
	"github.com/justloop/tokenmap/hashring"
	"github.com/justloop/tokenmap/host"
	"github.com/scylladb/go-set/strset"
)

// SimpleStrategy places replicas on the next distinct hosts of the ring, ignoring topology
type SimpleStrategy struct {
	replicationFactor int
}

// NewSimpleStrategy will create a new SimpleStrategy
func NewSimpleStrategy(replicationFactor int) *SimpleStrategy {
	return &SimpleStrategy{replicationFactor: replicationFactor}
}

// Name implements Strategy
func (s *SimpleStrategy) Name() string {
	return SimpleStrategyName
}

// ReplicationFactor returns the configured replication factor
func (s *SimpleStrategy) ReplicationFactor() int {
	return s.replicationFactor
}

// Replicas implements Strategy
func (s *SimpleStrategy) Replicas(ring *hashring.Ring, start int) []host.Host {
	want := s.replicationFactor
	if n := ring.NumHosts(); want > n {
		want = n
	}
	if want <= 0 || ring.Len() == 0 {
		return nil
	}

	replicas := make([]host.Host, 0, want)
	seen := strset.NewWithSize(want)
	for i, n := 0, ring.Len(); i < n && len(replicas) < want; i++ {
		h := ring.Entry((start + i) % n).Host
		if seen.Has(h.Address()) {
			continue
		}
		seen.Add(h.Address())
		replicas = append(replicas, h)
	}
	return replicas
}
