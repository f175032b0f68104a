package replication

import (
	"github.com/justloop/tokenmap/hashring"
	"github.com/justloop/tokenmap/host"
	"github.com/scylladb/go-set/strset"
)

// NetworkTopologyStrategy places replicas per datacenter and spreads them over racks
type NetworkTopologyStrategy struct {
	factors map[string]int
}

// NewNetworkTopologyStrategy will create a new NetworkTopologyStrategy from datacenter name to replication factor
func NewNetworkTopologyStrategy(factors map[string]int) *NetworkTopologyStrategy {
	copied := make(map[string]int, len(factors))
	for dc, rf := range factors {
		copied[dc] = rf
	}
	return &NetworkTopologyStrategy{factors: copied}
}

// Name implements Strategy
func (s *NetworkTopologyStrategy) Name() string {
	return NetworkTopologyStrategyName
}

// ReplicationFactors returns a copy of the configured replication factors
func (s *NetworkTopologyStrategy) ReplicationFactors() map[string]int {
	copied := make(map[string]int, len(s.factors))
	for dc, rf := range s.factors {
		copied[dc] = rf
	}
	return copied
}

// dcState tracks the placement in one datacenter during a walk
type dcState struct {
	want     int
	racks    int
	replicas int
	// seenRacks holds the racks which already contributed a replica
	seenRacks *strset.Set
	// skipped holds hosts passed over because their rack was already used, in walk order
	skipped []host.Host
}

func (d *dcState) done() bool {
	return d.replicas >= d.want
}

// Replicas implements Strategy
func (s *NetworkTopologyStrategy) Replicas(ring *hashring.Ring, start int) []host.Host {
	if ring.Len() == 0 {
		return nil
	}

	states := make(map[string]*dcState, len(s.factors))
	total := 0
	for dc, rf := range s.factors {
		info := ring.Datacenter(dc)
		want := rf
		if want > info.Hosts {
			want = info.Hosts
		}
		if want <= 0 {
			continue
		}
		states[dc] = &dcState{
			want:      want,
			racks:     info.Racks,
			seenRacks: strset.NewWithSize(info.Racks),
		}
		total += want
	}
	if total == 0 {
		return nil
	}

	replicas := make([]host.Host, 0, total)
	added := strset.NewWithSize(total)
	pending := len(states)
	add := func(state *dcState, h host.Host) {
		replicas = append(replicas, h)
		added.Add(h.Address())
		state.replicas++
		if state.done() {
			pending--
		}
	}

	for i, n := 0, ring.Len(); i < n && pending > 0; i++ {
		h := ring.Entry((start + i) % n).Host
		state, ok := states[h.Datacenter()]
		if !ok || state.done() || added.Has(h.Address()) {
			continue
		}

		// every rack already has a replica, take hosts as they come
		if state.seenRacks.Size() == state.racks {
			add(state, h)
			continue
		}

		if state.seenRacks.Has(h.Rack()) {
			if !containsHost(state.skipped, h) {
				state.skipped = append(state.skipped, h)
			}
			continue
		}

		add(state, h)
		state.seenRacks.Add(h.Rack())
		if state.seenRacks.Size() == state.racks {
			for _, skipped := range state.skipped {
				if state.done() {
					break
				}
				add(state, skipped)
			}
			state.skipped = nil
		}
	}
	return replicas
}

func containsHost(hosts []host.Host, h host.Host) bool {
	for _, other := range hosts {
		if host.Equal(other, h) {
			return true
		}
	}
	return false
}
