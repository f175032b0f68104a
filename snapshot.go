package tokenmap

import (
	"encoding/binary"
	"sort"

	"github.com/dgryski/go-farm"
	"github.com/justloop/tokenmap/hashring"
	"github.com/justloop/tokenmap/host"
	"github.com/justloop/tokenmap/partition"
	"github.com/justloop/tokenmap/replication"
)

// replicaTable holds the replicas of every ring entry of one keyspace.
// It is immutable once built, replicas[i] belongs to ring.Entry(i).
type replicaTable struct {
	ring     *hashring.Ring
	strategy replication.Strategy
	replicas [][]host.Host
}

func newReplicaTable(ring *hashring.Ring, strategy replication.Strategy) *replicaTable {
	replicas := make([][]host.Host, ring.Len())
	for i := range replicas {
		replicas[i] = strategy.Replicas(ring, i)
	}
	return &replicaTable{
		ring:     ring,
		strategy: strategy,
		replicas: replicas,
	}
}

func (t *replicaTable) lookup(token partition.Token) []host.Host {
	i := t.ring.Search(token)
	if i < 0 {
		return nil
	}
	return t.replicas[i]
}

// snapshot is the published, immutable state of a TokenMap
type snapshot struct {
	ring   *hashring.Ring
	tables map[string]*replicaTable
}

func emptySnapshot() *snapshot {
	return &snapshot{
		ring:   hashring.NewTokenRing().Ring(),
		tables: make(map[string]*replicaTable),
	}
}

// keyspaces returns the keyspace names in order
func (s *snapshot) keyspaces() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// without returns a copy of s that no longer has keyspace
func (s *snapshot) without(keyspace string) *snapshot {
	tables := make(map[string]*replicaTable, len(s.tables))
	for name, table := range s.tables {
		if name != keyspace {
			tables[name] = table
		}
	}
	return &snapshot{ring: s.ring, tables: tables}
}

// checksum fingerprints the ring and every replica table
func (s *snapshot) checksum() uint64 {
	buf := binary.AppendUvarint(nil, s.ring.Checksum())
	for _, name := range s.keyspaces() {
		table := s.tables[name]
		buf = appendString(buf, name)
		buf = appendString(buf, replication.Describe(table.strategy))
		buf = binary.AppendUvarint(buf, table.ring.Checksum())
		for _, replicas := range table.replicas {
			buf = binary.AppendUvarint(buf, uint64(len(replicas)))
			for _, h := range replicas {
				buf = appendString(buf, h.Address())
			}
		}
	}
	return farm.Fingerprint64(buf)
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}
