/*
Package tokenmap is the token aware routing core of the driver: given a keyspace and a partition key,
it returns the replicas owning the key without asking the cluster.

Mutations (hosts joining and leaving, keyspaces being created, altered and dropped) only record what changed.
Build recomputes the ring and the replica tables of the affected keyspaces and publishes them as one immutable
snapshot. Lookups read the latest snapshot without locking, so a lookup racing with Build sees either the old
or the new state, never a mix of both.
*/
package tokenmap

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/justloop/tokenmap/hashring"
	"github.com/justloop/tokenmap/host"
	"github.com/justloop/tokenmap/partition"
	"github.com/justloop/tokenmap/replication"
	log "github.com/sirupsen/logrus"
)

// logTag is the logging tag related to the token map
var logTag = "tokenmap.service"

// TokenMap is interface for tokenmap package.
type TokenMap interface {
	// AddHost adds the tokens encoded as a list<varint> value to the tokens h already owns.
	// A malformed value is logged and adds nothing.
	AddHost(h host.Host, tokens []byte)

	// AddHostTokens is AddHost with tokens already decoded to their textual form
	AddHostTokens(h host.Host, tokens []string)

	// UpdateHost replaces every token of h with tokens, it is RemoveHost followed by AddHost
	UpdateHost(h host.Host, tokens []byte)

	// UpdateHostTokens is UpdateHost with tokens already decoded to their textual form
	UpdateHostTokens(h host.Host, tokens []string)

	// RemoveHost removes every token of h from the ring
	RemoveHost(h host.Host)

	// AddHostAndBuild is AddHost followed by Build
	AddHostAndBuild(h host.Host, tokens []byte)

	// RemoveHostAndBuild is RemoveHost followed by Build
	RemoveHostAndBuild(h host.Host)

	// UpdateHostAndBuild is UpdateHost followed by Build
	UpdateHostAndBuild(h host.Host, tokens []byte)

	// AddKeyspace registers the replication setting of a keyspace, replacing any previous one.
	// A setting with an unknown class unregisters the keyspace and returns ErrUnknownStrategy.
	AddKeyspace(name string, replication map[string]string) error

	// UpdateKeyspace is AddKeyspace for a keyspace which already exists
	UpdateKeyspace(name string, replication map[string]string) error

	// DropKeyspace forgets a keyspace, its lookups miss from now on
	DropKeyspace(name string)

	// Build recomputes what changed since the last Build and publishes it
	Build()

	// GetReplicas returns the replicas of key in keyspace, primary replica first.
	// It returns false when the keyspace is unknown or the ring is empty.
	// The returned slice is shared and must not be modified.
	GetReplicas(keyspace string, key []byte) ([]host.Host, bool)

	// GetReplicasForToken is GetReplicas for an already computed token.
	// A token of another partitioner misses.
	GetReplicasForToken(keyspace string, token partition.Token) ([]host.Host, bool)

	// Partitioner returns the partitioner the map is bound to
	Partitioner() partition.Partitioner

	// Keyspaces returns the names of the published keyspaces, in order
	Keyspaces() []string

	// Checksum is a fingerprint of the published state, equal states have equal checksums
	Checksum() uint64

	// Debug will return the debug information in tokenmap
	Debug() map[string]interface{}
}

// Impl is the implementation of TokenMap
type Impl struct {
	// config is the tokenmap configuration
	config *Config

	// partitioner is fixed for the lifetime of the map
	partitioner partition.Partitioner

	// mu guards the writer side below, lookups never take it
	mu sync.Mutex

	// ring is the mutable token ring
	ring hashring.HashRing

	// strategies holds the registered keyspaces
	strategies map[string]replication.Strategy

	// dirty holds keyspaces whose replica table must be rebuilt
	dirty map[string]struct{}

	// ringDirty is set when a host changed, every keyspace is then rebuilt
	ringDirty bool

	// current is the published snapshot
	current atomic.Pointer[snapshot]

	metrics *tokenMapMetrics
}

// New will create a new TokenMap bound to the partitioner of config
func New(config *Config) (*Impl, error) {
	config = setDefaultConfig(config)
	p, err := partition.FromName(config.Partitioner)
	if err != nil {
		return nil, err
	}

	m := &Impl{
		config:      config,
		partitioner: p,
		ring:        hashring.NewTokenRing(),
		strategies:  make(map[string]replication.Strategy),
		dirty:       make(map[string]struct{}),
		metrics:     newTokenMapMetrics(config),
	}
	m.current.Store(emptySnapshot())
	log.WithField("tag", logTag).Infof("token map created for %s", p.Name())
	return m, nil
}

// FromPartitioner will create a new TokenMap bound to the named partitioner with default config
func FromPartitioner(name string) (*Impl, error) {
	return New(&Config{Partitioner: name})
}

// AddHost implements TokenMap
func (m *Impl) AddHost(h host.Host, tokens []byte) {
	decoded, err := DecodeTokens(tokens)
	if err != nil {
		log.WithField("tag", logTag).Warnf("host %s sent malformed tokens, treated as none: %s", h.Address(), err)
	}
	m.AddHostTokens(h, decoded)
}

// AddHostTokens implements TokenMap
func (m *Impl) AddHostTokens(h host.Host, tokens []string) {
	m.assign(h, tokens, false)
}

// UpdateHost implements TokenMap
func (m *Impl) UpdateHost(h host.Host, tokens []byte) {
	decoded, err := DecodeTokens(tokens)
	if err != nil {
		log.WithField("tag", logTag).Warnf("host %s sent malformed tokens, treated as none: %s", h.Address(), err)
	}
	m.UpdateHostTokens(h, decoded)
}

// UpdateHostTokens implements TokenMap
func (m *Impl) UpdateHostTokens(h host.Host, tokens []string) {
	m.assign(h, tokens, true)
}

func (m *Impl) assign(h host.Host, tokens []string, replace bool) {
	parsed := make([]partition.Token, 0, len(tokens))
	for _, token := range tokens {
		parsed = append(parsed, m.partitioner.ParseString(token))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if replace {
		m.ring.UnassignAll(h)
	}
	m.ring.Assign(h, parsed)
	m.ringDirty = true
	log.WithField("tag", logTag).Debugf("host %s assigned %d tokens, replace %v", h.Address(), len(parsed), replace)
}

// RemoveHost implements TokenMap
func (m *Impl) RemoveHost(h host.Host) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ring.UnassignAll(h)
	m.ringDirty = true
	log.WithField("tag", logTag).Debugf("host %s unassigned", h.Address())
}

// AddHostAndBuild implements TokenMap
func (m *Impl) AddHostAndBuild(h host.Host, tokens []byte) {
	m.AddHost(h, tokens)
	m.Build()
}

// RemoveHostAndBuild implements TokenMap
func (m *Impl) RemoveHostAndBuild(h host.Host) {
	m.RemoveHost(h)
	m.Build()
}

// UpdateHostAndBuild implements TokenMap
func (m *Impl) UpdateHostAndBuild(h host.Host, tokens []byte) {
	m.UpdateHost(h, tokens)
	m.Build()
}

// AddKeyspace implements TokenMap
func (m *Impl) AddKeyspace(name string, options map[string]string) error {
	strategy, err := replication.FromOptions(options)
	if err != nil {
		log.WithField("tag", logTag).Warnf("keyspace %s is not token aware: %s", name, err)
		m.DropKeyspace(name)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.strategies[name] = strategy
	m.dirty[name] = struct{}{}
	log.WithField("tag", logTag).Debugf("keyspace %s registered with %s", name, replication.Describe(strategy))
	return nil
}

// UpdateKeyspace implements TokenMap
func (m *Impl) UpdateKeyspace(name string, options map[string]string) error {
	return m.AddKeyspace(name, options)
}

// DropKeyspace implements TokenMap
func (m *Impl) DropKeyspace(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.strategies, name)
	delete(m.dirty, name)

	// the table goes away right away, there is nothing to rebuild
	if current := m.current.Load(); current.tables[name] != nil {
		m.current.Store(current.without(name))
	}
}

// Build implements TokenMap
func (m *Impl) Build() {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.metrics.build.UpdateSince(time.Now())

	previous := m.current.Load()
	ring := previous.ring
	if m.ringDirty {
		ring = m.ring.Ring()
	}

	tables := make(map[string]*replicaTable, len(m.strategies))
	rebuilt := 0
	for name, strategy := range m.strategies {
		table, ok := previous.tables[name]
		_, dirty := m.dirty[name]
		if !ok || dirty || m.ringDirty {
			table = newReplicaTable(ring, strategy)
			rebuilt++
		}
		tables[name] = table
	}

	next := &snapshot{ring: ring, tables: tables}
	m.current.Store(next)
	m.metrics.published(next)

	m.ringDirty = false
	m.dirty = make(map[string]struct{})
	log.WithField("tag", logTag).Debugf("published %d tokens of %d hosts, rebuilt %d of %d keyspaces",
		ring.Len(), ring.NumHosts(), rebuilt, len(tables))
}

// GetReplicas implements TokenMap
func (m *Impl) GetReplicas(keyspace string, key []byte) ([]host.Host, bool) {
	return m.GetReplicasForToken(keyspace, m.partitioner.Hash(key))
}

// GetReplicasForToken implements TokenMap
func (m *Impl) GetReplicasForToken(keyspace string, token partition.Token) ([]host.Host, bool) {
	table, ok := m.current.Load().tables[keyspace]
	if !ok || !partition.SameKind(token, m.partitioner.MinToken()) {
		m.metrics.miss.Inc(1)
		return nil, false
	}
	replicas := table.lookup(token)
	if len(replicas) == 0 {
		m.metrics.miss.Inc(1)
		return nil, false
	}
	m.metrics.hit.Inc(1)
	return replicas, true
}

// Partitioner implements TokenMap
func (m *Impl) Partitioner() partition.Partitioner {
	return m.partitioner
}

// Keyspaces implements TokenMap
func (m *Impl) Keyspaces() []string {
	return m.current.Load().keyspaces()
}

// Checksum implements TokenMap
func (m *Impl) Checksum() uint64 {
	return m.current.Load().checksum()
}

// Debug implements TokenMap
func (m *Impl) Debug() map[string]interface{} {
	current := m.current.Load()
	keyspaces := make(map[string]string, len(current.tables))
	for name, table := range current.tables {
		keyspaces[name] = replication.Describe(table.strategy)
	}
	return map[string]interface{}{
		"partitioner": m.partitioner.Name(),
		"tokens":      current.ring.Len(),
		"hosts":       current.ring.NumHosts(),
		"keyspaces":   keyspaces,
		"checksum":    current.checksum(),
	}
}
