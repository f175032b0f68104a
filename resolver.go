package tokenmap

import (
	"fmt"

	"github.com/justloop/tokenmap/host"
	log "github.com/sirupsen/logrus"
)

// logTagResolver is logging tag for RingResolver
var logTagResolver = "tokenmap.resolver"

// ReplicaSource is where a resolver looks replicas up, TokenMap is one
type ReplicaSource interface {
	GetReplicas(keyspace string, key []byte) ([]host.Host, bool)
}

// Resolver groups the partition keys of a request by the hosts they should be sent to
type Resolver interface {
	// ResolveRead maps every key to its primary replica, the first host to read from
	// return a map from host address to keys
	ResolveRead(keyspace string, keys ...string) (map[string][]string, error)

	// ResolveWrite maps every key to all of its replicas, the writer is responsible to write to all of them
	// return a map from host address to keys
	ResolveWrite(keyspace string, keys ...string) (map[string][]string, error)
}

// RingResolver implements Resolver on top of a ReplicaSource
type RingResolver struct {
	// Source is the replica source to be used
	Source ReplicaSource
}

// NewRingResolver will initialize a RingResolver from a replica source
func NewRingResolver(source ReplicaSource) *RingResolver {
	return &RingResolver{
		Source: source,
	}
}

func (resolver *RingResolver) resolve(keyspace string, keys []string, isRead bool) (map[string][]string, error) {
	result := make(map[string][]string)
	var err error

	for _, key := range keys {
		replicas, ok := resolver.Source.GetReplicas(keyspace, []byte(key))
		if !ok {
			err = fmt.Errorf("%w: key %q of keyspace %q", ErrNoReplicas, key, keyspace)
			log.WithField("tag", logTagResolver).Debug(err)
			continue
		}
		if isRead {
			replicas = replicas[:1]
		}
		for _, h := range replicas {
			result[h.Address()] = append(result[h.Address()], key)
		}
	}

	return result, err
}

// ResolveRead implements Resolver.
// Even return error may contain result, keys without replicas are left out
func (resolver *RingResolver) ResolveRead(keyspace string, keys ...string) (map[string][]string, error) {
	return resolver.resolve(keyspace, keys, true)
}

// ResolveWrite implements Resolver.
// Even return error may contain result, keys without replicas are left out
func (resolver *RingResolver) ResolveWrite(keyspace string, keys ...string) (map[string][]string, error) {
	return resolver.resolve(keyspace, keys, false)
}
