/*
Package replication places replicas on a token ring.

A Strategy walks the ring forward from the entry owning a token and collects distinct hosts,
primary replica first. It never fails when the ring has too few hosts, it returns fewer replicas.
*/
package replication

import (
	"fmt"
	"sort"
	"strings"

	"github.com/justloop/tokenmap/hashring"
	"github.com/justloop/tokenmap/host"
	"github.com/justloop/tokenmap/utils"
)

// Class names of the supported strategies, matched by suffix
const (
	SimpleStrategyName          = "SimpleStrategy"
	NetworkTopologyStrategyName = "NetworkTopologyStrategy"
)

// Option keys of a keyspace replication setting
const (
	ClassOption             = "class"
	ReplicationFactorOption = "replication_factor"
)

// Strategy turns a ring position into an ordered replica list
type Strategy interface {
	// Name will return the name of this strategy
	Name() string

	// Replicas returns the replicas of the ring range ending at entry start,
	// the result holds distinct hosts, primary replica first
	Replicas(ring *hashring.Ring, start int) []host.Host
}

// FromOptions builds the strategy described by a keyspace replication setting, for example
// {"class": "SimpleStrategy", "replication_factor": "3"} or
// {"class": "NetworkTopologyStrategy", "dc1": "3", "dc2": "2"}.
func FromOptions(options map[string]string) (Strategy, error) {
	class := strings.TrimSpace(options[ClassOption])
	switch {
	case strings.HasSuffix(class, NetworkTopologyStrategyName):
		factors := make(map[string]int)
		for key, value := range options {
			if key == ClassOption {
				continue
			}
			factors[key] = utils.LeadingInt(value)
		}
		return NewNetworkTopologyStrategy(factors), nil
	case strings.HasSuffix(class, SimpleStrategyName):
		return NewSimpleStrategy(utils.LeadingInt(options[ReplicationFactorOption])), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, class)
}

// Describe returns a stable, human readable form of a strategy
func Describe(s Strategy) string {
	switch casted := s.(type) {
	case *SimpleStrategy:
		return fmt.Sprintf("%s{%s=%d}", casted.Name(), ReplicationFactorOption, casted.ReplicationFactor())
	case *NetworkTopologyStrategy:
		factors := casted.ReplicationFactors()
		dcs := make([]string, 0, len(factors))
		for dc := range factors {
			dcs = append(dcs, dc)
		}
		sort.Strings(dcs)
		parts := make([]string, 0, len(dcs))
		for _, dc := range dcs {
			parts = append(parts, fmt.Sprintf("%s=%d", dc, factors[dc]))
		}
		return fmt.Sprintf("%s{%s}", casted.Name(), strings.Join(parts, ","))
	}
	return s.Name()
}
