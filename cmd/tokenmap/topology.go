package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/justloop/tokenmap"
	"github.com/justloop/tokenmap/host"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var errNoPartitioner = errors.New("topology has no partitioner")

// Topology is a cluster described in a file, enough to build a token map offline
type Topology struct {
	Partitioner string                       `yaml:"partitioner"`
	Hosts       []HostConfig                 `yaml:"hosts"`
	Keyspaces   map[string]map[string]string `yaml:"keyspaces"`
}

// HostConfig is one host of a Topology
type HostConfig struct {
	Address    string   `yaml:"address"`
	Datacenter string   `yaml:"datacenter"`
	Rack       string   `yaml:"rack"`
	Tokens     []string `yaml:"tokens"`
}

// LoadTopology reads a YAML topology file
func LoadTopology(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topology: %w", err)
	}
	return ParseTopology(data)
}

// ParseTopology parses and validates a YAML topology
func ParseTopology(data []byte) (*Topology, error) {
	topology := &Topology{}
	if err := yaml.Unmarshal(data, topology); err != nil {
		return nil, fmt.Errorf("parse topology: %w", err)
	}
	if topology.Partitioner == "" {
		return nil, errNoPartitioner
	}
	for i, h := range topology.Hosts {
		if h.Address == "" {
			return nil, fmt.Errorf("host %d has no address", i)
		}
	}
	return topology, nil
}

// TokenMap builds the token map of the topology. Keyspaces with an unknown replication class are skipped.
func (t *Topology) TokenMap() (*tokenmap.Impl, error) {
	m, err := tokenmap.FromPartitioner(t.Partitioner)
	if err != nil {
		return nil, err
	}
	for _, h := range t.Hosts {
		m.AddHostTokens(host.New(h.Address, h.Rack, h.Datacenter), h.Tokens)
	}
	for name, options := range t.Keyspaces {
		if err := m.AddKeyspace(name, options); err != nil {
			log.WithField("tag", logTag).Warnf("keyspace %s skipped: %s", name, err)
		}
	}
	m.Build()
	return m, nil
}
