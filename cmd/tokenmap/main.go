// Command tokenmap prints the replicas of partition keys for a cluster described in a YAML file.
//
//	tokenmap -config topology.yaml -keyspace ks key1 key2
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/justloop/tokenmap"
	log "github.com/sirupsen/logrus"
)

var logTag = "tokenmap.cmd"

var (
	configPath = flag.String("config", "topology.yaml", "The YAML file describing partitioner, hosts and keyspaces")
	keyspace   = flag.String("keyspace", "", "The keyspace the keys belong to")
	verbose    = flag.Bool("v", false, "Whether or not to log every build step")
)

// printReplicas writes one line per replica of every key, followed by the checksum of the map
func printReplicas(out io.Writer, m tokenmap.TokenMap, keyspace string, keys []string) error {
	for _, key := range keys {
		token := m.Partitioner().Hash([]byte(key))
		replicas, ok := m.GetReplicasForToken(keyspace, token)
		if !ok {
			return fmt.Errorf("no replicas for key %q in keyspace %q", key, keyspace)
		}
		fmt.Fprintf(out, "%s (token %s)\n", key, token)
		for i, h := range replicas {
			fmt.Fprintf(out, "  %d %s dc=%s rack=%s\n", i, h.Address(), h.Datacenter(), h.Rack())
		}
	}
	fmt.Fprintf(out, "checksum %016x\n", m.Checksum())
	return nil
}

func main() {
	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	topology, err := LoadTopology(*configPath)
	if err != nil {
		log.WithField("tag", logTag).Fatalf("Error loading topology: %s", err)
	}
	m, err := topology.TokenMap()
	if err != nil {
		log.WithField("tag", logTag).Fatalf("Error building token map: %s", err)
	}

	if *keyspace == "" {
		for name, info := range m.Debug() {
			fmt.Printf("%s: %v\n", name, info)
		}
		return
	}
	if err := printReplicas(os.Stdout, m, *keyspace, flag.Args()); err != nil {
		log.WithField("tag", logTag).Fatal(err)
	}
}
