package tokenmap

import (
	"errors"

	"github.com/justloop/tokenmap/partition"
	"github.com/justloop/tokenmap/replication"
)

var (
	// ErrUnknownPartitioner indicates the partitioner name matches no supported partitioner
	ErrUnknownPartitioner = partition.ErrUnknownPartitioner

	// ErrUnknownStrategy indicates a keyspace uses a replication class this package cannot place
	ErrUnknownStrategy = replication.ErrUnknownStrategy

	// ErrNoReplicas indicates a key could not be resolved, the keyspace is unknown or the ring is empty
	ErrNoReplicas = errors.New("no replicas for key")
)
