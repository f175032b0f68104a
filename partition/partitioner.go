/*
Package partition implements the partitioners of the database: each one turns a partition key into a token
and parses the textual form of a token the server reports for a node.

Three partitioners are supported, Murmur3Partitioner, RandomPartitioner and ByteOrderedPartitioner.
Tokens produced by different partitioners must never be compared with each other.
*/
package partition

import (
	"fmt"
	"strings"
)

// Token is a position on the ring of one partitioner
type Token interface {
	fmt.Stringer

	// Compare returns -1, 0 or +1 when this token is before, equal to or after other.
	// It panics when other comes from another partitioner, see SameKind.
	Compare(other Token) int
}

// SameKind reports whether a and b come from the same partitioner and can be compared
func SameKind(a, b Token) bool {
	switch a.(type) {
	case Murmur3Token:
		_, ok := b.(Murmur3Token)
		return ok
	case RandomToken:
		_, ok := b.(RandomToken)
		return ok
	case ByteOrderedToken:
		_, ok := b.(ByteOrderedToken)
		return ok
	}
	return false
}

// Partitioner maps partition keys to tokens
type Partitioner interface {
	// Name returns the short class name of the partitioner
	Name() string

	// Hash computes the token of a partition key, exactly as the server does
	Hash(key []byte) Token

	// ParseString parses the canonical string form of a token, malformed input never fails
	ParseString(str string) Token

	// MinToken is the smallest token of the partitioner space
	MinToken() Token
}

// FromName returns the partitioner for a class name, either short (Murmur3Partitioner)
// or fully qualified (org.apache.cassandra.dht.Murmur3Partitioner)
func FromName(name string) (Partitioner, error) {
	name = strings.TrimSpace(name)
	switch {
	case strings.HasSuffix(name, Murmur3PartitionerName):
		return Murmur3Partitioner{}, nil
	case strings.HasSuffix(name, RandomPartitionerName):
		return RandomPartitioner{}, nil
	case strings.HasSuffix(name, ByteOrderedPartitionerName):
		return ByteOrderedPartitioner{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPartitioner, name)
}
