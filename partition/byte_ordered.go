package partition

import "strings"

// ByteOrderedPartitionerName is the class name of the order preserving partitioner
const ByteOrderedPartitionerName = "ByteOrderedPartitioner"

// ByteOrderedToken is the raw bytes of a key, ordered bytewise
type ByteOrderedToken string

func (t ByteOrderedToken) String() string {
	return string(t)
}

// Compare implements Token
func (t ByteOrderedToken) Compare(other Token) int {
	return strings.Compare(string(t), string(other.(ByteOrderedToken)))
}

// ByteOrderedPartitioner uses the key itself as the token
type ByteOrderedPartitioner struct{}

// Name implements Partitioner
func (p ByteOrderedPartitioner) Name() string {
	return ByteOrderedPartitionerName
}

// Hash implements Partitioner
func (p ByteOrderedPartitioner) Hash(key []byte) Token {
	return ByteOrderedToken(key)
}

// ParseString implements Partitioner
func (p ByteOrderedPartitioner) ParseString(str string) Token {
	return ByteOrderedToken(str)
}

// MinToken implements Partitioner
func (p ByteOrderedPartitioner) MinToken() Token {
	return ByteOrderedToken("")
}
