package partition

import (
	"cmp"
	"math"
	"strconv"
)

// Murmur3PartitionerName is the class name of the murmur3 partitioner
const Murmur3PartitionerName = "Murmur3Partitioner"

// Murmur3Token is a token of the murmur3 partitioner, the full signed 64-bit range
type Murmur3Token int64

func (t Murmur3Token) String() string {
	return strconv.FormatInt(int64(t), 10)
}

// Compare implements Token
func (t Murmur3Token) Compare(other Token) int {
	return cmp.Compare(t, other.(Murmur3Token))
}

// Murmur3Partitioner hashes keys with MurmurHash3 x64_128 and keeps the first 64 bits
type Murmur3Partitioner struct{}

// Name implements Partitioner
func (p Murmur3Partitioner) Name() string {
	return Murmur3PartitionerName
}

// Hash implements Partitioner
func (p Murmur3Partitioner) Hash(key []byte) Token {
	if len(key) == 0 {
		return p.MinToken()
	}
	h := int64(murmur3H1(key))
	// the minimum is reserved by the server, it never owns a key
	if h == math.MinInt64 {
		h = math.MaxInt64
	}
	return Murmur3Token(h)
}

// ParseString implements Partitioner
func (p Murmur3Partitioner) ParseString(str string) Token {
	return Murmur3Token(parseInt64(str))
}

// MinToken implements Partitioner
func (p Murmur3Partitioner) MinToken() Token {
	return Murmur3Token(math.MinInt64)
}
