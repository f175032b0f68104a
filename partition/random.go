package partition

import (
	"cmp"
	"crypto/md5"
	"encoding/binary"
	"math/big"
)

// RandomPartitionerName is the class name of the md5 based partitioner
const RandomPartitionerName = "RandomPartitioner"

// RandomToken is an unsigned 128-bit token of the random partitioner, valid values are [0, 2^127]
type RandomToken struct {
	Hi uint64
	Lo uint64
}

// Compare implements Token
func (t RandomToken) Compare(other Token) int {
	o := other.(RandomToken)
	if c := cmp.Compare(t.Hi, o.Hi); c != 0 {
		return c
	}
	return cmp.Compare(t.Lo, o.Lo)
}

// Big returns the token as a big integer
func (t RandomToken) Big() *big.Int {
	v := new(big.Int).SetUint64(t.Hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(t.Lo))
}

func (t RandomToken) String() string {
	if t.Hi == 0 {
		return new(big.Int).SetUint64(t.Lo).String()
	}
	return t.Big().String()
}

// abs treats the token as a two's complement integer and returns its absolute value
func (t RandomToken) abs() RandomToken {
	if t.Hi&(1<<63) == 0 {
		return t
	}
	hi, lo := ^t.Hi, ^t.Lo
	lo++
	if lo == 0 {
		hi++
	}
	return RandomToken{Hi: hi, Lo: lo}
}

// RandomPartitioner hashes keys with md5
type RandomPartitioner struct{}

// Name implements Partitioner
func (p RandomPartitioner) Name() string {
	return RandomPartitionerName
}

// Hash implements Partitioner. The digest is read as a signed big-endian integer
// and its absolute value is the token, the same as the server's BigInteger.abs().
// This differs on purpose from clients which keep the raw digest as an unsigned value:
// for digests with the high bit set those place the key on the wrong replicas.
func (p RandomPartitioner) Hash(key []byte) Token {
	sum := md5.Sum(key)
	t := RandomToken{
		Hi: binary.BigEndian.Uint64(sum[:8]),
		Lo: binary.BigEndian.Uint64(sum[8:]),
	}
	return t.abs()
}

// ParseString implements Partitioner
func (p RandomPartitioner) ParseString(str string) Token {
	hi, lo := parseUint128(str)
	return RandomToken{Hi: hi, Lo: lo}
}

// MinToken implements Partitioner, the server uses -1 as the minimum which sorts before 0
func (p RandomPartitioner) MinToken() Token {
	return RandomToken{}
}
