/*
Package hashring holds the token ring: which host owns which token.

TokenRing is the mutable side, fed by host joins and leaves. Ring is an immutable, sorted snapshot of it,
built once per rebuild and read concurrently by lookups.
*/
package hashring

import (
	"github.com/justloop/tokenmap/host"
	"github.com/justloop/tokenmap/partition"
)

// HashRing is the mutable token ring, it is not safe for concurrent use
type HashRing interface {
	// Assign gives every token in tokens to h, keeping the tokens h already owns.
	// A token already owned by another host moves to h.
	Assign(h host.Host, tokens []partition.Token)

	// UnassignAll removes every token owned by h
	UnassignAll(h host.Host)

	// Hosts returns the hosts owning at least one token, not necessarily in order
	Hosts() []host.Host

	// NumTokens returns the number of distinct tokens in the ring
	NumTokens() int

	// Ring returns a sorted, immutable snapshot of the ring
	Ring() *Ring
}
