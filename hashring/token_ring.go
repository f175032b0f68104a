package hashring

import (
	"github.com/justloop/tokenmap/host"
	"github.com/justloop/tokenmap/partition"
	log "github.com/sirupsen/logrus"
)

// logTag is the logging tag for TokenRing
var logTag = "tokenmap.hashring"

// TokenRing is the HashRing implementation backed by maps, sorting happens in Ring
type TokenRing struct {
	// owners maps each token to its current owner
	owners map[partition.Token]host.Host
	// tokens keeps the tokens assigned to each host address, some may since have moved to another host
	tokens map[string][]partition.Token
}

// NewTokenRing will create a new empty TokenRing
func NewTokenRing() *TokenRing {
	return &TokenRing{
		owners: make(map[partition.Token]host.Host),
		tokens: make(map[string][]partition.Token),
	}
}

// Assign implements HashRing
func (r *TokenRing) Assign(h host.Host, tokens []partition.Token) {
	for _, token := range tokens {
		if prev, ok := r.owners[token]; ok && !host.Equal(prev, h) {
			log.WithField("tag", logTag).Warnf("token %s moved from %s to %s", token, prev.Address(), h.Address())
		}
		r.owners[token] = h
	}
	r.tokens[h.Address()] = append(r.tokens[h.Address()], tokens...)
}

// UnassignAll implements HashRing
func (r *TokenRing) UnassignAll(h host.Host) {
	addr := h.Address()
	for _, token := range r.tokens[addr] {
		if owner, ok := r.owners[token]; ok && owner.Address() == addr {
			delete(r.owners, token)
		}
	}
	delete(r.tokens, addr)
}

// Hosts implements HashRing
func (r *TokenRing) Hosts() []host.Host {
	seen := make(map[string]host.Host)
	for _, h := range r.owners {
		seen[h.Address()] = h
	}
	hosts := make([]host.Host, 0, len(seen))
	for _, h := range seen {
		hosts = append(hosts, h)
	}
	return hosts
}

// NumTokens implements HashRing
func (r *TokenRing) NumTokens() int {
	return len(r.owners)
}

// Ring implements HashRing
func (r *TokenRing) Ring() *Ring {
	entries := make([]Entry, 0, len(r.owners))
	for token, h := range r.owners {
		entries = append(entries, Entry{Token: token, Host: h})
	}
	return newRing(entries)
}
