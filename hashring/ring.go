package hashring

import (
	"encoding/binary"

	"github.com/dgryski/go-farm"
	"github.com/justloop/tokenmap/host"
	"github.com/justloop/tokenmap/partition"
	"github.com/scylladb/go-set/strset"
	"golang.org/x/exp/slices"
)

// Entry is one token of the ring together with its owner
type Entry struct {
	Token partition.Token
	Host  host.Host
}

// Datacenter is the shape of one datacenter in a ring
type Datacenter struct {
	// Hosts is the number of distinct hosts of the datacenter owning tokens
	Hosts int
	// Racks is the number of distinct racks among those hosts
	Racks int
}

// Ring is an immutable snapshot of a token ring, entries sorted by token with no duplicates
type Ring struct {
	entries     []Entry
	numHosts    int
	datacenters map[string]Datacenter
}

func newRing(entries []Entry) *Ring {
	slices.SortFunc(entries, func(a, b Entry) int {
		return a.Token.Compare(b.Token)
	})

	hosts := strset.New()
	dcHosts := make(map[string]*strset.Set)
	dcRacks := make(map[string]*strset.Set)
	for _, e := range entries {
		dc := e.Host.Datacenter()
		hosts.Add(e.Host.Address())
		if _, ok := dcHosts[dc]; !ok {
			dcHosts[dc] = strset.New()
			dcRacks[dc] = strset.New()
		}
		dcHosts[dc].Add(e.Host.Address())
		dcRacks[dc].Add(e.Host.Rack())
	}

	datacenters := make(map[string]Datacenter, len(dcHosts))
	for dc, set := range dcHosts {
		datacenters[dc] = Datacenter{Hosts: set.Size(), Racks: dcRacks[dc].Size()}
	}

	return &Ring{
		entries:     entries,
		numHosts:    hosts.Size(),
		datacenters: datacenters,
	}
}

// Len returns the number of tokens in the ring
func (r *Ring) Len() int {
	return len(r.entries)
}

// Entry returns the i-th entry in token order
func (r *Ring) Entry(i int) Entry {
	return r.entries[i]
}

// Entries returns the entries in token order, the slice must not be modified
func (r *Ring) Entries() []Entry {
	return r.entries
}

// NumHosts returns the number of distinct hosts in the ring
func (r *Ring) NumHosts() int {
	return r.numHosts
}

// Datacenter returns the shape of a datacenter, zero when the ring has no host in it
func (r *Ring) Datacenter(name string) Datacenter {
	return r.datacenters[name]
}

// Datacenters returns the shape of every datacenter present in the ring
func (r *Ring) Datacenters() map[string]Datacenter {
	result := make(map[string]Datacenter, len(r.datacenters))
	for dc, info := range r.datacenters {
		result[dc] = info
	}
	return result
}

// Search returns the index of the first entry whose token is at or after token,
// wrapping to 0 past the last entry. It returns -1 when the ring is empty.
func (r *Ring) Search(token partition.Token) int {
	if len(r.entries) == 0 {
		return -1
	}
	i, _ := slices.BinarySearchFunc(r.entries, token, func(e Entry, t partition.Token) int {
		return e.Token.Compare(t)
	})
	if i == len(r.entries) {
		i = 0
	}
	return i
}

// Checksum is a fingerprint of the token assignment, equal rings have equal checksums
func (r *Ring) Checksum() uint64 {
	buf := make([]byte, 0, 64*len(r.entries))
	for _, e := range r.entries {
		buf = appendField(buf, e.Token.String())
		buf = appendField(buf, e.Host.Address())
	}
	return farm.Fingerprint64(buf)
}

func appendField(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}
