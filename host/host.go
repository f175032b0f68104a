/*
Package host describes the part of a cluster node the token map reads: its identity and where it sits in the topology.
*/
package host

import "fmt"

// Host is a cluster node as seen by the token map, hosts are equal when their addresses are equal
type Host interface {
	// Address is the identity of the host, format: [address:port]
	Address() string
	// Rack is the rack name of the host
	Rack() string
	// Datacenter is the datacenter name of the host
	Datacenter() string
}

// Info is an immutable Host value
type Info struct {
	address    string
	rack       string
	datacenter string
}

// New will create a new Info
func New(address, rack, datacenter string) *Info {
	return &Info{
		address:    address,
		rack:       rack,
		datacenter: datacenter,
	}
}

// Address implements Host
func (h *Info) Address() string { return h.address }

// Rack implements Host
func (h *Info) Rack() string { return h.rack }

// Datacenter implements Host
func (h *Info) Datacenter() string { return h.datacenter }

func (h *Info) String() string {
	return fmt.Sprintf("%s[%s/%s]", h.address, h.datacenter, h.rack)
}

// Equal reports whether two hosts share the same identity
func Equal(a, b Host) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Address() == b.Address()
}

// Addresses returns the addresses of hosts, keeping their order
func Addresses(hosts []Host) []string {
	addrs := make([]string, 0, len(hosts))
	for _, h := range hosts {
		addrs = append(addrs, h.Address())
	}
	return addrs
}
