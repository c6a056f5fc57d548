// Package neigh annotates the kernel neighbour (ARP/NDP) table with the
// vendors owning each hardware address.
package neigh

import (
	"cmp"
	"errors"
	"net"
	"slices"

	"oui/mac"
	"oui/manuf"
)

// ErrUnsupported is returned by Table on platforms without netlink.
var ErrUnsupported = errors.New("neighbour table is only available on linux")

// Entry is a single neighbour table row.
type Entry struct {
	IP           net.IP
	HardwareAddr net.HardwareAddr
	Interface    string
	State        string
}

// Neighbor is an Entry together with the vendor lookup of its address.
type Neighbor struct {
	Entry
	Result manuf.Result
}

// Annotate resolves the hardware address of every entry against idx.
// Entries without an EUI-48 address are dropped. The result is ordered by
// interface and then IP.
func Annotate(idx *manuf.Index, es []Entry) []Neighbor {
	ns := make([]Neighbor, 0, len(es))
	for _, e := range es {
		v, ok := mac.FromHardwareAddr(e.HardwareAddr)
		if !ok {
			continue
		}
		ns = append(ns, Neighbor{Entry: e, Result: idx.LookupValue(v)})
	}

	slices.SortFunc(ns, func(a, b Neighbor) int {
		if c := cmp.Compare(a.Interface, b.Interface); c != 0 {
			return c
		}
		return slices.Compare(a.IP.To16(), b.IP.To16())
	})
	return ns
}
