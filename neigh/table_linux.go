package neigh

import (
	"github.com/vishvananda/netlink"
)

// Table reads the IPv4 and IPv6 neighbour tables of every interface.
// Failed and incomplete entries are skipped.
func Table() ([]Entry, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(links))
	for _, l := range links {
		names[l.Attrs().Index] = l.Attrs().Name
	}

	ns, err := netlink.NeighList(0, netlink.FAMILY_ALL)
	if err != nil {
		return nil, err
	}

	es := make([]Entry, 0, len(ns))
	for _, n := range ns {
		if n.State&(netlink.NUD_FAILED|netlink.NUD_INCOMPLETE) != 0 || len(n.HardwareAddr) == 0 {
			continue
		}
		es = append(es, Entry{
			IP:           n.IP,
			HardwareAddr: n.HardwareAddr,
			Interface:    names[n.LinkIndex],
			State:        state(n.State),
		})
	}
	return es, nil
}

func state(s int) string {
	switch {
	case s&netlink.NUD_PERMANENT != 0:
		return "permanent"
	case s&netlink.NUD_NOARP != 0:
		return "noarp"
	case s&netlink.NUD_REACHABLE != 0:
		return "reachable"
	case s&netlink.NUD_STALE != 0:
		return "stale"
	case s&netlink.NUD_DELAY != 0:
		return "delay"
	case s&netlink.NUD_PROBE != 0:
		return "probe"
	}
	return "none"
}
