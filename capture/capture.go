// Package capture attributes the stations seen in a packet capture to
// the vendors that registered their address blocks.
package capture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"slices"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/gopacket/gopacket/pcapgo"

	"oui/mac"
	"oui/manuf"
)

var ErrLinkType = errors.New("capture is not ethernet")

// Station is a unicast hardware address seen as the source or
// destination of at least one frame.
type Station struct {
	Addr   net.HardwareAddr
	Frames int
	Result manuf.Result
}

// Read decodes a pcap stream and returns every unicast station it
// contains, busiest first. Group addresses (broadcast and multicast)
// are not stations and are skipped.
func Read(r io.Reader, idx *manuf.Index) ([]Station, error) {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not read pcap header: %w", err)
	}
	if pr.LinkType() != layers.LinkTypeEthernet {
		return nil, fmt.Errorf("%w: %s", ErrLinkType, pr.LinkType())
	}

	frames := make(map[uint64]int)
	for {
		data, _, err := pr.ReadPacketData()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read packet: %w", err)
		}

		p := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)
		l := p.Layer(layers.LayerTypeEthernet)
		if l == nil {
			continue
		}
		eth := l.(*layers.Ethernet)

		for _, hw := range []net.HardwareAddr{eth.SrcMAC, eth.DstMAC} {
			if len(hw) == 0 || hw[0]&0x01 != 0 {
				continue
			}
			if v, ok := mac.FromHardwareAddr(hw); ok {
				frames[v]++
			}
		}
	}

	ss := make([]Station, 0, len(frames))
	for v, n := range frames {
		hw := make(net.HardwareAddr, 6)
		for i := range hw {
			hw[i] = byte(v >> uint(40-8*i))
		}
		ss = append(ss, Station{
			Addr:   hw,
			Frames: n,
			Result: idx.LookupValue(v),
		})
	}

	slices.SortFunc(ss, func(a, b Station) int {
		if a.Frames != b.Frames {
			return b.Frames - a.Frames
		}
		return bytes.Compare(a.Addr, b.Addr)
	})
	return ss, nil
}
