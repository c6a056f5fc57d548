package capture

import (
	"bytes"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/gopacket/gopacket/pcapgo"
	"github.com/stretchr/testify/require"

	"oui/manuf"
)

func hw(t *testing.T, s string) net.HardwareAddr {
	t.Helper()
	a, err := net.ParseMAC(s)
	require.NoError(t, err)
	return a
}

func writePcap(t *testing.T, lt layers.LinkType, frames [][2]net.HardwareAddr) *bytes.Buffer {
	t.Helper()
	var out bytes.Buffer
	w := pcapgo.NewWriter(&out)
	require.NoError(t, w.WriteFileHeader(65536, lt))

	for i, f := range frames {
		buf := gopacket.NewSerializeBuffer()
		err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{},
			&layers.Ethernet{SrcMAC: f[0], DstMAC: f[1], EthernetType: layers.EthernetTypeIPv4},
			gopacket.Payload([]byte("payload")),
		)
		require.NoError(t, err)

		data := buf.Bytes()
		ci := gopacket.CaptureInfo{
			Timestamp:     time.Unix(1700000000+int64(i), 0),
			CaptureLength: len(data),
			Length:        len(data),
		}
		require.NoError(t, w.WritePacket(ci, data))
	}
	return &out
}

func TestRead(t *testing.T) {
	idx, err := manuf.Read(strings.NewReader("3CD92B  Hewlett Packard\n00:11:22 CIMSYS\n"))
	require.NoError(t, err)

	hp := hw(t, "3c:d9:2b:00:00:01")
	cim := hw(t, "00:11:22:00:00:02")
	other := hw(t, "02:00:00:00:00:03")
	bcast := hw(t, "ff:ff:ff:ff:ff:ff")
	mcast := hw(t, "01:00:5e:00:00:fb")

	in := writePcap(t, layers.LinkTypeEthernet, [][2]net.HardwareAddr{
		{hp, cim},
		{cim, hp},
		{hp, bcast},
		{other, mcast},
	})

	ss, err := Read(in, idx)
	require.NoError(t, err)
	require.Len(t, ss, 3)

	require.Equal(t, hp, ss[0].Addr)
	require.Equal(t, 3, ss[0].Frames)
	require.Equal(t, "Hewlett Packard", ss[0].Result.Entry.Vendor)

	require.Equal(t, cim, ss[1].Addr)
	require.Equal(t, 2, ss[1].Frames)
	require.Equal(t, "CIMSYS", ss[1].Result.Entry.Vendor)

	require.Equal(t, other, ss[2].Addr)
	require.Equal(t, 1, ss[2].Frames)
	require.False(t, ss[2].Result.Found)
}

func TestRead_TieOrder(t *testing.T) {
	a := hw(t, "00:00:00:00:00:0a")
	b := hw(t, "00:00:00:00:00:0b")
	in := writePcap(t, layers.LinkTypeEthernet, [][2]net.HardwareAddr{{b, a}})

	ss, err := Read(in, manuf.Empty())
	require.NoError(t, err)
	require.Len(t, ss, 2)
	require.Equal(t, a, ss[0].Addr)
	require.Equal(t, b, ss[1].Addr)
}

func TestRead_Errors(t *testing.T) {
	t.Run("not a pcap", func(t *testing.T) {
		_, err := Read(strings.NewReader("definitely not a capture file"), manuf.Empty())
		require.Error(t, err)
	})

	t.Run("wrong link type", func(t *testing.T) {
		in := writePcap(t, layers.LinkTypeRaw, nil)
		_, err := Read(in, manuf.Empty())
		require.ErrorIs(t, err, ErrLinkType)
	})

	t.Run("empty capture", func(t *testing.T) {
		in := writePcap(t, layers.LinkTypeEthernet, nil)
		ss, err := Read(in, manuf.Empty())
		require.NoError(t, err)
		require.Empty(t, ss)
	})
}
