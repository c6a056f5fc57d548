package manuf

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"oui/mac"
)

func mustRead(t *testing.T, content string) *Index {
	t.Helper()
	idx, err := Read(strings.NewReader(content))
	require.NoError(t, err)
	return idx
}

func TestIndex_Lookup(t *testing.T) {
	t.Run("longest prefix wins", func(t *testing.T) {
		idx := mustRead(t, "00:11:22 Short\n00:11:22:33 Long\n")

		r := idx.Lookup("00:11:22:33:44:55")
		require.True(t, r.Found)
		require.Equal(t, "Long", r.Entry.Vendor)
		require.Equal(t, 32, r.Entry.Bits)
		require.Equal(t, "00:11:22:33", r.Prefix)

		r = idx.Lookup("00:11:22:99:99:99")
		require.True(t, r.Found)
		require.Equal(t, "Short", r.Entry.Vendor)
		require.Equal(t, 24, r.Entry.Bits)
		require.Equal(t, "00:11:22", r.Prefix)
	})

	t.Run("order in file does not matter", func(t *testing.T) {
		idx := mustRead(t, "00:11:22:33 Long\n00:11:22 Short\n")
		require.Equal(t, "Long", idx.Lookup("001122334455").Entry.Vendor)
	})

	t.Run("hewlett packard", func(t *testing.T) {
		idx := mustRead(t, "3CD92B  Hewlett Packard\n")

		r := idx.Lookup("3C:D9:2B:AA:BB:CC")
		require.True(t, r.Found)
		require.Equal(t, "Hewlett Packard", r.Entry.Vendor)
		require.Equal(t, "3C:D9:2B", r.Prefix)
		require.Equal(t, 24, r.Entry.Bits)
		require.Empty(t, r.Entry.Comment)
	})

	t.Run("non byte aligned masks", func(t *testing.T) {
		idx := mustRead(t, "00:1B:C5 Ieee\n00:1B:C5:00:10:00/36 Small # ma-s\n")

		r := idx.Lookup("00:1B:C5:00:1F:01")
		require.True(t, r.Found)
		require.Equal(t, "Small", r.Entry.Vendor)
		require.Equal(t, "00:1B:C5:00:10", r.Prefix)
		require.Equal(t, "ma-s", r.Entry.Comment)

		r = idx.Lookup("00:1B:C5:00:20:01")
		require.True(t, r.Found)
		require.Equal(t, "Ieee", r.Entry.Vendor)
	})

	t.Run("prefix queries", func(t *testing.T) {
		idx := mustRead(t, "00:11:22 Short\n00:11:22:33 Long\n")

		// a shorter query is left aligned and padded with zero bits
		r := idx.Lookup("00:11:22")
		require.True(t, r.Found)
		require.Equal(t, "Short", r.Entry.Vendor)
	})

	t.Run("not found", func(t *testing.T) {
		idx := mustRead(t, "00:11:22 Short\n")
		for _, q := range []string{
			"", " ", ":::", "--", "hello world", "0", "001",
			"00:11:22:33:44:55:66", strings.Repeat("f", 64),
			"AA:BB:CC:DD:EE:FF",
		} {
			r := idx.Lookup(q)
			require.False(t, r.Found, q)
			require.Equal(t, Result{}, r, q)
		}
	})

	t.Run("nil index", func(t *testing.T) {
		var idx *Index
		require.False(t, idx.Lookup("00:11:22").Found)
		require.Zero(t, idx.Len())
		require.Nil(t, idx.Masks())
		require.Nil(t, idx.Entries())
	})
}

func TestIndex_EveryEntryResolvesToItself(t *testing.T) {
	idx := mustRead(t, sample)
	es := idx.Entries()
	require.Len(t, es, idx.Len())

	for _, e := range es {
		r := idx.Lookup(mac.Format(e.Prefix, e.Bits))
		require.True(t, r.Found, e.String())
		require.Equal(t, e.Vendor, r.Entry.Vendor, e.String())
		require.Equal(t, e.Bits, r.Entry.Bits, e.String())
		require.Equal(t, e.Comment, r.Entry.Comment, e.String())
	}
}

func TestIndex_Entries(t *testing.T) {
	idx := mustRead(t, "FF:00:00 C\n00:11:22:33 B\n00:11:22 A\n")
	es := idx.Entries()
	require.Equal(t, []string{"00:11:22/24", "00:11:22:33/32", "FF:00:00/24"},
		[]string{es[0].String(), es[1].String(), es[2].String()})
}

func TestIndex_Search(t *testing.T) {
	idx := mustRead(t, sample)

	t.Run("case insensitive", func(t *testing.T) {
		es := idx.Search("hewlett")
		require.Len(t, es, 1)
		require.Equal(t, "Hewlett Packard", es[0].Vendor)

		es = idx.Search("XEROX")
		require.Len(t, es, 1)
	})

	t.Run("ordered by prefix", func(t *testing.T) {
		idx := mustRead(t, "FF:00:00 Acme\n00:00:01 ACME labs\n00:00:02 Other\n")
		es := idx.Search("acme")
		require.Len(t, es, 2)
		require.Equal(t, "ACME labs", es[0].Vendor)
		require.Equal(t, "Acme", es[1].Vendor)
	})

	t.Run("empty matches nothing", func(t *testing.T) {
		require.Empty(t, idx.Search(""))
		require.Empty(t, idx.Search("   "))
	})
}

func TestIndex_ConcurrentLookup(t *testing.T) {
	idx := mustRead(t, sample)

	wg := sync.WaitGroup{}
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if !idx.Lookup("00:11:22:33:44:55").Found {
					t.Error("expected match")
					return
				}
			}
		}()
	}
	wg.Wait()
}
