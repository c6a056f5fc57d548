// Package manuf loads Wireshark style "manuf" registries and resolves MAC
// addresses to the vendor owning the most specific matching prefix.
package manuf

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/text/cases"

	"oui/mac"
)

// Entry is a single registered prefix. Prefix only has bits set within
// the first Bits bits.
type Entry struct {
	Prefix  uint64
	Bits    int
	Vendor  string
	Comment string
}

// String returns the canonical "P/bits" form of the prefix.
func (e Entry) String() string {
	return mac.Format(e.Prefix, e.Bits) + "/" + strconv.Itoa(e.Bits)
}

// Result of a lookup. Prefix is the canonical rendering of the matched
// entry, never of the query.
type Result struct {
	Found  bool
	Entry  Entry
	Prefix string
}

// Index buckets entries by mask length. It is built by a single load and
// read-only afterwards, so lookups need no locking.
type Index struct {
	buckets map[int]map[uint64]Entry
	masks   []int // descending
	n       int
	indexed int // lines indexed, duplicates included
}

func newIndex() *Index {
	return &Index{buckets: make(map[int]map[uint64]Entry)}
}

// Empty returns an index with no entries, every lookup on it misses.
func Empty() *Index {
	return newIndex()
}

// put stores e, replacing any entry registered earlier at the same
// (bits, prefix) key.
func (idx *Index) put(e Entry) {
	b, ok := idx.buckets[e.Bits]
	if !ok {
		b = make(map[uint64]Entry)
		idx.buckets[e.Bits] = b
	}
	if _, dup := b[e.Prefix]; !dup {
		idx.n++
	}
	b[e.Prefix] = e
	idx.indexed++
}

func (idx *Index) finalize() {
	idx.masks = maps.Keys(idx.buckets)
	slices.SortFunc(idx.masks, func(a, b int) int { return cmp.Compare(b, a) })
}

// Lookup parses query as an address or prefix and returns the most
// specific entry matching it. Unparsable queries are reported as not
// found.
func (idx *Index) Lookup(query string) Result {
	v, _, ok := mac.Parse(query)
	if !ok {
		return Result{}
	}
	return idx.LookupValue(v)
}

// LookupValue resolves an already encoded 48-bit address.
func (idx *Index) LookupValue(v uint64) Result {
	if idx == nil {
		return Result{}
	}

	for _, bits := range idx.masks {
		e, ok := idx.buckets[bits][v&mac.Mask(bits)]
		if ok {
			return Result{
				Found:  true,
				Entry:  e,
				Prefix: mac.Format(e.Prefix, e.Bits),
			}
		}
	}
	return Result{}
}

// Len is the number of distinct entries held.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return idx.n
}

// Indexed is the number of registry lines that were indexed. A line
// replacing an earlier one at the same prefix counts, so it can exceed
// Len.
func (idx *Index) Indexed() int {
	if idx == nil {
		return 0
	}
	return idx.indexed
}

// Masks returns the populated mask lengths, most specific first.
func (idx *Index) Masks() []int {
	if idx == nil {
		return nil
	}
	return slices.Clone(idx.masks)
}

// Count returns the number of entries registered with the given mask
// length.
func (idx *Index) Count(bits int) int {
	if idx == nil {
		return 0
	}
	return len(idx.buckets[bits])
}

// Entries returns every entry ordered by prefix, shorter masks first on
// equal prefixes.
func (idx *Index) Entries() []Entry {
	if idx == nil {
		return nil
	}

	es := make([]Entry, 0, idx.n)
	for _, b := range idx.buckets {
		es = append(es, maps.Values(b)...)
	}
	slices.SortFunc(es, compareEntries)
	return es
}

// Search returns the entries whose vendor contains s, compared case
// insensitively. An empty s matches nothing.
func (idx *Index) Search(s string) []Entry {
	s = strings.TrimSpace(s)
	if idx == nil || s == "" {
		return nil
	}

	fold := cases.Fold()
	needle := fold.String(s)

	var es []Entry
	for _, b := range idx.buckets {
		for _, e := range b {
			if strings.Contains(fold.String(e.Vendor), needle) {
				es = append(es, e)
			}
		}
	}
	slices.SortFunc(es, compareEntries)
	return es
}

func compareEntries(a, b Entry) int {
	if c := cmp.Compare(a.Prefix, b.Prefix); c != 0 {
		return c
	}
	return cmp.Compare(a.Bits, b.Bits)
}
