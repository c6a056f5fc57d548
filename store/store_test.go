package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"oui"
)

func TestStore(t *testing.T) {
	s, err := NewStore(InMemory)
	require.NoError(t, err)

	r := Refresh{
		URL:       "https://example.com/manuf",
		Path:      "data/manuf",
		Transport: "http",
		Bytes:     3,
		Digest:    oui.NewDigest([]byte("abc")),
		FetchedAt: 1700000000,
	}

	t.Run("empty", func(t *testing.T) {
		n, err := s.Size()
		require.NoError(t, err)
		require.Equal(t, uint(0), n)

		_, err = s.Latest("data/manuf")
		require.ErrorIs(t, err, sql.ErrNoRows)

		rs, err := s.List(10)
		require.NoError(t, err)
		require.Empty(t, rs)
	})

	t.Run("put", func(t *testing.T) {
		id, err := s.Put(r)
		require.NoError(t, err)
		require.Equal(t, int64(1), id)

		r2 := r
		r2.Transport = "file"
		r2.FetchedAt = 0
		id, err = s.Put(r2)
		require.NoError(t, err)
		require.Equal(t, int64(2), id)

		r3 := r
		r3.Path = "other/manuf"
		_, err = s.Put(r3)
		require.NoError(t, err)
	})

	t.Run("full", func(t *testing.T) {
		n, err := s.Size()
		require.NoError(t, err)
		require.Equal(t, uint(3), n)
	})

	t.Run("latest", func(t *testing.T) {
		l, err := s.Latest("data/manuf")
		require.NoError(t, err)
		require.Equal(t, int64(2), l.ID)
		require.Equal(t, "file", l.Transport)
		require.Equal(t, r.Digest, l.Digest)
		require.NotZero(t, l.FetchedAt)
	})

	t.Run("list", func(t *testing.T) {
		rs, err := s.List(2)
		require.NoError(t, err)
		require.Len(t, rs, 2)
		require.Equal(t, int64(3), rs[0].ID)
		require.Equal(t, "other/manuf", rs[0].Path)
		require.Equal(t, int64(2), rs[1].ID)
	})

	t.Run("close", func(t *testing.T) {
		require.NoError(t, s.Close())
	})
}

func TestStore_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := NewStore(path)
	require.NoError(t, err)
	_, err = s.Put(Refresh{URL: "u", Path: "p", Transport: "http", Bytes: 1, Digest: "d"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// history survives reopening
	s, err = NewStore(path)
	require.NoError(t, err)
	defer s.Close()

	l, err := s.Latest("p")
	require.NoError(t, err)
	require.Equal(t, oui.Digest("d"), l.Digest)
	require.WithinDuration(t, time.Now(), l.Time(), time.Minute)
}
