package manuf

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// LoadResult reports the outcome of DB.Load.
type LoadResult struct {
	OK      bool
	Message string
	Entries int
}

// DB owns the currently published index. Lookups read the published index
// without locking while loads build a replacement off to the side.
type DB struct {
	idx  atomic.Pointer[Index]
	path atomic.Pointer[string]

	mu sync.Mutex // serialises loads
}

// NewDB returns a DB serving an empty index. The zero value is also ready
// to use.
func NewDB() *DB {
	db := &DB{}
	db.idx.Store(Empty())
	db.path.Store(new(string))
	return db
}

// Load discards the current index and replaces it with the registry at
// path. On failure the DB is left serving an empty index.
func (db *DB) Load(path string) LoadResult {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.idx.Store(Empty())
	db.path.Store(new(string))

	idx, resolved, err := open(path)
	if err != nil {
		slog.Error("failed to load registry", slog.String("path", path), slog.Any("err", err))
		return LoadResult{Message: err.Error()}
	}

	db.publish(idx, resolved)
	slog.Debug("loaded registry",
		slog.String("path", resolved),
		slog.Int("entries", idx.Indexed()),
		slog.Int("distinct", idx.Len()),
		slog.Any("masks", idx.Masks()))

	return LoadResult{OK: true, Message: "ok", Entries: idx.Indexed()}
}

// Refresh loads path into a new index and publishes it only if the load
// succeeds. On failure the current index keeps being served. Refreshes and
// loads are serialised, so an older registry never replaces a newer one.
func (db *DB) Refresh(path string) LoadResult {
	db.mu.Lock()
	defer db.mu.Unlock()

	idx, resolved, err := open(path)
	if err != nil {
		slog.Error("failed to refresh registry, keeping current index",
			slog.String("path", path), slog.Any("err", err))
		return LoadResult{Message: err.Error()}
	}

	db.publish(idx, resolved)
	slog.Info("refreshed registry", slog.String("path", resolved), slog.Int("entries", idx.Indexed()))

	return LoadResult{OK: true, Message: "ok", Entries: idx.Indexed()}
}

// Publish makes idx the index served by subsequent lookups. path is the
// registry the index was built from and is informational only.
func (db *DB) Publish(idx *Index, path string) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.publish(idx, path)
}

func (db *DB) publish(idx *Index, path string) {
	if idx == nil {
		idx = Empty()
	}
	db.idx.Store(idx)
	db.path.Store(&path)
}

// Index returns the currently published index.
func (db *DB) Index() *Index {
	return db.idx.Load()
}

// Path returns the registry path the published index was loaded from.
func (db *DB) Path() string {
	if p := db.path.Load(); p != nil {
		return *p
	}
	return ""
}

// Lookup resolves query against the published index.
func (db *DB) Lookup(query string) Result {
	return db.Index().Lookup(query)
}
