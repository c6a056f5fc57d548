// Package store keeps a history of registry refreshes in sqlite.
package store

import (
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"oui"
)

const InMemory string = "file::memory:"

// Refresh records one successful registry download.
type Refresh struct {
	ID        int64      `db:"id"`
	URL       string     `db:"url"`
	Path      string     `db:"path"`
	Transport string     `db:"transport"`
	Bytes     int64      `db:"bytes"`
	Digest    oui.Digest `db:"digest"`
	FetchedAt int64      `db:"fetched_at"` // unix seconds
}

func (r Refresh) Time() time.Time {
	return time.Unix(r.FetchedAt, 0)
}

type Store struct {
	pool *sqlx.DB
}

func NewStore(path string) (*Store, error) {
	// Initialise the store
	pool, err := sqlx.Connect("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(1)
	s := &Store{pool: pool}

	// Create the tables
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS refreshes (
         id         INTEGER PRIMARY KEY AUTOINCREMENT,
         url        TEXT    NOT NULL,
         path       TEXT    NOT NULL,
         transport  TEXT    NOT NULL,
         bytes      INTEGER NOT NULL,
         digest     TEXT    NOT NULL,
         fetched_at INTEGER NOT NULL
	     );`,
		`CREATE INDEX IF NOT EXISTS refreshes_path ON refreshes (path, id);`,
	} {
		if _, err := s.pool.Exec(stmt); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.pool.Close()
}

// Put records r and returns its ID.
func (s *Store) Put(r Refresh) (int64, error) {
	if r.FetchedAt == 0 {
		r.FetchedAt = time.Now().Unix()
	}
	res, err := s.pool.NamedExec(
		`INSERT INTO refreshes (url, path, transport, bytes, digest, fetched_at)
		 VALUES (:url, :path, :transport, :bytes, :digest, :fetched_at)`, r)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Latest returns the most recent refresh of path.
func (s *Store) Latest(path string) (Refresh, error) {
	var r Refresh
	return r, s.pool.Get(&r, `SELECT * FROM refreshes WHERE path = ? ORDER BY id DESC LIMIT 1`, path)
}

// List returns up to limit refreshes, newest first.
func (s *Store) List(limit int) ([]Refresh, error) {
	rs := []Refresh{}
	return rs, s.pool.Select(&rs, `SELECT * FROM refreshes ORDER BY id DESC LIMIT ?`, limit)
}

func (s *Store) Size() (uint, error) {
	var n uint
	return n, s.pool.Get(&n, `SELECT COUNT(*) FROM refreshes`)
}
