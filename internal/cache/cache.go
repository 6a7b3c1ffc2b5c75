// Package cache persists fetched bibliographic records in a local SQLite
// database so repeated lookups skip the network.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bibtools/bibfetch/internal/bib"
	"github.com/bibtools/bibfetch/internal/ident"
)

// Cache is a SQLite-backed store of fetched records keyed by (kind, id).
// The id is the kind's normalized identifier string.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS records (
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			title TEXT,
			authors_json TEXT,
			year INTEGER,
			month INTEGER,
			venue TEXT,
			abstract TEXT,
			doi TEXT,
			arxiv_id TEXT,
			isbn TEXT,
			hal_id TEXT,
			url TEXT,
			bibtex TEXT,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (kind, id)
		);
	`
	_, err := db.Exec(schema)
	return err
}

// recordFields is the standard field list for SELECT queries.
const recordFields = `title, authors_json, year, month, venue, abstract,
	doi, arxiv_id, isbn, hal_id, url, bibtex`

// Get returns the cached record for an identifier, or nil when the cache
// has no entry.
func (c *Cache) Get(kind, id string) (*bib.Record, error) {
	row := c.db.QueryRow(`SELECT `+recordFields+` FROM records WHERE kind = ? AND id = ?`, kind, id)

	var rec bib.Record
	var title, authorsJSON, venue, abstract sql.NullString
	var doi, arxivID, isbn, halID, recURL, bibtex sql.NullString
	var year, month sql.NullInt64

	err := row.Scan(&title, &authorsJSON, &year, &month, &venue, &abstract,
		&doi, &arxivID, &isbn, &halID, &recURL, &bibtex)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	rec.Title = title.String
	rec.Venue = venue.String
	rec.Abstract = abstract.String
	rec.DOI = doi.String
	rec.ArXivID = arxivID.String
	rec.ISBN = isbn.String
	rec.HALID = halID.String
	rec.URL = recURL.String
	rec.BibTeX = bibtex.String
	rec.Year = int(year.Int64)
	rec.Month = int(month.Int64)

	if authorsJSON.Valid && authorsJSON.String != "" {
		if err := json.Unmarshal([]byte(authorsJSON.String), &rec.Authors); err != nil {
			return nil, fmt.Errorf("parsing authors JSON for %s:%s: %w", kind, id, err)
		}
	}

	return &rec, nil
}

// Put stores a record for an identifier, replacing any previous entry.
func (c *Cache) Put(kind, id string, rec *bib.Record) error {
	authorsJSON, err := json.Marshal(rec.Authors)
	if err != nil {
		return fmt.Errorf("marshaling authors for %s:%s: %w", kind, id, err)
	}

	_, err = c.db.Exec(`
		INSERT OR REPLACE INTO records (
			kind, id, title, authors_json, year, month, venue, abstract,
			doi, arxiv_id, isbn, hal_id, url, bibtex, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		kind, id, rec.Title, string(authorsJSON), rec.Year, rec.Month,
		rec.Venue, rec.Abstract, rec.DOI, rec.ArXivID, rec.ISBN, rec.HALID,
		rec.URL, rec.BibTeX, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Stats summarizes the cache contents.
type Stats struct {
	Total  int            `json:"total"`
	ByKind map[string]int `json:"by_kind"`
}

// Stats counts cached records per kind.
func (c *Cache) Stats() (*Stats, error) {
	rows, err := c.db.Query(`SELECT kind, COUNT(*) FROM records GROUP BY kind ORDER BY kind`)
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}
	defer rows.Close()

	stats := &Stats{ByKind: make(map[string]int)}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		stats.ByKind[kind] = n
		stats.Total += n
	}
	return stats, rows.Err()
}

// cachedKind decorates an ident.Kind with read-through caching of fetches.
type cachedKind struct {
	ident.Kind
	cache *Cache
}

// Wrap returns a kind whose Fetch consults the cache first and stores
// successful lookups. Failures are never cached; a later call retries the
// network.
func (c *Cache) Wrap(k ident.Kind) ident.Kind {
	return &cachedKind{Kind: k, cache: c}
}

func (k *cachedKind) Fetch(ctx context.Context, id string) (*bib.Record, error) {
	if rec, err := k.cache.Get(k.Name(), id); err == nil && rec != nil {
		return rec, nil
	}
	rec, err := k.Kind.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	// A cache write failure must not fail the fetch.
	_ = k.cache.Put(k.Name(), id, rec)
	return rec, nil
}
