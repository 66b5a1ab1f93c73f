package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"go-mars/internal/model"
)

// SQLite stores each feed as a single row, so the three artifacts of a feed
// change together. Rows are keyed by the full URL, not by slug.
type SQLite struct {
	db *sqlx.DB
}

type artifactRow struct {
	URL          string    `db:"url"`
	ETag         string    `db:"etag"`
	LastModified string    `db:"last_modified"`
	Raw          []byte    `db:"raw"`
	Parsed       []byte    `db:"parsed"`
	StoredAt     time.Time `db:"stored_at"`
}

// OpenSQLite opens the database at path (a file path or a "file:" DSN) and
// creates the schema when missing.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite %s: %v", ErrStorage, path, err)
	}
	db.SetMaxOpenConns(1)
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate: %v", ErrStorage, err)
	}
	return s, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS artifacts (
            url TEXT PRIMARY KEY,
            etag TEXT NOT NULL DEFAULT '',
            last_modified TEXT NOT NULL DEFAULT '',
            raw BLOB NOT NULL,
            parsed BLOB NOT NULL,
            stored_at TIMESTAMP
        );`)
	return err
}

func (s *SQLite) Validators(ctx context.Context, u *url.URL) (model.Validators, error) {
	var v model.Validators
	if _, err := Slug(u); err != nil {
		return v, err
	}
	var row artifactRow
	err := s.db.GetContext(ctx, &row, `SELECT url, etag, last_modified FROM artifacts WHERE url = ?`, u.String())
	if errors.Is(err, sql.ErrNoRows) {
		return v, nil
	}
	if err != nil {
		return v, fmt.Errorf("%w: query validators %s: %v", ErrStorage, u, err)
	}
	return model.Validators{ETag: row.ETag, LastModified: row.LastModified}, nil
}

func (s *SQLite) Raw(ctx context.Context, u *url.URL) ([]byte, error) {
	if _, err := Slug(u); err != nil {
		return nil, err
	}
	var raw []byte
	err := s.db.GetContext(ctx, &raw, `SELECT raw FROM artifacts WHERE url = ?`, u.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query raw %s: %v", ErrStorage, u, err)
	}
	return raw, nil
}

// Put replaces the row of u inside one transaction.
func (s *SQLite) Put(ctx context.Context, u *url.URL, rec Record) error {
	if _, err := Slug(u); err != nil {
		return err
	}
	row := artifactRow{
		URL:          u.String(),
		ETag:         rec.Validators.ETag,
		LastModified: rec.Validators.LastModified,
		Raw:          nonNil(rec.Raw),
		Parsed:       nonNil(rec.Parsed),
		StoredAt:     time.Now().UTC(),
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin %s: %v", ErrStorage, u, err)
	}
	defer tx.Rollback()
	_, err = tx.NamedExecContext(ctx, `INSERT INTO artifacts(url, etag, last_modified, raw, parsed, stored_at)
        VALUES(:url, :etag, :last_modified, :raw, :parsed, :stored_at)
        ON CONFLICT(url) DO UPDATE SET etag=excluded.etag, last_modified=excluded.last_modified,
            raw=excluded.raw, parsed=excluded.parsed, stored_at=excluded.stored_at`, row)
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", ErrStorage, u, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit %s: %v", ErrStorage, u, err)
	}
	return nil
}

// Count returns the number of stored feeds.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM artifacts`); err != nil {
		return 0, fmt.Errorf("%w: count artifacts: %v", ErrStorage, err)
	}
	return n, nil
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
