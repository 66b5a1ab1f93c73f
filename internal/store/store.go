// Package store persists the artifacts of fetched feeds: the validators, the
// raw body and its parsed form. Backend is a small key-value interface keyed by
// feed URL; FS is the directory layout used in production, SQLite keeps all
// three artifacts in one row and Memory serves tests.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go-mars/internal/model"
)

var (
	ErrInvalidURL = errors.New("invalid feed url")
	ErrStorage    = errors.New("storage")
	ErrNotFound   = errors.New("not cached")
)

// Record is everything stored for one feed URL.
type Record struct {
	Validators model.Validators
	Raw        []byte
	Parsed     []byte
}

// Backend stores one Record per feed URL.
type Backend interface {
	// Validators returns the zero value when nothing is stored for u.
	Validators(ctx context.Context, u *url.URL) (model.Validators, error)
	// Raw returns ErrNotFound when nothing is stored for u.
	Raw(ctx context.Context, u *url.URL) ([]byte, error)
	Put(ctx context.Context, u *url.URL, rec Record) error
	Close() error
}

// Open returns the backend named by typ ("fs" or "sqlite").
func Open(typ, dir, dsn string) (Backend, error) {
	switch strings.ToLower(typ) {
	case "", "fs":
		return NewFS(dir), nil
	case "sqlite":
		return OpenSQLite(dsn)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrStorage, typ)
	}
}
