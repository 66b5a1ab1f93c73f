package store

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/gosimple/slug"
)

// Paths are the on-disk artifacts of one feed URL.
type Paths struct {
	Raw        string
	Parsed     string
	Validators string
}

// Key parses raw and checks that it names a host. Feed URLs that fail here
// never reach storage.
func Key(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidURL, raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: %q has no domain", ErrInvalidURL, raw)
	}
	return u, nil
}

// Slug derives a file name from host, path and query of u. IP hosts are
// accepted and the port is part of the host. URLs differing only in scheme or
// fragment share a slug, and since "&" slugifies to "and", so do "a&b" and
// "aandb". The SQLite backend keys by full URL and is not affected.
func Slug(u *url.URL) (string, error) {
	if u == nil || u.Host == "" {
		return "", fmt.Errorf("%w: %v has no domain", ErrInvalidURL, u)
	}
	s := slug.Make(u.Host + u.EscapedPath() + u.RawQuery)
	if s == "" {
		return "", fmt.Errorf("%w: %v yields an empty slug", ErrInvalidURL, u)
	}
	return s, nil
}

// PathsFor maps u to its artifact paths below dir.
func PathsFor(dir string, u *url.URL) (Paths, error) {
	s, err := Slug(u)
	if err != nil {
		return Paths{}, err
	}
	base := filepath.Join(dir, s)
	return Paths{
		Raw:        base,
		Parsed:     base + ".json",
		Validators: base + ".toml",
	}, nil
}
