package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"

	"github.com/BurntSushi/toml"

	"go-mars/internal/logx"
	"go-mars/internal/model"
)

// FS keeps three files per feed in a flat directory:
// <slug> (raw body), <slug>.json (parsed) and <slug>.toml (validators).
type FS struct {
	dir string
}

func NewFS(dir string) *FS { return &FS{dir: dir} }

func (s *FS) Dir() string { return s.dir }

func (s *FS) Validators(_ context.Context, u *url.URL) (model.Validators, error) {
	var v model.Validators
	p, err := PathsFor(s.dir, u)
	if err != nil {
		return v, err
	}
	b, err := os.ReadFile(p.Validators)
	if errors.Is(err, fs.ErrNotExist) {
		return v, nil
	}
	if err != nil {
		return v, fmt.Errorf("%w: read %s: %v", ErrStorage, p.Validators, err)
	}
	if _, err := toml.Decode(string(b), &v); err != nil {
		return model.Validators{}, fmt.Errorf("%w: decode %s: %v", ErrStorage, p.Validators, err)
	}
	return v, nil
}

func (s *FS) Raw(_ context.Context, u *url.URL) ([]byte, error) {
	p, err := PathsFor(s.dir, u)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p.Raw)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorage, p.Raw, err)
	}
	return b, nil
}

// Put writes parsed form, raw body and validators, in that order. A failure
// part way leaves the earlier files updated.
func (s *FS) Put(_ context.Context, u *url.URL, rec Record) error {
	p, err := PathsFor(s.dir, u)
	if err != nil {
		return err
	}
	var vb bytes.Buffer
	if err := toml.NewEncoder(&vb).Encode(rec.Validators); err != nil {
		return fmt.Errorf("%w: encode validators for %s: %v", ErrStorage, u, err)
	}
	logx.Debugf("storing feed %s as %s", u, p.Raw)
	if err := WriteFile(p.Parsed, rec.Parsed); err != nil {
		return err
	}
	if err := WriteFile(p.Raw, rec.Raw); err != nil {
		return err
	}
	return WriteFile(p.Validators, vb.Bytes())
}

func (s *FS) Close() error { return nil }
