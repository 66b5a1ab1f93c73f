package store

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"go-mars/internal/model"
)

// Memory is an in-process Backend keyed by the full URL.
type Memory struct {
	mu   sync.Mutex
	recs map[string]Record
	puts int
}

func NewMemory() *Memory { return &Memory{recs: make(map[string]Record)} }

func (m *Memory) Validators(_ context.Context, u *url.URL) (model.Validators, error) {
	if _, err := Slug(u); err != nil {
		return model.Validators{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recs[u.String()].Validators, nil
}

func (m *Memory) Raw(_ context.Context, u *url.URL) ([]byte, error) {
	if _, err := Slug(u); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[u.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
	}
	return rec.Raw, nil
}

func (m *Memory) Put(_ context.Context, u *url.URL, rec Record) error {
	if _, err := Slug(u); err != nil {
		return err
	}
	m.mu.Lock()
	m.recs[u.String()] = rec
	m.puts++
	m.mu.Unlock()
	return nil
}

// Record returns what is stored for raw.
func (m *Memory) Record(raw string) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[raw]
	return rec, ok
}

// Puts counts successful Put calls.
func (m *Memory) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

func (m *Memory) Close() error { return nil }
