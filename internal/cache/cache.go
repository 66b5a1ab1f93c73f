// Package cache decides whether a freshly fetched feed differs from the stored
// one and persists it when it does.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"

	"go-mars/internal/feeds"
	"go-mars/internal/logx"
	"go-mars/internal/model"
	"go-mars/internal/store"
)

// Cache stores feeds in a store.Backend. Stored raw bodies are re-parsed on
// load: strictly for change detection, sanitized for aggregation.
type Cache struct {
	backend   store.Backend
	strict    *feeds.Parser
	sanitized *feeds.Parser
}

func New(b store.Backend) *Cache {
	return &Cache{
		backend:   b,
		strict:    feeds.NewParser(feeds.Strict),
		sanitized: feeds.NewParser(feeds.Sanitized),
	}
}

// LoadValidators returns the stored validators of u, empty when u was never
// stored. A corrupt validators artifact is an error.
func (c *Cache) LoadValidators(ctx context.Context, u *url.URL) (model.Validators, error) {
	return c.backend.Validators(ctx, u)
}

// Store parses body and persists it together with the validators from h when
// its entries changed. It reports whether anything was written. Bodies that do
// not parse are logged and dropped without error.
func (c *Cache) Store(ctx context.Context, u *url.URL, h http.Header, body []byte) (bool, error) {
	v := model.Validators{
		ETag:         h.Get("ETag"),
		LastModified: h.Get("Last-Modified"),
	}
	feed, err := c.strict.Parse(body)
	if err != nil {
		logx.Warnf("error parsing feed for %s: %v", u, err)
		return false, nil
	}
	changed, err := c.HasChanged(ctx, u, feed)
	if err != nil {
		return false, err
	}
	if !changed {
		logx.Debugf("feed unchanged: %s", u)
		return false, nil
	}
	parsed, err := json.MarshalIndent(feed, "", "  ")
	if err != nil {
		return false, fmt.Errorf("%w: encode parsed feed %s: %v", store.ErrStorage, u, err)
	}
	if err := c.backend.Put(ctx, u, store.Record{Validators: v, Raw: body, Parsed: parsed}); err != nil {
		return false, err
	}
	return true, nil
}

// HasChanged compares the entries of next position by position against the
// stored feed. Entries dropped from the tail do not count as a change.
func (c *Cache) HasChanged(ctx context.Context, u *url.URL, next *model.Feed) (bool, error) {
	prev, err := c.Load(ctx, u, feeds.Strict)
	if errors.Is(err, store.ErrNotFound) {
		return true, nil
	}
	if errors.Is(err, feeds.ErrParse) {
		logx.Warnf("stored copy of %s is unreadable, replacing it: %v", u, err)
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if len(next.Entries) > len(prev.Entries) {
		return true, nil
	}
	for i, e := range next.Entries {
		if !e.Equal(prev.Entries[i]) {
			return true, nil
		}
	}
	return false, nil
}

// Load re-parses the stored body of u in the given mode. It returns an error
// wrapping store.ErrNotFound when nothing is stored.
func (c *Cache) Load(ctx context.Context, u *url.URL, mode feeds.Mode) (*model.Feed, error) {
	raw, err := c.backend.Raw(ctx, u)
	if err != nil {
		return nil, err
	}
	p := c.strict
	if mode == feeds.Sanitized {
		p = c.sanitized
	}
	f, err := p.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("stored feed %s: %w", u, err)
	}
	return f, nil
}

// LoadForAggregation yields the sanitized stored feed of each URL, in order.
// URLs that are invalid, not cached or unparseable are skipped.
func (c *Cache) LoadForAggregation(ctx context.Context, urls []string) iter.Seq2[string, *model.Feed] {
	return func(yield func(string, *model.Feed) bool) {
		for _, raw := range urls {
			if ctx.Err() != nil {
				return
			}
			u, err := store.Key(raw)
			if err != nil {
				logx.Warnf("skipping feed %s: %v", raw, err)
				continue
			}
			f, err := c.Load(ctx, u, feeds.Sanitized)
			if errors.Is(err, store.ErrNotFound) {
				logx.Warnf("no cached feed for %s", raw)
				continue
			}
			if err != nil {
				logx.Warnf("problem loading cached feed %s: %v", raw, err)
				continue
			}
			if !yield(raw, f) {
				return
			}
		}
	}
}
