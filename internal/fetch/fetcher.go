package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go-mars/internal/logx"
	"go-mars/internal/metrics"
	"go-mars/internal/model"
)

// Cache is the part of the feed cache the fetcher needs.
type Cache interface {
	LoadValidators(ctx context.Context, u *url.URL) (model.Validators, error)
	Store(ctx context.Context, u *url.URL, h http.Header, body []byte) (bool, error)
}

// State is where one fetch ended.
type State int

const (
	Failed State = iota
	NotModified
	Fetched
	Unhandled
)

func (s State) String() string {
	switch s {
	case NotModified:
		return metrics.NotModified
	case Fetched:
		return metrics.Fetched
	case Unhandled:
		return metrics.Unhandled
	default:
		return metrics.Failed
	}
}

// Fetcher performs conditional GETs and stores changed feeds.
type Fetcher struct {
	client *Client
	cache  Cache
}

func NewFetcher(cl *Client, c Cache) *Fetcher {
	return &Fetcher{client: cl, cache: c}
}

// Fetch runs one conditional request for u and reports whether the cache was
// updated. 304 and any status other than 200 report false without error. The
// client timeout bounds the request only; storing runs under ctx.
func (f *Fetcher) Fetch(ctx context.Context, u *url.URL) (bool, error) {
	_, changed, err := f.fetch(ctx, u)
	return changed, err
}

func (f *Fetcher) fetch(ctx context.Context, u *url.URL) (st State, changed bool, err error) {
	start := time.Now()
	defer func() { metrics.ObserveFetch(st.String(), time.Since(start)) }()

	v, err := f.cache.LoadValidators(ctx, u)
	if err != nil {
		return Failed, false, err
	}

	resp, err := f.client.Get(ctx, u.String(), v)
	if err != nil {
		return Failed, false, err
	}
	defer resp.Body.Close()
	logx.Debugf("fetched with status %d in %d ms: %s", resp.StatusCode, time.Since(start).Milliseconds(), u)

	switch resp.StatusCode {
	case http.StatusNotModified:
		return NotModified, false, nil
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return Failed, false, fmt.Errorf("%w: read body %s: %v", ErrFetch, u, err)
		}
		changed, err := f.cache.Store(ctx, u, resp.Header, body)
		if err != nil {
			return Failed, false, err
		}
		if changed {
			metrics.ObserveStored()
		}
		return Fetched, changed, nil
	default:
		logx.Warnf("HTTP status %s not handled for %s", resp.Status, u)
		return Unhandled, false, nil
	}
}
