// Package aggregate drives one run: conditional fetch of every configured
// feed, then, when something changed, collection of all cached feeds into a
// bounded newest-first entry list handed to the outputs.
package aggregate

import (
	"context"
	"errors"
	"iter"
	"net/url"

	"go-mars/internal/logx"
	"go-mars/internal/metrics"
	"go-mars/internal/model"
	"go-mars/internal/store"
)

// Fetcher updates the cache for one feed and reports whether it changed.
type Fetcher interface {
	Fetch(ctx context.Context, u *url.URL) (bool, error)
}

// Source yields cached feeds ready for output.
type Source interface {
	LoadForAggregation(ctx context.Context, urls []string) iter.Seq2[string, *model.Feed]
}

// Output consumes an aggregation result, e.g. the template renderer.
type Output interface {
	Write(res Result) error
}

// Runner executes one batch over the configured feeds.
type Runner struct {
	urls       []string
	maxEntries int
	fetcher    Fetcher
	source     Source
	outputs    []Output
}

func New(urls []string, maxEntries int, f Fetcher, src Source, outputs ...Output) *Runner {
	return &Runner{urls: urls, maxEntries: maxEntries, fetcher: f, source: src, outputs: outputs}
}

// Run fetches all feeds unless noFetch is set and builds the outputs when a
// feed changed or noFetch is set. It reports whether outputs were built.
// Per-feed failures are logged; only output failures are returned.
func (r *Runner) Run(ctx context.Context, noFetch bool) (bool, error) {
	build := true
	if !noFetch {
		build = r.FetchAll(ctx)
	}
	if !build {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	res := r.Collect(ctx)
	var errs []error
	for _, out := range r.outputs {
		if err := out.Write(res); err != nil {
			logx.Errorf("writing output failed: %v", err)
			errs = append(errs, err)
		}
	}
	return true, errors.Join(errs...)
}

// FetchAll fetches every feed in order and reports whether any changed.
func (r *Runner) FetchAll(ctx context.Context) bool {
	rebuild := false
	for _, raw := range r.urls {
		if ctx.Err() != nil {
			logx.Warnf("run cancelled, %s and later feeds not fetched", raw)
			break
		}
		u, err := store.Key(raw)
		if err != nil {
			logx.Errorf("error parsing url %q: %v", raw, err)
			continue
		}
		changed, err := r.fetcher.Fetch(ctx, u)
		if err != nil {
			logx.Warnf("problem fetching %s: %v", raw, err)
			continue
		}
		if changed {
			logx.Infof("feed changed: %s", raw)
		}
		rebuild = rebuild || changed
	}
	logx.Infof("done fetching, rebuild needed: %v", rebuild)
	return rebuild
}

// Collect aggregates the cached feeds.
func (r *Runner) Collect(ctx context.Context) Result {
	res := Collect(r.source.LoadForAggregation(ctx, r.urls), r.maxEntries)
	metrics.ObserveAggregation(len(res.Entries))
	logx.Infof("aggregated %d entries from %d feeds", len(res.Entries), len(res.Feeds))
	return res
}
