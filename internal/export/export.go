// Package export writes the aggregated feeds and entries as a JSON document.
package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go-mars/internal/aggregate"
	"go-mars/internal/model"
	"go-mars/internal/store"
)

// Build assembles the export document. Feeds are sorted by URL.
func Build(res aggregate.Result, now time.Time) model.Export {
	feeds := make([]model.FeedSummary, 0, len(res.Feeds))
	for u, f := range res.Feeds {
		feeds = append(feeds, model.FeedSummary{URL: u, Title: f.Title, Link: f.Link, Authors: f.Authors})
	}
	sort.Slice(feeds, func(i, j int) bool { return feeds[i].URL < feeds[j].URL })
	entries := res.Entries
	if entries == nil {
		entries = []model.Entry{}
	}
	return model.Export{
		Stats: model.Stats{
			FeedsTotal:   len(feeds),
			EntriesTotal: len(entries),
			UpdatedAt:    now,
		},
		Feeds:   feeds,
		Entries: entries,
	}
}

// ToJSON writes the export of res to path, keeping the previous file as
// path.backup.
func ToJSON(res aggregate.Result, path string) error {
	b, err := json.MarshalIndent(Build(res, time.Now().UTC()), "", "  ")
	if err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return store.WriteFile(path, append(b, '\n'))
}

// File writes the export to Path after every aggregation.
type File struct {
	Path string
}

func (f File) Write(res aggregate.Result) error { return ToJSON(res, f.Path) }
