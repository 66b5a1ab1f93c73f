package aggregate

import (
	"iter"
	"sort"

	"go-mars/internal/model"
)

// compactFactor bounds the buffered entries to compactFactor*max between feeds.
const compactFactor = 4

// Result is what the renderer consumes.
type Result struct {
	// Feeds holds feed-level metadata by feed URL. Entries live in Entries.
	Feeds   map[string]*model.Feed
	Entries []model.Entry
}

// Collect merges the entries of all feeds into at most max entries, newest
// first. Each entry is tagged with the URL of its feed. Feeds are consumed in
// sequence order, which makes the result deterministic.
func Collect(feeds iter.Seq2[string, *model.Feed], max int) Result {
	res := Result{Feeds: make(map[string]*model.Feed)}
	var entries []model.Entry
	for src, f := range feeds {
		for i := range f.Entries {
			f.Entries[i].Source = src
		}
		entries = append(entries, f.Entries...)
		f.Entries = nil
		res.Feeds[src] = f
		if len(entries) > compactFactor*max {
			entries = Trim(entries, max)
		}
	}
	res.Entries = Trim(entries, max)
	return res
}

// Trim stable-sorts entries by effective time, newest first, and keeps max.
func Trim(entries []model.Entry, max int) []model.Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time().After(entries[j].Time())
	})
	if len(entries) > max {
		clear(entries[max:])
		entries = entries[:max]
	}
	return entries
}
