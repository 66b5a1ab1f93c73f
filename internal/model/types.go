// Package model defines the feed, entry and validator types shared by the
// cache, the aggregator and the renderer.
package model

import (
	"slices"
	"time"
)

// Validators holds the HTTP conditional-request metadata of one feed URL.
type Validators struct {
	ETag         string `toml:"etag" json:"etag"`
	LastModified string `toml:"last_modified" json:"last_modified"`
}

// IsZero reports whether no validator is known.
func (v Validators) IsZero() bool { return v.ETag == "" && v.LastModified == "" }

// Person is a feed or entry author.
type Person struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type Link struct {
	Href string `json:"href"`
}

// Feed is the parsed form of a stored feed body.
type Feed struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Link        string     `json:"link,omitempty"`
	Authors     []Person   `json:"authors"`
	Updated     *time.Time `json:"updated,omitempty"`
	FeedType    string     `json:"feed_type,omitempty"`
	Entries     []Entry    `json:"entries"`
}

// Entry is one item of a feed. Source is set during aggregation only and is
// ignored by Equal.
type Entry struct {
	ID         string     `json:"id,omitempty"`
	Title      string     `json:"title"`
	Summary    string     `json:"summary,omitempty"`
	Content    string     `json:"content,omitempty"`
	Authors    []Person   `json:"authors"`
	Links      []Link     `json:"links"`
	Categories []string   `json:"categories,omitempty"`
	Published  *time.Time `json:"published,omitempty"`
	Updated    *time.Time `json:"updated,omitempty"`
	Source     string     `json:"source,omitempty"`
}

// epoch is the effective time of an entry without any timestamp.
var epoch = time.Unix(0, 0).UTC()

// Time returns Updated, else Published, else the Unix epoch.
func (e Entry) Time() time.Time {
	if e.Updated != nil {
		return *e.Updated
	}
	if e.Published != nil {
		return *e.Published
	}
	return epoch
}

// Equal reports structural equality of the wire-level fields.
func (e Entry) Equal(o Entry) bool {
	return e.ID == o.ID &&
		e.Title == o.Title &&
		e.Summary == o.Summary &&
		e.Content == o.Content &&
		slices.Equal(e.Authors, o.Authors) &&
		slices.Equal(e.Links, o.Links) &&
		slices.Equal(e.Categories, o.Categories) &&
		sameTime(e.Published, o.Published) &&
		sameTime(e.Updated, o.Updated)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
