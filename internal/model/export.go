package model

import "time"

// Stats summarises one aggregation.
type Stats struct {
	FeedsTotal   int       `json:"feeds_total"`
	EntriesTotal int       `json:"entries_total"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FeedSummary is the feed-level part of an exported feed.
type FeedSummary struct {
	URL     string   `json:"url"`
	Title   string   `json:"title"`
	Link    string   `json:"link,omitempty"`
	Authors []Person `json:"authors"`
}

// Export is the top level of the JSON export.
type Export struct {
	Stats   Stats         `json:"stats"`
	Feeds   []FeedSummary `json:"feeds"`
	Entries []Entry       `json:"entries"`
}
