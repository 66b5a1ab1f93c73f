// Package feedtest builds feed documents for tests.
package feedtest

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// Item is one <item> of an RSS document. Zero fields are omitted.
type Item struct {
	Title       string
	Link        string
	GUID        string
	Author      string
	Description string
	Published   time.Time
}

// RSS renders an RSS 2.0 document.
func RSS(title string, items ...Item) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<rss version="2.0"><channel>`)
	fmt.Fprintf(&b, "<title>%s</title><link>https://example.org/</link><description>test</description>", html.EscapeString(title))
	for _, it := range items {
		b.WriteString("<item>")
		fmt.Fprintf(&b, "<title>%s</title>", html.EscapeString(it.Title))
		if it.Link != "" {
			fmt.Fprintf(&b, "<link>%s</link>", html.EscapeString(it.Link))
		}
		if it.GUID != "" {
			fmt.Fprintf(&b, "<guid>%s</guid>", html.EscapeString(it.GUID))
		}
		if it.Author != "" {
			fmt.Fprintf(&b, "<author>%s</author>", html.EscapeString(it.Author))
		}
		if it.Description != "" {
			fmt.Fprintf(&b, "<description>%s</description>", html.EscapeString(it.Description))
		}
		if !it.Published.IsZero() {
			fmt.Fprintf(&b, "<pubDate>%s</pubDate>", it.Published.UTC().Format(time.RFC1123Z))
		}
		b.WriteString("</item>")
	}
	b.WriteString("</channel></rss>")
	return []byte(b.String())
}

// Items returns n items named <prefix>1..<prefix>n, newest first, one hour
// apart starting at start.
func Items(prefix string, n int, start time.Time) []Item {
	out := make([]Item, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, Item{
			Title:     fmt.Sprintf("%s%d", prefix, i),
			Link:      fmt.Sprintf("https://example.org/%s/%d", prefix, i),
			GUID:      fmt.Sprintf("%s-%d", prefix, i),
			Published: start.Add(-time.Duration(i-1) * time.Hour),
		})
	}
	return out
}
