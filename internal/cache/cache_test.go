package cache_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-mars/internal/cache"
	"go-mars/internal/feeds"
	"go-mars/internal/feedtest"
	"go-mars/internal/model"
	"go-mars/internal/store"
)

const feedURL = "https://example.org/feed.xml"

var start = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func key(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := store.Key(raw)
	require.NoError(t, err)
	return u
}

func parse(t *testing.T, body []byte) *model.Feed {
	t.Helper()
	f, err := feeds.NewParser(feeds.Strict).Parse(body)
	require.NoError(t, err)
	return f
}

func header(etag, lastModified string) http.Header {
	h := http.Header{}
	if etag != "" {
		h.Set("ETag", etag)
	}
	if lastModified != "" {
		h.Set("Last-Modified", lastModified)
	}
	return h
}

func seeded(t *testing.T, items ...feedtest.Item) (*cache.Cache, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	c := cache.New(mem)
	stored, err := c.Store(context.Background(), key(t, feedURL), header(`"v1"`, ""), feedtest.RSS("t", items...))
	require.NoError(t, err)
	require.True(t, stored)
	return c, mem
}

func TestHasChangedFirstFetch(t *testing.T) {
	c := cache.New(store.NewMemory())
	changed, err := c.HasChanged(context.Background(), key(t, feedURL), parse(t, feedtest.RSS("t", feedtest.Items("a", 2, start)...)))
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestHasChanged(t *testing.T) {
	items := feedtest.Items("e", 3, start) // A, B, C
	a, b, c := items[0], items[1], items[2]
	x := feedtest.Item{Title: "X", GUID: "x", Link: "https://example.org/x", Published: start}

	tests := []struct {
		name string
		old  []feedtest.Item
		new  []feedtest.Item
		want bool
	}{
		{"identical", []feedtest.Item{a, b, c}, []feedtest.Item{a, b, c}, false},
		{"tail dropped", []feedtest.Item{a, b, c}, []feedtest.Item{a, b}, false},
		{"all dropped", []feedtest.Item{a, b}, nil, false},
		{"positional mismatch", []feedtest.Item{a, b}, []feedtest.Item{a, x}, true},
		{"longer", []feedtest.Item{a}, []feedtest.Item{a, b}, true},
		{"prepended", []feedtest.Item{a, b, c}, []feedtest.Item{x, a, b}, true},
		{"reordered", []feedtest.Item{a, b}, []feedtest.Item{b, a}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc, _ := seeded(t, tt.old...)
			got, err := cc.HasChanged(context.Background(), key(t, feedURL), parse(t, feedtest.RSS("t", tt.new...)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasChangedEditedEntry(t *testing.T) {
	items := feedtest.Items("e", 2, start)
	c, _ := seeded(t, items...)

	edited := append([]feedtest.Item{}, items...)
	edited[0].Description = "fixed a typo"
	changed, err := c.HasChanged(context.Background(), key(t, feedURL), parse(t, feedtest.RSS("t", edited...)))
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestStoreWritesAllArtifacts(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	c := cache.New(mem)
	body := feedtest.RSS("title", feedtest.Items("a", 3, start)...)

	stored, err := c.Store(ctx, key(t, feedURL), header(`"v1"`, "Sat, 01 Jun 2024 12:00:00 GMT"), body)
	require.NoError(t, err)
	assert.True(t, stored)

	rec, ok := mem.Record(feedURL)
	require.True(t, ok)
	assert.Equal(t, body, rec.Raw)
	assert.Equal(t, model.Validators{ETag: `"v1"`, LastModified: "Sat, 01 Jun 2024 12:00:00 GMT"}, rec.Validators)

	var parsed model.Feed
	require.NoError(t, json.Unmarshal(rec.Parsed, &parsed))
	assert.Equal(t, "title", parsed.Title)
	assert.Len(t, parsed.Entries, 3)

	v, err := c.LoadValidators(ctx, key(t, feedURL))
	require.NoError(t, err)
	assert.Equal(t, `"v1"`, v.ETag)
}

func TestStoreHeaderLookupIsCaseInsensitive(t *testing.T) {
	mem := store.NewMemory()
	c := cache.New(mem)
	h := http.Header{}
	h.Set("etag", `W/"weak"`)
	h.Set("last-modified", "Sat, 01 Jun 2024 12:00:00 GMT")

	_, err := c.Store(context.Background(), key(t, feedURL), h, feedtest.RSS("t", feedtest.Items("a", 1, start)...))
	require.NoError(t, err)
	rec, _ := mem.Record(feedURL)
	assert.Equal(t, `W/"weak"`, rec.Validators.ETag)
	assert.Equal(t, "Sat, 01 Jun 2024 12:00:00 GMT", rec.Validators.LastModified)
}

func TestStoreUnchangedDoesNotWrite(t *testing.T) {
	items := feedtest.Items("a", 3, start)
	c, mem := seeded(t, items...)

	stored, err := c.Store(context.Background(), key(t, feedURL), header(`"v2"`, ""), feedtest.RSS("t", items[:2]...))
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Equal(t, 1, mem.Puts())
	rec, _ := mem.Record(feedURL)
	assert.Equal(t, `"v1"`, rec.Validators.ETag, "validators stay with the stored body")
}

func TestStoreParseErrorIsNotFatal(t *testing.T) {
	mem := store.NewMemory()
	c := cache.New(mem)
	stored, err := c.Store(context.Background(), key(t, feedURL), header(`"v1"`, ""), []byte("<html>oops</html>"))
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Zero(t, mem.Puts())
}

func TestStoreReplacesUnreadableCopy(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	u := key(t, feedURL)
	require.NoError(t, mem.Put(ctx, u, store.Record{Raw: []byte("garbage")}))

	stored, err := cache.New(mem).Store(ctx, u, header("", ""), feedtest.RSS("t", feedtest.Items("a", 1, start)...))
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestStoreInvalidURL(t *testing.T) {
	c := cache.New(store.NewMemory())
	_, err := c.Store(context.Background(), &url.URL{Path: "feed.xml"}, header("", ""), feedtest.RSS("t", feedtest.Items("a", 1, start)...))
	assert.ErrorIs(t, err, store.ErrInvalidURL)
}

func TestLoadForAggregation(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	c := cache.New(mem)
	other := "https://example.net/atom"

	body := feedtest.RSS("one", feedtest.Item{Title: "x", GUID: "x", Description: `<b>ok</b><script>bad()</script>`, Published: start})
	_, err := c.Store(ctx, key(t, feedURL), header("", ""), body)
	require.NoError(t, err)
	_, err = c.Store(ctx, key(t, other), header("", ""), feedtest.RSS("two", feedtest.Items("b", 2, start)...))
	require.NoError(t, err)

	var order []string
	got := map[string]*model.Feed{}
	urls := []string{"/relative", feedURL, "https://missing.example/feed", other}
	for u, f := range c.LoadForAggregation(ctx, urls) {
		order = append(order, u)
		got[u] = f
	}
	assert.Equal(t, []string{feedURL, other}, order)
	assert.Equal(t, "one", got[feedURL].Title)
	assert.Contains(t, got[feedURL].Entries[0].Summary, "<b>ok</b>")
	assert.NotContains(t, got[feedURL].Entries[0].Summary, "script")
	assert.Len(t, got[other].Entries, 2)

	strict, err := c.Load(ctx, key(t, feedURL), feeds.Strict)
	require.NoError(t, err)
	assert.Contains(t, strict.Entries[0].Summary, "<script>", "change detection sees the unsanitized body")
}
