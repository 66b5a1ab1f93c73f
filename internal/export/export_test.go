package export_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-mars/internal/aggregate"
	"go-mars/internal/export"
	"go-mars/internal/model"
	"go-mars/internal/store"
)

func result() aggregate.Result {
	return aggregate.Result{
		Feeds: map[string]*model.Feed{
			"https://b.example/feed": {Title: "B", Link: "https://b.example/"},
			"https://a.example/feed": {Title: "A", Authors: []model.Person{{Name: "Ann"}}},
		},
		Entries: []model.Entry{
			{ID: "1", Title: "one", Source: "https://a.example/feed"},
			{ID: "2", Title: "two", Source: "https://b.example/feed"},
		},
	}
}

func TestBuild(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	doc := export.Build(result(), now)

	assert.Equal(t, model.Stats{FeedsTotal: 2, EntriesTotal: 2, UpdatedAt: now}, doc.Stats)
	require.Len(t, doc.Feeds, 2)
	assert.Equal(t, "https://a.example/feed", doc.Feeds[0].URL)
	assert.Equal(t, "Ann", doc.Feeds[0].Authors[0].Name)
	assert.Equal(t, "https://b.example/", doc.Feeds[1].Link)
	assert.Equal(t, "one", doc.Entries[0].Title)
}

func TestBuildEmpty(t *testing.T) {
	doc := export.Build(aggregate.Result{}, time.Now())
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"entries":[]`)
	assert.Contains(t, string(b), `"feeds":[]`)
}

func TestFileWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planet.json")
	f := export.File{Path: path}
	require.NoError(t, f.Write(result()))
	require.NoError(t, f.Write(aggregate.Result{}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc model.Export
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Zero(t, doc.Stats.EntriesTotal)

	b, err = os.ReadFile(path + store.BackupSuffix)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, 2, doc.Stats.EntriesTotal)
}

func TestFileWriteError(t *testing.T) {
	err := export.File{Path: filepath.Join(t.TempDir(), "missing", "planet.json")}.Write(result())
	assert.ErrorIs(t, err, store.ErrStorage)
}
