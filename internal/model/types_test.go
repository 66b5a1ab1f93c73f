package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-mars/internal/model"
)

func ptr(t time.Time) *time.Time { return &t }

func TestEntryTime(t *testing.T) {
	pub := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	upd := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, upd, model.Entry{Published: ptr(pub), Updated: ptr(upd)}.Time())
	assert.Equal(t, pub, model.Entry{Published: ptr(pub)}.Time())
	assert.True(t, model.Entry{}.Time().Equal(time.Unix(0, 0)))
}

func TestEntryEqual(t *testing.T) {
	pub := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	base := model.Entry{
		ID:      "a",
		Title:   "A",
		Authors: []model.Person{{Name: "Ann"}},
		Links:   []model.Link{{Href: "https://example.org/a"}},
	}
	base.Published = ptr(pub)

	same := base
	same.Published = ptr(pub.In(time.FixedZone("CEST", 2*3600)))
	same.Source = "https://example.org/feed"
	assert.True(t, base.Equal(same), "same instant in another zone and a source tag are equal")

	other := base
	other.Title = "B"
	assert.False(t, base.Equal(other))

	noDate := base
	noDate.Published = nil
	assert.False(t, base.Equal(noDate))

	moreLinks := base
	moreLinks.Links = append([]model.Link{}, base.Links...)
	moreLinks.Links = append(moreLinks.Links, model.Link{Href: "https://example.org/b"})
	assert.False(t, base.Equal(moreLinks))
}

func TestValidatorsIsZero(t *testing.T) {
	assert.True(t, model.Validators{}.IsZero())
	assert.False(t, model.Validators{ETag: `"v1"`}.IsZero())
}
