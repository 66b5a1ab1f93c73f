// Package feeds wraps gofeed to turn RSS/Atom/JSON feed bytes into
// model.Feed values, and discovers feed URLs of web sites.
//
// A Parser comes in two named configurations: Strict keeps entry markup as
// published and is used for change detection; Sanitized strips unsafe markup
// and is used for everything that ends up in rendered output.
package feeds

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"

	"go-mars/internal/model"
)

// ErrParse is returned for bodies that are not a recognizable feed.
var ErrParse = errors.New("parse feed")

// Mode selects a parser configuration.
type Mode int

const (
	Strict Mode = iota
	Sanitized
)

func (m Mode) String() string {
	if m == Sanitized {
		return "sanitized"
	}
	return "strict"
}

// Parser converts feed documents to model.Feed.
type Parser struct {
	mode Mode
}

func NewParser(mode Mode) *Parser { return &Parser{mode: mode} }

// Mode returns the configuration of p.
func (p *Parser) Mode() Mode { return p.mode }

// Parse decodes body. Any failure wraps ErrParse.
func (p *Parser) Parse(body []byte) (*model.Feed, error) {
	gf, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	f := &model.Feed{
		Title:       strings.TrimSpace(gf.Title),
		Description: gf.Description,
		Link:        gf.Link,
		Authors:     people(gf.Authors),
		Updated:     gf.UpdatedParsed,
		FeedType:    gf.FeedType,
		Entries:     make([]model.Entry, 0, len(gf.Items)),
	}
	for _, it := range gf.Items {
		f.Entries = append(f.Entries, p.entry(it))
	}
	return f, nil
}

func (p *Parser) entry(it *gofeed.Item) model.Entry {
	e := model.Entry{
		ID:         it.GUID,
		Title:      strings.TrimSpace(it.Title),
		Summary:    it.Description,
		Content:    it.Content,
		Authors:    people(it.Authors),
		Links:      links(it),
		Categories: it.Categories,
		Published:  it.PublishedParsed,
		Updated:    it.UpdatedParsed,
	}
	if p.mode == Sanitized {
		e.Summary = sanitizeHTML(e.Summary)
		e.Content = sanitizeHTML(e.Content)
	}
	return e
}

func people(in []*gofeed.Person) []model.Person {
	in = lo.Filter(in, func(p *gofeed.Person, _ int) bool { return p != nil })
	return lo.Map(in, func(p *gofeed.Person, _ int) model.Person {
		return model.Person{Name: strings.TrimSpace(p.Name), Email: p.Email}
	})
}

func links(it *gofeed.Item) []model.Link {
	hrefs := it.Links
	if len(hrefs) == 0 && it.Link != "" {
		hrefs = []string{it.Link}
	}
	return lo.Map(hrefs, func(h string, _ int) model.Link { return model.Link{Href: h} })
}
