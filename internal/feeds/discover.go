package feeds

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"go-mars/internal/logx"
	"go-mars/internal/model"
)

// Getter performs a GET. *fetch.Client implements it.
type Getter interface {
	Get(ctx context.Context, rawURL string, v model.Validators) (*http.Response, error)
}

// commonPaths are tried relative to the site root when the page does not
// announce a feed.
var commonPaths = []string{
	"/feed", "/feed.xml", "/index.xml", "/atom.xml", "/rss.xml", "/rss",
	"/feed.json", "/index.json", "/?feed=rss2",
}

// maxSniff bounds how much of a page is read while discovering.
const maxSniff = 2 << 20

// Discover returns the feed URL of site: a feed URL is returned as is, an
// HTML page is searched for <link rel="alternate"> and otherwise common feed
// paths are probed.
func Discover(ctx context.Context, g Getter, site string) (string, error) {
	base, err := url.Parse(site)
	if err != nil || base.Host == "" {
		return "", fmt.Errorf("invalid site url %q", site)
	}
	body, ctype, err := get(ctx, g, site, maxSniff)
	if err != nil {
		return "", err
	}
	if looksLikeFeed(ctype, body) {
		return site, nil
	}
	if href := alternateLink(body); href != "" {
		found := resolve(base, href)
		logx.Debugf("feed announced by page: %s", found)
		return found, nil
	}
	for _, p := range commonPaths {
		cand := resolve(base, p)
		logx.Debugf("probing %s", cand)
		b, ct, err := get(ctx, g, cand, 4096)
		if err == nil && looksLikeFeed(ct, b) {
			return cand, nil
		}
	}
	return "", fmt.Errorf("no feed discovered for %s", site)
}

func get(ctx context.Context, g Getter, u string, limit int64) ([]byte, string, error) {
	resp, err := g.Get(ctx, u, model.Validators{})
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("GET %s: %s", u, resp.Status)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", u, err)
	}
	return b, strings.ToLower(resp.Header.Get("Content-Type")), nil
}

func alternateLink(page []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return ""
	}
	var href string
	doc.Find(`link[rel~="alternate"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := strings.ToLower(s.AttrOr("type", ""))
		if strings.Contains(t, "rss") || strings.Contains(t, "atom") || strings.Contains(t, "json") {
			href = s.AttrOr("href", "")
			return href == ""
		}
		return true
	})
	return href
}

func looksLikeFeed(ctype string, head []byte) bool {
	if strings.Contains(ctype, "rss") || strings.Contains(ctype, "atom") || strings.Contains(ctype, "feed+json") {
		return true
	}
	lb := bytes.ToLower(head)
	if strings.Contains(ctype, "html") {
		return false
	}
	return bytes.Contains(lb, []byte("<rss")) || bytes.Contains(lb, []byte("<feed")) ||
		bytes.Contains(lb, []byte("<rdf")) || bytes.Contains(lb, []byte("jsonfeed.org/version"))
}

func resolve(base *url.URL, ref string) string {
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(r).String()
}
