package feeds

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy allows common formatting, links and images with http(s), mailto or
// relative URLs. Everything else, svg and math included, is dropped.
var policy = bluemonday.UGCPolicy()

// sanitizeHTML reduces an HTML fragment to the allowlisted subset. Plain text
// comes back HTML-escaped.
func sanitizeHTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	return strings.TrimSpace(policy.Sanitize(s))
}
