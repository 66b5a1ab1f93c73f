// Package fetch issues conditional GET requests for feeds and hands changed
// bodies to the cache.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"go-mars/internal/model"
)

// ErrFetch wraps transport failures: DNS, TLS, refused connections, deadlines
// and broken bodies.
var ErrFetch = errors.New("fetch feed")

// Client is an HTTP client that identifies the bot on every request.
type Client struct {
	http      *http.Client
	userAgent string
	from      string
	timeout   time.Duration
}

// Options configures New.
type Options struct {
	BotName  string
	Version  string
	Homepage string
	Software string
	// From is sent as the From header: a contact address for feed owners.
	From       string
	ProxyHTTP  string
	ProxyHTTPS string
	// Timeout bounds each request including reading the body. Defaults to 30s.
	Timeout time.Duration
}

// New creates a client with http/https proxy support and a per-request
// deadline.
func New(opts Options) (*Client, error) {
	var proxyHTTP, proxyHTTPS *url.URL
	var err error
	if opts.ProxyHTTP != "" {
		if proxyHTTP, err = url.Parse(opts.ProxyHTTP); err != nil {
			return nil, fmt.Errorf("parse http proxy: %w", err)
		}
	}
	if opts.ProxyHTTPS != "" {
		if proxyHTTPS, err = url.Parse(opts.ProxyHTTPS); err != nil {
			return nil, fmt.Errorf("parse https proxy: %w", err)
		}
	}
	transport := &http.Transport{
		Proxy: func(req *http.Request) (*url.URL, error) {
			if req.URL.Scheme == "https" && proxyHTTPS != nil {
				return proxyHTTPS, nil
			}
			if req.URL.Scheme == "http" && proxyHTTP != nil {
				return proxyHTTP, nil
			}
			return http.ProxyFromEnvironment(req)
		},
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		http:      &http.Client{Transport: transport, Timeout: opts.Timeout},
		userAgent: UserAgent(opts.BotName, opts.Version, opts.Homepage, opts.Software),
		from:      opts.From,
		timeout:   opts.Timeout,
	}, nil
}

// UserAgent formats "<bot>/<version> <homepage> software: <software>". An
// empty homepage is left out.
func UserAgent(bot, version, homepage, software string) string {
	if homepage == "" {
		return fmt.Sprintf("%s/%s software: %s", bot, version, software)
	}
	return fmt.Sprintf("%s/%s %s software: %s", bot, version, homepage, software)
}

func (c *Client) UserAgentString() string { return c.userAgent }

// Timeout is the per-request deadline.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Get sends one GET with the identifying headers and, when set, the
// conditional headers of v. There are no retries. The client timeout covers
// the response body too. Any non-nil response is returned whatever its
// status; errors wrap ErrFetch.
func (c *Client) Get(ctx context.Context, rawURL string, v model.Validators) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: new request %s: %v", ErrFetch, rawURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.from != "" {
		req.Header.Set("From", c.from)
	}
	if v.ETag != "" {
		req.Header.Set("If-None-Match", v.ETag)
	}
	if v.LastModified != "" {
		req.Header.Set("If-Modified-Since", v.LastModified)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrFetch, rawURL, err)
	}
	return resp, nil
}
