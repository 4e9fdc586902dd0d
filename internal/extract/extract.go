// Package extract fetches web pages and pulls out best-effort readable text.
package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

// Extractor turns a URL into readable plain text.
type Extractor interface {
	// Extract fetches the page and returns its readable text. An empty
	// result is not an error: pages with no recognizable article content
	// yield "".
	Extract(ctx context.Context, pageURL string) (string, error)
}

// Config configures the HTTP fetch performed before extraction.
type Config struct {
	Timeout   time.Duration // Per-fetch timeout (default: 30s)
	UserAgent string        // User-Agent header (default: "ragpipe/1.0")
}

// Readability implements Extractor using the readability algorithm.
type Readability struct {
	http      *http.Client
	userAgent string
}

// New creates a readability-based extractor.
func New(cfg Config) *Readability {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "ragpipe/1.0"
	}
	return &Readability{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Extract fetches pageURL and runs readability extraction on the response.
// Fetch failures (network errors, non-2xx) are returned as errors; a page
// that parses but contains no readable article yields "" and no error.
func (r *Readability) Extract(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: %s", pageURL, resp.Status)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		// The page fetched fine but nothing article-like was found.
		// Best-effort contract: empty text, not a failure.
		return "", nil
	}
	return strings.TrimSpace(article.TextContent), nil
}

var _ Extractor = (*Readability)(nil)
