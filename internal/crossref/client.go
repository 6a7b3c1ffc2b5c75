// Package crossref matches free-form reference strings to DOIs using the
// CrossRef works API.
package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bibtools/bibfetch/internal/ident"
)

const (
	// BaseURL is the CrossRef REST API base URL.
	BaseURL = "https://api.crossref.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit caps requests per second, well inside the polite pool
	// guidance.
	RateLimit = 2.0

	// DefaultMaxMatches bounds concurrent match requests in MatchAll.
	DefaultMaxMatches = 4
)

// urlPattern strips URLs out of reference strings; they degrade
// bibliographic matching.
var urlPattern = regexp.MustCompile(`https?://\S+`)

// Match is the best CrossRef hit for one reference string. Score is the
// raw lexical relevance reported by CrossRef; callers wanting precision
// over recall should apply their own threshold.
type Match struct {
	DOI   string  `json:"doi,omitempty"`
	Score float64 `json:"score,omitempty"`
}

// Client is a rate-limited client for the CrossRef works API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
	maxMatches int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithMailto adds the mailto parameter that routes requests to CrossRef's
// polite pool.
func WithMailto(email string) ClientOption {
	return func(c *Client) {
		c.mailto = email
	}
}

// WithMaxMatches bounds the number of concurrent requests MatchAll makes.
func WithMaxMatches(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxMatches = n
		}
	}
}

// NewClient creates a CrossRef client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		maxMatches: DefaultMaxMatches,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// worksResponse mirrors the slice of the works message we use.
type worksResponse struct {
	Message struct {
		Items []struct {
			DOI   string  `json:"DOI"`
			Score float64 `json:"score"`
		} `json:"items"`
	} `json:"message"`
}

// MatchReference queries CrossRef for the work best matching a reference
// string. Returns ident.ErrNotFound when CrossRef has no candidate.
func (c *Client) MatchReference(ctx context.Context, reference string) (Match, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Match{}, fmt.Errorf("rate limiter: %w", err)
	}

	cleaned := strings.Join(strings.Fields(urlPattern.ReplaceAllString(reference, "")), " ")
	if cleaned == "" {
		return Match{}, fmt.Errorf("%w: empty reference", ident.ErrNotFound)
	}

	q := url.Values{}
	q.Set("query.bibliographic", cleaned)
	q.Set("rows", "1")
	if c.mailto != "" {
		q.Set("mailto", c.mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/works?"+q.Encode(), nil)
	if err != nil {
		return Match{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Match{}, fmt.Errorf("%w: %v", ident.ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := ident.CheckResponse("crossref", resp.StatusCode); err != nil {
		return Match{}, err
	}

	var works worksResponse
	if err := json.NewDecoder(resp.Body).Decode(&works); err != nil {
		return Match{}, fmt.Errorf("%w: parsing works: %v", ident.ErrInvalidResponse, err)
	}
	items := works.Message.Items
	if len(items) == 0 || items[0].DOI == "" {
		return Match{}, fmt.Errorf("%w: no candidate for reference", ident.ErrNotFound)
	}

	return Match{DOI: strings.ToLower(items[0].DOI), Score: items[0].Score}, nil
}

// MatchAll matches a batch of reference strings concurrently, bounded by
// the client's match limit. The returned slice is index-aligned with refs;
// a failed match leaves a zero Match at its index and never aborts the
// batch.
func (c *Client) MatchAll(ctx context.Context, refs []string) []Match {
	matches := make([]Match, len(refs))

	sem := make(chan struct{}, c.maxMatches)
	var wg sync.WaitGroup

	for i, ref := range refs {
		wg.Add(1)
		go func(idx int, text string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			m, err := c.MatchReference(ctx, text)
			if err != nil {
				return
			}
			// No mutex needed - each goroutine writes to its own unique index
			matches[idx] = m
		}(i, ref)
	}

	wg.Wait()
	return matches
}
