package doi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bibtools/bibfetch/internal/bib"
	"github.com/bibtools/bibfetch/internal/ident"
)

const (
	// BaseURL is the DOI resolver endpoint used for content negotiation.
	BaseURL = "https://doi.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit caps requests per second against the resolver.
	RateLimit = 5.0

	// maxBodySize bounds how much of a response body is read.
	maxBodySize = 1 << 20
)

// Client is a rate-limited client for DOI metadata via content negotiation:
// a GET with "Accept: application/x-bibtex" answers the BibTeX entry for
// the work.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
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

// NewClient creates a doi.org client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch resolves a DOI to its record. The resolver answers BibTeX directly;
// structured fields are lifted out of the entry best-effort and the entry
// itself is kept verbatim on the record.
func (c *Client) Fetch(ctx context.Context, id string) (*bib.Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	doi := Normalize(id)
	// Keep the suffix slashes literal; escape everything else.
	escaped := strings.ReplaceAll(url.PathEscape(doi), "%2F", "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+escaped, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/x-bibtex")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ident.ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := ident.CheckResponse("doi.org", resp.StatusCode); err != nil {
		return nil, err
	}

	// Registrant landing pages ignore content negotiation; only a BibTeX
	// content type is trustworthy.
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/x-bibtex") {
		return nil, fmt.Errorf("%w: content type %q", ident.ErrInvalidResponse, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return recordFromBibTeX(doi, string(body)), nil
}

// recordFromBibTeX builds a Record from a raw BibTeX entry, keeping the
// entry verbatim and lifting the common fields when they parse.
func recordFromBibTeX(doi, raw string) *bib.Record {
	rec := &bib.Record{
		DOI:    doi,
		URL:    ToURL(doi),
		BibTeX: strings.TrimSpace(raw),
	}

	entries, err := bib.ParseEntries(strings.NewReader(raw))
	if err != nil || len(entries) == 0 {
		// The verbatim entry is still useful on its own.
		return rec
	}

	e := entries[0]
	rec.Title = e.Fields["title"]
	rec.Year = e.Year()
	for _, name := range strings.Split(e.Fields["author"], " and ") {
		if name = strings.TrimSpace(name); name != "" {
			rec.Authors = append(rec.Authors, bib.ParseAuthorName(name))
		}
	}
	for _, field := range []string{"journal", "booktitle", "publisher"} {
		if v := e.Fields[field]; v != "" {
			rec.Venue = v
			break
		}
	}
	if u := e.Fields["url"]; u != "" {
		rec.URL = u
	}
	return rec
}
