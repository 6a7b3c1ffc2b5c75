package hal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/bibtools/bibfetch/internal/bib"
	"github.com/bibtools/bibfetch/internal/ident"
)

const (
	// BaseURL is the HAL search API base URL.
	BaseURL = "https://api.archives-ouvertes.fr"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit caps requests per second against the archive.
	RateLimit = 5.0

	// docFields are the Solr fields requested for a lookup.
	docFields = "halId_s,title_s,authFullName_s,producedDateY_i,journalTitle_s,abstract_s,doiId_s,uri_s"
)

// Client is a rate-limited client for the HAL search API.
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

// NewClient creates a HAL API client.
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

// searchResponse mirrors the Solr response slice we consume.
type searchResponse struct {
	Response struct {
		NumFound int `json:"numFound"`
		Docs     []struct {
			HALID    string   `json:"halId_s"`
			Title    []string `json:"title_s"`
			Authors  []string `json:"authFullName_s"`
			Year     int      `json:"producedDateY_i"`
			Journal  string   `json:"journalTitle_s"`
			Abstract []string `json:"abstract_s"`
			DOI      string   `json:"doiId_s"`
			URI      string   `json:"uri_s"`
		} `json:"docs"`
	} `json:"response"`
}

// Fetch resolves a HAL identifier to its bibliographic record.
func (c *Client) Fetch(ctx context.Context, id string) (*bib.Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	q := url.Values{}
	q.Set("q", "halId_s:"+WithoutVersion(id))
	q.Set("fl", docFields)
	q.Set("wt", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ident.ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := ident.CheckResponse("hal", resp.StatusCode); err != nil {
		return nil, err
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("%w: parsing search response: %v", ident.ErrInvalidResponse, err)
	}
	if sr.Response.NumFound == 0 || len(sr.Response.Docs) == 0 {
		return nil, fmt.Errorf("%w: hal %s", ident.ErrNotFound, id)
	}

	doc := sr.Response.Docs[0]
	rec := &bib.Record{
		Year:  doc.Year,
		Venue: doc.Journal,
		HALID: doc.HALID,
		DOI:   doc.DOI,
		URL:   doc.URI,
	}
	if rec.HALID == "" {
		rec.HALID = id
	}
	if len(doc.Title) > 0 {
		rec.Title = doc.Title[0]
	}
	if len(doc.Abstract) > 0 {
		rec.Abstract = doc.Abstract[0]
	}
	for _, name := range doc.Authors {
		rec.Authors = append(rec.Authors, bib.ParseAuthorName(name))
	}
	return rec, nil
}
