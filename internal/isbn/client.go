package isbn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bibtools/bibfetch/internal/bib"
	"github.com/bibtools/bibfetch/internal/ident"
)

const (
	// BaseURL is the Google Books API base URL.
	BaseURL = "https://www.googleapis.com/books/v1"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit caps requests per second against the books API.
	RateLimit = 5.0
)

// Client is a rate-limited client for book metadata lookups by ISBN.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
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

// WithAPIKey sets an API key; anonymous access works but is quota-limited.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// NewClient creates a Google Books client.
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

// volumesResponse mirrors the slice of the Google Books volume list we use.
type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title         string   `json:"title"`
			Subtitle      string   `json:"subtitle"`
			Authors       []string `json:"authors"`
			Publisher     string   `json:"publisher"`
			PublishedDate string   `json:"publishedDate"`
			Description   string   `json:"description"`
			InfoLink      string   `json:"infoLink"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Fetch resolves an ISBN to its bibliographic record.
func (c *Client) Fetch(ctx context.Context, id string) (*bib.Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	canonical := canonicalize(id)

	q := url.Values{}
	q.Set("q", "isbn:"+canonical)
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/volumes?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ident.ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := ident.CheckResponse("books.google.com", resp.StatusCode); err != nil {
		return nil, err
	}

	var vols volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&vols); err != nil {
		return nil, fmt.Errorf("%w: parsing volumes: %v", ident.ErrInvalidResponse, err)
	}
	if vols.TotalItems == 0 || len(vols.Items) == 0 {
		return nil, fmt.Errorf("%w: isbn %s", ident.ErrNotFound, canonical)
	}

	info := vols.Items[0].VolumeInfo
	rec := &bib.Record{
		Title:    info.Title,
		Venue:    info.Publisher,
		Abstract: info.Description,
		ISBN:     canonical,
		URL:      info.InfoLink,
	}
	if info.Subtitle != "" {
		rec.Title = info.Title + ": " + info.Subtitle
	}
	for _, name := range info.Authors {
		rec.Authors = append(rec.Authors, bib.ParseAuthorName(name))
	}
	rec.Year, rec.Month = parsePublishedDate(info.PublishedDate)
	return rec, nil
}

// parsePublishedDate parses "2004", "2004-11", or "2004-11-15".
func parsePublishedDate(s string) (year, month int) {
	parts := strings.Split(s, "-")
	if len(parts) >= 1 {
		year, _ = strconv.Atoi(parts[0])
	}
	if len(parts) >= 2 {
		if m, err := strconv.Atoi(parts[1]); err == nil && m >= 1 && m <= 12 {
			month = m
		}
	}
	return year, month
}
