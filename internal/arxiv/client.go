package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bibtools/bibfetch/internal/bib"
	"github.com/bibtools/bibfetch/internal/ident"
)

const (
	// BaseURL is the arXiv export API base URL.
	BaseURL = "https://export.arxiv.org/api"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
)

// requestInterval honors the arXiv API etiquette of one request per 3 s.
var requestInterval = 3 * time.Second

// Client is a rate-limited client for the arXiv Atom API and the e-print
// source archive.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	sourceURL  string
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

// WithSourceBaseURL sets a custom e-print base URL (for testing).
func WithSourceBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.sourceURL = url
	}
}

// NewClient creates an arXiv API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(requestInterval), 1),
		baseURL:    BaseURL,
		sourceURL:  SourceBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Atom feed shapes for the slice of the arXiv response we consume. The
// arxiv-namespaced elements carry the DOI and journal reference.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string       `xml:"id"`
	Title      string       `xml:"title"`
	Summary    string       `xml:"summary"`
	Published  string       `xml:"published"`
	Authors    []atomAuthor `xml:"author"`
	DOI        string       `xml:"http://arxiv.org/schemas/atom doi"`
	JournalRef string       `xml:"http://arxiv.org/schemas/atom journal_ref"`
	Links      []atomLink   `xml:"link"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

// Fetch resolves an arXiv identifier to its bibliographic record.
func (c *Client) Fetch(ctx context.Context, id string) (*bib.Record, error) {
	entry, err := c.query(ctx, id)
	if err != nil {
		return nil, err
	}

	rec := &bib.Record{
		Title:    cleanSpace(entry.Title),
		Abstract: cleanSpace(entry.Summary),
		ArXivID:  id,
		DOI:      strings.TrimSpace(entry.DOI),
		Venue:    "arXiv",
	}
	if ref := cleanSpace(entry.JournalRef); ref != "" {
		rec.Venue = ref
	}
	for _, a := range entry.Authors {
		if name := cleanSpace(a.Name); name != "" {
			rec.Authors = append(rec.Authors, bib.ParseAuthorName(name))
		}
	}
	rec.Year, rec.Month = parseAtomDate(entry.Published)
	rec.URL = entry.ID
	for _, l := range entry.Links {
		if l.Rel == "alternate" {
			rec.URL = l.Href
			break
		}
	}
	return rec, nil
}

// DOIFor returns the DOI recorded for an arXiv paper, "" when the authors
// never registered one.
func (c *Client) DOIFor(ctx context.Context, id string) (string, error) {
	entry, err := c.query(ctx, id)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(entry.DOI), nil
}

// query fetches the single Atom entry for an identifier.
func (c *Client) query(ctx context.Context, id string) (*atomEntry, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	q := url.Values{}
	q.Set("id_list", id)
	q.Set("max_results", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ident.ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := ident.CheckResponse("arxiv.org", resp.StatusCode); err != nil {
		return nil, err
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("%w: parsing feed: %v", ident.ErrInvalidResponse, err)
	}

	if len(feed.Entries) == 0 {
		return nil, fmt.Errorf("%w: arxiv %s", ident.ErrNotFound, id)
	}
	entry := feed.Entries[0]
	// Unknown identifiers come back as a pseudo-entry titled "Error".
	if strings.TrimSpace(entry.Title) == "Error" || strings.TrimSpace(entry.ID) == "" {
		return nil, fmt.Errorf("%w: arxiv %s", ident.ErrNotFound, id)
	}
	return &entry, nil
}

var spaceRun = regexp.MustCompile(`\s+`)

// cleanSpace collapses whitespace runs; arXiv titles and abstracts arrive
// hard-wrapped.
func cleanSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// parseAtomDate parses an Atom timestamp like "2015-06-22T10:30:00Z".
func parseAtomDate(s string) (year, month int) {
	if len(s) >= 7 {
		year, _ = strconv.Atoi(s[:4])
		if m, err := strconv.Atoi(s[5:7]); err == nil && m >= 1 && m <= 12 {
			month = m
		}
	}
	return year, month
}
