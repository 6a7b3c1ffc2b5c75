package citations

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultGrobidURL is where a locally running GROBID service listens.
const DefaultGrobidURL = "http://localhost:8070"

const grobidTimeout = 120 * time.Second

// Grobid extracts references by posting the PDF to a GROBID service and
// parsing the TEI <biblStruct> entries it returns.
type Grobid struct {
	baseURL    string
	httpClient *http.Client
}

// NewGrobid builds the GROBID backend. An empty baseURL uses
// DefaultGrobidURL.
func NewGrobid(baseURL string) *Grobid {
	if baseURL == "" {
		baseURL = DefaultGrobidURL
	}
	return &Grobid{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: grobidTimeout},
	}
}

func (g *Grobid) Name() string { return "grobid" }

func (g *Grobid) Extract(ctx context.Context, src Source) ([]ReferenceEntry, error) {
	if src.Path == "" || strings.ToLower(filepath.Ext(src.Path)) != ".pdf" {
		return nil, fmt.Errorf("%w: grobid reads PDF files", ErrUnsupported)
	}

	f, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("input", filepath.Base(src.Path))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/api/processReferences", &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/xml")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling grobid: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("grobid: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading grobid response: %w", err)
	}
	return parseTEIRefs(data)
}

type teiDoc struct {
	Structs []teiBiblStruct `xml:"text>back>div>listBibl>biblStruct"`
}

type teiBiblStruct struct {
	InnerXML string      `xml:",innerxml"`
	Analytic teiGrouping `xml:"analytic"`
	Monogr   teiGrouping `xml:"monogr"`
}

type teiGrouping struct {
	Title   string        `xml:"title"`
	Authors []teiPersName `xml:"author>persName"`
	Date    teiDate       `xml:"imprint>date"`
}

type teiDate struct {
	When string `xml:"when,attr"`
}

type teiPersName struct {
	Forenames []string `xml:"forename"`
	Surname   string   `xml:"surname"`
}

func parseTEIRefs(data []byte) ([]ReferenceEntry, error) {
	var doc teiDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing grobid response: %w", err)
	}

	var entries []ReferenceEntry
	for _, bs := range doc.Structs {
		entry := ReferenceEntry{
			Text:   flattenXMLText(bs.InnerXML),
			Author: joinTEINames(bs.Analytic.Authors),
			Title:  cleanWhitespace(bs.Analytic.Title),
		}
		// A journal article carries its fields under <analytic>; books
		// and reports only have <monogr>.
		if entry.Title == "" {
			entry.Title = cleanWhitespace(bs.Monogr.Title)
		}
		if entry.Author == "" {
			entry.Author = joinTEINames(bs.Monogr.Authors)
		}
		if when := bs.Monogr.Date.When; len(when) >= 4 {
			if y, err := strconv.Atoi(when[:4]); err == nil {
				entry.Year = y
			}
		}
		if entry.Text == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func joinTEINames(names []teiPersName) string {
	var parts []string
	for _, n := range names {
		full := cleanWhitespace(strings.Join(n.Forenames, " ") + " " + n.Surname)
		if full != "" {
			parts = append(parts, full)
		}
	}
	return strings.Join(parts, ", ")
}
