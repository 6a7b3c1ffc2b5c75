package citations

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultCermineURL is the hosted CERMINE service.
const DefaultCermineURL = "http://cermine.ceon.pl"

const cermineTimeout = 120 * time.Second

// CermineRunner produces CERMINE's JATS output for a PDF.
type CermineRunner interface {
	Run(ctx context.Context, pdfPath string) ([]byte, error)
}

// CermineJar invokes a local CERMINE JAR file.
type CermineJar struct {
	JarPath string
	JavaBin string // defaults to "java"
}

func (c CermineJar) Run(ctx context.Context, pdfPath string) ([]byte, error) {
	java := c.JavaBin
	if java == "" {
		java = "java"
	}
	output, err := exec.CommandContext(ctx, java,
		"-cp", c.JarPath,
		"pl.edu.icm.cermine.ContentExtractor",
		"-path", pdfPath).Output()
	if err != nil {
		return nil, fmt.Errorf("running cermine: %w", err)
	}
	return output, nil
}

// CermineAPI posts the PDF to a hosted CERMINE service. The upload sends
// the whole paper over the network, so the local JAR is preferred when
// available.
type CermineAPI struct {
	BaseURL    string // defaults to DefaultCermineURL
	HTTPClient *http.Client
}

func (c CermineAPI) Run(ctx context.Context, pdfPath string) ([]byte, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultCermineURL
	}
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cermineTimeout}
	}

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("reading pdf: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(base, "/")+"/extract.do", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/binary")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling cermine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cermine: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Cermine extracts references from PDFs via CERMINE, parsing the
// back-matter <ref> elements of its JATS output.
type Cermine struct {
	runner CermineRunner
}

// NewCermine builds the CERMINE backend. A nil runner uses the hosted API.
func NewCermine(runner CermineRunner) *Cermine {
	if runner == nil {
		runner = CermineAPI{}
	}
	return &Cermine{runner: runner}
}

func (c *Cermine) Name() string { return "cermine" }

func (c *Cermine) Extract(ctx context.Context, src Source) ([]ReferenceEntry, error) {
	if src.Path == "" || strings.ToLower(filepath.Ext(src.Path)) != ".pdf" {
		return nil, fmt.Errorf("%w: cermine reads PDF files", ErrUnsupported)
	}
	output, err := c.runner.Run(ctx, src.Path)
	if err != nil {
		return nil, err
	}
	return parseJATSRefs(output)
}

type jatsArticle struct {
	Refs []jatsRef `xml:"back>ref-list>ref"`
}

type jatsRef struct {
	Mixed jatsCitation `xml:"mixed-citation"`
}

type jatsCitation struct {
	InnerXML     string     `xml:",innerxml"`
	Names        []jatsName `xml:"string-name"`
	ArticleTitle string     `xml:"article-title"`
	Year         string     `xml:"year"`
}

type jatsName struct {
	GivenNames string `xml:"given-names"`
	Surname    string `xml:"surname"`
}

func parseJATSRefs(data []byte) ([]ReferenceEntry, error) {
	var doc jatsArticle
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing cermine output: %w", err)
	}

	var entries []ReferenceEntry
	for _, ref := range doc.Refs {
		entry := ReferenceEntry{
			Text:   flattenXMLText(ref.Mixed.InnerXML),
			Author: joinJATSNames(ref.Mixed.Names),
			Title:  cleanWhitespace(ref.Mixed.ArticleTitle),
		}
		if y, err := strconv.Atoi(strings.TrimSpace(ref.Mixed.Year)); err == nil {
			entry.Year = y
		}
		if entry.Text == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func joinJATSNames(names []jatsName) string {
	var parts []string
	for _, n := range names {
		if full := cleanWhitespace(n.GivenNames + " " + n.Surname); full != "" {
			parts = append(parts, full)
		}
	}
	return strings.Join(parts, ", ")
}

// flattenXMLText concatenates every text node in an XML fragment in
// document order, dropping the markup.
func flattenXMLText(inner string) string {
	dec := xml.NewDecoder(strings.NewReader("<r>" + inner + "</r>"))
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		if cd, ok := tok.(xml.CharData); ok {
			b.Write(cd)
		}
	}
	return cleanWhitespace(b.String())
}
