package citations

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
)

// PDFExtract shells out to CrossRef's pdf-extract tool and parses the
// <reference> elements from its XML output.
type PDFExtract struct {
	bin string
}

// NewPDFExtract builds the pdf-extract backend. An empty bin looks up
// "pdf-extract" on PATH.
func NewPDFExtract(bin string) *PDFExtract {
	if bin == "" {
		bin = "pdf-extract"
	}
	return &PDFExtract{bin: bin}
}

func (p *PDFExtract) Name() string { return "pdfextract" }

func (p *PDFExtract) Extract(ctx context.Context, src Source) ([]ReferenceEntry, error) {
	if src.Path == "" || strings.ToLower(filepath.Ext(src.Path)) != ".pdf" {
		return nil, fmt.Errorf("%w: pdf-extract reads PDF files", ErrUnsupported)
	}

	output, err := exec.CommandContext(ctx, p.bin, "extract", "--references", src.Path).Output()
	if err != nil {
		return nil, fmt.Errorf("running pdf-extract: %w", err)
	}
	return parsePDFExtractRefs(output)
}

// parsePDFExtractRefs walks the output tokens rather than unmarshalling,
// so a truncated or partially garbled dump still yields the references
// read before the breakage.
func parsePDFExtractRefs(data []byte) ([]ReferenceEntry, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var entries []ReferenceEntry
	var depth int
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			if err != io.EOF && len(entries) == 0 {
				return nil, fmt.Errorf("parsing pdf-extract output: %w", err)
			}
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "reference" {
				depth++
				text.Reset()
			}
		case xml.EndElement:
			if t.Name.Local == "reference" && depth > 0 {
				depth--
				if s := cleanWhitespace(text.String()); s != "" {
					entries = append(entries, ReferenceEntry{Text: s})
				}
			}
		case xml.CharData:
			if depth > 0 {
				text.Write(t)
			}
		}
	}
	return entries, nil
}
