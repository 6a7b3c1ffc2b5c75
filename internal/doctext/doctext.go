// Package doctext linearizes source documents into plain text so that
// identifier scanning and citation extraction can run over them.
package doctext

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadable indicates a document could not be converted to text.
var ErrUnreadable = errors.New("document is unreadable")

// djvutxtBin is the DjVu-to-text converter binary. Variable so tests can
// point it at a stand-in.
var djvutxtBin = "djvutxt"

// textExtensions lists extensions that are read directly as plain text.
var textExtensions = map[string]bool{
	"":      true,
	".txt":  true,
	".text": true,
	".md":   true,
	".tex":  true,
	".bbl":  true,
	".bib":  true,
}

// FromFile converts a document to plain text. PDFs are parsed directly,
// DjVu files go through djvutxt, and plain-text formats are read as-is.
// Returns ErrUnreadable when the format is unsupported or conversion fails.
func FromFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".pdf":
		return FromPDF(path, 0)
	case ext == ".djvu":
		return fromDjVu(path)
	case textExtensions[ext]:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: unsupported extension %q", ErrUnreadable, ext)
	}
}

// FromPDF extracts text from the first maxPages pages of a PDF.
// maxPages <= 0 extracts every page. Pages that fail to decode are
// skipped; a scanned PDF with no text layer yields an empty string,
// not an error.
func FromPDF(path string, maxPages int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening pdf: %v", ErrUnreadable, err)
	}
	defer f.Close()

	return pagesText(r, maxPages), nil
}

// FromReader extracts text from PDF data supplied as an io.ReaderAt.
func FromReader(r io.ReaderAt, size int64, maxPages int) (string, error) {
	pdfReader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: reading pdf: %v", ErrUnreadable, err)
	}

	return pagesText(pdfReader, maxPages), nil
}

func pagesText(r *pdf.Reader, maxPages int) string {
	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String()
}

func fromDjVu(path string) (string, error) {
	output, err := exec.Command(djvutxtBin, path).Output()
	if err != nil {
		return "", fmt.Errorf("%w: djvutxt: %v", ErrUnreadable, err)
	}
	return string(output), nil
}
