package citations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// minReferenceLen drops lines too short to be a citation, page numbers
// and stray section headings mostly.
const minReferenceLen = 10

var plaintextExtensions = map[string]bool{
	"":      true,
	".txt":  true,
	".text": true,
}

// Plaintext treats the source as one reference per line. It is the last
// resort backend: no tool involved, just whitespace cleaning.
type Plaintext struct{}

func (Plaintext) Name() string { return "plaintext" }

func (Plaintext) Extract(_ context.Context, src Source) ([]ReferenceEntry, error) {
	text := src.Text
	if text == "" {
		if src.Path == "" || !plaintextExtensions[strings.ToLower(filepath.Ext(src.Path))] {
			return nil, fmt.Errorf("%w: plaintext wants one reference per line", ErrUnsupported)
		}
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("reading references: %w", err)
		}
		text = string(data)
	}

	var entries []ReferenceEntry
	for _, line := range strings.Split(text, "\n") {
		line = cleanWhitespace(line)
		if len(line) < minReferenceLen {
			continue
		}
		entries = append(entries, ReferenceEntry{Text: line})
	}
	return entries, nil
}
