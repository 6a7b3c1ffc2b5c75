package citations

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bibtools/bibfetch/internal/bib"
)

// BibTeX extracts references from a local .bib file. Each entry is
// flattened into a citation string, keeping author, title and year as
// pre-parsed fields.
type BibTeX struct{}

func (BibTeX) Name() string { return "bibtex" }

func (BibTeX) Extract(_ context.Context, src Source) ([]ReferenceEntry, error) {
	var parsed []bib.Entry
	var err error
	switch {
	case strings.HasPrefix(strings.TrimSpace(src.Text), "@"):
		parsed, err = bib.ParseEntries(strings.NewReader(src.Text))
	case src.Path != "" && strings.ToLower(filepath.Ext(src.Path)) == ".bib":
		parsed, err = bib.ParseFile(src.Path)
	default:
		return nil, fmt.Errorf("%w: bibtex wants a .bib file", ErrUnsupported)
	}
	if err != nil {
		return nil, err
	}

	var entries []ReferenceEntry
	for _, e := range parsed {
		entries = append(entries, ReferenceEntry{
			Text:   cleanWhitespace(e.Flatten()),
			Author: cleanWhitespace(e.Fields["author"]),
			Title:  cleanWhitespace(e.Fields["title"]),
			Year:   e.Year(),
		})
	}
	return entries, nil
}
