package citations

import (
	"context"
	"fmt"
)

// BBLFetcher retrieves the .bbl bibliographies bundled with an arXiv
// paper's e-print source.
type BBLFetcher interface {
	BBL(ctx context.Context, id string) ([]string, error)
}

// ArXivSource extracts references from the .bbl files inside an arXiv
// paper's source bundle, so a paper named by arXiv identifier needs no
// local file at all. The bundled bibliography is the author's own, which
// makes this the most trustworthy backend when it applies.
type ArXivSource struct {
	fetcher BBLFetcher
	bbl     *BBL
}

// NewArXivSource builds the arXiv source backend. A nil detex uses the
// delatex tool with the built-in stripper fallback.
func NewArXivSource(fetcher BBLFetcher, detex DeTeX) *ArXivSource {
	return &ArXivSource{fetcher: fetcher, bbl: NewBBL(detex)}
}

func (a *ArXivSource) Name() string { return "arxiv" }

func (a *ArXivSource) Extract(ctx context.Context, src Source) ([]ReferenceEntry, error) {
	if src.ArXivID == "" {
		return nil, fmt.Errorf("%w: arxiv wants an arXiv identifier", ErrUnsupported)
	}

	bbls, err := a.fetcher.BBL(ctx, src.ArXivID)
	if err != nil {
		return nil, fmt.Errorf("fetching arxiv source: %w", err)
	}

	var entries []ReferenceEntry
	for _, content := range bbls {
		es, err := a.bbl.Extract(ctx, Source{Text: content})
		if err != nil {
			return nil, err
		}
		entries = append(entries, es...)
	}
	return entries, nil
}
