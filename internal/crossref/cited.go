package crossref

import (
	"context"

	"github.com/bibtools/bibfetch/internal/arxiv"
	"github.com/bibtools/bibfetch/internal/doi"
	"github.com/bibtools/bibfetch/internal/ident"
)

// Citation is one reference string with the identifier resolved for it.
// Via records which route produced the DOI: "text" when the string itself
// carried one, "arxiv" when an arXiv identifier was found and looked up,
// "crossref" when bibliographic matching was needed.
type Citation struct {
	Text    string  `json:"text"`
	DOI     string  `json:"doi,omitempty"`
	ArXivID string  `json:"arxiv_id,omitempty"`
	Score   float64 `json:"score,omitempty"`
	Via     string  `json:"via,omitempty"`
}

// Citer resolves the papers cited by a reference list to DOIs, trying
// direct extraction from each reference string before falling back to
// CrossRef bibliographic matching.
type Citer struct {
	client *Client
	doi    *doi.Kind
	arxiv  *arxiv.Kind
}

// NewCiter builds a Citer from the clients it delegates to.
func NewCiter(client *Client, doiKind *doi.Kind, arxivKind *arxiv.Kind) *Citer {
	return &Citer{client: client, doi: doiKind, arxiv: arxivKind}
}

// Cited resolves every reference string to a DOI where possible. The
// returned slice is index-aligned with refs; a reference nothing could be
// found for keeps an empty DOI. Failures are per-reference and never abort
// the batch.
func (ct *Citer) Cited(ctx context.Context, refs []string) []Citation {
	cited := make([]Citation, len(refs))
	var pending []int

	for i, ref := range refs {
		cited[i].Text = ref

		if d := firstIdentifier(ct.doi, ref); d != "" {
			cited[i].DOI = d
			cited[i].Via = "text"
			continue
		}

		if id := firstIdentifier(ct.arxiv, ref); id != "" {
			cited[i].ArXivID = id
			cited[i].Via = "arxiv"
			// The arXiv record often carries the published DOI.
			if d, err := ct.arxiv.DOIFor(ctx, id); err == nil && d != "" {
				cited[i].DOI = doi.Normalize(d)
			}
			continue
		}

		pending = append(pending, i)
	}

	if len(pending) == 0 {
		return cited
	}

	queue := make([]string, len(pending))
	for qi, i := range pending {
		queue[qi] = refs[i]
	}
	for qi, m := range ct.client.MatchAll(ctx, queue) {
		if m.DOI == "" {
			continue
		}
		i := pending[qi]
		cited[i].DOI = m.DOI
		cited[i].Score = m.Score
		cited[i].Via = "crossref"
	}
	return cited
}

// firstIdentifier returns the first validated identifier of the kind found
// in text, normalized, or "".
func firstIdentifier(k ident.Kind, text string) string {
	for _, m := range k.Extract(text) {
		if k.Validate(m.Text) {
			return k.Normalize(m.Text)
		}
	}
	return ""
}
