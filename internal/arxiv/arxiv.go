// Package arxiv implements the arXiv identifier kind: extraction of both
// the post-2007 numeric form (YYMM.NNNNN) and the older archive-prefixed
// form (archive/YYMMNNN), validation, version-folding normalization, and
// metadata lookup against the arXiv Atom API.
package arxiv

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/bibtools/bibfetch/internal/bib"
	"github.com/bibtools/bibfetch/internal/ident"
)

// Name is the registry name of this kind.
const Name = "arxiv"

// archives are the top-level archives of the pre-2007 scheme.
var archives = []string{
	"astro-ph", "cond-mat", "cs", "gr-qc", "hep-ex", "hep-lat", "hep-ph",
	"hep-th", "math-ph", "math", "nlin", "nucl-ex", "nucl-th", "physics",
	"q-bio", "q-fin", "quant-ph", "stat",
}

var (
	// newStylePattern: optional label, YYMM.NNNNN with optional version.
	newStylePattern = regexp.MustCompile(`\b(?:arXiv:)?\d{4}\.\d{4,5}(?:v\d+)?\b`)

	// oldStylePattern: optional label, archive with optional subclass,
	// slash, YYMMNNN with optional version.
	oldStylePattern = regexp.MustCompile(`\b(?:arXiv:)?(?:` + strings.Join(archives, "|") +
		`)(?:\.[A-Za-z-]{2,5})?/\d{7}(?:v\d+)?\b`)

	// anchored forms for whole-string validation.
	validNewStyle = regexp.MustCompile(`^\d{4}\.\d{4,5}(?:v\d+)?$`)
	validOldStyle = regexp.MustCompile(`^(?:` + strings.Join(archives, "|") +
		`)(?:\.[A-Za-z-]{2,5})?/\d{7}(?:v\d+)?$`)

	versionSuffix = regexp.MustCompile(`v\d+$`)
)

// Kind is the arXiv identifier kind.
type Kind struct {
	client *Client
}

var _ ident.Kind = (*Kind)(nil)

// New creates the arXiv kind. Options configure the underlying API client.
func New(opts ...ClientOption) *Kind {
	return &Kind{client: NewClient(opts...)}
}

// Name returns "arxiv".
func (k *Kind) Name() string { return Name }

// Extract reports arXiv-shaped substrings of both schemes, in text order.
// An "arXiv:" label is kept in the match text when present.
func (k *Kind) Extract(text string) []ident.RawMatch {
	var out []ident.RawMatch
	for _, re := range []*regexp.Regexp{oldStylePattern, newStylePattern} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			out = append(out, ident.RawMatch{
				Kind:  Name,
				Text:  text[loc[0]:loc[1]],
				Start: loc[0],
				End:   loc[1],
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Validate checks the identifier shape, including a plausible month in the
// date part: 2305.99999 can exist, 2313.00001 cannot. Labels and version
// suffixes are accepted.
func (k *Kind) Validate(s string) bool { return IsValid(s) }

// Normalize strips the "arXiv:" label and folds version suffixes away, so
// 1506.06690 and arXiv:1506.06690v2 deduplicate to the same identifier.
// The unversioned identifier always denotes the latest revision.
func (k *Kind) Normalize(s string) string {
	return Normalize(s)
}

// Fetch resolves an arXiv identifier to its bibliographic record.
func (k *Kind) Fetch(ctx context.Context, id string) (*bib.Record, error) {
	return k.client.Fetch(ctx, id)
}

// DOIFor returns the DOI recorded for an arXiv paper, "" when the authors
// never registered one.
func (k *Kind) DOIFor(ctx context.Context, id string) (string, error) {
	return k.client.DOIFor(ctx, id)
}

// IsValid reports whether s is a well-formed arXiv identifier of either
// scheme, tolerating an "arXiv:" label.
func IsValid(s string) bool {
	s = stripLabel(s)
	switch {
	case validNewStyle.MatchString(s):
		return validMonth(s[2:4])
	case validOldStyle.MatchString(s):
		digits := s[strings.Index(s, "/")+1:]
		return validMonth(digits[2:4])
	}
	return false
}

// Normalize is the package-level form of Kind.Normalize.
func Normalize(s string) string {
	s = stripLabel(s)
	return versionSuffix.ReplaceAllString(s, "")
}

func stripLabel(s string) string {
	s = strings.TrimSpace(s)
	for _, p := range []string{"arXiv:", "arxiv:", "arXiv.org:"} {
		s = strings.TrimPrefix(s, p)
	}
	return s
}

func validMonth(mm string) bool {
	return mm >= "01" && mm <= "12"
}
