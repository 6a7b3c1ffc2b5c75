// Package doi implements the DOI identifier kind: extraction and shape
// validation of Digital Object Identifiers, and metadata lookup through
// doi.org content negotiation.
package doi

import (
	"context"
	"regexp"
	"strings"

	"github.com/bibtools/bibfetch/internal/bib"
	"github.com/bibtools/bibfetch/internal/ident"
)

// Name is the registry name of this kind.
const Name = "doi"

// DOI pattern: 10.XXXX/... where XXXX is 4-9 digits, an optional dotted
// sub-prefix, and a suffix running to the next whitespace or delimiter.
var doiPattern = regexp.MustCompile(`\b10\.\d{4,9}(?:\.\d+)*/[^\s"&'<>]+`)

// validPattern anchors the same grammar for whole-string validation.
var validPattern = regexp.MustCompile(`^10\.\d{4,9}(?:\.\d+)*/[^\s"&'<>]+$`)

// trailingJunk is punctuation that commonly trails a DOI in running text.
const trailingJunk = ".,;:)]}"

// Kind is the DOI identifier kind.
type Kind struct {
	client *Client
}

var _ ident.Kind = (*Kind)(nil)

// New creates the DOI kind. Options configure the underlying doi.org client.
func New(opts ...ClientOption) *Kind {
	return &Kind{client: NewClient(opts...)}
}

// Name returns "doi".
func (k *Kind) Name() string { return Name }

// Extract reports every DOI-shaped substring in text, with common trailing
// punctuation trimmed off the match.
func (k *Kind) Extract(text string) []ident.RawMatch {
	var out []ident.RawMatch
	for _, loc := range doiPattern.FindAllStringIndex(text, -1) {
		match := strings.TrimRight(text[loc[0]:loc[1]], trailingJunk)
		if match == "" {
			continue
		}
		out = append(out, ident.RawMatch{
			Kind:  Name,
			Text:  match,
			Start: loc[0],
			End:   loc[0] + len(match),
		})
	}
	return out
}

// Validate checks the DOI shape. No checksum exists for DOIs, so shape is
// all there is: prefix "10.", a 4-9 digit registrant, a non-empty suffix.
// URL and "doi:" spellings are accepted.
func (k *Kind) Validate(s string) bool { return IsValid(s) }

// Normalize maps equivalent DOI spellings to the canonical lowercase form.
func (k *Kind) Normalize(s string) string { return Normalize(s) }

// Fetch resolves a DOI to its bibliographic record via doi.org.
func (k *Kind) Fetch(ctx context.Context, id string) (*bib.Record, error) {
	return k.client.Fetch(ctx, id)
}

// IsValid reports whether s is a well-formed DOI, tolerating URL and
// "doi:" prefixes.
func IsValid(s string) bool {
	return validPattern.MatchString(stripPrefixes(s))
}

// Normalize strips URL and "doi:" prefixes and lowercases. DOI names are
// case-insensitive per the handle system, so lowercase is the canonical
// comparison form.
func Normalize(s string) string {
	return strings.ToLower(stripPrefixes(s))
}

// ToURL returns the canonical resolver URL for a DOI.
func ToURL(doi string) string {
	return "https://doi.org/" + Normalize(doi)
}

// stripPrefixes removes resolver-URL and label prefixes.
func stripPrefixes(s string) string {
	s = strings.TrimSpace(s)
	for _, p := range []string{
		"https://doi.org/",
		"http://doi.org/",
		"https://dx.doi.org/",
		"http://dx.doi.org/",
		"dx.doi.org/",
		"doi.org/",
		"DOI:",
		"doi:",
	} {
		s = strings.TrimPrefix(s, p)
	}
	return strings.TrimSpace(s)
}
