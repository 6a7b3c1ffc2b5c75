// Package hal implements the HAL identifier kind for the French open
// archive: extraction of hal-XXXXXXXX identifiers with their two version
// spellings, validation, normalization, and metadata lookup against the
// HAL search API.
package hal

import (
	"context"
	"regexp"
	"strings"

	"github.com/bibtools/bibfetch/internal/bib"
	"github.com/bibtools/bibfetch/internal/ident"
)

// Name is the registry name of this kind.
const Name = "hal"

var (
	// halPattern matches hal-XXXXXXXX with an optional version, written
	// either "v2" or ", version 2".
	halPattern = regexp.MustCompile(`\bhal-\d{8}(?:, version \d+|v\d+)?\b`)

	validPattern = regexp.MustCompile(`^hal-\d{8}(?:, version \d+|v\d+)?$`)

	verboseVersion = regexp.MustCompile(`, version (\d+)$`)
	compactVersion = regexp.MustCompile(`v\d+$`)
)

// Kind is the HAL identifier kind.
type Kind struct {
	client *Client
}

var _ ident.Kind = (*Kind)(nil)

// New creates the HAL kind. Options configure the underlying API client.
func New(opts ...ClientOption) *Kind {
	return &Kind{client: NewClient(opts...)}
}

// Name returns "hal".
func (k *Kind) Name() string { return Name }

// Extract reports HAL-shaped substrings, version spellings included.
func (k *Kind) Extract(text string) []ident.RawMatch {
	var out []ident.RawMatch
	for _, loc := range halPattern.FindAllStringIndex(text, -1) {
		out = append(out, ident.RawMatch{
			Kind:  Name,
			Text:  text[loc[0]:loc[1]],
			Start: loc[0],
			End:   loc[1],
		})
	}
	return out
}

// Validate checks the identifier shape; HAL identifiers carry no checksum.
func (k *Kind) Validate(s string) bool { return IsValid(s) }

// Normalize canonicalizes the verbose version spelling, so
// "hal-01234567, version 2" and "hal-01234567v2" deduplicate to the
// latter. The version itself is kept: a versioned identifier names one
// specific deposit, the bare form the latest one, and the two are
// different claims.
func (k *Kind) Normalize(s string) string {
	return Normalize(s)
}

// Fetch resolves a HAL identifier to its bibliographic record.
func (k *Kind) Fetch(ctx context.Context, id string) (*bib.Record, error) {
	return k.client.Fetch(ctx, id)
}

// IsValid reports whether s is a well-formed HAL identifier.
func IsValid(s string) bool {
	return validPattern.MatchString(strings.TrimSpace(s))
}

// Normalize rewrites ", version N" as "vN" and trims surrounding space.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if m := verboseVersion.FindStringSubmatchIndex(s); m != nil {
		return s[:m[0]] + "v" + s[m[2]:m[3]]
	}
	return s
}

// WithoutVersion strips the version suffix of either spelling. The HAL
// search API indexes only the bare identifier.
func WithoutVersion(s string) string {
	return compactVersion.ReplaceAllString(Normalize(s), "")
}
