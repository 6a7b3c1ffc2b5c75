// Package isbn implements the ISBN identifier kind: extraction of ISBN-10
// and ISBN-13 spellings, real checksum validation, canonicalization, and
// metadata lookup against the Google Books API.
package isbn

import (
	"context"
	"regexp"
	"strings"

	"github.com/bibtools/bibfetch/internal/bib"
	"github.com/bibtools/bibfetch/internal/ident"
)

// Name is the registry name of this kind.
const Name = "isbn"

// isbnPattern matches ISBN-10 and ISBN-13 digit runs with optional hyphen
// or space separators. The final position of an ISBN-10 may be X.
var isbnPattern = regexp.MustCompile(`\b(?:97[89][-\s]?)?(?:\d[-\s]?){9}[\dXx]\b`)

// isbnLabel recognizes an "ISBN", "ISBN-10:" etc. label just before a match.
var isbnLabel = regexp.MustCompile(`(?i)isbn(?:-1[03])?[:\s]*$`)

// Kind is the ISBN identifier kind.
type Kind struct {
	client *Client
}

var _ ident.Kind = (*Kind)(nil)

// New creates the ISBN kind. Options configure the underlying books client.
func New(opts ...ClientOption) *Kind {
	return &Kind{client: NewClient(opts...)}
}

// Name returns "isbn".
func (k *Kind) Name() string { return Name }

// Extract reports ISBN-shaped substrings in text. A bare 10-digit run is
// kept only when an ISBN label precedes it: without separators, a label, or
// the 978/979 prefix, such runs are overwhelmingly phone numbers and IDs
// that the checksum alone cannot all reject.
func (k *Kind) Extract(text string) []ident.RawMatch {
	var out []ident.RawMatch
	for _, loc := range isbnPattern.FindAllStringIndex(text, -1) {
		match := text[loc[0]:loc[1]]
		if !plausibleInContext(text, loc[0], match) {
			continue
		}
		out = append(out, ident.RawMatch{
			Kind:  Name,
			Text:  match,
			Start: loc[0],
			End:   loc[1],
		})
	}
	return out
}

// plausibleInContext decides whether a pattern match deserves validation.
func plausibleInContext(text string, start int, match string) bool {
	if strings.ContainsAny(match, "- ") {
		return true
	}
	if len(canonicalize(match)) == 13 {
		return true // the 978/979 bookland prefix is distinctive on its own
	}
	lookback := start - 10
	if lookback < 0 {
		lookback = 0
	}
	return isbnLabel.MatchString(text[lookback:start])
}

// Validate checks the ISBN checksum: mod-11 with a possible X check digit
// for ISBN-10, weighted mod-10 for ISBN-13. Labels and separators are
// tolerated.
func (k *Kind) Validate(s string) bool { return IsValid(s) }

// Normalize returns the canonical separator-free form with an uppercase
// check digit.
func (k *Kind) Normalize(s string) string { return canonicalize(s) }

// Fetch resolves an ISBN to its bibliographic record.
func (k *Kind) Fetch(ctx context.Context, id string) (*bib.Record, error) {
	return k.client.Fetch(ctx, id)
}

// IsValid reports whether s is a checksum-valid ISBN-10 or ISBN-13.
func IsValid(s string) bool {
	c := canonicalize(s)
	switch len(c) {
	case 10:
		return checkISBN10(c)
	case 13:
		return checkISBN13(c)
	}
	return false
}

// canonicalize strips labels and separators and uppercases the check digit.
func canonicalize(s string) string {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, p := range []string{"isbn-13", "isbn-10", "isbn"} {
		if strings.HasPrefix(lower, p) {
			s = s[len(p):]
			break
		}
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteRune('X')
		}
	}
	return b.String()
}

// checkISBN10 verifies the mod-11 checksum with weights 10..1; the last
// position may be X (value 10).
func checkISBN10(c string) bool {
	sum := 0
	for i := 0; i < 10; i++ {
		var v int
		switch {
		case c[i] >= '0' && c[i] <= '9':
			v = int(c[i] - '0')
		case c[i] == 'X' && i == 9:
			v = 10
		default:
			return false
		}
		sum += v * (10 - i)
	}
	return sum%11 == 0
}

// checkISBN13 verifies the alternating 1,3 weighted mod-10 checksum.
func checkISBN13(c string) bool {
	if !strings.HasPrefix(c, "978") && !strings.HasPrefix(c, "979") {
		return false
	}
	sum := 0
	for i := 0; i < 13; i++ {
		if c[i] < '0' || c[i] > '9' {
			return false
		}
		v := int(c[i] - '0')
		if i%2 == 1 {
			v *= 3
		}
		sum += v
	}
	return sum%10 == 0
}

// To13 converts an ISBN-10 to its ISBN-13 form. Invalid input returns "".
func To13(isbn10 string) string {
	c := canonicalize(isbn10)
	if len(c) == 13 && checkISBN13(c) {
		return c
	}
	if len(c) != 10 || !checkISBN10(c) {
		return ""
	}
	body := "978" + c[:9]
	sum := 0
	for i := 0; i < 12; i++ {
		v := int(body[i] - '0')
		if i%2 == 1 {
			v *= 3
		}
		sum += v
	}
	return body + string(rune('0'+(10-sum%10)%10))
}

// To10 converts a 978-prefixed ISBN-13 to its ISBN-10 form. 979 ISBNs have
// no ISBN-10 equivalent; those and invalid input return "".
func To10(isbn13 string) string {
	c := canonicalize(isbn13)
	if len(c) == 10 && checkISBN10(c) {
		return c
	}
	if len(c) != 13 || !strings.HasPrefix(c, "978") || !checkISBN13(c) {
		return ""
	}
	body := c[3:12]
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(body[i]-'0') * (10 - i)
	}
	check := (11 - sum%11) % 11
	if check == 10 {
		return body + "X"
	}
	return body + string(rune('0'+check))
}
