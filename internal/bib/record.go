// Package bib defines the bibliographic record model shared by all
// identifier kinds, plus BibTeX rendering and parsing.
package bib

import (
	"fmt"
	"strings"
	"unicode"
)

// Record is the canonical metadata for a single work as assembled from a
// remote lookup. A nil *Record paired with a reason error is how callers
// express "nothing recoverable for this identifier".
type Record struct {
	Title    string   `json:"title"`
	Authors  []Author `json:"authors,omitempty"`
	Year     int      `json:"year,omitempty"`
	Month    int      `json:"month,omitempty"` // 1-12, 0 if unknown
	Venue    string   `json:"venue,omitempty"` // Journal, conference, publisher, or preprint server
	Abstract string   `json:"abstract,omitempty"`

	// External identifiers, populated when the source API reports them.
	DOI     string `json:"doi,omitempty"`
	ArXivID string `json:"arxiv_id,omitempty"`
	ISBN    string `json:"isbn,omitempty"`
	HALID   string `json:"hal_id,omitempty"`
	URL     string `json:"url,omitempty"`

	// BibTeX holds the provider-supplied entry verbatim when the source API
	// speaks BibTeX natively (doi.org content negotiation). Empty otherwise;
	// ToBibTeX renders from the structured fields in that case.
	BibTeX string `json:"bibtex,omitempty"`
}

// Author is a single creator name. Last is required; First may be empty for
// single-token names.
type Author struct {
	First string `json:"first,omitempty"`
	Last  string `json:"last"`
}

// String formats the author for display: "First Last" or just "Last".
func (a Author) String() string {
	if a.First == "" {
		return a.Last
	}
	return a.First + " " + a.Last
}

// Common name suffixes to keep with the last name.
var nameSuffixes = map[string]bool{
	"jr":   true,
	"jr.":  true,
	"sr":   true,
	"sr.":  true,
	"ii":   true,
	"iii":  true,
	"iv":   true,
	"v":    true,
	"phd":  true,
	"ph.d": true,
	"md":   true,
	"m.d":  true,
}

// ParseAuthorName splits a full name into an Author.
// Handles common suffixes (Jr, Sr, II, III, IV, PhD, MD).
//
// Known limitations:
// - Multi-part surnames (von Neumann, van der Waals) split incorrectly
// - Non-Western name formats may not be handled correctly
// - Middle names are included in the first name
func ParseAuthorName(name string) Author {
	name = strings.TrimSpace(name)
	if name == "" {
		return Author{}
	}

	// "Last, First" form used by BibTeX and many APIs.
	if comma := strings.Index(name, ","); comma >= 0 {
		return Author{
			Last:  strings.TrimSpace(name[:comma]),
			First: strings.TrimSpace(name[comma+1:]),
		}
	}

	parts := strings.Fields(name)
	if len(parts) == 1 {
		// Single name (e.g., "Madonna")
		return Author{Last: parts[0]}
	}

	// Check if the last part is a suffix
	lastPart := strings.ToLower(parts[len(parts)-1])
	if nameSuffixes[lastPart] && len(parts) > 2 {
		// Keep suffix with last name
		return Author{
			Last:  parts[len(parts)-2] + " " + parts[len(parts)-1],
			First: strings.Join(parts[:len(parts)-2], " "),
		}
	}

	return Author{
		Last:  parts[len(parts)-1],
		First: strings.Join(parts[:len(parts)-1], " "),
	}
}

// CiteKey generates a citation key from record metadata.
// Format: LastName + Year + suffix (e.g., "Zhang2018-vi").
// Not guaranteed globally unique; callers that persist entries should
// disambiguate collisions themselves.
func (r Record) CiteKey() string {
	lastName := "Unknown"
	if len(r.Authors) > 0 {
		lastName = sanitizeForCiteKey(r.Authors[0].Last)
	}

	year := r.Year
	if year == 0 {
		year = 9999
	}

	return fmt.Sprintf("%s%d-%s", lastName, year, titleSuffix(r.Title))
}

// sanitizeForCiteKey removes non-alphanumeric characters.
func sanitizeForCiteKey(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// titleSuffix creates a 2-letter suffix from the title.
func titleSuffix(title string) string {
	words := strings.Fields(strings.ToLower(title))
	stopWords := map[string]bool{"a": true, "an": true, "the": true, "of": true, "and": true, "in": true, "on": true, "for": true, "to": true, "with": true}

	var suffix strings.Builder
	for _, word := range words {
		if !stopWords[word] && len(word) > 0 {
			suffix.WriteByte(word[0])
			if suffix.Len() >= 2 {
				break
			}
		}
	}

	// Pad if needed
	for suffix.Len() < 2 {
		suffix.WriteByte('x')
	}

	return suffix.String()
}
