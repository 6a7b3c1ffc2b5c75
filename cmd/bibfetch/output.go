package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/bibtools/bibfetch/internal/bib"
	"github.com/bibtools/bibfetch/internal/ident"
)

// Text formatting widths for human output
const (
	ListTitleMaxLen     = 70 // Used in identifier and citation list summaries
	TextWrapWidth       = 60 // Standard text wrap width
	DetailTextWrapWidth = 68 // Wider wrap for abstracts in detail views
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// IdentifierResult is one resolved identifier in identify/scan output.
// Error carries the lookup failure reason; absence of a record with an
// empty Error means no lookup was attempted.
type IdentifierResult struct {
	Kind   string      `json:"kind"`
	Value  string      `json:"value"`
	Offset int         `json:"offset"`
	Record *bib.Record `json:"record,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// IdentifiersResponse is the JSON response of the identify and scan commands.
type IdentifiersResponse struct {
	Identifiers []IdentifierResult `json:"identifiers"`
	Count       int                `json:"count"`
}

// buildIdentifiersResponse converts resolver output to the JSON response shape.
func buildIdentifiersResponse(resolutions []ident.Resolution) IdentifiersResponse {
	results := make([]IdentifierResult, len(resolutions))
	for i, r := range resolutions {
		results[i] = IdentifierResult{
			Kind:   r.Kind,
			Value:  r.Value,
			Offset: r.Offset,
			Record: r.Record,
		}
		if r.Err != nil {
			results[i].Error = r.Err.Error()
		}
	}
	return IdentifiersResponse{Identifiers: results, Count: len(results)}
}

// printIdentifiersHuman prints resolver output in human-readable format.
// This is used by both the identify and scan commands.
func printIdentifiersHuman(resolutions []ident.Resolution) {
	if len(resolutions) == 0 {
		fmt.Println("No identifiers found.")
		return
	}
	for i, r := range resolutions {
		fmt.Printf("%d. %s %s\n", i+1, r.Kind, r.Value)
		switch {
		case r.Record != nil:
			fmt.Printf("   %s\n", truncateString(r.Record.Title, ListTitleMaxLen))
			if line := formatAuthorsShort(r.Record.Authors, 3); line != "" {
				fmt.Printf("   %s (%d)\n", line, r.Record.Year)
			}
		case r.Err != nil:
			fmt.Printf("   lookup failed: %v\n", r.Err)
		}
	}
}

// printRecordDetail prints a single record in human-readable format.
func printRecordDetail(rec *bib.Record) {
	fmt.Printf("Title:    %s\n", wrapText(rec.Title, TextWrapWidth, "          "))

	if len(rec.Authors) > 0 {
		fmt.Printf("Authors:  %s\n", wrapText(formatAuthorsFull(rec.Authors), TextWrapWidth, "          "))
	}

	if rec.Venue != "" {
		fmt.Printf("Venue:    %s\n", rec.Venue)
	}

	if rec.Year > 0 {
		date := fmt.Sprintf("%d", rec.Year)
		if rec.Month > 0 {
			date = fmt.Sprintf("%d-%02d", rec.Year, rec.Month)
		}
		fmt.Printf("Date:     %s\n", date)
	}

	if rec.DOI != "" {
		fmt.Printf("DOI:      %s\n", rec.DOI)
	}
	if rec.ArXivID != "" {
		fmt.Printf("arXiv:    %s\n", rec.ArXivID)
	}
	if rec.ISBN != "" {
		fmt.Printf("ISBN:     %s\n", rec.ISBN)
	}
	if rec.HALID != "" {
		fmt.Printf("HAL:      %s\n", rec.HALID)
	}
	if rec.URL != "" {
		fmt.Printf("URL:      %s\n", rec.URL)
	}

	if rec.Abstract != "" {
		fmt.Println()
		fmt.Println("Abstract:")
		fmt.Printf("  %s\n", wrapText(rec.Abstract, DetailTextWrapWidth, "  "))
	}
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// wrapText wraps text to the specified width with indentation on subsequent lines.
func wrapText(text string, width int, indent string) string {
	if len(text) <= width {
		return text
	}

	var lines []string
	words := strings.Fields(text)
	currentLine := ""

	for _, word := range words {
		if currentLine == "" {
			currentLine = word
		} else if len(currentLine)+1+len(word) <= width {
			currentLine += " " + word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n"+indent)
}

// formatAuthorFull formats an author as "First Last".
func formatAuthorFull(a bib.Author) string {
	if a.First != "" {
		return a.First + " " + a.Last
	}
	return a.Last
}

// formatAuthorShort formats an author as "Last F" (abbreviated first name).
func formatAuthorShort(a bib.Author) string {
	if a.First != "" {
		return a.Last + " " + string(a.First[0])
	}
	return a.Last
}

// formatAuthorsFull formats all authors as "First Last, First Last, ...".
func formatAuthorsFull(authors []bib.Author) string {
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = formatAuthorFull(a)
	}
	return strings.Join(names, ", ")
}

// formatAuthorsShort formats authors with abbreviation and "et al." for more than maxCount.
func formatAuthorsShort(authors []bib.Author, maxCount int) string {
	if len(authors) == 0 {
		return ""
	}

	var names []string
	for i, a := range authors {
		if i >= maxCount {
			names = append(names, "et al.")
			break
		}
		names = append(names, formatAuthorShort(a))
	}
	return strings.Join(names, ", ")
}
