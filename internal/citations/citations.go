// Package citations extracts bibliography entries from papers by trying a
// configured sequence of extraction backends until one produces entries.
// Backends wrap external tools of very different shapes; each adapter maps
// its tool's output onto ReferenceEntry, and Pipeline provides the
// fallback policy.
package citations

import (
	"context"
	"errors"
	"strings"
)

// ErrUnsupported indicates a backend cannot handle the given source shape,
// for example the .bbl splitter handed a PDF. The pipeline records the
// attempt and moves on to the next backend.
var ErrUnsupported = errors.New("source not supported by backend")

// Source is the input handed to extraction backends. Path points at the
// paper on disk; Text carries already-linearized content; ArXivID names a
// paper on arXiv with no local copy. Backends use whichever field they
// understand and reject the rest with ErrUnsupported.
type Source struct {
	Path    string
	Text    string
	ArXivID string
}

// ReferenceEntry is one extracted bibliography entry. Text always carries
// the full reference string; the remaining fields are filled only when the
// backend pre-parses them.
type ReferenceEntry struct {
	Text   string `json:"text"`
	Author string `json:"author,omitempty"`
	Title  string `json:"title,omitempty"`
	Year   int    `json:"year,omitempty"`
}

// Attempt records one backend try during a pipeline run.
type Attempt struct {
	Backend string `json:"backend"`
	Entries int    `json:"entries"`
	Err     string `json:"error,omitempty"`
}

// Result is the outcome of a pipeline run. When a backend produced
// entries, Backend names it and Entries holds its output. Exhausted means
// every configured backend failed or came back empty; papers with no
// extractable bibliography are expected, so this is an outcome rather
// than an error.
type Result struct {
	Backend   string           `json:"backend,omitempty"`
	Entries   []ReferenceEntry `json:"entries,omitempty"`
	Attempts  []Attempt        `json:"attempts"`
	Exhausted bool             `json:"exhausted,omitempty"`
}

// Backend extracts reference entries from a source document.
type Backend interface {
	// Name identifies the backend in attempt logs and results.
	Name() string
	// Extract returns the references found in src. An empty slice with a
	// nil error means the backend ran but found nothing.
	Extract(ctx context.Context, src Source) ([]ReferenceEntry, error)
}

// cleanWhitespace collapses runs of whitespace into single spaces and
// trims the ends.
func cleanWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
