// Package ident defines the identifier-kind capability interface, the kind
// registry, and the resolver that turns free text into bibliographic records.
package ident

import (
	"context"

	"github.com/bibtools/bibfetch/internal/bib"
)

// RawMatch is one candidate identifier occurrence found in a text, before
// validation.
type RawMatch struct {
	Kind  string `json:"kind"`
	Text  string `json:"text"`  // matched substring as written in the source
	Start int    `json:"start"` // byte offset of the first byte
	End   int    `json:"end"`   // byte offset one past the last byte
}

// Resolved is a validated identifier in normalized form. Two Resolved
// values denote the same identifier exactly when both fields are equal.
type Resolved struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// Kind is one identifier family (DOI, ISBN, arXiv, HAL). Implementations
// must be immutable after registration and safe for concurrent use.
//
// Extract reports every candidate occurrence in text; it is deterministic
// and leaves the decision about validity to Validate. Validate checks shape
// and checksum only and performs no I/O. Normalize maps equivalent
// spellings of a valid identifier to the canonical form used for
// deduplication and fetching. Fetch resolves a normalized identifier to its
// bibliographic record, or reports why it could not.
type Kind interface {
	Name() string
	Extract(text string) []RawMatch
	Validate(s string) bool
	Normalize(s string) string
	Fetch(ctx context.Context, id string) (*bib.Record, error)
}
