package ident

import (
	"context"
	"sort"
	"sync"

	"github.com/bibtools/bibfetch/internal/bib"
)

// DefaultMaxFetches bounds how many metadata lookups run at once.
const DefaultMaxFetches = 8

// Resolution is the outcome for one distinct identifier found in a text.
// Record is nil when the lookup failed or was never attempted; Err then
// carries the reason. A failed lookup never removes the identifier from
// the results.
type Resolution struct {
	Resolved
	Offset int         `json:"offset"` // byte offset of the first occurrence
	Record *bib.Record `json:"record,omitempty"`
	Err    error       `json:"-"`
}

// Resolver extracts, validates, deduplicates, and resolves identifiers
// against the kinds of a registry.
type Resolver struct {
	registry   *Registry
	maxFetches int
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMaxFetches bounds concurrent metadata lookups (default DefaultMaxFetches).
func WithMaxFetches(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.maxFetches = n
		}
	}
}

// NewResolver creates a resolver over reg.
func NewResolver(reg *Registry, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		registry:   reg,
		maxFetches: DefaultMaxFetches,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scan finds every valid identifier in text without fetching metadata:
// extraction, validation, and deduplication only. Candidates that fail
// validation are dropped silently. Duplicate occurrences of the same
// (kind, normalized value) collapse to one entry at the earliest offset.
// Results are ordered by first occurrence, ties by registration order;
// different kinds matching the same substring both survive.
func (r *Resolver) Scan(text string) []Resolution {
	kinds := r.registry.All()

	type hit struct {
		res  Resolution
		rank int // kind registration position, for offset ties
	}
	seen := make(map[Resolved]int) // identifier -> index into hits
	var hits []hit

	for rank, k := range kinds {
		for _, m := range k.Extract(text) {
			if !k.Validate(m.Text) {
				continue
			}
			id := Resolved{Kind: k.Name(), Value: k.Normalize(m.Text)}
			if i, dup := seen[id]; dup {
				if m.Start < hits[i].res.Offset {
					hits[i].res.Offset = m.Start
				}
				continue
			}
			seen[id] = len(hits)
			hits = append(hits, hit{
				res:  Resolution{Resolved: id, Offset: m.Start},
				rank: rank,
			})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].res.Offset != hits[j].res.Offset {
			return hits[i].res.Offset < hits[j].res.Offset
		}
		return hits[i].rank < hits[j].rank
	})

	out := make([]Resolution, len(hits))
	for i, h := range hits {
		out[i] = h.res
	}
	return out
}

// Resolve scans text and fetches a record for every distinct identifier.
// Lookups run concurrently, bounded by the resolver's fetch limit; the
// returned slice keeps Scan's source order regardless of lookup timing.
// A failed or cancelled lookup contributes a Resolution with a nil Record
// and the reason in Err; it never aborts the rest of the batch.
func (r *Resolver) Resolve(ctx context.Context, text string) []Resolution {
	found := r.Scan(text)
	if len(found) == 0 {
		return found
	}
	r.fetchAll(ctx, found)
	return found
}

// fetchAll populates Record/Err for each resolution in place.
func (r *Resolver) fetchAll(ctx context.Context, found []Resolution) {
	// Semaphore for bounded concurrency
	sem := make(chan struct{}, r.maxFetches)
	var wg sync.WaitGroup

	for i := range found {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			// Acquire semaphore
			sem <- struct{}{}
			defer func() { <-sem }()

			k, err := r.registry.Get(found[idx].Kind)
			if err != nil {
				found[idx].Err = err
				return
			}

			// No mutex needed - each goroutine writes to its own unique index
			found[idx].Record, found[idx].Err = k.Fetch(ctx, found[idx].Value)
		}(i)
	}

	wg.Wait()
}
