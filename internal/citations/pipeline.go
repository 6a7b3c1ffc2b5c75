package citations

import "context"

// Pipeline tries extraction backends in a fixed preference order. The
// order reflects trust and availability, richer structured extractors
// first, purely textual ones last.
type Pipeline struct {
	backends []Backend
}

// NewPipeline builds a pipeline that tries backends in the given order.
func NewPipeline(backends ...Backend) *Pipeline {
	return &Pipeline{backends: backends}
}

// Backends returns the names of the configured backends in order.
func (p *Pipeline) Backends() []string {
	names := make([]string, len(p.backends))
	for i, b := range p.backends {
		names[i] = b.Name()
	}
	return names
}

// Extract walks the backends in order. A backend error or an empty entry
// list records an Attempt and advances; the first backend returning one or
// more entries wins and its output is returned unmerged, along with all
// attempts so far. When every backend has been tried without success the
// result is marked Exhausted with a nil error.
//
// A cancelled context aborts the walk with the context's error.
func (p *Pipeline) Extract(ctx context.Context, src Source) (*Result, error) {
	result := &Result{}
	for _, b := range p.backends {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entries, err := b.Extract(ctx, src)
		attempt := Attempt{Backend: b.Name()}
		if err != nil {
			attempt.Err = err.Error()
		} else {
			attempt.Entries = len(entries)
		}
		result.Attempts = append(result.Attempts, attempt)

		if err != nil || len(entries) == 0 {
			continue
		}
		result.Backend = b.Name()
		result.Entries = entries
		return result, nil
	}

	result.Exhausted = true
	return result, nil
}
