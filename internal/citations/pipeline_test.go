package citations

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type fakeBackend struct {
	name    string
	entries []ReferenceEntry
	err     error
	calls   int
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Extract(_ context.Context, _ Source) ([]ReferenceEntry, error) {
	f.calls++
	return f.entries, f.err
}

func makeEntries(n int) []ReferenceEntry {
	entries := make([]ReferenceEntry, n)
	for i := range entries {
		entries[i] = ReferenceEntry{Text: fmt.Sprintf("Reference number %d, Journal of Tests (2020).", i+1)}
	}
	return entries
}

func TestPipelineFirstNonEmptyWins(t *testing.T) {
	failing := &fakeBackend{name: "grobid", err: errors.New("connection refused")}
	empty := &fakeBackend{name: "cermine"}
	full := &fakeBackend{name: "plaintext", entries: makeEntries(5)}
	after := &fakeBackend{name: "bbl", entries: makeEntries(2)}

	p := NewPipeline(failing, empty, full, after)
	result, err := p.Extract(context.Background(), Source{Text: "whatever"})
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if result.Backend != "plaintext" {
		t.Errorf("Backend = %q, want %q", result.Backend, "plaintext")
	}
	if len(result.Entries) != 5 {
		t.Errorf("len(Entries) = %d, want 5", len(result.Entries))
	}
	if result.Exhausted {
		t.Error("Exhausted = true on a successful run")
	}
	if failing.calls != 1 || empty.calls != 1 || full.calls != 1 {
		t.Errorf("backend calls = %d/%d/%d, want 1/1/1", failing.calls, empty.calls, full.calls)
	}
	if after.calls != 0 {
		t.Errorf("backend after the winner called %d times, want 0", after.calls)
	}
}

func TestPipelineAttemptLog(t *testing.T) {
	p := NewPipeline(
		&fakeBackend{name: "grobid", err: errors.New("connection refused")},
		&fakeBackend{name: "cermine"},
		&fakeBackend{name: "plaintext", entries: makeEntries(3)},
	)
	result, err := p.Extract(context.Background(), Source{Text: "whatever"})
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	want := []Attempt{
		{Backend: "grobid", Err: "connection refused"},
		{Backend: "cermine"},
		{Backend: "plaintext", Entries: 3},
	}
	if len(result.Attempts) != len(want) {
		t.Fatalf("len(Attempts) = %d, want %d", len(result.Attempts), len(want))
	}
	for i, a := range result.Attempts {
		if a != want[i] {
			t.Errorf("Attempts[%d] = %+v, want %+v", i, a, want[i])
		}
	}
}

func TestPipelineExhausted(t *testing.T) {
	failing := &fakeBackend{name: "grobid", err: errors.New("tool missing")}
	empty := &fakeBackend{name: "plaintext"}

	p := NewPipeline(failing, empty)
	result, err := p.Extract(context.Background(), Source{Text: "whatever"})
	if err != nil {
		t.Fatalf("exhaustion should not be an error, got: %v", err)
	}

	if !result.Exhausted {
		t.Error("Exhausted = false after every backend failed")
	}
	if result.Backend != "" {
		t.Errorf("Backend = %q, want empty", result.Backend)
	}
	if len(result.Entries) != 0 {
		t.Errorf("len(Entries) = %d, want 0", len(result.Entries))
	}
	if failing.calls != 1 || empty.calls != 1 {
		t.Errorf("backend calls = %d/%d, want 1/1", failing.calls, empty.calls)
	}
}

func TestPipelineNoBackends(t *testing.T) {
	result, err := NewPipeline().Extract(context.Background(), Source{Text: "whatever"})
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if !result.Exhausted {
		t.Error("Exhausted = false for an empty pipeline")
	}
	if len(result.Attempts) != 0 {
		t.Errorf("len(Attempts) = %d, want 0", len(result.Attempts))
	}
}

func TestPipelineUnsupportedAdvances(t *testing.T) {
	unsupported := &fakeBackend{name: "bbl", err: fmt.Errorf("%w: bbl wants a .bbl file", ErrUnsupported)}
	full := &fakeBackend{name: "plaintext", entries: makeEntries(1)}

	p := NewPipeline(unsupported, full)
	result, err := p.Extract(context.Background(), Source{Path: "paper.pdf"})
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if result.Backend != "plaintext" {
		t.Errorf("Backend = %q, want %q", result.Backend, "plaintext")
	}
	if result.Attempts[0].Err == "" {
		t.Error("unsupported attempt should carry the error text")
	}
}

func TestPipelineCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := &fakeBackend{name: "plaintext", entries: makeEntries(1)}
	_, err := NewPipeline(backend).Extract(ctx, Source{Text: "whatever"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Extract() error = %v, want context.Canceled", err)
	}
	if backend.calls != 0 {
		t.Errorf("backend called %d times under a cancelled context, want 0", backend.calls)
	}
}

func TestPipelineBackends(t *testing.T) {
	p := NewPipeline(
		&fakeBackend{name: "grobid"},
		&fakeBackend{name: "bbl"},
	)
	got := p.Backends()
	if len(got) != 2 || got[0] != "grobid" || got[1] != "bbl" {
		t.Errorf("Backends() = %v, want [grobid bbl]", got)
	}
}
