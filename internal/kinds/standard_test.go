package kinds

import (
	"testing"

	"github.com/bibtools/bibfetch/internal/ident"
)

func TestStandardOrder(t *testing.T) {
	reg := Standard(Options{})

	got := reg.Names()
	want := []string{"doi", "isbn", "arxiv", "hal"}
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStandardWrap(t *testing.T) {
	var wrapped []string
	reg := Standard(Options{
		Wrap: func(k ident.Kind) ident.Kind {
			wrapped = append(wrapped, k.Name())
			return k
		},
	})

	want := []string{"doi", "isbn", "arxiv", "hal"}
	if len(wrapped) != len(want) {
		t.Fatalf("wrap saw %v, want %v", wrapped, want)
	}
	for i := range want {
		if wrapped[i] != want[i] {
			t.Errorf("wrapped[%d] = %q, want %q", i, wrapped[i], want[i])
		}
	}
	if names := reg.Names(); len(names) != len(want) {
		t.Errorf("Names() = %v, want %d kinds", names, len(want))
	}
}

func TestScanMixedProse(t *testing.T) {
	r := ident.NewResolver(Standard(Options{}))

	got := r.Scan("See 10.1000/xyz123 and ISBN 0-306-40615-2.")

	if len(got) != 2 {
		t.Fatalf("Scan() = %d resolutions, want 2: %+v", len(got), got)
	}
	if got[0].Kind != "doi" || got[0].Value != "10.1000/xyz123" {
		t.Errorf("Scan()[0] = (%s, %s), want (doi, 10.1000/xyz123)", got[0].Kind, got[0].Value)
	}
	if got[1].Kind != "isbn" || got[1].Value != "0306406152" {
		t.Errorf("Scan()[1] = (%s, %s), want (isbn, 0306406152)", got[1].Kind, got[1].Value)
	}
}

func TestScanKeepsOverlappingKinds(t *testing.T) {
	// An arXiv-shaped run inside a DOI suffix: the DOI match covers the
	// whole identifier, the arXiv grammar also fires on its tail. Both
	// survive; resolving decides downstream which ones answer.
	r := ident.NewResolver(Standard(Options{}))

	got := r.Scan("archived at 10.48550/1506.06690 today")

	if len(got) != 2 {
		t.Fatalf("Scan() = %d resolutions, want 2: %+v", len(got), got)
	}
	if got[0].Kind != "doi" || got[0].Value != "10.48550/1506.06690" {
		t.Errorf("Scan()[0] = (%s, %s), want the full DOI", got[0].Kind, got[0].Value)
	}
	if got[1].Kind != "arxiv" || got[1].Value != "1506.06690" {
		t.Errorf("Scan()[1] = (%s, %s), want the embedded arXiv id", got[1].Kind, got[1].Value)
	}
}

func TestScanVersionedArxivDedup(t *testing.T) {
	r := ident.NewResolver(Standard(Options{}))

	got := r.Scan("arXiv:1506.06690v1 was revised; cite 1506.06690v2 or 1506.06690.")

	if len(got) != 1 {
		t.Fatalf("Scan() = %d resolutions, want 1 after version folding: %+v", len(got), got)
	}
	if got[0].Value != "1506.06690" {
		t.Errorf("Scan()[0].Value = %q, want 1506.06690", got[0].Value)
	}
}
