package hal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bibtools/bibfetch/internal/ident"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"hal-01234567", true},
		{"hal-01234567v2", true},
		{"hal-01234567, version 2", true},
		{"hal-0123456", false},      // seven digits
		{"hal-012345678", false},    // nine digits
		{"tel-01234567", false},     // different archive prefix
		{"hal-01234567 v2", false}, // spaced version is not a spelling
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsValid(tt.input); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	k := New()
	tests := []struct {
		input string
		want  string
	}{
		{"hal-01234567", "hal-01234567"},
		{"hal-01234567v2", "hal-01234567v2"},
		{"hal-01234567, version 2", "hal-01234567v2"},
		{"hal-01234567, version 12", "hal-01234567v12"},
		{"  hal-01234567v3 ", "hal-01234567v3"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := k.Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// A versioned identifier names one specific deposit; it must not
// deduplicate with the bare identifier for the latest one.
func TestNormalizeKeepsVersionsDistinct(t *testing.T) {
	k := New()
	bare := k.Normalize("hal-01234567")
	versioned := k.Normalize("hal-01234567v2")
	verbose := k.Normalize("hal-01234567, version 2")

	if bare == versioned {
		t.Errorf("bare and versioned normalize to the same value %q", bare)
	}
	if versioned != verbose {
		t.Errorf("spellings diverge: %q vs %q", versioned, verbose)
	}
}

func TestWithoutVersion(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hal-01234567", "hal-01234567"},
		{"hal-01234567v2", "hal-01234567"},
		{"hal-01234567, version 12", "hal-01234567"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := WithoutVersion(tt.input); got != tt.want {
				t.Errorf("WithoutVersion(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "bare identifier",
			text: "deposited as hal-01234567 last year",
			want: []string{"hal-01234567"},
		},
		{
			name: "compact version",
			text: "see hal-01234567v3 for the fix",
			want: []string{"hal-01234567v3"},
		},
		{
			name: "verbose version",
			text: "cite hal-01234567, version 2 instead",
			want: []string{"hal-01234567, version 2"},
		},
		{
			name: "nothing",
			text: "no archive identifiers here",
			want: nil,
		},
	}

	k := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := k.Extract(tt.text)
			if len(matches) != len(tt.want) {
				t.Fatalf("Extract() = %d matches, want %d: %+v", len(matches), len(tt.want), matches)
			}
			for i, m := range matches {
				if m.Text != tt.want[i] {
					t.Errorf("Extract()[%d].Text = %q, want %q", i, m.Text, tt.want[i])
				}
				if tt.text[m.Start:m.End] != m.Text {
					t.Errorf("offsets [%d:%d] select %q, want %q", m.Start, m.End, tt.text[m.Start:m.End], m.Text)
				}
			}
		})
	}
}

const sampleSearch = `{
  "response": {
    "numFound": 1,
    "docs": [
      {
        "halId_s": "hal-01234567",
        "title_s": ["Una analyse des dépôts ouverts"],
        "authFullName_s": ["Marie Dupont", "Jean Martin"],
        "producedDateY_i": 2015,
        "journalTitle_s": "Revue des Archives",
        "abstract_s": ["Résumé du travail."],
        "doiId_s": "10.1000/hal-example",
        "uri_s": "https://hal.science/hal-01234567"
      }
    ]
  }
}`

func TestClientFetch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleSearch))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	rec, err := c.Fetch(context.Background(), "hal-01234567")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if gotQuery != "halId_s:hal-01234567" {
		t.Errorf("query = %q", gotQuery)
	}
	if rec.Title != "Una analyse des dépôts ouverts" {
		t.Errorf("Title = %q", rec.Title)
	}
	if len(rec.Authors) != 2 || rec.Authors[0].Last != "Dupont" {
		t.Errorf("Authors = %+v", rec.Authors)
	}
	if rec.Year != 2015 {
		t.Errorf("Year = %d", rec.Year)
	}
	if rec.HALID != "hal-01234567" {
		t.Errorf("HALID = %q", rec.HALID)
	}
	if rec.DOI != "10.1000/hal-example" {
		t.Errorf("DOI = %q", rec.DOI)
	}
	if rec.Venue != "Revue des Archives" {
		t.Errorf("Venue = %q", rec.Venue)
	}
}

// The search API indexes only the bare identifier, so a versioned lookup
// must query without the suffix.
func TestClientFetchVersionedQueriesBareID(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleSearch))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	rec, err := c.Fetch(context.Background(), "hal-01234567v2")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if gotQuery != "halId_s:hal-01234567" {
		t.Errorf("query = %q, want halId_s:hal-01234567", gotQuery)
	}
	if rec.Title != "Una analyse des dépôts ouverts" {
		t.Errorf("Title = %q", rec.Title)
	}
}

func TestClientFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response": {"numFound": 0, "docs": []}}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Fetch(context.Background(), "hal-09999999")
	if !ident.IsNotFound(err) {
		t.Errorf("Fetch() error = %v, want not-found classification", err)
	}
}
