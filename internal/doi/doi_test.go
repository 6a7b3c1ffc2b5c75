package doi

import (
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single doi in prose",
			text: "See 10.1000/xyz123 and ISBN 0-306-40615-2.",
			want: []string{"10.1000/xyz123"},
		},
		{
			name: "trailing period trimmed",
			text: "available at 10.1145/3292500.3330701.",
			want: []string{"10.1145/3292500.3330701"},
		},
		{
			name: "trailing paren trimmed",
			text: "(doi:10.1038/nature12373)",
			want: []string{"10.1038/nature12373"},
		},
		{
			name: "multiple dois",
			text: "10.1000/a then 10.1001/b",
			want: []string{"10.1000/a", "10.1001/b"},
		},
		{
			name: "no doi",
			text: "nothing identifier-shaped here",
			want: nil,
		},
		{
			name: "registrant too short",
			text: "fake 10.99/short stays out",
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
				if m.Kind != Name {
					t.Errorf("Extract()[%d].Kind = %q, want %q", i, m.Kind, Name)
				}
			}
		})
	}
}

func TestExtractOffsets(t *testing.T) {
	text := "See 10.1000/xyz123 here."
	matches := New().Extract(text)
	if len(matches) != 1 {
		t.Fatalf("Extract() = %d matches, want 1", len(matches))
	}
	m := matches[0]
	if text[m.Start:m.End] != m.Text {
		t.Errorf("offsets [%d:%d] select %q, want %q", m.Start, m.End, text[m.Start:m.End], m.Text)
	}
	if m.Start != 4 {
		t.Errorf("Start = %d, want 4", m.Start)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"10.1000/xyz123", true},
		{"10.1145/3292500.3330701", true},
		{"10.1016/j.cell.2016.11.038", true},
		{"https://doi.org/10.1000/xyz123", true},
		{"doi:10.1000/xyz123", true},
		{"10.99/short", false},     // registrant needs 4+ digits
		{"11.1000/xyz", false},     // wrong directory indicator
		{"10.1000", false},         // no suffix
		{"10.1000/", false},        // empty suffix
		{"10.1000/with space", false},
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
	tests := []struct {
		input string
		want  string
	}{
		{"10.1000/XYZ123", "10.1000/xyz123"},
		{"https://doi.org/10.1000/xyz123", "10.1000/xyz123"},
		{"http://dx.doi.org/10.1000/Xyz123", "10.1000/xyz123"},
		{"doi:10.1000/xyz123", "10.1000/xyz123"},
		{"DOI:10.1000/xyz123", "10.1000/xyz123"},
		{"  10.1000/xyz123  ", "10.1000/xyz123"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToURL(t *testing.T) {
	if got := ToURL("10.1000/XYZ123"); got != "https://doi.org/10.1000/xyz123" {
		t.Errorf("ToURL() = %q", got)
	}
}

func TestValidateRejectsNearMatches(t *testing.T) {
	k := New()
	// Extraction may surface shapes the validator must refuse.
	for _, s := range []string{"10.1000", "10.12/x", "not-a-doi"} {
		if k.Validate(s) {
			t.Errorf("Validate(%q) = true, want false", s)
		}
	}
}
