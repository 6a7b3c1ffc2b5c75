package arxiv

import "testing"

func TestIsValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1506.06690", true},
		{"1506.06690v2", true},
		{"arXiv:1506.06690", true},
		{"0704.0001", true},             // first identifier of the new scheme
		{"2305.99999", true},            // 5-digit sequence
		{"1313.0000", false},            // month 13
		{"1500.1234", false},            // month 00
		{"astro-ph/9912345", true},      // old scheme
		{"math.GT/0309136", true},       // old scheme with subclass
		{"arXiv:hep-th/9901001v3", true},
		{"physics/0699123", false},      // month 99 in old scheme
		{"biology/0309136", false},      // unknown archive
		{"1506", false},                 // no sequence part
		{"1506.123", false},             // sequence too short
		{"1506.123456", false},          // sequence too long
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
		{"1506.06690", "1506.06690"},
		{"1506.06690v2", "1506.06690"},
		{"arXiv:1506.06690v11", "1506.06690"},
		{"astro-ph/9912345v2", "astro-ph/9912345"},
		{"math.GT/0309136", "math.GT/0309136"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := k.Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
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
			name: "labeled new style",
			text: "preprint available as arXiv:1506.06690v2 online",
			want: []string{"arXiv:1506.06690v2"},
		},
		{
			name: "bare new style",
			text: "see 1506.06690 for details",
			want: []string{"1506.06690"},
		},
		{
			name: "old style with subclass",
			text: "the result in math.GT/0309136 predates it",
			want: []string{"math.GT/0309136"},
		},
		{
			name: "mixed schemes in order",
			text: "compare astro-ph/9912345 with 1506.06690",
			want: []string{"astro-ph/9912345", "1506.06690"},
		},
		{
			name: "nothing",
			text: "no identifiers in this sentence",
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
			}
		})
	}
}

func TestExtractOffsets(t *testing.T) {
	text := "ref arXiv:1506.06690 here"
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

func TestValidateDropsDOILookalikes(t *testing.T) {
	// Digit runs inside DOI suffixes often look like new-scheme identifiers;
	// the month check rejects the ones it can.
	if IsValid("3292.3330701") {
		t.Error("IsValid() accepted an impossible month")
	}
}
