package bib

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleBib = `% a stray comment line
@article{Doe2019-aa,
  author = {Doe, Jane and Smith, John},
  title = {On the {Importance} of Examples},
  journal = {Journal of Examples},
  year = {2019},
  doi = {10.1234/example.2019},
}

@comment{this block is skipped entirely}

@book{Kittel2004,
  author = "Kittel, Charles",
  title = "Introduction to Solid State Physics",
  publisher = {Wiley},
  year = {2004},
}

@inproceedings{Brown2021,
  author = {Brown, Alice},
  title = {A Title That Spans
           Two Source Lines},
  booktitle = {Proceedings of Things},
  year = {2021}
}
`

func TestParseEntries(t *testing.T) {
	entries, err := ParseEntries(strings.NewReader(sampleBib))
	if err != nil {
		t.Fatalf("ParseEntries() error = %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("ParseEntries() returned %d entries, want 3", len(entries))
	}

	first := entries[0]
	if first.Type != "article" || first.Key != "Doe2019-aa" {
		t.Errorf("first entry = %s/%s, want article/Doe2019-aa", first.Type, first.Key)
	}
	if got := first.Fields["author"]; got != "Doe, Jane and Smith, John" {
		t.Errorf("author field = %q", got)
	}
	if got := first.Fields["title"]; got != "On the Importance of Examples" {
		t.Errorf("title field should have protective braces removed, got %q", got)
	}
	if got := first.Fields["doi"]; got != "10.1234/example.2019" {
		t.Errorf("doi field = %q", got)
	}
	if first.Year() != 2019 {
		t.Errorf("Year() = %d, want 2019", first.Year())
	}

	second := entries[1]
	if second.Type != "book" || second.Key != "Kittel2004" {
		t.Errorf("second entry = %s/%s, want book/Kittel2004", second.Type, second.Key)
	}
	if got := second.Fields["title"]; got != "Introduction to Solid State Physics" {
		t.Errorf("quoted title = %q", got)
	}

	third := entries[2]
	if got := third.Fields["title"]; got != "A Title That Spans Two Source Lines" {
		t.Errorf("multi-line title = %q", got)
	}
}

func TestParseEntries_Empty(t *testing.T) {
	entries, err := ParseEntries(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseEntries() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("ParseEntries(empty) = %d entries, want 0", len(entries))
	}
}

func TestParseEntries_MalformedEntrySkipped(t *testing.T) {
	input := "@article{broken\nnot a field at all\n@article{ok2020,\n  title = {Fine},\n}\n"
	entries, err := ParseEntries(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseEntries() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ParseEntries() = %d entries, want 1 (malformed dropped)", len(entries))
	}
	if entries[0].Key != "ok2020" {
		t.Errorf("surviving entry key = %q, want ok2020", entries[0].Key)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.bib")
	if err := os.WriteFile(path, []byte(sampleBib), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	entries, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("ParseFile() = %d entries, want 3", len(entries))
	}
}

func TestEntryFlatten(t *testing.T) {
	e := Entry{
		Type: "article",
		Key:  "Doe2019",
		Fields: map[string]string{
			"author":  "Doe, Jane",
			"title":   "On Examples",
			"journal": "Journal of Examples",
			"year":    "2019",
		},
	}

	got := e.Flatten()
	want := "Doe, Jane. On Examples. Journal of Examples. 2019"
	if got != want {
		t.Errorf("Flatten() = %q, want %q", got, want)
	}
}

func TestEntryFlatten_NoFields(t *testing.T) {
	e := Entry{Key: "OnlyKey", Fields: map[string]string{}}
	if got := e.Flatten(); got != "OnlyKey" {
		t.Errorf("Flatten() = %q, want key fallback", got)
	}
}
