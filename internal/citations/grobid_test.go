package citations

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleTEI = `<?xml version="1.0" encoding="UTF-8"?>
<TEI xmlns="http://www.tei-c.org/ns/1.0">
  <teiHeader/>
  <text>
    <back>
      <div>
        <listBibl>
          <biblStruct>
            <analytic>
              <title level="a" type="main">Mapping the universe</title>
              <author><persName><forename type="first">Margaret</forename><surname>Geller</surname></persName></author>
              <author><persName><forename type="first">John</forename><surname>Huchra</surname></persName></author>
            </analytic>
            <monogr>
              <title level="j">Science</title>
              <imprint>
                <biblScope unit="volume">246</biblScope>
                <date type="published" when="1989-11-17"/>
              </imprint>
            </monogr>
          </biblStruct>
          <biblStruct>
            <monogr>
              <title level="m">Gravitation</title>
              <author><persName><forename type="first">Charles</forename><surname>Misner</surname></persName></author>
              <imprint><date type="published" when="1973"/></imprint>
            </monogr>
          </biblStruct>
        </listBibl>
      </div>
    </back>
  </text>
</TEI>`

func TestGrobidExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/processReferences" {
			t.Errorf("path = %s, want /api/processReferences", r.URL.Path)
		}
		if accept := r.Header.Get("Accept"); accept != "application/xml" {
			t.Errorf("Accept = %q, want application/xml", accept)
		}
		file, header, err := r.FormFile("input")
		if err != nil {
			t.Errorf("missing multipart field input: %v", err)
		} else {
			file.Close()
			if header.Filename != "paper.pdf" {
				t.Errorf("uploaded filename = %q, want paper.pdf", header.Filename)
			}
		}
		w.Write([]byte(sampleTEI))
	}))
	defer server.Close()

	pdf := writeTestFile(t, "paper.pdf", "%PDF-1.4 fake body")
	entries, err := NewGrobid(server.URL).Extract(context.Background(), Source{Path: pdf})
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}

	article := entries[0]
	if article.Title != "Mapping the universe" {
		t.Errorf("Title = %q, want %q", article.Title, "Mapping the universe")
	}
	if article.Author != "Margaret Geller, John Huchra" {
		t.Errorf("Author = %q, want %q", article.Author, "Margaret Geller, John Huchra")
	}
	if article.Year != 1989 {
		t.Errorf("Year = %d, want 1989", article.Year)
	}
	if !strings.Contains(article.Text, "Mapping the universe") || !strings.Contains(article.Text, "246") {
		t.Errorf("Text = %q, want flattened citation text", article.Text)
	}

	book := entries[1]
	if book.Title != "Gravitation" {
		t.Errorf("Title = %q, want %q", book.Title, "Gravitation")
	}
	if book.Author != "Charles Misner" {
		t.Errorf("Author = %q, want %q", book.Author, "Charles Misner")
	}
	if book.Year != 1973 {
		t.Errorf("Year = %d, want 1973", book.Year)
	}
}

func TestGrobidServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no model loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	pdf := writeTestFile(t, "paper.pdf", "%PDF-1.4 fake body")
	_, err := NewGrobid(server.URL).Extract(context.Background(), Source{Path: pdf})
	if err == nil {
		t.Fatal("Extract() should fail on a 500 response")
	}
}

func TestGrobidUnsupportedSource(t *testing.T) {
	_, err := NewGrobid("http://localhost:1").Extract(context.Background(), Source{Text: "raw text"})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("Extract() error = %v, want ErrUnsupported", err)
	}
}

func TestGrobidDefaultsBaseURL(t *testing.T) {
	g := NewGrobid("")
	if g.baseURL != DefaultGrobidURL {
		t.Errorf("baseURL = %q, want %q", g.baseURL, DefaultGrobidURL)
	}
}
