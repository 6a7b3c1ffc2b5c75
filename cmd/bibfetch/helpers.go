package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bibtools/bibfetch/internal/arxiv"
	"github.com/bibtools/bibfetch/internal/cache"
	"github.com/bibtools/bibfetch/internal/citations"
	"github.com/bibtools/bibfetch/internal/config"
	"github.com/bibtools/bibfetch/internal/doctext"
	"github.com/bibtools/bibfetch/internal/ident"
	"github.com/bibtools/bibfetch/internal/isbn"
	"github.com/bibtools/bibfetch/internal/kinds"
)

// loadDocument returns the linearized text of the document named by arg.
// "-" reads plain text from stdin.
func loadDocument(arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	return doctext.FromFile(arg)
}

// loadSource builds a citation-extraction source from arg.
// "-" reads plain text from stdin; an arXiv identifier selects the paper
// on arXiv with no local copy; anything else stays a path so the PDF
// backends can hand the file to their tools untouched.
func loadSource(arg string) (citations.Source, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return citations.Source{}, fmt.Errorf("reading stdin: %w", err)
		}
		return citations.Source{Text: string(data)}, nil
	}
	if _, err := os.Stat(arg); err != nil {
		if arxiv.IsValid(arg) {
			return citations.Source{ArXivID: arxiv.Normalize(arg)}, nil
		}
		return citations.Source{}, fmt.Errorf("reading %s: %w", arg, err)
	}
	return citations.Source{Path: arg}, nil
}

// openCache opens the record cache if one is configured.
// Returns nil when caching is disabled.
func openCache() (*cache.Cache, error) {
	path := config.GetCachePath()
	if path == "" {
		return nil, nil
	}
	c, err := cache.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return c, nil
}

// buildRegistry assembles the stock kinds with config-driven client
// options, wrapping each kind with the record cache when one is given.
func buildRegistry(c *cache.Cache) *ident.Registry {
	opts := kinds.Options{}
	if key := config.GetGoogleBooksKey(); key != "" {
		opts.ISBN = append(opts.ISBN, isbn.WithAPIKey(key))
	}
	if c != nil {
		opts.Wrap = c.Wrap
	}
	return kinds.Standard(opts)
}

// buildPipeline assembles citation backends in the requested order,
// falling back to the configured order when names is empty.
func buildPipeline(names []string) (*citations.Pipeline, error) {
	if len(names) == 0 {
		names = config.GetBackends()
	}

	backends := make([]citations.Backend, 0, len(names))
	for _, name := range names {
		b, err := backendByName(name)
		if err != nil {
			return nil, err
		}
		backends = append(backends, b)
	}
	return citations.NewPipeline(backends...), nil
}

// backendByName constructs a citation backend from its config name.
func backendByName(name string) (citations.Backend, error) {
	switch name {
	case "arxiv":
		return citations.NewArXivSource(arxiv.NewClient(), nil), nil
	case "grobid":
		return citations.NewGrobid(config.GetGrobidURL()), nil
	case "cermine":
		if jar := config.GetCermineJar(); jar != "" {
			return citations.NewCermine(&citations.CermineJar{JarPath: jar}), nil
		}
		if url := config.GetCermineURL(); url != "" {
			return citations.NewCermine(&citations.CermineAPI{BaseURL: url}), nil
		}
		return citations.NewCermine(nil), nil
	case "pdfextract":
		return citations.NewPDFExtract(""), nil
	case "bbl":
		return citations.NewBBL(nil), nil
	case "bibtex":
		return citations.BibTeX{}, nil
	case "plaintext":
		return citations.Plaintext{}, nil
	default:
		return nil, fmt.Errorf("unknown citation backend: %s", name)
	}
}
