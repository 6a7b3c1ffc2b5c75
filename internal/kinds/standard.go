// Package kinds assembles the stock identifier kinds into a registry.
package kinds

import (
	"github.com/bibtools/bibfetch/internal/arxiv"
	"github.com/bibtools/bibfetch/internal/doi"
	"github.com/bibtools/bibfetch/internal/hal"
	"github.com/bibtools/bibfetch/internal/ident"
	"github.com/bibtools/bibfetch/internal/isbn"
)

// Options carries per-kind client options for the stock registry.
type Options struct {
	DOI   []doi.ClientOption
	ISBN  []isbn.ClientOption
	ArXiv []arxiv.ClientOption
	HAL   []hal.ClientOption

	// Wrap, when set, decorates each kind before registration
	// (e.g. with a record cache).
	Wrap func(ident.Kind) ident.Kind
}

// Standard builds a registry with the stock kinds in priority order: doi,
// isbn, arxiv, hal. Offset ties during extraction resolve in that order.
func Standard(opts Options) *ident.Registry {
	wrap := opts.Wrap
	if wrap == nil {
		wrap = func(k ident.Kind) ident.Kind { return k }
	}

	reg := ident.NewRegistry()
	reg.MustRegister(wrap(doi.New(opts.DOI...)))
	reg.MustRegister(wrap(isbn.New(opts.ISBN...)))
	reg.MustRegister(wrap(arxiv.New(opts.ArXiv...)))
	reg.MustRegister(wrap(hal.New(opts.HAL...)))
	return reg
}
