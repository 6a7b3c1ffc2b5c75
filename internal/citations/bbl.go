package citations

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	bibitemPattern  = regexp.MustCompile(`\\bibitem\s*(?:\[[^\]]*\])?\s*\{[^}]*\}`)
	endBibliography = regexp.MustCompile(`(?s)\\end\{thebibliography\}.*`)
)

// DeTeX strips TeX markup from a bibliography item, leaving plain text.
type DeTeX interface {
	Plain(ctx context.Context, tex string) (string, error)
}

// Delatex runs the opendetex "delatex -s" tool on the item.
type Delatex struct {
	Bin string // defaults to "delatex"
}

func (d Delatex) Plain(ctx context.Context, tex string) (string, error) {
	bin := d.Bin
	if bin == "" {
		bin = "delatex"
	}
	cmd := exec.CommandContext(ctx, bin, "-s")
	cmd.Stdin = strings.NewReader(tex)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("running delatex: %w", err)
	}
	return string(output), nil
}

var (
	texSpecials = strings.NewReplacer(
		`\&`, "&", `\%`, "%", `\_`, "_", `\$`, "$", `\#`, "#",
	)
	texCommand       = regexp.MustCompile(`\\[a-zA-Z@]+\*?`)
	texControlSymbol = regexp.MustCompile(`\\[^a-zA-Z\s]`)
	texLiterals      = strings.NewReplacer(
		"~", " ", "``", `"`, "''", `"`, "---", "-", "--", "-", "{", "", "}", "",
	)
)

// PlainTeX is a dependency-free DeTeX. It is a coarse stripper, accents
// lose their diacritics and exotic macros leave residue, but it keeps the
// citation text intact when delatex is not installed.
type PlainTeX struct{}

func (PlainTeX) Plain(_ context.Context, tex string) (string, error) {
	lines := strings.Split(tex, "\n")
	for i, line := range lines {
		lines[i] = stripTeXComment(line)
	}
	s := strings.Join(lines, " ")
	// Unescape specials before the control-symbol pass eats them.
	s = texSpecials.Replace(s)
	s = texCommand.ReplaceAllString(s, " ")
	s = texControlSymbol.ReplaceAllString(s, "")
	s = texLiterals.Replace(s)
	return cleanWhitespace(s), nil
}

func stripTeXComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] == '%' && (i == 0 || line[i-1] != '\\') {
			return line[:i]
		}
	}
	return line
}

// BBL extracts references from LaTeX-compiled .bbl bibliographies by
// splitting on \bibitem and cleaning each item with a DeTeX collaborator.
type BBL struct {
	detex DeTeX
}

// NewBBL builds the .bbl backend. A nil detex uses the delatex tool.
func NewBBL(detex DeTeX) *BBL {
	if detex == nil {
		detex = Delatex{}
	}
	return &BBL{detex: detex}
}

func (b *BBL) Name() string { return "bbl" }

func (b *BBL) Extract(ctx context.Context, src Source) ([]ReferenceEntry, error) {
	content := src.Text
	if content == "" {
		if src.Path == "" {
			return nil, fmt.Errorf("%w: bbl wants LaTeX bibliography text", ErrUnsupported)
		}
		if ext := strings.ToLower(filepath.Ext(src.Path)); ext != ".bbl" && ext != ".tex" {
			return nil, fmt.Errorf("%w: bbl wants a .bbl file, got %s", ErrUnsupported, filepath.Base(src.Path))
		}
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("reading bbl: %w", err)
		}
		content = string(data)
	}

	var entries []ReferenceEntry
	for _, item := range splitBibitems(content) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		plain, err := b.detex.Plain(ctx, item)
		if err != nil {
			// delatex missing or crashed - clean with the built-in
			// stripper instead.
			plain, _ = PlainTeX{}.Plain(ctx, item)
		}
		plain = cleanWhitespace(plain)
		if plain == "" {
			continue
		}
		entries = append(entries, ReferenceEntry{Text: plain})
	}
	return entries, nil
}

// splitBibitems cuts a .bbl body into individual bibliography items,
// dropping the preamble before the first \bibitem and everything from
// \end{thebibliography} on.
func splitBibitems(content string) []string {
	parts := bibitemPattern.Split(content, -1)
	if len(parts) <= 1 {
		return nil
	}
	items := make([]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		part = strings.TrimSpace(endBibliography.ReplaceAllString(part, ""))
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}
