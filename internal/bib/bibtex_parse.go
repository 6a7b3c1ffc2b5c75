package bib

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Entry is one parsed BibTeX entry. Field names are lowercased; field values
// have their outer delimiters and any residual braces removed.
type Entry struct {
	Type   string
	Key    string
	Fields map[string]string
}

// Regex patterns for the line-oriented parser.
var (
	// Match entry start: @type{key,
	entryStartRegex = regexp.MustCompile(`@(\w+)\s*\{\s*([^,\s]+)\s*,`)
	// Match field start: name = {value... or name = "value...
	fieldStartRegex = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z0-9_-]*)\s*=\s*(.*)$`)
)

// ParseEntries parses BibTeX entries from r. The parser is deliberately
// line-oriented: it handles the machine-generated layout (one field per
// line, brace or quote delimited) and folds continuation lines into the
// open field, rather than implementing the full grammar. Comment and
// preamble blocks are skipped; a malformed entry is dropped without
// aborting the rest of the file.
func ParseEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	var cur *Entry
	var fieldName string
	var fieldValue strings.Builder
	var depth int

	flushField := func() {
		if cur != nil && fieldName != "" {
			cur.Fields[fieldName] = cleanFieldValue(fieldValue.String())
		}
		fieldName = ""
		fieldValue.Reset()
		depth = 0
	}
	flushEntry := func() {
		flushField()
		if cur != nil && len(cur.Fields) > 0 {
			entries = append(entries, *cur)
		}
		cur = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if m := entryStartRegex.FindStringSubmatch(line); m != nil {
			flushEntry()
			typ := strings.ToLower(m[1])
			if typ == "comment" || typ == "preamble" || typ == "string" {
				continue
			}
			cur = &Entry{Type: typ, Key: strings.TrimSpace(m[2]), Fields: make(map[string]string)}
			continue
		}
		if cur == nil {
			continue
		}

		if fieldName == "" {
			if strings.TrimSpace(line) == "}" {
				flushEntry()
				continue
			}
			m := fieldStartRegex.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			fieldName = strings.ToLower(m[1])
			fieldValue.WriteString(strings.TrimSpace(m[2]))
			depth = braceDepth(m[2])
			if depth <= 0 {
				flushField()
			}
			continue
		}

		// Continuation of an open multi-line field.
		fieldValue.WriteString(" ")
		fieldValue.WriteString(strings.TrimSpace(line))
		depth += braceDepth(line)
		if depth <= 0 {
			flushField()
		}
	}
	flushEntry()

	return entries, scanner.Err()
}

// ParseFile parses all entries from a .bib file.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseEntries(f)
}

// braceDepth counts unbalanced braces in a chunk of field text.
func braceDepth(s string) int {
	depth := 0
	for _, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return depth
}

// cleanFieldValue strips the delimiters and trailing comma from a raw field
// value, then removes any protective braces left inside.
func cleanFieldValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ",")
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '{' && s[len(s)-1] == '}') || (s[0] == '"' && s[len(s)-1] == '"') {
			s = s[1 : len(s)-1]
		}
	}
	s = strings.ReplaceAll(s, "{", "")
	s = strings.ReplaceAll(s, "}", "")
	return strings.TrimSpace(s)
}

// Flatten renders the entry as a single plain-text reference line,
// approximating how the entry would appear in a bibliography.
func (e Entry) Flatten() string {
	var parts []string
	for _, name := range []string{"author", "title", "journal", "booktitle", "publisher", "year", "pages", "doi"} {
		if v := e.Fields[name]; v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return e.Key
	}
	return strings.Join(parts, ". ")
}

// Year parses the entry's year field, 0 if absent or non-numeric.
func (e Entry) Year() int {
	y, err := strconv.Atoi(strings.TrimSpace(e.Fields["year"]))
	if err != nil {
		return 0
	}
	return y
}
