package tree

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cratec/pkg/errors"
)

// Diagnostic is one positioned parser complaint. Offsets are byte offsets
// into the manifest text; lines and columns are 1-based.
type Diagnostic struct {
	Offset  int
	Len     int
	Line    int
	Col     int
	EndLine int
	EndCol  int
	Message string
}

// SyntaxError lists every diagnostic reported for one manifest.
type SyntaxError struct {
	Path        string
	Diagnostics []Diagnostic
}

// Error formats one diagnostic per line as path:line:col[-line:col] message.
func (e *SyntaxError) Error() string {
	var b strings.Builder
	for i, d := range e.Diagnostics {
		if i > 0 {
			b.WriteByte('\n')
		}
		if d.Line == 0 {
			fmt.Fprintf(&b, "%s: %s", e.Path, d.Message)
			continue
		}
		fmt.Fprintf(&b, "%s:%d:%d", e.Path, d.Line, d.Col)
		if d.EndLine != d.Line || d.EndCol != d.Col {
			fmt.Fprintf(&b, "-%d:%d", d.EndLine, d.EndCol)
		}
		b.WriteString(" " + d.Message)
	}
	return b.String()
}

// Parse parses manifest text into an ordered table. path is only used to
// label diagnostics. Syntax errors are returned as an INVALID_SYNTAX error
// wrapping a [*SyntaxError].
func Parse(text, path string) (*Table, error) {
	raw := make(map[string]any)
	md, err := toml.Decode(text, &raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSyntax, syntaxError(text, path, err), "could not parse input TOML")
	}
	return build(raw, order(md.Keys()), nil), nil
}

func syntaxError(text, path string, err error) *SyntaxError {
	var pe toml.ParseError
	if !stderrors.As(err, &pe) {
		var ppe *toml.ParseError
		if !stderrors.As(err, &ppe) {
			return &SyntaxError{Path: path, Diagnostics: []Diagnostic{{Message: err.Error()}}}
		}
		pe = *ppe
	}

	start := pe.Position.Start
	if start == 0 && pe.Position.Line > 1 {
		start = lineOffset(text, pe.Position.Line)
	}
	d := Diagnostic{Offset: start, Len: pe.Position.Len, Message: pe.Message}
	d.Line, d.Col = lineCol(text, start)
	d.EndLine, d.EndCol = lineCol(text, start+pe.Position.Len)
	return &SyntaxError{Path: path, Diagnostics: []Diagnostic{d}}
}

// lineCol translates a byte offset into a 1-based line and rune column.
func lineCol(text string, offset int) (int, int) {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}
	before := text[:offset]
	line := strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	return line, utf8.RuneCountInString(before[lineStart:]) + 1
}

func lineOffset(text string, line int) int {
	offset := 0
	for l := 1; l < line; l++ {
		i := strings.IndexByte(text[offset:], '\n')
		if i < 0 {
			return len(text)
		}
		offset += i + 1
	}
	return offset
}

// order maps each key path to its first position in the document.
func order(keys []toml.Key) map[string]int {
	idx := make(map[string]int, len(keys))
	for i, k := range keys {
		// Implicit parent tables take the position of their first child.
		for n := 1; n <= len(k); n++ {
			p := strings.Join(k[:n], "\x1f")
			if _, ok := idx[p]; !ok {
				idx[p] = i
			}
		}
	}
	return idx
}

func build(m map[string]any, idx map[string]int, prefix []string) *Table {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	pos := func(k string) int {
		if i, ok := idx[strings.Join(append(prefix[:len(prefix):len(prefix)], k), "\x1f")]; ok {
			return i
		}
		return len(idx)
	}
	sort.SliceStable(names, func(i, j int) bool {
		pi, pj := pos(names[i]), pos(names[j])
		if pi != pj {
			return pi < pj
		}
		return names[i] < names[j]
	})

	t := NewTable()
	for _, k := range names {
		t.Set(k, convert(m[k], idx, append(prefix[:len(prefix):len(prefix)], k)))
	}
	return t
}

func convert(v any, idx map[string]int, path []string) any {
	switch v := v.(type) {
	case map[string]any:
		return build(v, idx, path)
	case []map[string]any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = build(e, idx, path)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = convert(e, idx, path)
		}
		return out
	default:
		return v
	}
}
