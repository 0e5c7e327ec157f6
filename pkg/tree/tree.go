package tree

import (
	"slices"
	"strings"
)

// Table is an ordered TOML table. Keys keep the order in which they first
// appear in the document.
//
// Values stored in a Table are one of:
//   - *Table for nested tables (including inline tables)
//   - []any for arrays, whose elements follow the same rules
//   - a leaf: string, int64, float64, bool or a TOML date/time value
type Table struct {
	keys   []string
	values map[string]any
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{values: make(map[string]any)}
}

// Set stores v under key, appending key to the order if it is new.
func (t *Table) Set(key string, v any) {
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = v
}

// Get returns the value stored under key.
func (t *Table) Get(key string) (any, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t.values[key]
	return v, ok
}

// Keys returns the table keys in document order.
// The returned slice must not be modified.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	return t.keys
}

// Len returns the number of keys in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Join appends key to a dotted path. Array indices are never part of a path.
func Join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// Paths is a set of dotted key paths, used by the descriptor decoder to
// record every leaf it consumed.
type Paths map[string]struct{}

// Mark records path as consumed.
func (p Paths) Mark(path string) { p[path] = struct{}{} }

// Has reports whether path was consumed.
func (p Paths) Has(path string) bool {
	_, ok := p[path]
	return ok
}

// MarkAll records path and every leaf path below v as consumed. It is used
// for values the decoder accepts wholesale, such as the feature table.
func (p Paths) MarkAll(path string, v any) {
	switch v := v.(type) {
	case *Table:
		for _, k := range v.Keys() {
			child, _ := v.Get(k)
			p.MarkAll(Join(path, k), child)
		}
	case []any:
		for _, e := range v {
			p.MarkAll(path, e)
		}
	default:
		p.Mark(path)
	}
}

// Sorted returns the paths in lexical order.
func (p Paths) Sorted() []string {
	out := make([]string, 0, len(p))
	for k := range p {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// String renders the set for debugging.
func (p Paths) String() string {
	return "{" + strings.Join(p.Sorted(), ", ") + "}"
}
