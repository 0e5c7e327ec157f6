package tree

// Unused returns the dotted path of every leaf in root that is not in
// consumed, in document order. Tables extend the path; arrays do not, so all
// elements of an array share their parent's path. Each path is reported once.
func Unused(root *Table, consumed Paths) []string {
	var out []string
	seen := make(map[string]bool)
	walk(root, "", consumed, seen, &out)
	return out
}

func walk(v any, path string, consumed Paths, seen map[string]bool, out *[]string) {
	switch v := v.(type) {
	case *Table:
		for _, k := range v.Keys() {
			child, _ := v.Get(k)
			walk(child, Join(path, k), consumed, seen, out)
		}
	case []any:
		for _, e := range v {
			walk(e, path, consumed, seen, out)
		}
	default:
		if consumed.Has(path) || seen[path] {
			return
		}
		seen[path] = true
		*out = append(*out, path)
	}
}
