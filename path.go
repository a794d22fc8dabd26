package schema

import (
	"strconv"
	"strings"
)

// Wildcard is the flattened path segment standing for "any index" of a list.
const Wildcard = "$"

// JoinPath joins dotted path segments, skipping empty ones.
func JoinPath(parts ...string) string {
	b := &strings.Builder{}
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(p)
	}
	return b.String()
}

func indexPath(parent string, i int) string { return JoinPath(parent, strconv.Itoa(i)) }

// SplitPath splits a dotted path into its segments. The empty path has none.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// PointerFromPath renders a dotted path as a JSON Pointer (RFC 6901).
func PointerFromPath(path string) string {
	parts := SplitPath(path)
	if len(parts) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, p := range parts {
		b.WriteByte('/')
		// escape '~' -> '~0', '/' -> '~1'
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(p, "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// ToWildcard replaces numeric segments with the wildcard so a data path can be
// looked up in a Flat map.
func ToWildcard(path string) string {
	parts := SplitPath(path)
	for i, p := range parts {
		if _, err := strconv.Atoi(p); err == nil {
			parts[i] = Wildcard
		}
	}
	return strings.Join(parts, ".")
}
