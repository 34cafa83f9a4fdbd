// Package strings provides string list normalization helpers.
package strings

import (
	"slices"
	"strings"
)

// SplitList splits s on sep, trims each element and drops empty and repeated
// elements. Order of first occurrence is preserved.
//
//	SplitList(" a:9092, b:9092,,a:9092 ", ",") // []string{"a:9092", "b:9092"}
func SplitList(s, sep string) []string {
	parts := strings.Split(s, sep)
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// SortedSet lowercases and trims values, drops empties and duplicates, and
// returns the result sorted. A nil or empty input yields an empty slice.
//
//	SortedSet([]string{"Page", " q", "page"}) // []string{"page", "q"}
func SortedSet(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
