// Package overlay filters and orders collections that are already in memory.
// It never touches the network.
package overlay

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fields is the searchable and sortable projection of one item.
type Fields struct {
	Name       string   // primary display name, matched and used for name sort
	Keywords   []string // extra matched text: numbers, titles, nested rule citations
	Words      int64
	Rules      int
	Complexity *float64 // nil sorts last under SortComplexity
}

// SortKey selects the ordering applied after filtering.
type SortKey int

// Supported sort keys. Words, Rules and Complexity sort descending; Name ascending.
const (
	SortWords SortKey = iota
	SortRules
	SortComplexity
	SortName
)

var sortKeyNames = [...]string{"words", "rules", "complexity", "name"} //nolint:gochecknoglobals // enum names

func (k SortKey) String() string {
	if int(k) < 0 || int(k) >= len(sortKeyNames) {
		return fmt.Sprintf("SortKey(%d)", int(k))
	}
	return sortKeyNames[k]
}

// Next cycles to the following key, wrapping after SortName.
func (k SortKey) Next() SortKey {
	return (k + 1) % SortKey(len(sortKeyNames))
}

// SortKeys lists the keys in cycle order.
func SortKeys() []SortKey {
	return []SortKey{SortWords, SortRules, SortComplexity, SortName}
}

// ParseSortKey accepts a key name case-insensitively. "agency" is an alias for name.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "words", "":
		return SortWords, nil
	case "rules":
		return SortRules, nil
	case "complexity":
		return SortComplexity, nil
	case "name", "agency":
		return SortName, nil
	}
	return SortWords, fmt.Errorf("unknown sort key %q (want one of %s)", s, strings.Join(sortKeyNames[:], ", "))
}

// Normalize lower-cases s, strips combining marks after NFD decomposition and
// drops everything except ASCII letters, digits and whitespace.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Matches reports whether the normalized query is a substring of the
// normalized name or any keyword. An empty query matches everything.
func Matches(f Fields, query string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	if strings.Contains(Normalize(f.Name), q) {
		return true
	}
	for _, kw := range f.Keywords {
		if strings.Contains(Normalize(kw), q) {
			return true
		}
	}
	return false
}

// Compare orders a before b under key, returning <0, 0 or >0.
func Compare(a, b Fields, key SortKey) int {
	switch key {
	case SortWords:
		return cmpDesc(a.Words, b.Words)
	case SortRules:
		return cmpDesc(a.Rules, b.Rules)
	case SortComplexity:
		switch {
		case a.Complexity == nil && b.Complexity == nil:
			return 0
		case a.Complexity == nil:
			return 1
		case b.Complexity == nil:
			return -1
		}
		return cmpDesc(*a.Complexity, *b.Complexity)
	case SortName:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}
	return 0
}

func cmpDesc[N int | int64 | float64](a, b N) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}

// Apply returns the items matching query, stably sorted by key. The input
// slice is not modified.
func Apply[E any](items []E, fields func(E) Fields, query string, key SortKey) []E {
	out := make([]E, 0, len(items))
	projected := make([]Fields, 0, len(items))
	for _, it := range items {
		f := fields(it)
		if Matches(f, query) {
			out = append(out, it)
			projected = append(projected, f)
		}
	}

	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(i, j int) int {
		return Compare(projected[i], projected[j], key)
	})

	sorted := make([]E, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}
