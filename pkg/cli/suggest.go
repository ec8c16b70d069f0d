package cli

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	// MaxSuggestions caps the candidates listed in a suggestion block
	MaxSuggestions = 3
	// Cutoff is the minimum similarity ratio for a candidate to be suggested
	Cutoff = 0.5
)

// Similarity returns the Ratcliff/Obershelp ratio of a and b in [0, 1]
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(chars(b), chars(a)).Ratio()
}

// CloseMatches returns up to n candidates whose similarity to word is at
// least cutoff, best first. Ties keep the order of candidates.
func CloseMatches(word string, candidates []string, n int, cutoff float64) []string {
	type scored struct {
		ratio float64
		name  string
	}

	var matches []scored
	for _, c := range candidates {
		if r := Similarity(word, c); r >= cutoff {
			matches = append(matches, scored{ratio: r, name: c})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].ratio > matches[j].ratio
	})

	if len(matches) > n {
		matches = matches[:n]
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.name)
	}
	return names
}

// Suggest renders a "Did you mean" block for typed, or "" when nothing is close
func Suggest(typed string, candidates []string) string {
	matches := CloseMatches(typed, candidates, MaxSuggestions, Cutoff)
	if len(matches) == 0 {
		return ""
	}

	var b strings.Builder
	if len(matches) == 1 {
		b.WriteString("\n\nDid you mean this?\n")
	} else {
		b.WriteString("\n\nDid you mean one of these?\n")
	}
	for i, m := range matches {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("    ")
		b.WriteString(m)
	}
	return b.String()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
