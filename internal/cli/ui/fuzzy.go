package ui

import (
	"sort"
	"strings"
)

// MaxSuggestionDistance is the largest edit distance Suggest accepts
const MaxSuggestionDistance = 3

// Suggest returns up to limit candidates within MaxSuggestionDistance
// edits of target, closest first. Comparison ignores case.
func Suggest(target string, candidates []string, limit int) []string {
	type match struct {
		value    string
		distance int
	}

	target = strings.ToLower(target)
	var matches []match
	for _, candidate := range candidates {
		d := Distance(target, strings.ToLower(candidate))
		if d <= MaxSuggestionDistance && d > 0 {
			matches = append(matches, match{candidate, d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	var out []string
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, m.value)
	}
	return out
}

// Distance is the Levenshtein edit distance between a and b, in runes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
