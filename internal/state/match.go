package state

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// bestMatch returns the index of the name that best matches query, or -1.
// Exact matches win over prefixes, prefixes over substrings, and substrings
// over fuzzy matches; ties go to the earliest name.
func bestMatch(names []string, query string) int {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" || len(names) == 0 {
		return -1
	}
	lower := strings.ToLower(trimmed)
	for i, name := range names {
		if strings.EqualFold(name, trimmed) {
			return i
		}
	}
	for i, name := range names {
		if strings.HasPrefix(strings.ToLower(name), lower) {
			return i
		}
	}
	for i, name := range names {
		if strings.Contains(strings.ToLower(name), lower) {
			return i
		}
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, names)
	if len(ranks) == 0 {
		return -1
	}
	best := ranks[0]
	for _, rank := range ranks[1:] {
		if rank.Distance < best.Distance ||
			(rank.Distance == best.Distance && rank.OriginalIndex < best.OriginalIndex) {
			best = rank
		}
	}
	if best.OriginalIndex < 0 || best.OriginalIndex >= len(names) {
		return -1
	}
	return best.OriginalIndex
}
