package labeler

import (
	"regexp"
	"sort"
	"strings"
)

const maxTopicTags = 3

var (
	// Multi-word capitalized phrases, e.g. "Machine Learning".
	capitalizedPhraseRe = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)\b`)
	// Acronyms of two or more uppercase letters, e.g. "NLP".
	acronymRe = regexp.MustCompile(`\b([A-Z]{2,})\b`)
)

// ExtractTags pulls up to three topic tags out of text, ranked by occurrence
// frequency with ties broken by first appearance. Returns nil when no
// candidates exist so callers can distinguish "no tags found" from an empty
// tag set.
func ExtractTags(text string) []string {
	counts := make(map[string]int)
	var order []string

	record := func(candidate string) {
		if _, seen := counts[candidate]; !seen {
			order = append(order, candidate)
		}
		counts[candidate]++
	}

	for _, m := range capitalizedPhraseRe.FindAllString(text, -1) {
		if len(strings.Fields(m)) > 4 {
			continue
		}
		record(m)
	}
	for _, m := range acronymRe.FindAllString(text, -1) {
		record(m)
	}

	if len(order) == 0 {
		return nil
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxTopicTags {
		order = order[:maxTopicTags]
	}
	return order
}
