package matcher

import (
	"strings"

	"github.com/arjunvk/mentorloop/internal/model/resource"
)

// KeywordMatch scores every catalog entry by counting literal, case-insensitive
// occurrences of its keyword tags in the question and returns the highest
// scorer, or nil when every score is zero. Pure function, never blocks.
func KeywordMatch(catalog *resource.Catalog, question string) *resource.Resource {
	normalized := strings.ToLower(question)
	if strings.TrimSpace(normalized) == "" {
		return nil
	}

	var best *resource.Resource
	bestScore := 0
	for _, item := range catalog.List() {
		score := 0
		for _, tag := range item.Keywords {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			score += strings.Count(normalized, tag)
		}
		if score > bestScore {
			bestScore = score
			picked := item
			best = &picked
		}
	}
	return best
}
