package labeler

import (
	"regexp"
	"strings"

	"cognitive-rag/internal/models"
)

var (
	listMarkupRe    = regexp.MustCompile(`(?m)^\s*[-*•]\s`)
	headingMarkupRe = regexp.MustCompile(`(?m)^#+\s`)
)

// CoverageScore estimates how fully the assigned labels represent the chunk,
// on a 0-100 scale. Baseline 50, +10 per topic tag, adjusted for length and
// structural markup.
func CoverageScore(text string, tagCount int) int {
	score := 50
	score += tagCount * 10

	wordCount := len(strings.Fields(text))
	if wordCount < 50 {
		score += 20
	} else if wordCount > 200 {
		score -= 10
	}

	if listMarkupRe.MatchString(text) {
		score += 5
	}
	if headingMarkupRe.MatchString(text) {
		score += 5
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// ConfidenceFor buckets the composite labeling confidence. Weights are
// 0.5 role confidence, 0.3 tag count (capped at 3), 0.2 coverage. Text under
// ten words is always low confidence.
func ConfidenceFor(text string, roleConfidence float64, tagCount, coverageScore int) models.ConfidenceLabel {
	if len(strings.Fields(text)) < 10 {
		return models.ConfidenceLow
	}

	if tagCount > maxTopicTags {
		tagCount = maxTopicTags
	}
	composite := roleConfidence*0.5 +
		float64(tagCount)/3.0*0.3 +
		float64(coverageScore)/100.0*0.2

	switch {
	case composite >= 0.7:
		return models.ConfidenceHigh
	case composite >= 0.4:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
