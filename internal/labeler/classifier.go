package labeler

import (
	"regexp"
	"strings"

	"cognitive-rag/internal/models"
)

// rolePatterns pairs a rhetorical role with its lexical cues. Declaration
// order is the tie-break: when two roles end up with equal normalized scores,
// the first-declared role wins, so this is a slice rather than a map.
type rolePatterns struct {
	role     models.RhetoricalRole
	patterns []*regexp.Regexp
}

var roleTable = []rolePatterns{
	{models.RoleArgument, compileAll(
		`\b(therefore|thus|consequently|hence|it follows that)\b`,
		`\b(because|since|given that|as a result)\b`,
		`\b(argues?|claims?|asserts?|contends?|posits?)\b`,
		`\b(proves?|demonstrates?|shows? that)\b`,
	)},
	{models.RoleExample, compileAll(
		`\b(for example|for instance|such as|e\.g\.|eg)\b`,
		`\b(to illustrate|consider the case|imagine)\b`,
		`\b(specifically|in particular)\b`,
	)},
	{models.RoleBackground, compileAll(
		`\b(historically|context|background|previously)\b`,
		`\b(traditionally|in the past|over time)\b`,
		`\b(introduction|overview|setting)\b`,
	)},
	{models.RoleConclusion, compileAll(
		`\b(in conclusion|to summarize|in summary|overall)\b`,
		`\b(finally|ultimately|in the end)\b`,
		`\b(to conclude|therefore we|thus we can)\b`,
	)},
	{models.RoleMethodology, compileAll(
		`\b(method|methodology|approach|procedure|technique)\b`,
		`\b(we (used|employed|applied|conducted|performed))\b`,
		`\b(experimental setup|study design|protocol)\b`,
		`\b(data collection|analysis|measurement)\b`,
	)},
	{models.RoleInsight, compileAll(
		`\b(interestingly|notably|surprisingly|remarkably)\b`,
		`\b(reveals?|suggests?|indicates?|implies?)\b`,
		`\b(key finding|important|significant|crucial)\b`,
	)},
	{models.RoleObservation, compileAll(
		`\b(observed?|noticed?|found|detected|identified)\b`,
		`\b(we see|it appears|seems to be)\b`,
		`\b(evidence suggests?|data shows?)\b`,
	)},
	{models.RoleDefinition, compileAll(
		`\b(defined as|refers to|means|is called)\b`,
		`\b(terminology|term|concept|definition)\b`,
		`\b(in other words|that is|i\.e\.|ie)\b`,
	)},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// Classify assigns a rhetorical role and a confidence in [0,1] to text.
// Scores are match counts normalized per 100 words; 5 matches per 100 words
// caps confidence at 1.0. Short ambiguous text is flagged as
// insufficient_data rather than guessed.
func Classify(text string) (models.RhetoricalRole, float64) {
	lower := strings.ToLower(text)
	wordCount := len(strings.Fields(lower))

	bestRole := models.RoleUnknown
	bestScore := 0.0
	for _, rp := range roleTable {
		matches := 0
		for _, p := range rp.patterns {
			matches += len(p.FindAllString(lower, -1))
		}
		if matches == 0 {
			continue
		}
		normalized := float64(matches) / float64(max(wordCount, 1)) * 100
		if normalized > bestScore {
			bestScore = normalized
			bestRole = rp.role
		}
	}

	if bestScore == 0 {
		if wordCount < 20 {
			return models.RoleInsufficientData, 0
		}
		return models.RoleUnknown, 0
	}

	confidence := bestScore / 5.0
	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0.1 && wordCount < 20 {
		return models.RoleInsufficientData, 0
	}
	return bestRole, confidence
}
