// Package labeler assigns classification metadata to content chunks: a
// rhetorical role with confidence, up to three topic tags, a coverage score,
// and a composite confidence label.
package labeler

import (
	"cognitive-rag/internal/chunker"
	"cognitive-rag/internal/models"
)

// Labeler combines the classifier, topic extractor, and scorer into one
// auto-labeling pass. The tokenizer is the shared scheme from ingestion so
// reported token counts stay comparable across chunks.
type Labeler struct {
	tok chunker.Tokenizer
}

func New(tok chunker.Tokenizer) *Labeler {
	return &Labeler{tok: tok}
}

// AutoLabel labels chunk text. It never fails for well-formed text: the worst
// outcome is unknown or insufficient_data with confidence zero.
func (l *Labeler) AutoLabel(text string) models.Label {
	role, roleConfidence := Classify(text)
	tags := ExtractTags(text)
	coverage := CoverageScore(text, len(tags))

	return models.Label{
		RhetoricalRole:  role,
		TopicTags:       tags,
		TokenCount:      chunker.CountTokens(l.tok, text),
		ConfidenceLabel: ConfidenceFor(text, roleConfidence, len(tags), coverage),
		CoverageScore:   coverage,
		IsAutoLabeled:   true,
		HumanVerified:   false,
	}
}
