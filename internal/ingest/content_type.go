package ingest

import (
	"strings"

	"cognitive-rag/internal/models"
)

// typeIndicator maps leading-sample phrases to a content type. First match
// wins, in declaration order.
type typeIndicator struct {
	contentType models.ContentType
	phrases     []string
}

var typeIndicators = []typeIndicator{
	{models.ContentResearchPaper, []string{"abstract", "introduction", "methodology", "references"}},
	{models.ContentVideoTranscript, []string{"transcript", "speaker", "[inaudible]"}},
	{models.ContentLectureNotes, []string{"lecture", "professor", "today we will"}},
	{models.ContentBookExcerpt, []string{"chapter", "isbn", "copyright"}},
}

// sampleLimit bounds how much leading text inference looks at.
const sampleLimit = 2000

// InferContentType guesses the document kind from a leading text sample.
func InferContentType(sample string) models.ContentType {
	if len(sample) > sampleLimit {
		sample = sample[:sampleLimit]
	}
	lower := strings.ToLower(sample)

	for _, ti := range typeIndicators {
		for _, phrase := range ti.phrases {
			if strings.Contains(lower, phrase) {
				return ti.contentType
			}
		}
	}
	return models.ContentUnknown
}
