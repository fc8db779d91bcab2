// Package retriever turns a query into ranked, diversity-filtered retrieval
// results for prompt assembly.
package retriever

import (
	"context"
	"fmt"
	"strconv"

	"cognitive-rag/internal/models"
	"cognitive-rag/internal/vectorstore"
)

type Retriever struct {
	embedder vectorstore.Embedder
	index    vectorstore.Index
	topK     int
}

func New(embedder vectorstore.Embedder, index vectorstore.Index, topK int) *Retriever {
	return &Retriever{embedder: embedder, index: index, topK: topK}
}

// Retrieve embeds the query and returns owner-scoped matches in descending
// similarity order. Zero results is a valid outcome, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query, owner string) ([]models.RetrievalResult, error) {
	vector, err := vectorstore.EmbedWithRetry(ctx, r.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := r.index.Query(ctx, owner, vector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}

	results := make([]models.RetrievalResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, resultFromMatch(m))
	}
	return results, nil
}

func resultFromMatch(m vectorstore.Match) models.RetrievalResult {
	page, _ := strconv.Atoi(m.Metadata[vectorstore.MetaPageNumber])
	return models.RetrievalResult{
		ChunkID:         m.ID,
		Content:         m.Metadata[vectorstore.MetaContent],
		SourceFilename:  m.Metadata[vectorstore.MetaSourceFilename],
		PageNumber:      page,
		Timestamp:       m.Metadata[vectorstore.MetaTimestamp],
		ContentType:     models.ContentType(m.Metadata[vectorstore.MetaContentType]),
		RhetoricalRole:  models.RhetoricalRole(m.Metadata[vectorstore.MetaRhetoricalRole]),
		SimilarityScore: m.Similarity,
	}
}

// DiversityFilter walks results in rank order, keeping one only while fewer
// than maxPerSource accepted results share its source filename, and stops as
// soon as maxTotal results have been accepted. This bounds any single
// source's dominance over the eventual prompt.
func DiversityFilter(results []models.RetrievalResult, maxPerSource, maxTotal int) []models.RetrievalResult {
	if len(results) == 0 {
		return nil
	}

	perSource := make(map[string]int)
	filtered := make([]models.RetrievalResult, 0, maxTotal)
	for _, res := range results {
		if len(filtered) >= maxTotal {
			break
		}
		if perSource[res.SourceFilename] >= maxPerSource {
			continue
		}
		perSource[res.SourceFilename]++
		filtered = append(filtered, res)
	}
	return filtered
}
