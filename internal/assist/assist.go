// Package assist runs the query path: retrieve, filter, assemble, generate,
// validate. A response that fails validation is never returned; the
// deterministic fallback takes its place.
package assist

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"cognitive-rag/internal/helper"
	"cognitive-rag/internal/llmservice"
	"cognitive-rag/internal/models"
	"cognitive-rag/internal/prompt"
	"cognitive-rag/internal/retriever"
	"cognitive-rag/internal/validator"
)

// queryContentLimit caps how much editor content feeds the search query.
const queryContentLimit = 500

type Service struct {
	retriever    *retriever.Retriever
	builder      *prompt.Builder
	completer    llmservice.Completer
	maxPerSource int
	maxSources   int
}

func NewService(r *retriever.Retriever, b *prompt.Builder, c llmservice.Completer, maxPerSource, maxSources int) *Service {
	return &Service{retriever: r, builder: b, completer: c, maxPerSource: maxPerSource, maxSources: maxSources}
}

type Request struct {
	Mode              models.TaskMode
	Owner             string
	EditorContent     string
	AdditionalContext string
	StyleHints        string
}

type Response struct {
	Guidance     string
	Sources      []models.SourceCitation
	Mode         models.TaskMode
	UsedFallback bool
	Reason       string // why the fallback was substituted, empty otherwise
}

// Assist answers one guidance request. Retrieval failures surface as errors;
// generation and validation failures degrade to the fallback message.
func (s *Service) Assist(ctx context.Context, req Request) (*Response, error) {
	if _, ok := models.ParseTaskMode(string(req.Mode)); !ok {
		return nil, fmt.Errorf("unknown task mode: %q", req.Mode)
	}
	if req.Owner == "" {
		return nil, fmt.Errorf("owner must not be empty")
	}

	query := buildSearchQuery(req)
	results, err := s.retriever.Retrieve(ctx, query, req.Owner)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	sources := retriever.DiversityFilter(results, s.maxPerSource, s.maxSources)

	promptText, err := s.builder.Build(req.Mode, req.EditorContent, sources, req.AdditionalContext, req.StyleHints)
	if err != nil {
		return nil, err
	}

	response := &Response{Mode: req.Mode, Sources: citations(sources)}

	guidance, err := s.completer.Complete(ctx, promptText)
	if err != nil {
		log.Warn().Err(err).Str("mode", string(req.Mode)).Msg("Generation failed, using fallback")
		response.Guidance = validator.Fallback(req.Mode, err.Error())
		response.UsedFallback = true
		response.Reason = err.Error()
		return response, nil
	}

	if valid, reason := validator.Validate(guidance, req.Mode); !valid {
		log.Warn().Str("mode", string(req.Mode)).Str("reason", reason).Msg("Output failed validation, using fallback")
		response.Guidance = validator.Fallback(req.Mode, reason)
		response.UsedFallback = true
		response.Reason = reason
		return response, nil
	}

	response.Guidance = guidance
	return response, nil
}

// buildSearchQuery synthesizes the retrieval query from the mode, leading
// editor content, and any extra context.
func buildSearchQuery(req Request) string {
	var query string
	if strings.TrimSpace(req.EditorContent) != "" {
		query = fmt.Sprintf("%s: %s", req.Mode, helper.Truncate(req.EditorContent, queryContentLimit))
	} else {
		query = fmt.Sprintf("%s guidance", req.Mode)
	}
	if req.AdditionalContext != "" {
		query += " " + req.AdditionalContext
	}
	return query
}

func citations(sources []models.RetrievalResult) []models.SourceCitation {
	out := make([]models.SourceCitation, 0, len(sources))
	for _, src := range sources {
		out = append(out, models.SourceCitation{
			Source:          src.SourceFilename,
			PageNumber:      src.PageNumber,
			Timestamp:       src.Timestamp,
			ContentType:     src.ContentType,
			RhetoricalRole:  src.RhetoricalRole,
			SimilarityScore: src.SimilarityScore,
			ContentPreview:  helper.Truncate(src.Content, models.ContentPreviewLimit),
		})
	}
	return out
}
