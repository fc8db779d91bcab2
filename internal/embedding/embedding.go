package embedding

import (
	"context"
	"strings"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"cognitive-rag/internal/config"
	"cognitive-rag/internal/vectorstore"
)

// FromConfig picks the embedder backend: openai-compatible when an API key is
// configured, local ollama otherwise.
func FromConfig(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	if llmConfig.Key != "" {
		return NewEmbedder(llmConfig)
	}
	return NewOllamaEmbedder(llmConfig)
}

// NewEmbedder creates an embedder against an openai-compatible endpoint.
func NewEmbedder(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(llm)
}

// NewOllamaEmbedder creates an embedder against a local ollama server.
func NewOllamaEmbedder(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(llmConfig.BaseURL),
		ollama.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(llm)
}

// Bounded wraps an embedder with a per-call timeout so a hanging embedding
// service cannot stall the pipeline. Retry is the caller's concern: the
// pipeline invokes vectorstore.EmbedWithRetry around this, and a second retry
// layer here would multiply the attempt bound.
type Bounded struct {
	inner   vectorstore.Embedder
	timeout time.Duration
}

func NewBounded(inner vectorstore.Embedder, timeout time.Duration) *Bounded {
	return &Bounded{inner: inner, timeout: timeout}
}

func (b *Bounded) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.inner.EmbedQuery(ctx, text)
}
