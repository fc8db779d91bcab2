// Package llmservice wraps the completion endpoint behind a narrow interface
// the pipeline can fake in tests.
package llmservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"cognitive-rag/internal/config"
	"cognitive-rag/internal/models"
)

// Completer generates text for a fully assembled prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client is the langchaingo-backed Completer.
type Client struct {
	llm     *openai.LLM
	timeout time.Duration
}

func NewClient(llmConfig *config.LLMConfig, timeout time.Duration) (*Client, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	return &Client{llm: llm, timeout: timeout}, nil
}

// Complete sends the prompt with bounded retry and timeout. The layer before
// the first separator becomes the system message, the rest the user message.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := splitMessages(prompt)

	var content string
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	err := backoff.Retry(func() error {
		res, genErr := c.llm.GenerateContent(ctx, messages, llms.WithTemperature(0.3))
		if genErr != nil {
			log.Warn().Err(genErr).Msg("Completion attempt failed")
			return genErr
		}
		if len(res.Choices) == 0 {
			return fmt.Errorf("completion returned no choices")
		}
		content = res.Choices[0].Content
		return nil
	}, policy)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}
	return content, nil
}

func splitMessages(prompt string) []llms.MessageContent {
	system, user, found := strings.Cut(prompt, models.ContextSeparator)
	if !found {
		return []llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		}
	}
	return []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}
}
