package chunker

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"cognitive-rag/internal/models"
)

// Tokenizer is the single tokenization scheme used across ingestion and
// token-count reporting. Swapping implementations mid-corpus invalidates
// token-count comparability, so one instance is constructed at startup and
// shared.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// Tiktoken wraps the cl100k_base encoding.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

func NewTiktoken() (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to load cl100k_base encoding: %w", err)
	}
	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *Tiktoken) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

// CountTokens reports the token count of text under the shared scheme.
func CountTokens(tok Tokenizer, text string) int {
	return len(tok.Encode(text))
}

// Chunker splits text into overlapping token-bounded segments.
type Chunker struct {
	tok     Tokenizer
	size    int
	overlap int
}

// New returns a chunker producing windows of size tokens advancing by
// size-overlap. Overlap must be strictly less than size so every step makes
// forward progress.
func New(tok Tokenizer, size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap must be in [0, size), got overlap=%d size=%d", overlap, size)
	}
	return &Chunker{tok: tok, size: size, overlap: overlap}, nil
}

// Chunk splits text into a sliding token window. Chunk indices start at 0 and
// increment per produced chunk. Empty input yields no chunks and no error.
func (c *Chunker) Chunk(text string, pageNumber int) []models.Chunk {
	tokens := c.tok.Encode(text)
	if len(tokens) == 0 {
		return nil
	}

	var chunks []models.Chunk
	index := 0
	for start := 0; start < len(tokens); start += c.size - c.overlap {
		end := start + c.size
		if end > len(tokens) {
			end = len(tokens)
		}
		content := strings.TrimSpace(c.tok.Decode(tokens[start:end]))
		chunks = append(chunks, models.Chunk{
			Content:    content,
			ChunkIndex: index,
			PageNumber: pageNumber,
		})
		index++
	}
	return chunks
}
