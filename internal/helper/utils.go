package helper

import (
	"fmt"

	"github.com/google/uuid"
)

// NewDocumentID creates a random unique document identifier.
func NewDocumentID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID: %w", err)
	}
	return id.String(), nil
}

// ChunkKey builds the composite key of an embedding record or label. Unique
// per (owner, document, chunk index).
func ChunkKey(owner, document string, chunkIndex int) string {
	return fmt.Sprintf("%s_%s_%d", owner, document, chunkIndex)
}

// Truncate clips s to at most limit runes, for metadata and previews.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
