// Package vectorstore is the gateway between the pipeline and the external
// embedding function and vector index. Every record and query is scoped by an
// owner identifier; results outside the caller's scope are discarded.
package vectorstore

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrExhausted marks an external call that kept failing after bounded retry.
var ErrExhausted = errors.New("external call failed after retries")

// Metadata keys stored with every embedding record.
const (
	MetaOwner          = "owner_id"
	MetaDocument       = "document_id"
	MetaChunkIndex     = "chunk_index"
	MetaContent        = "content"
	MetaSourceFilename = "source_filename"
	MetaContentType    = "content_type"
	MetaRhetoricalRole = "rhetorical_role"
	MetaPageNumber     = "page_number"
	MetaTimestamp      = "timestamp"
)

// Record is one chunk's externally stored representation.
type Record struct {
	ID       string
	Vector   []float32
	Metadata map[string]string
}

// Match is one ranked result of a similarity query.
type Match struct {
	ID         string
	Similarity float32
	Metadata   map[string]string
}

// Embedder converts text into a fixed-dimension vector. Satisfied by
// langchaingo's embeddings.EmbedderImpl.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Index is the vector store behind ingestion and retrieval.
type Index interface {
	// Upsert stores records in fixed-size batches and reports how many were
	// committed. A failed batch is retried and then reported; records from
	// already-committed batches stay live, and the returned count covers
	// exactly those.
	Upsert(ctx context.Context, records []Record) (int, error)
	// Query returns up to topK matches scoped to owner, best first.
	Query(ctx context.Context, owner string, vector []float32, topK int) ([]Match, error)
	// DeleteDocument removes every record of (owner, document) and reports how
	// many were removed.
	DeleteDocument(ctx context.Context, owner, document string) (int, error)
	// DeleteOwner removes every record belonging to owner.
	DeleteOwner(ctx context.Context, owner string) (int, error)
}

const maxAttempts = 3

// EmbedWithRetry embeds text with the shared retry policy.
func EmbedWithRetry(ctx context.Context, embedder Embedder, text string) ([]float32, error) {
	var vector []float32
	err := withRetry(ctx, func() error {
		var embedErr error
		vector, embedErr = embedder.EmbedQuery(ctx, text)
		return embedErr
	})
	if err != nil {
		return nil, err
	}
	return vector, nil
}

// withRetry runs op with exponential backoff, up to three attempts, bounded
// by ctx. On exhaustion the last error is wrapped in ErrExhausted.
func withRetry(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(newExponential(), maxAttempts-1), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return errors.Join(ErrExhausted, err)
	}
	return nil
}

func newExponential() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 10 * time.Second
	return b
}
