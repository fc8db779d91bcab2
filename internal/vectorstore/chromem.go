package vectorstore

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"cognitive-rag/internal/config"
)

const compress = false

// ChromemIndex implements Index on top of a chromem-go collection. Owner
// scoping uses metadata Where filters plus a defensive check on every result.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	batchSize  int
}

// NewChromemIndex opens (or creates) the configured collection.
func NewChromemIndex(cfg config.VectorDBConfig, batchSize int) (*ChromemIndex, error) {
	var db *chromem.DB
	var err error
	if cfg.InMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Path, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}

	if batchSize <= 0 {
		batchSize = config.DefaultUpsertBatch
	}
	return &ChromemIndex{db: db, collection: collection, batchSize: batchSize}, nil
}

// Upsert stores records in batches. Batching preserves record order; a batch
// that keeps failing after retries is reported, never silently skipped.
// Records from already-committed batches stay live and count toward the
// returned total.
func (x *ChromemIndex) Upsert(ctx context.Context, records []Record) (int, error) {
	for start := 0; start < len(records); start += x.batchSize {
		end := start + x.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		docs := make([]chromem.Document, len(batch))
		for i, rec := range batch {
			docs[i] = chromem.Document{
				ID:        rec.ID,
				Content:   rec.Metadata[MetaContent],
				Metadata:  rec.Metadata,
				Embedding: rec.Vector,
			}
		}

		err := withRetry(ctx, func() error {
			return x.collection.AddDocuments(ctx, docs, runtime.NumCPU())
		})
		if err != nil {
			return start, fmt.Errorf("failed to upsert batch starting at record %d: %w", start, err)
		}
	}
	return len(records), nil
}

// Query returns up to topK matches for vector, restricted to owner's records.
func (x *ChromemIndex) Query(ctx context.Context, owner string, vector []float32, topK int) ([]Match, error) {
	if owner == "" {
		return nil, fmt.Errorf("owner must not be empty")
	}
	if count := x.collection.Count(); count == 0 {
		return nil, nil
	} else if topK > count {
		topK = count
	}

	var results []chromem.Result
	err := withRetry(ctx, func() error {
		var qErr error
		results, qErr = x.collection.QueryWithOptions(ctx, chromem.QueryOptions{
			QueryEmbedding: vector,
			NResults:       topK,
			Where:          map[string]string{MetaOwner: owner},
		})
		return qErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, res := range results {
		// The Where filter already scopes by owner; a record slipping through
		// anyway would leak another owner's content, so drop it here too.
		if res.Metadata[MetaOwner] != owner {
			log.Warn().Str("id", res.ID).Msg("Dropping result outside owner scope")
			continue
		}
		matches = append(matches, Match{ID: res.ID, Similarity: res.Similarity, Metadata: res.Metadata})
	}
	return matches, nil
}

// DeleteDocument removes all records of (owner, document). The removed count
// comes from a before/after comparison so callers can check the post-condition.
func (x *ChromemIndex) DeleteDocument(ctx context.Context, owner, document string) (int, error) {
	return x.deleteWhere(ctx, map[string]string{MetaOwner: owner, MetaDocument: document})
}

// DeleteOwner removes every record belonging to owner.
func (x *ChromemIndex) DeleteOwner(ctx context.Context, owner string) (int, error) {
	return x.deleteWhere(ctx, map[string]string{MetaOwner: owner})
}

func (x *ChromemIndex) deleteWhere(ctx context.Context, where map[string]string) (int, error) {
	before := x.collection.Count()
	if err := x.collection.Delete(ctx, where, nil); err != nil {
		return 0, fmt.Errorf("failed to delete records: %w", err)
	}
	return before - x.collection.Count(), nil
}
