// Package ingest runs the ingestion path: extract, chunk, label, embed, and
// upsert, with best-effort label persistence.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"cognitive-rag/internal/chunker"
	"cognitive-rag/internal/helper"
	"cognitive-rag/internal/labeler"
	"cognitive-rag/internal/models"
	"cognitive-rag/internal/vectorstore"
)

// ErrEmptyDocument rejects sources with no extractable text.
var ErrEmptyDocument = errors.New("document contains no extractable text")

// LabelStore is the optional persistence callback for labels. Auto-label
// persistence is best-effort: failures are logged and ingestion continues,
// because embeddings define system-visible state and auto-labels can be
// regenerated.
type LabelStore interface {
	SaveAutoLabel(ctx context.Context, owner, document string, chunk models.Chunk, label models.Label) error
	DeleteDocument(ctx context.Context, owner, document string) error
}

// Pipeline wires the ingestion components. All dependencies are injected at
// construction; labels may be nil when label persistence is disabled.
type Pipeline struct {
	chunker  *chunker.Chunker
	labeler  *labeler.Labeler
	embedder vectorstore.Embedder
	index    vectorstore.Index
	labels   LabelStore
}

func NewPipeline(c *chunker.Chunker, l *labeler.Labeler, embedder vectorstore.Embedder, index vectorstore.Index, labels LabelStore) *Pipeline {
	return &Pipeline{chunker: c, labeler: l, embedder: embedder, index: index, labels: labels}
}

// Result reports what ingestion actually committed. ChunksUpserted reflects
// records live in the index even when ingestion failed partway.
type Result struct {
	DocumentID      string
	ContentType     models.ContentType
	ChunkCount      int
	ChunksUpserted  int
	LabelsPersisted int
}

// IngestFile runs the full ingestion path for one source file.
func (p *Pipeline) IngestFile(ctx context.Context, owner, filePath string) (*Result, error) {
	segments, err := ExtractSegments(filePath)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, filePath)
	}

	documentID, err := helper.NewDocumentID()
	if err != nil {
		return nil, err
	}

	contentType := inferFromSegments(filePath, segments)
	return p.IngestSegments(ctx, owner, documentID, filepath.Base(filePath), contentType, segments)
}

// IngestSegments chunks, labels, embeds, and upserts extracted segments under
// an existing document identity.
func (p *Pipeline) IngestSegments(ctx context.Context, owner, documentID, filename string, contentType models.ContentType, segments []Segment) (*Result, error) {
	chunks := p.chunkSegments(segments, filename, contentType)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, filename)
	}

	result := &Result{DocumentID: documentID, ContentType: contentType, ChunkCount: len(chunks)}

	labels := make([]models.Label, len(chunks))
	records := make([]vectorstore.Record, len(chunks))
	for i, chunk := range chunks {
		labels[i] = p.labeler.AutoLabel(chunk.Content)

		vector, err := vectorstore.EmbedWithRetry(ctx, p.embedder, chunk.Content)
		if err != nil {
			return result, fmt.Errorf("failed to embed chunk %d: %w", chunk.ChunkIndex, err)
		}
		records[i] = buildRecord(owner, documentID, chunk, labels[i], vector)
	}

	upserted, err := p.index.Upsert(ctx, records)
	result.ChunksUpserted = upserted
	if err != nil {
		return result, fmt.Errorf("failed to upsert document %s: %w", documentID, err)
	}

	if p.labels != nil {
		for i, chunk := range chunks {
			if err := p.labels.SaveAutoLabel(ctx, owner, documentID, chunk, labels[i]); err != nil {
				log.Warn().Err(err).
					Str("document_id", documentID).
					Int("chunk_index", chunk.ChunkIndex).
					Msg("Label persistence failed, continuing")
				continue
			}
			result.LabelsPersisted++
		}
	}

	return result, nil
}

// DeleteDocument removes the document's embedding records and labels. Both
// stores are keyed by chunk identity; there is no cross-store transaction, so
// the index goes first since it defines system-visible state.
func (p *Pipeline) DeleteDocument(ctx context.Context, owner, documentID string) (int, error) {
	removed, err := p.index.DeleteDocument(ctx, owner, documentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete embedding records: %w", err)
	}

	if p.labels != nil {
		if err := p.labels.DeleteDocument(ctx, owner, documentID); err != nil {
			log.Warn().Err(err).Str("document_id", documentID).Msg("Label deletion failed")
		}
	}
	return removed, nil
}

// chunkSegments windows each segment and renumbers chunk indices so they stay
// unique and order-significant across the whole document.
func (p *Pipeline) chunkSegments(segments []Segment, filename string, contentType models.ContentType) []models.Chunk {
	var chunks []models.Chunk
	next := 0
	for _, seg := range segments {
		for _, chunk := range p.chunker.Chunk(seg.Text, seg.PageNumber) {
			chunk.ChunkIndex = next
			chunk.Timestamp = seg.Timestamp
			chunk.SourceFilename = filename
			chunk.ContentType = contentType
			chunks = append(chunks, chunk)
			next++
		}
	}
	return chunks
}

func buildRecord(owner, documentID string, chunk models.Chunk, label models.Label, vector []float32) vectorstore.Record {
	metadata := map[string]string{
		vectorstore.MetaOwner:          owner,
		vectorstore.MetaDocument:       documentID,
		vectorstore.MetaChunkIndex:     strconv.Itoa(chunk.ChunkIndex),
		vectorstore.MetaContent:        helper.Truncate(chunk.Content, models.MetadataContentLimit),
		vectorstore.MetaSourceFilename: chunk.SourceFilename,
		vectorstore.MetaContentType:    string(chunk.ContentType),
		vectorstore.MetaRhetoricalRole: string(label.RhetoricalRole),
	}
	if chunk.PageNumber > 0 {
		metadata[vectorstore.MetaPageNumber] = strconv.Itoa(chunk.PageNumber)
	}
	if chunk.Timestamp != "" {
		metadata[vectorstore.MetaTimestamp] = chunk.Timestamp
	}

	return vectorstore.Record{
		ID:       helper.ChunkKey(owner, documentID, chunk.ChunkIndex),
		Vector:   vector,
		Metadata: metadata,
	}
}

func inferFromSegments(filePath string, segments []Segment) models.ContentType {
	if strings.EqualFold(filepath.Ext(filePath), ".srt") {
		return models.ContentVideoTranscript
	}

	var sample strings.Builder
	for _, seg := range segments {
		if sample.Len() >= sampleLimit {
			break
		}
		sample.WriteString(seg.Text)
		sample.WriteString("\n")
	}
	return InferContentType(sample.String())
}
