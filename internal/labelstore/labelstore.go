// Package labelstore persists chunk labels in Postgres, keyed by the
// composite (owner, document, chunk_index) identity. Persistence is
// best-effort for auto-labels: callers log failures and continue, since
// auto-labels can be regenerated while embeddings define system-visible
// state.
package labelstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"cognitive-rag/internal/config"
	"cognitive-rag/internal/helper"
	"cognitive-rag/internal/models"
)

// ErrHumanVerified is returned when an auto-label write targets a row a
// person has verified. Verified labels are never silently overwritten.
var ErrHumanVerified = errors.New("label is human-verified, not overwriting")

// ChunkLabel is the stored label row, 1:1 with a chunk.
type ChunkLabel struct {
	bun.BaseModel `bun:"table:chunk_labels,alias:cl"`

	ID              string    `bun:"id,pk"`
	ChunkID         string    `bun:"chunk_id,notnull,unique"`
	OwnerID         string    `bun:"owner_id,notnull"`
	DocumentID      string    `bun:"document_id,notnull"`
	ChunkIndex      int       `bun:"chunk_index,notnull"`
	ChunkText       string    `bun:"chunk_text,notnull"`
	TokenCount      int       `bun:"token_count,notnull"`
	SourceType      string    `bun:"source_type,notnull"`
	PageNumber      int       `bun:"page_number"`
	Timestamp       string    `bun:"timestamp"`
	RhetoricalRole  string    `bun:"rhetorical_role,notnull"`
	TopicTags       string    `bun:"topic_tags"` // JSON array, empty when absent
	ConfidenceLabel string    `bun:"confidence_label,notnull"`
	CoverageScore   int       `bun:"coverage_score,notnull"`
	IsAutoLabeled   bool      `bun:"is_auto_labeled,notnull"`
	HumanVerified   bool      `bun:"human_verified,notnull"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.URL + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Password))), nil
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func InitDB(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*ChunkLabel)(nil)).IfNotExists().Exec(ctx)
	return err
}

// NewChunkLabel builds a row from a chunk and its label.
func NewChunkLabel(owner, document string, chunk models.Chunk, label models.Label) (*ChunkLabel, error) {
	id, err := helper.NewDocumentID()
	if err != nil {
		return nil, err
	}

	tags := ""
	if label.TopicTags != nil {
		encoded, err := json.Marshal(label.TopicTags)
		if err != nil {
			return nil, fmt.Errorf("failed to encode topic tags: %w", err)
		}
		tags = string(encoded)
	}

	return &ChunkLabel{
		ID:              id,
		ChunkID:         helper.ChunkKey(owner, document, chunk.ChunkIndex),
		OwnerID:         owner,
		DocumentID:      document,
		ChunkIndex:      chunk.ChunkIndex,
		ChunkText:       chunk.Content,
		TokenCount:      label.TokenCount,
		SourceType:      string(chunk.ContentType),
		PageNumber:      chunk.PageNumber,
		Timestamp:       chunk.Timestamp,
		RhetoricalRole:  string(label.RhetoricalRole),
		TopicTags:       tags,
		ConfidenceLabel: string(label.ConfidenceLabel),
		CoverageScore:   label.CoverageScore,
		IsAutoLabeled:   label.IsAutoLabeled,
		HumanVerified:   label.HumanVerified,
	}, nil
}

// SaveAutoLabel inserts or updates the auto-generated label for a chunk. An
// existing human-verified row is left untouched and reported via
// ErrHumanVerified.
func SaveAutoLabel(ctx context.Context, db *bun.DB, label *ChunkLabel) error {
	existing, err := GetLabel(ctx, db, label.ChunkID)
	if err != nil {
		return err
	}

	if existing == nil {
		_, err = db.NewInsert().Model(label).Exec(ctx)
		return err
	}
	if existing.HumanVerified {
		return ErrHumanVerified
	}

	existing.RhetoricalRole = label.RhetoricalRole
	existing.TopicTags = label.TopicTags
	existing.TokenCount = label.TokenCount
	existing.ConfidenceLabel = label.ConfidenceLabel
	existing.CoverageScore = label.CoverageScore
	existing.IsAutoLabeled = true
	existing.UpdatedAt = time.Now()
	_, err = db.NewUpdate().Model(existing).WherePK().Exec(ctx)
	return err
}

// SaveCorrection applies a manual correction. Corrections always win: the row
// becomes human-verified and loses its auto-labeled flag.
func SaveCorrection(ctx context.Context, db *bun.DB, chunkID string, label models.Label) error {
	existing, err := GetLabel(ctx, db, chunkID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("no label found for chunk %s", chunkID)
	}

	tags := ""
	if label.TopicTags != nil {
		encoded, err := json.Marshal(label.TopicTags)
		if err != nil {
			return fmt.Errorf("failed to encode topic tags: %w", err)
		}
		tags = string(encoded)
	}

	existing.RhetoricalRole = string(label.RhetoricalRole)
	existing.TopicTags = tags
	existing.ConfidenceLabel = string(label.ConfidenceLabel)
	existing.CoverageScore = label.CoverageScore
	existing.IsAutoLabeled = false
	existing.HumanVerified = true
	existing.UpdatedAt = time.Now()
	_, err = db.NewUpdate().Model(existing).WherePK().Exec(ctx)
	return err
}

func GetLabel(ctx context.Context, db *bun.DB, chunkID string) (*ChunkLabel, error) {
	label := new(ChunkLabel)
	err := db.NewSelect().Model(label).Where("chunk_id = ?", chunkID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return label, nil
}

// ListUnverified returns document chunks awaiting human review, ordered by
// chunk index, with the total unverified count for pagination.
func ListUnverified(ctx context.Context, db *bun.DB, documentID string, limit, offset int) ([]ChunkLabel, int, error) {
	var labels []ChunkLabel
	query := db.NewSelect().
		Model(&labels).
		Where("document_id = ?", documentID).
		Where("human_verified = ?", false)

	total, err := query.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	err = query.Order("chunk_index ASC").Limit(limit).Offset(offset).Scan(ctx)
	if err != nil {
		return nil, 0, err
	}
	return labels, total, nil
}

// DeleteDocumentLabels removes every label of (owner, document). Labels never
// outlive their chunks.
func DeleteDocumentLabels(ctx context.Context, db *bun.DB, owner, document string) error {
	_, err := db.NewDelete().
		Model((*ChunkLabel)(nil)).
		Where("owner_id = ?", owner).
		Where("document_id = ?", document).
		Exec(ctx)
	return err
}

// Store adapts the package to the ingest pipeline's persistence callback.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) SaveAutoLabel(ctx context.Context, owner, document string, chunk models.Chunk, label models.Label) error {
	row, err := NewChunkLabel(owner, document, chunk, label)
	if err != nil {
		return err
	}
	return SaveAutoLabel(ctx, s.db, row)
}

func (s *Store) DeleteDocument(ctx context.Context, owner, document string) error {
	return DeleteDocumentLabels(ctx, s.db, owner, document)
}

// TopicTagList decodes the stored tag JSON; nil when no tags were assigned.
func (l *ChunkLabel) TopicTagList() []string {
	if l.TopicTags == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(l.TopicTags), &tags); err != nil {
		return nil
	}
	return tags
}
