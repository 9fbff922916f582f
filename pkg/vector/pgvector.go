package vector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

var errLengthMismatch = errors.New("texts and vectors length mismatch")

const defaultEmbeddingDim = 768

type chunkRow struct {
	ID         int64           `gorm:"primaryKey;autoIncrement"`
	Collection string          `gorm:"index;not null"`
	Position   int             `gorm:"not null"`
	Content    string          `gorm:"type:text;not null"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)"`
}

func (chunkRow) TableName() string { return "sermon_chunks" }

// PgvectorIndex stores chunk embeddings in Postgres with the pgvector
// extension. Collections share one table, partitioned by the collection
// column.
type PgvectorIndex struct {
	db  *gorm.DB
	dim int
}

// NewPgvectorIndex opens the DB, ensures the extension, and migrates the
// chunk table to the configured embedding dimension.
func NewPgvectorIndex(dsn string, dim int) (*PgvectorIndex, error) {
	if dim <= 0 {
		dim = defaultEmbeddingDim
	}
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("create pgvector extension: %w", err)
	}
	if err := db.AutoMigrate(&chunkRow{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(fmt.Sprintf(
		"ALTER TABLE sermon_chunks ALTER COLUMN embedding TYPE vector(%d)", dim,
	)).Error; err != nil {
		return nil, fmt.Errorf("alter embedding type: %w", err)
	}
	return &PgvectorIndex{db: db, dim: dim}, nil
}

// Replace rebuilds a collection from the given texts and vectors.
func (p *PgvectorIndex) Replace(ctx context.Context, collection string, texts []string, vectors [][]float32) error {
	if len(texts) != len(vectors) {
		return errLengthMismatch
	}
	for _, vec := range vectors {
		if err := p.validateDim(vec); err != nil {
			return err
		}
	}
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&chunkRow{}, "collection = ?", collection).Error; err != nil {
			return err
		}
		if len(texts) == 0 {
			return nil
		}
		rows := make([]chunkRow, 0, len(texts))
		for i := range texts {
			rows = append(rows, chunkRow{
				Collection: collection,
				Position:   i,
				Content:    texts[i],
				Embedding:  pgvector.NewVector(vectors[i]),
			})
		}
		return tx.CreateInBatches(&rows, 200).Error
	})
}

// Search finds the most similar chunks by cosine distance.
func (p *PgvectorIndex) Search(ctx context.Context, collection string, vector []float32, limit int) ([]Hit, error) {
	if limit <= 0 {
		return nil, nil
	}
	if err := p.validateDim(vector); err != nil {
		return nil, err
	}
	vec := pgvector.NewVector(vector)
	var rows []chunkRow
	if err := p.db.WithContext(ctx).Model(&chunkRow{}).
		Where("collection = ?", collection).
		Order(clause.Expr{SQL: "embedding <=> ?", Vars: []any{vec}}).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	hits := make([]Hit, 0, len(rows))
	for _, row := range rows {
		stored := row.Embedding.Slice()
		hits = append(hits, Hit{
			Text:   row.Content,
			Vector: stored,
			Score:  CosineSimilarity(vector, stored),
		})
	}
	return hits, nil
}

// Drop removes a collection.
func (p *PgvectorIndex) Drop(ctx context.Context, collection string) error {
	return p.db.WithContext(ctx).Delete(&chunkRow{}, "collection = ?", collection).Error
}

func (p *PgvectorIndex) validateDim(vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("embedding vector is empty")
	}
	if len(vec) != p.dim {
		return fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vec), p.dim)
	}
	return nil
}
