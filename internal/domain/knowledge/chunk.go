package knowledge

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// EmbeddingDimensions is the fixed vector length of every Chunk.
const EmbeddingDimensions = 1536

// Chunk is immutable: it is inserted with its Document and deleted with it.
type Chunk struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_chunk_document_index,priority:1" json:"document_id"`
	Document   *Document `gorm:"constraint:OnDelete:CASCADE;foreignKey:DocumentID;references:ID" json:"-"`

	Index     int             `gorm:"column:index;not null;uniqueIndex:idx_chunk_document_index,priority:2" json:"index"`
	Content   string          `gorm:"column:content;type:text;not null" json:"content"`
	Embedding pgvector.Vector `gorm:"column:embedding;type:vector(1536)" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Chunk) TableName() string { return "chunk" }

func (c *Chunk) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
