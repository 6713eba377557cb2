package knowledge

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentType string

const (
	DocumentTypeText  DocumentType = "text"
	DocumentTypeImage DocumentType = "image"
	DocumentTypeVideo DocumentType = "video"
)

func ParseDocumentType(s string) (DocumentType, error) {
	switch t := DocumentType(strings.ToLower(strings.TrimSpace(s))); t {
	case DocumentTypeText, DocumentTypeImage, DocumentTypeVideo:
		return t, nil
	default:
		return "", fmt.Errorf("unknown document type %q", s)
	}
}

type Document struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	KnowledgeBaseID uuid.UUID      `gorm:"type:uuid;not null;index" json:"knowledge_base_id"`
	KnowledgeBase   *KnowledgeBase `gorm:"constraint:OnDelete:CASCADE;foreignKey:KnowledgeBaseID;references:ID" json:"-"`

	Name         string       `gorm:"column:name;not null;default:''" json:"name"`
	DocumentType DocumentType `gorm:"column:document_type;not null;index" json:"document_type"`
	Format       string       `gorm:"column:format;not null" json:"format"`
	// Payload is omitted from list queries.
	Payload []byte `gorm:"column:payload;type:bytea" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Document) TableName() string { return "document" }

func (d *Document) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
