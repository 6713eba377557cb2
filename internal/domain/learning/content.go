package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pathforge-backend/internal/domain/knowledge"
)

const DefaultTextContentTitle = "Generated Text Content"

type Content struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID uuid.UUID `gorm:"type:uuid;not null;index" json:"module_id"`
	Module   *Module   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"-"`

	ContentType ContentType   `gorm:"column:content_type;not null" json:"content_type"`
	Status      ContentStatus `gorm:"column:status;not null;index" json:"status"`
	Title       string        `gorm:"column:title;not null;default:''" json:"title"`
	Order       int           `gorm:"column:order;not null;index" json:"order"`
	TextContent *string       `gorm:"column:text_content;type:text" json:"text_content,omitempty"`

	SourceDocumentID *uuid.UUID          `gorm:"type:uuid;index" json:"source_document_id,omitempty"`
	SourceDocument   *knowledge.Document `gorm:"constraint:OnDelete:CASCADE;foreignKey:SourceDocumentID;references:ID" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Content) TableName() string { return "content" }

func (c *Content) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = ContentCreated
	}
	return nil
}
