package knowledge

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type KnowledgeBase struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"column:name;not null;default:''" json:"name"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (KnowledgeBase) TableName() string { return "knowledge_base" }

func (kb *KnowledgeBase) BeforeCreate(*gorm.DB) error {
	if kb.ID == uuid.Nil {
		kb.ID = uuid.New()
	}
	return nil
}
