package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pathforge-backend/internal/domain/chat"
	"github.com/yungbote/pathforge-backend/internal/domain/knowledge"
	"github.com/yungbote/pathforge-backend/internal/domain/users"
)

const DefaultPlanTitle = "New Plan"

type Plan struct {
	ID     uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *users.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`

	ChatID *uuid.UUID `gorm:"type:uuid;index" json:"chat_id,omitempty"`
	Chat   *chat.Chat `gorm:"constraint:OnDelete:SET NULL;foreignKey:ChatID;references:ID" json:"-"`

	KnowledgeBaseID *uuid.UUID               `gorm:"type:uuid;index" json:"knowledge_base_id,omitempty"`
	KnowledgeBase   *knowledge.KnowledgeBase `gorm:"constraint:OnDelete:SET NULL;foreignKey:KnowledgeBaseID;references:ID" json:"-"`

	Title       string     `gorm:"column:title;not null" json:"title"`
	Description string     `gorm:"column:description;type:text;not null;default:''" json:"description"`
	Status      PlanStatus `gorm:"column:status;not null;index" json:"status"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Plan) TableName() string { return "plan" }

func (p *Plan) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Title == "" {
		p.Title = DefaultPlanTitle
	}
	if p.Status == "" {
		p.Status = PlanCreatingOutline
	}
	return nil
}
