package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultModuleTitle = "Untitled Module"

type Module struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID uuid.UUID `gorm:"type:uuid;not null;index" json:"plan_id"`
	Plan   *Plan     `gorm:"constraint:OnDelete:CASCADE;foreignKey:PlanID;references:ID" json:"-"`

	Title       string       `gorm:"column:title;not null" json:"title"`
	Description string       `gorm:"column:description;type:text;not null;default:''" json:"description"`
	Order       int          `gorm:"column:order;not null;index" json:"order"`
	Status      ModuleStatus `gorm:"column:status;not null;index" json:"status"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Module) TableName() string { return "module" }

func (m *Module) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Title == "" {
		m.Title = DefaultModuleTitle
	}
	if m.Status == "" {
		m.Status = ModuleCreatingOutline
	}
	return nil
}

// ModuleSummary adds fields derived from a module's contents. They are never stored.
type ModuleSummary struct {
	Module
	ContentsCount int     `json:"contents_count"`
	Progress      float64 `json:"progress"`
}

func Summarize(m Module, contents []Content) ModuleSummary {
	s := ModuleSummary{Module: m, ContentsCount: len(contents)}
	if len(contents) == 0 {
		return s
	}
	done := 0
	for _, c := range contents {
		if c.Status == ContentCompleted {
			done++
		}
	}
	s.Progress = float64(done) / float64(len(contents))
	return s
}
