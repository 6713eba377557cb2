package agents

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Stable persona keys.
const (
	KeyPlanOutline   = "plan_outline_creator"
	KeyModuleOutline = "module_outline_creator"
	KeyTextContent   = "text_content_creator"
)

// Agent is a persona: a system prompt plus an optional output tool.
type Agent struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Key          string         `gorm:"column:key;not null;uniqueIndex" json:"key"`
	Label        string         `gorm:"column:label;not null;default:''" json:"label"`
	SystemPrompt string         `gorm:"column:system_prompt;type:text;not null;default:''" json:"system_prompt"`
	OutputFormat datatypes.JSON `gorm:"column:output_format;type:jsonb" json:"output_format,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Agent) TableName() string { return "agent" }

func (a *Agent) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ToolSpec is the named structured-output schema a persona may demand.
type ToolSpec struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	InputSchema map[string]any `json:"input_schema" yaml:"input_schema"`
}

// Tool decodes OutputFormat; nil means the persona replies in free text.
func (a *Agent) Tool() (*ToolSpec, error) {
	if a == nil || len(a.OutputFormat) == 0 || string(a.OutputFormat) == "null" {
		return nil, nil
	}
	var spec ToolSpec
	if err := json.Unmarshal(a.OutputFormat, &spec); err != nil {
		return nil, fmt.Errorf("agent %s output format: %w", a.Key, err)
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("agent %s output format has no tool name", a.Key)
	}
	return &spec, nil
}
