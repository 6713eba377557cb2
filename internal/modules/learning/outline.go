package learning

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/pathforge-backend/internal/domain/chat"
	types "github.com/yungbote/pathforge-backend/internal/domain/learning"
)

type planOutline struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	ReadyToSave bool            `json:"ready_to_save"`
	Modules     []moduleOutline `json:"modules"`
}

type moduleOutline struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type moduleContents struct {
	Contents []contentDescriptor `json:"contents"`
}

// contentDescriptor is one unit a module outline asks for. Content carries
// the unit's objective; older outlines name it objective instead.
type contentDescriptor struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Objective string `json:"objective"`
}

func (d contentDescriptor) kind() types.ContentType {
	return types.ParseContentType(strings.ToLower(strings.TrimSpace(d.Type)))
}

func (d contentDescriptor) objective() string {
	if s := strings.TrimSpace(d.Content); s != "" {
		return s
	}
	return strings.TrimSpace(d.Objective)
}

func decodeStructured(c chat.Content, out any) error {
	s, ok := c.(chat.Structured)
	if !ok {
		return fmt.Errorf("expected structured reply, got %s", c.Kind())
	}
	raw, err := json.Marshal(map[string]any(s))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode structured reply: %w", err)
	}
	return nil
}
