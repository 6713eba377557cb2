package domain

import (
	"github.com/yungbote/pathforge-backend/internal/domain/agents"
	"github.com/yungbote/pathforge-backend/internal/domain/chat"
	"github.com/yungbote/pathforge-backend/internal/domain/knowledge"
	"github.com/yungbote/pathforge-backend/internal/domain/learning"
	"github.com/yungbote/pathforge-backend/internal/domain/users"
)

// Models lists every persisted type in dependency order for AutoMigrate.
func Models() []any {
	return []any{
		&users.User{},
		&agents.Agent{},
		&chat.Chat{},
		&chat.Message{},
		&knowledge.KnowledgeBase{},
		&knowledge.Document{},
		&knowledge.Chunk{},
		&learning.Plan{},
		&learning.Module{},
		&learning.Content{},
	}
}
