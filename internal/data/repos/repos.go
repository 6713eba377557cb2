package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/pathforge-backend/internal/data/repos/agents"
	"github.com/yungbote/pathforge-backend/internal/data/repos/chat"
	"github.com/yungbote/pathforge-backend/internal/data/repos/knowledge"
	"github.com/yungbote/pathforge-backend/internal/data/repos/learning"
	"github.com/yungbote/pathforge-backend/internal/data/repos/users"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

type UserRepo = users.UserRepo
type AgentRepo = agents.AgentRepo

type ChatRepo = chat.ChatRepo
type MessageRepo = chat.MessageRepo

type KnowledgeBaseRepo = knowledge.KnowledgeBaseRepo
type DocumentRepo = knowledge.DocumentRepo
type ChunkRepo = knowledge.ChunkRepo

type PlanRepo = learning.PlanRepo
type ModuleRepo = learning.ModuleRepo
type ContentRepo = learning.ContentRepo

type Repos struct {
	User  UserRepo
	Agent AgentRepo

	Chat    ChatRepo
	Message MessageRepo

	KnowledgeBase KnowledgeBaseRepo
	Document      DocumentRepo
	Chunk         ChunkRepo

	Plan    PlanRepo
	Module  ModuleRepo
	Content ContentRepo
}

func New(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		User:          users.NewUserRepo(db, log),
		Agent:         agents.NewAgentRepo(db, log),
		Chat:          chat.NewChatRepo(db, log),
		Message:       chat.NewMessageRepo(db, log),
		KnowledgeBase: knowledge.NewKnowledgeBaseRepo(db, log),
		Document:      knowledge.NewDocumentRepo(db, log),
		Chunk:         knowledge.NewChunkRepo(db, log),
		Plan:          learning.NewPlanRepo(db, log),
		Module:        learning.NewModuleRepo(db, log),
		Content:       learning.NewContentRepo(db, log),
	}
}
