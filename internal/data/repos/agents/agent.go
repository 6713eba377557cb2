package agents

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/pathforge-backend/internal/domain/agents"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

type AgentRepo interface {
	// Upsert inserts the agent or overwrites the row holding the same key.
	Upsert(dbc dbctx.Context, agent *types.Agent) error
	GetByKey(dbc dbctx.Context, key string) (*types.Agent, error)
	List(dbc dbctx.Context) ([]*types.Agent, error)
}

type agentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAgentRepo(db *gorm.DB, baseLog *logger.Logger) AgentRepo {
	return &agentRepo{db: db, log: baseLog.With("repo", "AgentRepo")}
}

func (r *agentRepo) Upsert(dbc dbctx.Context, agent *types.Agent) error {
	agent.UpdatedAt = time.Now().UTC()
	return dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"label", "system_prompt", "output_format", "updated_at"}),
	}).Create(agent).Error
}

func (r *agentRepo) GetByKey(dbc dbctx.Context, key string) (*types.Agent, error) {
	var a types.Agent
	if err := dbc.DB(r.db).Where("key = ?", key).First(&a).Error; err != nil {
		return nil, notFound(err, "agent "+key)
	}
	return &a, nil
}

func (r *agentRepo) List(dbc dbctx.Context) ([]*types.Agent, error) {
	var out []*types.Agent
	if err := dbc.DB(r.db).Order("key ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
