package learning

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pathforge-backend/internal/completion"
	"github.com/yungbote/pathforge-backend/internal/data/repos"
	"github.com/yungbote/pathforge-backend/internal/domain/agents"
	"github.com/yungbote/pathforge-backend/internal/observability"
	"github.com/yungbote/pathforge-backend/internal/platform/envutil"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
	"github.com/yungbote/pathforge-backend/internal/retrieval"
)

type Completer interface {
	Complete(ctx context.Context, turn completion.Turn) (*completion.Reply, error)
}

type Retriever interface {
	Query(ctx context.Context, kbID uuid.UUID, text string, opts retrieval.Options) (*retrieval.Result, error)
}

type Personas interface {
	Resolve(ctx context.Context, key string) (*agents.Agent, error)
}

type Config struct {
	ModulePoolWidth  int
	ContentPoolWidth int

	TextGroundingK         int
	TextGroundingThreshold float64
	// DefaultKnowledgeBaseID grounds plans that name no knowledge base.
	DefaultKnowledgeBaseID *uuid.UUID
}

func DefaultConfig() Config {
	return Config{
		ModulePoolWidth:        5,
		ContentPoolWidth:       10,
		TextGroundingK:         3,
		TextGroundingThreshold: 0.3,
	}
}

func ConfigFromEnv(log *logger.Logger) Config {
	cfg := DefaultConfig()
	cfg.ModulePoolWidth = envutil.Int("MODULE_POOL_WIDTH", cfg.ModulePoolWidth, log)
	cfg.ContentPoolWidth = envutil.Int("CONTENT_POOL_WIDTH", cfg.ContentPoolWidth, log)
	cfg.TextGroundingK = envutil.Int("TEXT_GROUNDING_K", cfg.TextGroundingK, log)
	cfg.TextGroundingThreshold = envutil.Float("TEXT_GROUNDING_THRESHOLD", cfg.TextGroundingThreshold, log)
	if raw := envutil.String("DEFAULT_KNOWLEDGE_BASE_ID", ""); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			log.Warn("ignoring malformed DEFAULT_KNOWLEDGE_BASE_ID", "value", raw, "error", err)
		} else {
			cfg.DefaultKnowledgeBaseID = &id
		}
	}
	return cfg
}

type Deps struct {
	DB  *gorm.DB
	Log *logger.Logger

	Users    repos.UserRepo
	Plans    repos.PlanRepo
	Modules  repos.ModuleRepo
	Contents repos.ContentRepo

	Gateway   Completer
	Retriever Retriever
	Personas  Personas
	Metrics   *observability.Metrics
}

// Service is the generation orchestrator for plans, modules and contents.
type Service struct {
	deps Deps
	cfg  Config
	log  *logger.Logger

	planPersona   *agents.Agent
	modulePersona *agents.Agent
	textPersona   *agents.Agent
}

// New resolves every persona generation needs and fails when one is missing.
func New(ctx context.Context, deps Deps, cfg Config) (*Service, error) {
	if deps.DB == nil || deps.Log == nil || deps.Users == nil || deps.Plans == nil || deps.Modules == nil ||
		deps.Contents == nil || deps.Gateway == nil || deps.Retriever == nil || deps.Personas == nil {
		return nil, fmt.Errorf("learning service: missing deps")
	}
	if cfg.ModulePoolWidth < 1 {
		cfg.ModulePoolWidth = DefaultConfig().ModulePoolWidth
	}
	if cfg.ContentPoolWidth < 1 {
		cfg.ContentPoolWidth = DefaultConfig().ContentPoolWidth
	}
	s := &Service{deps: deps, cfg: cfg, log: deps.Log.With("service", "LearningService")}

	for key, dst := range map[string]**agents.Agent{
		agents.KeyPlanOutline:   &s.planPersona,
		agents.KeyModuleOutline: &s.modulePersona,
		agents.KeyTextContent:   &s.textPersona,
	} {
		a, err := deps.Personas.Resolve(ctx, key)
		if err != nil {
			return nil, err
		}
		*dst = a
	}
	return s, nil
}

func (s *Service) Config() Config { return s.cfg }
