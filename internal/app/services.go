package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/pathforge-backend/internal/completion"
	"github.com/yungbote/pathforge-backend/internal/data/repos"
	"github.com/yungbote/pathforge-backend/internal/ingestion/chunker"
	"github.com/yungbote/pathforge-backend/internal/ingestion/embedding"
	"github.com/yungbote/pathforge-backend/internal/ingestion/extractor"
	"github.com/yungbote/pathforge-backend/internal/ingestion/pipeline"
	"github.com/yungbote/pathforge-backend/internal/modules/agents"
	"github.com/yungbote/pathforge-backend/internal/modules/chat"
	"github.com/yungbote/pathforge-backend/internal/modules/knowledge"
	"github.com/yungbote/pathforge-backend/internal/modules/learning"
	"github.com/yungbote/pathforge-backend/internal/observability"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
	"github.com/yungbote/pathforge-backend/internal/retrieval"
)

type Services struct {
	Extractor *extractor.Dispatcher
	Embedding *embedding.Client
	Ingest    *pipeline.Pipeline
	Retrieval *retrieval.Engine
	Gateway   *completion.Gateway
	Personas  *agents.Catalog

	Learning  *learning.Service
	Knowledge knowledge.Usecases
	Chat      chat.Usecases
}

func wireServices(ctx context.Context, db *gorm.DB, log *logger.Logger, cfg Config, r repos.Repos, c Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	personas := agents.NewCatalog(log, r.Agent)
	seed, err := agents.Load(cfg.AgentsFile)
	if err != nil {
		return Services{}, fmt.Errorf("load personas: %w", err)
	}
	if err := personas.Seed(ctx, seed); err != nil {
		return Services{}, fmt.Errorf("seed personas: %w", err)
	}

	extract := extractor.New(log, extractor.Deps{
		Vision:      c.OpenAI,
		Transcriber: c.Speech,
		Tools:       c.Media,
		Language:    cfg.SpeechLanguage,
	})
	log.Info("extraction formats", "formats", extract.Formats())

	embed := embedding.New(log, c.OpenAI, cfg.OpenAI.EmbedDimensions).WithBatchSize(cfg.EmbedBatchSize)
	ingest := pipeline.New(pipeline.Deps{
		DB:             db,
		Log:            log,
		KnowledgeBases: r.KnowledgeBase,
		Documents:      r.Document,
		Chunks:         r.Chunk,
		Extract:        extract,
		Split:          chunker.New(cfg.ChunkSize, cfg.ChunkOverlap),
		Embed:          embed,
		Metrics:        metrics,
	})
	engine := retrieval.NewEngine(log, r.Chunk, embed, metrics)
	gateway := completion.NewGateway(db, log, r.Chat, r.Message, c.OpenAI, metrics)

	learningSvc, err := learning.New(ctx, learning.Deps{
		DB:        db,
		Log:       log,
		Users:     r.User,
		Plans:     r.Plan,
		Modules:   r.Module,
		Contents:  r.Content,
		Gateway:   gateway,
		Retriever: engine,
		Personas:  personas,
		Metrics:   metrics,
	}, cfg.Learning)
	if err != nil {
		return Services{}, fmt.Errorf("init learning service: %w", err)
	}

	return Services{
		Extractor: extract,
		Embedding: embed,
		Ingest:    ingest,
		Retrieval: engine,
		Gateway:   gateway,
		Personas:  personas,
		Learning:  learningSvc,
		Knowledge: knowledge.New(knowledge.UsecasesDeps{
			DB:             db,
			Log:            log,
			KnowledgeBases: r.KnowledgeBase,
			Documents:      r.Document,
			Ingest:         ingest,
			Retriever:      engine,
		}),
		Chat: chat.New(chat.UsecasesDeps{
			Log:      log.With("service", "ChatService"),
			Chats:    r.Chat,
			Messages: r.Message,
			Gateway:  gateway,
		}),
	}, nil
}
