package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/pathforge-backend/internal/data/repos"
	types "github.com/yungbote/pathforge-backend/internal/domain/knowledge"
	"github.com/yungbote/pathforge-backend/internal/ingestion/extractor"
	"github.com/yungbote/pathforge-backend/internal/observability"
	perrors "github.com/yungbote/pathforge-backend/internal/pkg/errors"
	"github.com/yungbote/pathforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

type Extractor interface {
	Supports(format string) bool
	Extract(ctx context.Context, data []byte, format string) (string, error)
}

type Splitter interface {
	Split(text string) []string
}

type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

type Deps struct {
	DB             *gorm.DB
	Log            *logger.Logger
	KnowledgeBases repos.KnowledgeBaseRepo
	Documents      repos.DocumentRepo
	Chunks         repos.ChunkRepo
	Extract        Extractor
	Split          Splitter
	Embed          Embedder
	Metrics        *observability.Metrics
}

type Input struct {
	KnowledgeBaseID uuid.UUID
	Name            string
	Type            types.DocumentType
	Format          string
	Data            []byte
}

type Output struct {
	Document   *types.Document
	ChunkCount int
}

// Pipeline turns raw bytes into a Document with embedded Chunks. Nothing is
// written unless every step succeeds, and then the Document and its Chunks
// land in one transaction.
type Pipeline struct {
	deps Deps
	log  *logger.Logger
}

func New(deps Deps) *Pipeline {
	return &Pipeline{deps: deps, log: deps.Log.With("service", "IngestionPipeline")}
}

func (p *Pipeline) Ingest(ctx context.Context, in Input) (out Output, err error) {
	ctx = ctxutil.Default(ctx)
	ctx, span := observability.StartSpan(ctx, "ingest.document",
		attribute.String("knowledge_base_id", in.KnowledgeBaseID.String()),
		attribute.String("format", in.Format),
		attribute.String("document_type", string(in.Type)),
	)
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		p.deps.Metrics.ObserveIngest(string(in.Type), status, out.ChunkCount)
		observability.EndSpan(span, err)
	}()

	in.Format = extractor.NormalizeFormat(in.Format)
	if _, err := types.ParseDocumentType(string(in.Type)); err != nil {
		return out, fmt.Errorf("%w: %v", perrors.ErrInvalidArgument, err)
	}
	if !p.deps.Extract.Supports(in.Format) {
		return out, perrors.UnsupportedFormat(in.Format)
	}
	if _, err := p.deps.KnowledgeBases.GetByID(dbctx.New(ctx), in.KnowledgeBaseID); err != nil {
		return out, err
	}

	text, err := p.deps.Extract.Extract(ctx, in.Data, in.Format)
	if err != nil {
		return out, fmt.Errorf("extract %s: %w", in.Format, err)
	}
	pieces := p.deps.Split.Split(text)

	var vectors [][]float32
	if len(pieces) > 0 {
		vectors, err = p.deps.Embed.EmbedDocuments(ctx, pieces)
		if err != nil {
			return out, fmt.Errorf("embed chunks: %w", err)
		}
	}

	doc := &types.Document{
		KnowledgeBaseID: in.KnowledgeBaseID,
		Name:            in.Name,
		DocumentType:    in.Type,
		Format:          in.Format,
		Payload:         in.Data,
	}
	chunks := make([]*types.Chunk, len(pieces))
	err = p.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := p.deps.Documents.Create(dbc, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		for i, piece := range pieces {
			chunks[i] = &types.Chunk{
				DocumentID: doc.ID,
				Index:      i,
				Content:    piece,
				Embedding:  pgvector.NewVector(vectors[i]),
			}
		}
		if _, err := p.deps.Chunks.Create(dbc, chunks); err != nil {
			return fmt.Errorf("create chunks: %w", err)
		}
		return nil
	})
	if err != nil {
		return out, err
	}

	p.log.Info("document ingested",
		"document_id", doc.ID,
		"knowledge_base_id", in.KnowledgeBaseID,
		"format", in.Format,
		"chunks", len(chunks),
	)
	return Output{Document: doc, ChunkCount: len(chunks)}, nil
}
