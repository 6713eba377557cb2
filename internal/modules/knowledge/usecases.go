package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pathforge-backend/internal/data/repos"
	types "github.com/yungbote/pathforge-backend/internal/domain/knowledge"
	"github.com/yungbote/pathforge-backend/internal/ingestion/pipeline"
	perrors "github.com/yungbote/pathforge-backend/internal/pkg/errors"
	"github.com/yungbote/pathforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
	"github.com/yungbote/pathforge-backend/internal/retrieval"
)

type Ingester interface {
	Ingest(ctx context.Context, in pipeline.Input) (pipeline.Output, error)
}

type Retriever interface {
	Query(ctx context.Context, kbID uuid.UUID, text string, opts retrieval.Options) (*retrieval.Result, error)
}

type UsecasesDeps struct {
	DB  *gorm.DB
	Log *logger.Logger

	KnowledgeBases repos.KnowledgeBaseRepo
	Documents      repos.DocumentRepo

	Ingest    Ingester
	Retriever Retriever
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases { return Usecases{deps: deps} }

func (u Usecases) WithLog(log *logger.Logger) Usecases {
	u.deps.Log = log
	return u
}

func (u Usecases) log() *logger.Logger {
	return u.deps.Log.With("service", "KnowledgeService")
}

func (u Usecases) CreateKnowledgeBase(ctx context.Context, name string) (*types.KnowledgeBase, error) {
	kb := &types.KnowledgeBase{Name: strings.TrimSpace(name)}
	if err := u.deps.KnowledgeBases.Create(dbctx.New(ctxutil.Default(ctx)), kb); err != nil {
		return nil, fmt.Errorf("create knowledge base: %w", err)
	}
	u.log().Info("knowledge base created", "knowledge_base_id", kb.ID, "name", kb.Name)
	return kb, nil
}

func (u Usecases) ListKnowledgeBases(ctx context.Context) ([]*types.KnowledgeBase, error) {
	return u.deps.KnowledgeBases.List(dbctx.New(ctxutil.Default(ctx)))
}

func (u Usecases) GetKnowledgeBase(ctx context.Context, id uuid.UUID) (*types.KnowledgeBase, error) {
	return u.deps.KnowledgeBases.GetByID(dbctx.New(ctxutil.Default(ctx)), id)
}

// DeleteKnowledgeBase cascades to documents, chunks and any content that
// references one of the documents.
func (u Usecases) DeleteKnowledgeBase(ctx context.Context, id uuid.UUID) error {
	if err := u.deps.KnowledgeBases.Delete(dbctx.New(ctxutil.Default(ctx)), id); err != nil {
		return err
	}
	u.log().Info("knowledge base deleted", "knowledge_base_id", id)
	return nil
}

type AddDocumentInput struct {
	KnowledgeBaseID uuid.UUID
	Name            string
	// Type is one of text, image or video.
	Type   string
	Format string
	Data   []byte
}

// AddDocument ingests the payload. Nothing is stored when extraction or
// embedding fails.
func (u Usecases) AddDocument(ctx context.Context, in AddDocumentInput) (*types.Document, int, error) {
	docType, err := types.ParseDocumentType(in.Type)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", perrors.ErrInvalidArgument, err)
	}
	if len(in.Data) == 0 {
		return nil, 0, fmt.Errorf("%w: empty document", perrors.ErrInvalidArgument)
	}
	out, err := u.deps.Ingest.Ingest(ctxutil.Default(ctx), pipeline.Input{
		KnowledgeBaseID: in.KnowledgeBaseID,
		Name:            strings.TrimSpace(in.Name),
		Type:            docType,
		Format:          in.Format,
		Data:            in.Data,
	})
	if err != nil {
		return nil, 0, err
	}
	return out.Document, out.ChunkCount, nil
}

func (u Usecases) ListDocuments(ctx context.Context, kbID uuid.UUID) ([]*types.Document, error) {
	ctx = ctxutil.Default(ctx)
	if _, err := u.deps.KnowledgeBases.GetByID(dbctx.New(ctx), kbID); err != nil {
		return nil, err
	}
	return u.deps.Documents.ListByKnowledgeBase(dbctx.New(ctx), kbID)
}

func (u Usecases) GetDocument(ctx context.Context, kbID, docID uuid.UUID) (*types.Document, error) {
	return u.deps.Documents.GetByID(dbctx.New(ctxutil.Default(ctx)), kbID, docID)
}

func (u Usecases) RemoveDocument(ctx context.Context, kbID, docID uuid.UUID) error {
	if err := u.deps.Documents.Delete(dbctx.New(ctxutil.Default(ctx)), kbID, docID); err != nil {
		return err
	}
	u.log().Info("document removed", "knowledge_base_id", kbID, "document_id", docID)
	return nil
}

type RetrieveInput struct {
	KnowledgeBaseID uuid.UUID
	Query           string
	K               int
	Threshold       float64
	// PreferredType restricts hits to one document type when set.
	PreferredType string
}

// Retrieve returns nil when nothing clears the threshold.
func (u Usecases) Retrieve(ctx context.Context, in RetrieveInput) (*retrieval.Result, error) {
	ctx = ctxutil.Default(ctx)
	if strings.TrimSpace(in.Query) == "" {
		return nil, fmt.Errorf("%w: empty query", perrors.ErrInvalidArgument)
	}
	opts := retrieval.Options{K: in.K, Threshold: in.Threshold}
	if in.PreferredType != "" {
		t, err := types.ParseDocumentType(in.PreferredType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", perrors.ErrInvalidArgument, err)
		}
		opts.PreferredType = t
	}
	if _, err := u.deps.KnowledgeBases.GetByID(dbctx.New(ctx), in.KnowledgeBaseID); err != nil {
		return nil, err
	}
	return u.deps.Retriever.Query(ctx, in.KnowledgeBaseID, in.Query, opts)
}
