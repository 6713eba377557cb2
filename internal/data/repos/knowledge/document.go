package knowledge

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/pathforge-backend/internal/domain/knowledge"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

type DocumentRepo interface {
	Create(dbc dbctx.Context, doc *types.Document) error
	GetByID(dbc dbctx.Context, kbID, id uuid.UUID) (*types.Document, error)
	// ListByKnowledgeBase returns metadata only; Payload is not loaded.
	ListByKnowledgeBase(dbc dbctx.Context, kbID uuid.UUID) ([]*types.Document, error)
	Delete(dbc dbctx.Context, kbID, id uuid.UUID) error
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return &documentRepo{db: db, log: baseLog.With("repo", "DocumentRepo")}
}

func (r *documentRepo) Create(dbc dbctx.Context, doc *types.Document) error {
	return dbc.DB(r.db).Create(doc).Error
}

func (r *documentRepo) GetByID(dbc dbctx.Context, kbID, id uuid.UUID) (*types.Document, error) {
	var doc types.Document
	if err := dbc.DB(r.db).
		Where("id = ? AND knowledge_base_id = ?", id, kbID).
		First(&doc).Error; err != nil {
		return nil, notFound(err, "document")
	}
	return &doc, nil
}

func (r *documentRepo) ListByKnowledgeBase(dbc dbctx.Context, kbID uuid.UUID) ([]*types.Document, error) {
	var out []*types.Document
	if err := dbc.DB(r.db).
		Select("id", "knowledge_base_id", "name", "document_type", "format", "created_at", "updated_at").
		Where("knowledge_base_id = ?", kbID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *documentRepo) Delete(dbc dbctx.Context, kbID, id uuid.UUID) error {
	return dbc.DB(r.db).Transaction(func(tx *gorm.DB) error {
		var doc types.Document
		if err := tx.Select("id").Where("id = ? AND knowledge_base_id = ?", id, kbID).First(&doc).Error; err != nil {
			return notFound(err, "document")
		}
		if err := deleteDocumentDependents(tx, []uuid.UUID{doc.ID}); err != nil {
			return err
		}
		return tx.Where("id = ?", doc.ID).Delete(&types.Document{}).Error
	})
}
