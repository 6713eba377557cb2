package knowledge

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/pathforge-backend/internal/domain/knowledge"
	"github.com/yungbote/pathforge-backend/internal/domain/learning"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

type KnowledgeBaseRepo interface {
	Create(dbc dbctx.Context, kb *types.KnowledgeBase) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.KnowledgeBase, error)
	List(dbc dbctx.Context) ([]*types.KnowledgeBase, error)
	// Delete removes the knowledge base with its documents, their chunks and
	// any content referencing those documents.
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type knowledgeBaseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewKnowledgeBaseRepo(db *gorm.DB, baseLog *logger.Logger) KnowledgeBaseRepo {
	return &knowledgeBaseRepo{db: db, log: baseLog.With("repo", "KnowledgeBaseRepo")}
}

func (r *knowledgeBaseRepo) Create(dbc dbctx.Context, kb *types.KnowledgeBase) error {
	return dbc.DB(r.db).Create(kb).Error
}

func (r *knowledgeBaseRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.KnowledgeBase, error) {
	var kb types.KnowledgeBase
	if err := dbc.DB(r.db).Where("id = ?", id).First(&kb).Error; err != nil {
		return nil, notFound(err, "knowledge base")
	}
	return &kb, nil
}

func (r *knowledgeBaseRepo) List(dbc dbctx.Context) ([]*types.KnowledgeBase, error) {
	var out []*types.KnowledgeBase
	if err := dbc.DB(r.db).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *knowledgeBaseRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Transaction(func(tx *gorm.DB) error {
		docs := tx.Model(&types.Document{}).Select("id").Where("knowledge_base_id = ?", id)
		if err := deleteDocumentDependents(tx, docs); err != nil {
			return err
		}
		if err := tx.Where("knowledge_base_id = ?", id).Delete(&types.Document{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&types.KnowledgeBase{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound, "knowledge base")
		}
		return nil
	})
}

// deleteDocumentDependents removes chunks and contents for the documents
// selected by docIDs (a subquery or a slice of ids).
func deleteDocumentDependents(tx *gorm.DB, docIDs any) error {
	if err := tx.Where("document_id IN (?)", docIDs).Delete(&types.Chunk{}).Error; err != nil {
		return err
	}
	return tx.Where("source_document_id IN (?)", docIDs).Delete(&learning.Content{}).Error
}
