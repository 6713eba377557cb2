package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/pathforge-backend/internal/domain/learning"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

type ContentRepo interface {
	Create(dbc dbctx.Context, content *types.Content) error
	GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Content, error)
	ListByModule(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.Content, error)
	ListByModules(dbc dbctx.Context, moduleIDs []uuid.UUID) ([]*types.Content, error)
	UpdateStatus(dbc dbctx.Context, id uuid.UUID, status types.ContentStatus) error
	UpdateStatusByModule(dbc dbctx.Context, moduleID uuid.UUID, status types.ContentStatus) error
	DeleteByModule(dbc dbctx.Context, moduleID uuid.UUID) error
}

type contentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentRepo {
	return &contentRepo{db: db, log: baseLog.With("repo", "ContentRepo")}
}

func (r *contentRepo) Create(dbc dbctx.Context, content *types.Content) error {
	return dbc.DB(r.db).Create(content).Error
}

func (r *contentRepo) GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Content, error) {
	var c types.Content
	if err := dbc.DB(r.db).
		Joins("JOIN module ON module.id = content.module_id").
		Joins("JOIN plan ON plan.id = module.plan_id").
		Where("content.id = ? AND plan.user_id = ?", id, userID).
		First(&c).Error; err != nil {
		return nil, notFound(err, "content")
	}
	return &c, nil
}

func (r *contentRepo) ListByModule(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.Content, error) {
	return r.ListByModules(dbc, []uuid.UUID{moduleID})
}

func (r *contentRepo) ListByModules(dbc dbctx.Context, moduleIDs []uuid.UUID) ([]*types.Content, error) {
	var out []*types.Content
	if len(moduleIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("module_id IN ?", moduleIDs).
		Order(`module_id, "order" ASC, created_at ASC`).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentRepo) UpdateStatus(dbc dbctx.Context, id uuid.UUID, status types.ContentStatus) error {
	return dbc.DB(r.db).Model(&types.Content{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now().UTC()}).Error
}

func (r *contentRepo) UpdateStatusByModule(dbc dbctx.Context, moduleID uuid.UUID, status types.ContentStatus) error {
	return dbc.DB(r.db).Model(&types.Content{}).
		Where("module_id = ?", moduleID).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now().UTC()}).Error
}

func (r *contentRepo) DeleteByModule(dbc dbctx.Context, moduleID uuid.UUID) error {
	return dbc.DB(r.db).Where("module_id = ?", moduleID).Delete(&types.Content{}).Error
}
