package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/pathforge-backend/internal/domain/learning"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

type ModuleRepo interface {
	Create(dbc dbctx.Context, modules []*types.Module) ([]*types.Module, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Module, error)
	// GetForUser resolves ownership through the parent plan.
	GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Module, error)
	ListByPlan(dbc dbctx.Context, planID uuid.UUID) ([]*types.Module, error)
	UpdateStatus(dbc dbctx.Context, id uuid.UUID, status types.ModuleStatus) error
	// DeleteByPlan removes every module of a plan together with its contents.
	DeleteByPlan(dbc dbctx.Context, planID uuid.UUID) error
}

type moduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return &moduleRepo{db: db, log: baseLog.With("repo", "ModuleRepo")}
}

func (r *moduleRepo) Create(dbc dbctx.Context, modules []*types.Module) ([]*types.Module, error) {
	if len(modules) == 0 {
		return []*types.Module{}, nil
	}
	if err := dbc.DB(r.db).Create(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *moduleRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Module, error) {
	var m types.Module
	if err := dbc.DB(r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err, "module")
	}
	return &m, nil
}

func (r *moduleRepo) GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Module, error) {
	var m types.Module
	if err := dbc.DB(r.db).
		Joins("JOIN plan ON plan.id = module.plan_id").
		Where("module.id = ? AND plan.user_id = ?", id, userID).
		First(&m).Error; err != nil {
		return nil, notFound(err, "module")
	}
	return &m, nil
}

func (r *moduleRepo) ListByPlan(dbc dbctx.Context, planID uuid.UUID) ([]*types.Module, error) {
	var out []*types.Module
	if err := dbc.DB(r.db).
		Where("plan_id = ?", planID).
		Order(`"order" ASC, created_at ASC`).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *moduleRepo) UpdateStatus(dbc dbctx.Context, id uuid.UUID, status types.ModuleStatus) error {
	return dbc.DB(r.db).Model(&types.Module{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now().UTC()}).Error
}

func (r *moduleRepo) DeleteByPlan(dbc dbctx.Context, planID uuid.UUID) error {
	return deleteModulesOfPlan(dbc.DB(r.db), planID)
}

func deleteModulesOfPlan(tx *gorm.DB, planID uuid.UUID) error {
	modules := tx.Model(&types.Module{}).Select("id").Where("plan_id = ?", planID)
	if err := tx.Where("module_id IN (?)", modules).Delete(&types.Content{}).Error; err != nil {
		return err
	}
	return tx.Where("plan_id = ?", planID).Delete(&types.Module{}).Error
}
