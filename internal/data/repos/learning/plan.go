package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/pathforge-backend/internal/domain/learning"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

type PlanRepo interface {
	Create(dbc dbctx.Context, plan *types.Plan) error
	// GetForUser returns ErrNotFound when the plan is missing or owned by someone else.
	GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Plan, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Plan, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id, userID uuid.UUID) error
}

type planRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanRepo(db *gorm.DB, baseLog *logger.Logger) PlanRepo {
	return &planRepo{db: db, log: baseLog.With("repo", "PlanRepo")}
}

func (r *planRepo) Create(dbc dbctx.Context, plan *types.Plan) error {
	return dbc.DB(r.db).Create(plan).Error
}

func (r *planRepo) GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Plan, error) {
	var plan types.Plan
	if err := dbc.DB(r.db).
		Where("id = ? AND user_id = ?", id, userID).
		First(&plan).Error; err != nil {
		return nil, notFound(err, "plan")
	}
	return &plan, nil
}

func (r *planRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Plan, error) {
	var out []*types.Plan
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *planRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).Model(&types.Plan{}).Where("id = ?", id).Updates(updates).Error
}

func (r *planRepo) Delete(dbc dbctx.Context, id, userID uuid.UUID) error {
	return dbc.DB(r.db).Transaction(func(tx *gorm.DB) error {
		var plan types.Plan
		if err := tx.Select("id").Where("id = ? AND user_id = ?", id, userID).First(&plan).Error; err != nil {
			return notFound(err, "plan")
		}
		if err := deleteModulesOfPlan(tx, plan.ID); err != nil {
			return err
		}
		return tx.Where("id = ?", plan.ID).Delete(&types.Plan{}).Error
	})
}
