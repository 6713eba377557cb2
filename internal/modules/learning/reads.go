package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/pathforge-backend/internal/domain/learning"
	"github.com/yungbote/pathforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
)

// ListModules returns the plan's modules in order, each with its derived
// progress.
func (s *Service) ListModules(ctx context.Context, userID, planID uuid.UUID) ([]types.ModuleSummary, error) {
	ctx = ctxutil.Default(ctx)
	dbc := dbctx.New(ctx)
	plan, err := s.deps.Plans.GetForUser(dbc, planID, userID)
	if err != nil {
		return nil, err
	}
	modules, err := s.deps.Modules.ListByPlan(dbc, plan.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(modules))
	for _, m := range modules {
		ids = append(ids, m.ID)
	}
	contents, err := s.deps.Contents.ListByModules(dbc, ids)
	if err != nil {
		return nil, err
	}
	byModule := make(map[uuid.UUID][]types.Content, len(modules))
	for _, c := range contents {
		byModule[c.ModuleID] = append(byModule[c.ModuleID], *c)
	}

	out := make([]types.ModuleSummary, 0, len(modules))
	for _, m := range modules {
		out = append(out, types.Summarize(*m, byModule[m.ID]))
	}
	return out, nil
}

func (s *Service) GetModule(ctx context.Context, userID, moduleID uuid.UUID) (*types.ModuleSummary, error) {
	ctx = ctxutil.Default(ctx)
	dbc := dbctx.New(ctx)
	m, err := s.deps.Modules.GetForUser(dbc, moduleID, userID)
	if err != nil {
		return nil, err
	}
	contents, err := s.deps.Contents.ListByModule(dbc, m.ID)
	if err != nil {
		return nil, err
	}
	flat := make([]types.Content, 0, len(contents))
	for _, c := range contents {
		flat = append(flat, *c)
	}
	summary := types.Summarize(*m, flat)
	return &summary, nil
}

func (s *Service) ListContents(ctx context.Context, userID, moduleID uuid.UUID) ([]*types.Content, error) {
	ctx = ctxutil.Default(ctx)
	m, err := s.deps.Modules.GetForUser(dbctx.New(ctx), moduleID, userID)
	if err != nil {
		return nil, err
	}
	return s.deps.Contents.ListByModule(dbctx.New(ctx), m.ID)
}

func (s *Service) GetContent(ctx context.Context, userID, contentID uuid.UUID) (*types.Content, error) {
	return s.deps.Contents.GetForUser(dbctx.New(ctxutil.Default(ctx)), contentID, userID)
}

// SetModuleCompletion toggles created and completed. Every content of the
// module takes the same flag in the same transaction.
func (s *Service) SetModuleCompletion(ctx context.Context, userID, moduleID uuid.UUID, completed bool) error {
	ctx = ctxutil.Default(ctx)
	m, err := s.deps.Modules.GetForUser(dbctx.New(ctx), moduleID, userID)
	if err != nil {
		return err
	}
	target, contentTarget := types.ModuleCreated, types.ContentCreated
	if completed {
		target, contentTarget = types.ModuleCompleted, types.ContentCompleted
	}
	if m.Status != target {
		if err := m.Status.Transition(target); err != nil {
			return err
		}
	}
	return s.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if m.Status != target {
			if err := s.deps.Modules.UpdateStatus(dbc, m.ID, target); err != nil {
				return err
			}
		}
		return s.deps.Contents.UpdateStatusByModule(dbc, m.ID, contentTarget)
	})
}

// SetContentCompletion never touches the parent module.
func (s *Service) SetContentCompletion(ctx context.Context, userID, contentID uuid.UUID, completed bool) error {
	ctx = ctxutil.Default(ctx)
	c, err := s.deps.Contents.GetForUser(dbctx.New(ctx), contentID, userID)
	if err != nil {
		return err
	}
	target := types.ContentCreated
	if completed {
		target = types.ContentCompleted
	}
	if c.Status == target {
		return nil
	}
	if err := c.Status.Transition(target); err != nil {
		return err
	}
	return s.deps.Contents.UpdateStatus(dbctx.New(ctx), c.ID, target)
}
