package learning

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/pathforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pathforge-backend/internal/domain/learning"
	perrors "github.com/yungbote/pathforge-backend/internal/pkg/errors"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
)

func TestOwnershipIsEnforced(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	plans := NewPlanRepo(db, log)
	modules := NewModuleRepo(db, log)
	contents := NewContentRepo(db, log)

	owner := testutil.SeedUser(t, ctx, db, `{}`)
	stranger := testutil.SeedUser(t, ctx, db, `{}`)
	plan := testutil.SeedPlan(t, ctx, db, owner.ID, types.PlanCreated, nil)
	mod := testutil.SeedModule(t, ctx, db, plan.ID, 0, types.ModuleCreated)
	content := testutil.SeedContent(t, ctx, db, mod.ID, 0, types.ContentCreated)

	dbc := dbctx.Context{Ctx: ctx}
	if _, err := plans.GetForUser(dbc, plan.ID, stranger.ID); !errors.Is(err, perrors.ErrNotFound) {
		t.Fatalf("plan: expected ErrNotFound, got %v", err)
	}
	if _, err := modules.GetForUser(dbc, mod.ID, stranger.ID); !errors.Is(err, perrors.ErrNotFound) {
		t.Fatalf("module: expected ErrNotFound, got %v", err)
	}
	if _, err := contents.GetForUser(dbc, content.ID, stranger.ID); !errors.Is(err, perrors.ErrNotFound) {
		t.Fatalf("content: expected ErrNotFound, got %v", err)
	}
	if got, err := contents.GetForUser(dbc, content.ID, owner.ID); err != nil || got.ID != content.ID {
		t.Fatalf("content owner lookup: %v", err)
	}
}

func TestModulesListedByOrder(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	modules := NewModuleRepo(db, testutil.Logger(t))

	user := testutil.SeedUser(t, ctx, db, `{}`)
	plan := testutil.SeedPlan(t, ctx, db, user.ID, types.PlanCreatingOutline, nil)
	testutil.SeedModule(t, ctx, db, plan.ID, 2, types.ModuleCreatingOutline)
	testutil.SeedModule(t, ctx, db, plan.ID, 0, types.ModuleCreatingOutline)
	testutil.SeedModule(t, ctx, db, plan.ID, 1, types.ModuleCreatingOutline)

	got, err := modules.ListByPlan(dbctx.Context{Ctx: ctx}, plan.ID)
	if err != nil {
		t.Fatalf("ListByPlan: %v", err)
	}
	for i, m := range got {
		if m.Order != i {
			t.Fatalf("position %d has order %d", i, m.Order)
		}
	}
}

func TestPlanDeleteCascades(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	plans := NewPlanRepo(db, log)
	contents := NewContentRepo(db, log)

	user := testutil.SeedUser(t, ctx, db, `{}`)
	plan := testutil.SeedPlan(t, ctx, db, user.ID, types.PlanCreated, nil)
	mod := testutil.SeedModule(t, ctx, db, plan.ID, 0, types.ModuleCreated)
	testutil.SeedContent(t, ctx, db, mod.ID, 0, types.ContentCreated)

	dbc := dbctx.Context{Ctx: ctx}
	if err := plans.Delete(dbc, plan.ID, user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	left, err := contents.ListByModule(dbc, mod.ID)
	if err != nil {
		t.Fatalf("ListByModule: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("contents survived plan delete: %d", len(left))
	}
}
