package agents

import (
	"context"
	"testing"

	"github.com/yungbote/pathforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pathforge-backend/internal/domain/agents"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
)

func TestUpsertOverwritesByKey(t *testing.T) {
	db := testutil.DB(t)
	repo := NewAgentRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	if err := repo.Upsert(dbc, &types.Agent{Key: types.KeyTextContent, SystemPrompt: "v1"}); err != nil {
		t.Fatalf("Upsert v1: %v", err)
	}
	if err := repo.Upsert(dbc, &types.Agent{Key: types.KeyTextContent, SystemPrompt: "v2"}); err != nil {
		t.Fatalf("Upsert v2: %v", err)
	}
	all, err := repo.List(dbc)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one agent, got %d", len(all))
	}
	got, err := repo.GetByKey(dbc, types.KeyTextContent)
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if got.SystemPrompt != "v2" {
		t.Fatalf("system prompt not overwritten: %q", got.SystemPrompt)
	}
}
