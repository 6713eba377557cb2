package agents

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/pathforge-backend/internal/data/repos"
	"github.com/yungbote/pathforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pathforge-backend/internal/domain/agents"
	perrors "github.com/yungbote/pathforge-backend/internal/pkg/errors"
)

func TestBuiltInCatalogCoversGeneration(t *testing.T) {
	personas, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	byKey := map[string]Persona{}
	for _, p := range personas {
		byKey[p.Key] = p
	}
	for _, key := range []string{types.KeyPlanOutline, types.KeyModuleOutline, types.KeyTextContent} {
		if _, ok := byKey[key]; !ok {
			t.Fatalf("persona %s missing", key)
		}
	}
	if byKey[types.KeyTextContent].OutputFormat != nil {
		t.Fatalf("text persona should reply in free text")
	}
	schema := byKey[types.KeyModuleOutline].OutputFormat.InputSchema
	if schema["type"] != "object" {
		t.Fatalf("module schema = %v", schema)
	}
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := Parse([]byte("personas:\n  - key: a\n  - key: a\n"))
	if err == nil {
		t.Fatalf("expected duplicate key error")
	}
	if _, err := Parse([]byte("personas:\n  - label: nameless\n")); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestSeedIsIdempotentAndResolvable(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	c := NewCatalog(log, repos.New(db, log).Agent)

	personas, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := c.Seed(ctx, personas); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	override := filepath.Join(t.TempDir(), "personas.yaml")
	if err := os.WriteFile(override, []byte("personas:\n  - key: text_content_creator\n    system_prompt: be brief\n"), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}
	updated, err := Load(override)
	if err != nil {
		t.Fatalf("Load override: %v", err)
	}
	if err := c.Seed(ctx, updated); err != nil {
		t.Fatalf("Seed again: %v", err)
	}

	a, err := c.Resolve(ctx, types.KeyTextContent)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if a.SystemPrompt != "be brief" {
		t.Fatalf("system prompt not updated: %q", a.SystemPrompt)
	}
	module, err := c.Resolve(ctx, types.KeyModuleOutline)
	if err != nil {
		t.Fatalf("Resolve module persona: %v", err)
	}
	tool, err := module.Tool()
	if err != nil || tool == nil || tool.Name != "module_outline" {
		t.Fatalf("module tool = %+v %v", tool, err)
	}

	if _, err := c.Resolve(ctx, "nobody"); !errors.Is(err, perrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
