package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	knowledgetypes "github.com/yungbote/pathforge-backend/internal/domain/knowledge"
	"github.com/yungbote/pathforge-backend/internal/modules/knowledge"
	perrors "github.com/yungbote/pathforge-backend/internal/pkg/errors"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

type fakeAdder struct {
	fail  map[string]bool
	added []knowledge.AddDocumentInput
}

func (f *fakeAdder) AddDocument(_ context.Context, in knowledge.AddDocumentInput) (*knowledgetypes.Document, int, error) {
	if f.fail[in.Name] {
		return nil, 0, perrors.UnsupportedFormat(in.Format)
	}
	f.added = append(f.added, in)
	return &knowledgetypes.Document{ID: uuid.New()}, 1, nil
}

func TestIngestDirCountsFailuresWithoutStopping(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.txt", "notes.xyz", "c.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	kbID := uuid.New()
	f := &fakeAdder{fail: map[string]bool{"b.pdf": true}}
	res, err := ingestDir(context.Background(), logger.NewNop(), f, kbID, dir)
	if err != nil {
		t.Fatalf("ingestDir: %v", err)
	}
	if res != (ingestResult{ok: 2, skipped: 1, failed: 1}) {
		t.Fatalf("unexpected result %+v", res)
	}
	got := fmt.Sprint(f.added[0].Name, f.added[0].Type, f.added[1].Name, f.added[1].Type)
	if got != "a.txttextc.mdtext" {
		t.Fatalf("unexpected documents %s", got)
	}
	if f.added[0].KnowledgeBaseID != kbID {
		t.Fatalf("wrong knowledge base")
	}
}

func TestIngestDirMissingDir(t *testing.T) {
	_, err := ingestDir(context.Background(), logger.NewNop(), &fakeAdder{}, uuid.New(), filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatalf("expected error for missing dir")
	}
}
