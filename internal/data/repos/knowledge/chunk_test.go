package knowledge

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/yungbote/pathforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pathforge-backend/internal/domain/knowledge"
	perrors "github.com/yungbote/pathforge-backend/internal/pkg/errors"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
)

func TestChunkRepoNearestOrdersAndFilters(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewChunkRepo(db, testutil.Logger(t))

	kb := testutil.SeedKnowledgeBase(t, ctx, db)
	other := testutil.SeedKnowledgeBase(t, ctx, db)
	text := testutil.SeedDocument(t, ctx, db, kb.ID, types.DocumentTypeText)
	video := testutil.SeedDocument(t, ctx, db, kb.ID, types.DocumentTypeVideo)
	foreign := testutil.SeedDocument(t, ctx, db, other.ID, types.DocumentTypeText)

	near := testutil.SeedChunk(t, ctx, db, text.ID, 0, "near", testutil.Vec(1, 0, 0))
	testutil.SeedChunk(t, ctx, db, text.ID, 1, "far", testutil.Vec(0, 1, 0))
	vid := testutil.SeedChunk(t, ctx, db, video.ID, 0, "video", testutil.Vec(0.9, 0.1, 0))
	testutil.SeedChunk(t, ctx, db, foreign.ID, 0, "foreign", testutil.Vec(1, 0, 0))

	got, err := repo.Nearest(dbctx.Context{Ctx: ctx}, kb.ID, testutil.Vec(1, 0, 0), 2, "")
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].ID != near.ID || got[1].ID != vid.ID {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Distance > got[1].Distance {
		t.Fatalf("distances not ascending: %v %v", got[0].Distance, got[1].Distance)
	}

	videos, err := repo.Nearest(dbctx.Context{Ctx: ctx}, kb.ID, testutil.Vec(1, 0, 0), 5, types.DocumentTypeVideo)
	if err != nil {
		t.Fatalf("Nearest(video): %v", err)
	}
	if len(videos) != 1 || videos[0].DocumentType != types.DocumentTypeVideo {
		t.Fatalf("type filter leaked: %+v", videos)
	}
}

func TestChunkRepoCreateAndList(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewChunkRepo(db, testutil.Logger(t))
	kb := testutil.SeedKnowledgeBase(t, ctx, db)
	doc := testutil.SeedDocument(t, ctx, db, kb.ID, types.DocumentTypeText)

	chunks := []*types.Chunk{
		{DocumentID: doc.ID, Index: 1, Content: "b", Embedding: pgvector.NewVector(testutil.Vec(0, 1))},
		{DocumentID: doc.ID, Index: 0, Content: "a", Embedding: pgvector.NewVector(testutil.Vec(1))},
	}
	if _, err := repo.Create(dbctx.Context{Ctx: ctx}, chunks); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.GetByDocumentID(dbctx.Context{Ctx: ctx}, doc.ID)
	if err != nil {
		t.Fatalf("GetByDocumentID: %v", err)
	}
	if len(got) != 2 || got[0].Content != "a" || got[1].Content != "b" {
		t.Fatalf("unexpected chunks: %+v", got)
	}
}

func TestKnowledgeBaseDeleteCascades(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	kbRepo := NewKnowledgeBaseRepo(db, log)
	chunkRepo := NewChunkRepo(db, log)

	kb := testutil.SeedKnowledgeBase(t, ctx, db)
	doc := testutil.SeedDocument(t, ctx, db, kb.ID, types.DocumentTypeText)
	testutil.SeedChunk(t, ctx, db, doc.ID, 0, "x", testutil.Vec(1, 0))

	if err := kbRepo.Delete(dbctx.Context{Ctx: ctx}, kb.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	left, err := chunkRepo.GetByDocumentID(dbctx.Context{Ctx: ctx}, doc.ID)
	if err != nil {
		t.Fatalf("GetByDocumentID: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("chunks survived delete: %d", len(left))
	}
	if _, err := kbRepo.GetByID(dbctx.Context{Ctx: ctx}, kb.ID); !errors.Is(err, perrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := kbRepo.Delete(dbctx.Context{Ctx: ctx}, uuid.New()); !errors.Is(err, perrors.ErrNotFound) {
		t.Fatalf("deleting unknown kb: expected ErrNotFound, got %v", err)
	}
}

func TestCosineDistance(t *testing.T) {
	if d := CosineDistance([]float32{1, 0}, []float32{1, 0}); math.Abs(d) > 1e-9 {
		t.Fatalf("identical vectors: %v", d)
	}
	if d := CosineDistance([]float32{1, 0}, []float32{0, 1}); math.Abs(d-1) > 1e-9 {
		t.Fatalf("orthogonal vectors: %v", d)
	}
	if d := CosineDistance([]float32{1, 0}, []float32{-1, 0}); math.Abs(d-2) > 1e-9 {
		t.Fatalf("opposite vectors: %v", d)
	}
	if d := CosineDistance([]float32{0, 0}, []float32{1, 0}); d != 1 {
		t.Fatalf("zero vector: %v", d)
	}
}
