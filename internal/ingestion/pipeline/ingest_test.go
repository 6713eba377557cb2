package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pathforge-backend/internal/data/repos"
	"github.com/yungbote/pathforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pathforge-backend/internal/domain/knowledge"
	"github.com/yungbote/pathforge-backend/internal/ingestion/chunker"
	"github.com/yungbote/pathforge-backend/internal/ingestion/extractor"
	perrors "github.com/yungbote/pathforge-backend/internal/pkg/errors"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = testutil.Vec(float32(i + 1))
	}
	return out, nil
}

func newPipeline(t *testing.T, emb Embedder) (*Pipeline, repos.Repos, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	log := logger.NewNop()
	r := repos.New(db, log)
	return New(Deps{
		DB:             db,
		Log:            log,
		KnowledgeBases: r.KnowledgeBase,
		Documents:      r.Document,
		Chunks:         r.Chunk,
		Extract:        extractor.New(log, extractor.Deps{}),
		Split:          chunker.New(1000, 200),
		Embed:          emb,
	}), r, db
}

func countDocuments(t *testing.T, db *gorm.DB, kbID uuid.UUID) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&types.Document{}).Where("knowledge_base_id = ?", kbID).Count(&n).Error; err != nil {
		t.Fatalf("count documents: %v", err)
	}
	return n
}

func countChunks(t *testing.T, db *gorm.DB, kbID uuid.UUID) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&types.Chunk{}).
		Joins("JOIN document ON document.id = chunk.document_id").
		Where("document.knowledge_base_id = ?", kbID).
		Count(&n).Error; err != nil {
		t.Fatalf("count chunks: %v", err)
	}
	return n
}

func threePageText() string {
	return strings.Join([]string{
		strings.Repeat("a", 624) + ".",
		strings.Repeat("b", 622) + ".",
		strings.Repeat("c", 622) + ".",
		strings.Repeat("d", 622) + ".",
	}, "\n\n")
}

func TestIngestWritesOrderedChunks(t *testing.T) {
	ctx := context.Background()
	p, r, db := newPipeline(t, &fakeEmbedder{})
	kb := testutil.SeedKnowledgeBase(t, ctx, db)

	out, err := p.Ingest(ctx, Input{
		KnowledgeBaseID: kb.ID,
		Name:            "notes.txt",
		Type:            types.DocumentTypeText,
		Format:          ".TXT",
		Data:            []byte(threePageText()),
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if out.ChunkCount != 4 || out.Document.Format != "txt" {
		t.Fatalf("unexpected output: %d chunks, format %q", out.ChunkCount, out.Document.Format)
	}

	chunks, err := r.Chunk.GetByDocumentID(dbctx.New(ctx), out.Document.ID)
	if err != nil {
		t.Fatalf("GetByDocumentID: %v", err)
	}
	if len(chunks) != 4 {
		t.Fatalf("expected 4 stored chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Fatalf("chunk %d has index %d", i, c.Index)
		}
		if utf8.RuneCountInString(c.Content) > 1000 {
			t.Fatalf("chunk %d too long", i)
		}
		if len(c.Embedding.Slice()) != types.EmbeddingDimensions {
			t.Fatalf("chunk %d embedding has %d dims", i, len(c.Embedding.Slice()))
		}
	}
}

func TestUnsupportedFormatWritesNothing(t *testing.T) {
	ctx := context.Background()
	emb := &fakeEmbedder{}
	p, _, db := newPipeline(t, emb)
	kb := testutil.SeedKnowledgeBase(t, ctx, db)

	_, err := p.Ingest(ctx, Input{KnowledgeBaseID: kb.ID, Type: types.DocumentTypeText, Format: "exe", Data: []byte("MZ")})
	if !errors.Is(err, perrors.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if n := countDocuments(t, db, kb.ID); n != 0 {
		t.Fatalf("documents written: %d", n)
	}
	if emb.calls != 0 {
		t.Fatalf("embedder called for unsupported format")
	}
}

func TestEmbeddingFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	p, _, db := newPipeline(t, &fakeEmbedder{err: perrors.ErrEmbeddingUnavailable})
	kb := testutil.SeedKnowledgeBase(t, ctx, db)

	_, err := p.Ingest(ctx, Input{KnowledgeBaseID: kb.ID, Type: types.DocumentTypeText, Format: "txt", Data: []byte("hello")})
	if !errors.Is(err, perrors.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
	if n := countDocuments(t, db, kb.ID); n != 0 {
		t.Fatalf("documents written: %d", n)
	}
	if n := countChunks(t, db, kb.ID); n != 0 {
		t.Fatalf("chunks written: %d", n)
	}
}

func TestEmptyTextMakesDocumentWithoutChunks(t *testing.T) {
	ctx := context.Background()
	emb := &fakeEmbedder{}
	p, _, db := newPipeline(t, emb)
	kb := testutil.SeedKnowledgeBase(t, ctx, db)

	out, err := p.Ingest(ctx, Input{KnowledgeBaseID: kb.ID, Type: types.DocumentTypeText, Format: "txt", Data: []byte("  \n ")})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if out.ChunkCount != 0 || emb.calls != 0 {
		t.Fatalf("expected no chunks and no embedding call")
	}
	if n := countDocuments(t, db, kb.ID); n != 1 {
		t.Fatalf("documents = %d", n)
	}
}

func TestSameBytesTwiceAreIndependent(t *testing.T) {
	ctx := context.Background()
	p, r, db := newPipeline(t, &fakeEmbedder{})
	kb := testutil.SeedKnowledgeBase(t, ctx, db)
	in := Input{KnowledgeBaseID: kb.ID, Type: types.DocumentTypeText, Format: "md", Data: []byte(threePageText())}

	first, err := p.Ingest(ctx, in)
	if err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	second, err := p.Ingest(ctx, in)
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if first.Document.ID == second.Document.ID {
		t.Fatalf("documents share an id")
	}
	a, _ := r.Chunk.GetByDocumentID(dbctx.New(ctx), first.Document.ID)
	b, _ := r.Chunk.GetByDocumentID(dbctx.New(ctx), second.Document.ID)
	if len(a) != 4 || len(b) != 4 || a[0].ID == b[0].ID {
		t.Fatalf("chunk sets are not independent")
	}
}

func TestMissingKnowledgeBaseIsNotFound(t *testing.T) {
	p, _, _ := newPipeline(t, &fakeEmbedder{})
	_, err := p.Ingest(context.Background(), Input{KnowledgeBaseID: uuid.New(), Type: types.DocumentTypeText, Format: "txt", Data: []byte("x")})
	if !errors.Is(err, perrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
