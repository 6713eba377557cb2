package knowledge

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	types "github.com/yungbote/pathforge-backend/internal/domain/knowledge"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

// ScoredChunk is a chunk with its cosine distance to a query vector.
type ScoredChunk struct {
	ID           uuid.UUID
	DocumentID   uuid.UUID
	DocumentType types.DocumentType
	Index        int
	Content      string
	Distance     float64
}

type ChunkRepo interface {
	Create(dbc dbctx.Context, chunks []*types.Chunk) ([]*types.Chunk, error)
	GetByDocumentID(dbc dbctx.Context, docID uuid.UUID) ([]*types.Chunk, error)
	// Nearest ranks the chunks of a knowledge base by ascending cosine
	// distance to query and returns at most k. docType filters on the owning
	// document's type when non-empty.
	Nearest(dbc dbctx.Context, kbID uuid.UUID, query []float32, k int, docType types.DocumentType) ([]ScoredChunk, error)
}

type chunkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChunkRepo(db *gorm.DB, baseLog *logger.Logger) ChunkRepo {
	return &chunkRepo{db: db, log: baseLog.With("repo", "ChunkRepo")}
}

func (r *chunkRepo) Create(dbc dbctx.Context, chunks []*types.Chunk) ([]*types.Chunk, error) {
	if len(chunks) == 0 {
		return []*types.Chunk{}, nil
	}
	// Content is large; keep batches small.
	const batchSize = 100
	if err := dbc.DB(r.db).CreateInBatches(chunks, batchSize).Error; err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *chunkRepo) GetByDocumentID(dbc dbctx.Context, docID uuid.UUID) ([]*types.Chunk, error) {
	var out []*types.Chunk
	if err := dbc.DB(r.db).
		Where("document_id = ?", docID).
		Order(`"index" ASC`).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type chunkRow struct {
	ID           uuid.UUID
	DocumentID   uuid.UUID
	DocumentType types.DocumentType
	Index        int
	Content      string
	Embedding    pgvector.Vector
	Distance     float64
}

func (r *chunkRepo) Nearest(dbc dbctx.Context, kbID uuid.UUID, query []float32, k int, docType types.DocumentType) ([]ScoredChunk, error) {
	if k <= 0 || len(query) == 0 {
		return []ScoredChunk{}, nil
	}
	transaction := dbc.DB(r.db)
	if transaction.Dialector.Name() == "postgres" {
		return r.nearestPgvector(transaction, kbID, query, k, docType)
	}
	return r.nearestInProcess(transaction, kbID, query, k, docType)
}

func (r *chunkRepo) nearestPgvector(tx *gorm.DB, kbID uuid.UUID, query []float32, k int, docType types.DocumentType) ([]ScoredChunk, error) {
	q := tx.Table("chunk").
		Select(`chunk.id, chunk.document_id, document.document_type, chunk."index", chunk.content, chunk.embedding <=> ? AS distance`, pgvector.NewVector(query)).
		Joins("JOIN document ON document.id = chunk.document_id").
		Where("document.knowledge_base_id = ?", kbID)
	if docType != "" {
		q = q.Where("document.document_type = ?", docType)
	}
	var rows []chunkRow
	if err := q.Order("distance ASC").Limit(k).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ScoredChunk, 0, len(rows))
	for _, row := range rows {
		out = append(out, scored(row, row.Distance))
	}
	return out, nil
}

// nearestInProcess serves drivers without a vector operator (sqlite).
func (r *chunkRepo) nearestInProcess(tx *gorm.DB, kbID uuid.UUID, query []float32, k int, docType types.DocumentType) ([]ScoredChunk, error) {
	q := tx.Table("chunk").
		Select(`chunk.id, chunk.document_id, document.document_type, chunk."index", chunk.content, chunk.embedding`).
		Joins("JOIN document ON document.id = chunk.document_id").
		Where("document.knowledge_base_id = ?", kbID)
	if docType != "" {
		q = q.Where("document.document_type = ?", docType)
	}
	var rows []chunkRow
	if err := q.Order(`chunk.document_id, chunk."index"`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ScoredChunk, 0, len(rows))
	for _, row := range rows {
		out = append(out, scored(row, CosineDistance(query, row.Embedding.Slice())))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func scored(row chunkRow, distance float64) ScoredChunk {
	return ScoredChunk{
		ID:           row.ID,
		DocumentID:   row.DocumentID,
		DocumentType: row.DocumentType,
		Index:        row.Index,
		Content:      row.Content,
		Distance:     distance,
	}
}

// CosineDistance is 1 - cosine similarity. Mismatched or zero vectors are
// maximally dissimilar among non-negative scores (distance 1).
func CosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
