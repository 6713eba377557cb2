package retrieval

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/pathforge-backend/internal/data/repos"
	knowledgerepo "github.com/yungbote/pathforge-backend/internal/data/repos/knowledge"
	types "github.com/yungbote/pathforge-backend/internal/domain/knowledge"
	"github.com/yungbote/pathforge-backend/internal/observability"
	"github.com/yungbote/pathforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

const DefaultK = 3

const (
	groundingStart = "[RAG CONTEXT START]\n"
	groundingEnd   = "\n[RAG CONTEXT END]"
	blockSep       = "\n\n---\n\n"
)

type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type Options struct {
	// K caps the rows ranked before the threshold applies. Zero means DefaultK.
	K         int
	Threshold float64
	// PreferredType restricts the search to documents of one type.
	PreferredType types.DocumentType
}

type Hit struct {
	ChunkID    uuid.UUID
	DocumentID uuid.UUID
	Index      int
	Content    string
	Similarity float64
}

type Result struct {
	// DocumentIDs is distinct, in rank order.
	DocumentIDs []uuid.UUID
	Grounding   string
	Hits        []Hit
}

type Engine struct {
	log     *logger.Logger
	chunks  repos.ChunkRepo
	embed   QueryEmbedder
	metrics *observability.Metrics
}

func NewEngine(log *logger.Logger, chunks repos.ChunkRepo, embed QueryEmbedder, metrics *observability.Metrics) *Engine {
	return &Engine{
		log:     log.With("service", "RetrievalEngine"),
		chunks:  chunks,
		embed:   embed,
		metrics: metrics,
	}
}

// Query ranks the knowledge base's chunks against text. A nil Result with a
// nil error means no chunk cleared the threshold.
func (e *Engine) Query(ctx context.Context, kbID uuid.UUID, text string, opts Options) (res *Result, err error) {
	ctx = ctxutil.Default(ctx)
	if opts.K <= 0 {
		opts.K = DefaultK
	}
	ctx, span := observability.StartSpan(ctx, "retrieval.query",
		attribute.String("knowledge_base_id", kbID.String()),
		attribute.Int("k", opts.K),
		attribute.Float64("threshold", opts.Threshold),
		attribute.String("preferred_type", string(opts.PreferredType)),
	)
	defer func() {
		switch {
		case err != nil:
			e.metrics.ObserveRetrieval("error")
		case res == nil:
			e.metrics.ObserveRetrieval("miss")
		default:
			e.metrics.ObserveRetrieval("hit")
		}
		observability.EndSpan(span, err)
	}()

	vec, err := e.embed.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	rows, err := e.chunks.Nearest(dbctx.New(ctx), kbID, vec, opts.K, opts.PreferredType)
	if err != nil {
		return nil, fmt.Errorf("rank chunks: %w", err)
	}

	res = assemble(rows, opts.Threshold)
	if res == nil {
		e.log.Debug("no grounding above threshold", "knowledge_base_id", kbID, "ranked", len(rows), "threshold", opts.Threshold)
		return nil, nil
	}
	return res, nil
}

func assemble(rows []knowledgerepo.ScoredChunk, threshold float64) *Result {
	var (
		res    Result
		blocks []string
		seen   = map[uuid.UUID]bool{}
	)
	for _, row := range rows {
		sim := 1 - row.Distance
		if sim < threshold {
			continue
		}
		res.Hits = append(res.Hits, Hit{
			ChunkID:    row.ID,
			DocumentID: row.DocumentID,
			Index:      row.Index,
			Content:    row.Content,
			Similarity: sim,
		})
		if !seen[row.DocumentID] {
			seen[row.DocumentID] = true
			res.DocumentIDs = append(res.DocumentIDs, row.DocumentID)
		}
		blocks = append(blocks, "----\nDOCUMENT_ID: "+row.DocumentID.String()+
			"\nSIMILARITY: "+strconv.FormatFloat(sim, 'f', -1, 64)+
			"\nCONTENT: "+row.Content)
	}
	if len(blocks) == 0 {
		return nil
	}
	res.Grounding = groundingStart + strings.Join(blocks, blockSep) + groundingEnd
	return &res
}
