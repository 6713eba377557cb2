package embedding

import (
	"context"
	"fmt"

	perrors "github.com/yungbote/pathforge-backend/internal/pkg/errors"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
	"github.com/yungbote/pathforge-backend/internal/platform/openai"
)

type Mode = openai.EmbedMode

const (
	ModeDocument = openai.EmbedDocument
	ModeQuery    = openai.EmbedQuery
)

// Embedder is the slice of the model client the embedding client needs.
type Embedder interface {
	Embed(ctx context.Context, inputs []string, mode openai.EmbedMode) ([][]float32, error)
}

// Client turns text into fixed-dimension vectors. Documents and queries are
// embedded in different modes.
type Client struct {
	log        *logger.Logger
	embedder   Embedder
	dimensions int
	// batchSize caps inputs per request; 0 sends everything in one call.
	batchSize int
}

func New(log *logger.Logger, embedder Embedder, dimensions int) *Client {
	return &Client{
		log:        log.With("service", "EmbeddingClient"),
		embedder:   embedder,
		dimensions: dimensions,
	}
}

// WithBatchSize splits large inputs into requests of at most n texts, for
// providers that cap the inputs of one call. n <= 0 keeps a single call.
func (c *Client) WithBatchSize(n int) *Client {
	if n < 0 {
		n = 0
	}
	c.batchSize = n
	return c
}

func (c *Client) Dimensions() int { return c.dimensions }

// EmbedDocuments returns one vector per text in input order.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return c.embed(ctx, texts, ModeDocument)
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.embed(ctx, []string{text}, ModeQuery)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (c *Client) embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	size := c.batchSize
	if size == 0 {
		size = len(texts)
	}
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := c.embedder.Embed(ctx, texts[start:end], mode)
		if err != nil {
			return nil, err
		}
		if len(vecs) != end-start {
			return nil, fmt.Errorf("%w: got %d vectors for %d inputs", perrors.ErrEmbeddingUnavailable, len(vecs), end-start)
		}
		for i, v := range vecs {
			if c.dimensions > 0 && len(v) != c.dimensions {
				return nil, fmt.Errorf("%w: vector %d has %d dimensions, want %d",
					perrors.ErrEmbeddingUnavailable, start+i, len(v), c.dimensions)
			}
		}
		out = append(out, vecs...)
	}
	c.log.Debug("embedded texts", "mode", string(mode), "count", len(out))
	return out, nil
}
