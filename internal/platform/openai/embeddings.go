package openai

import (
	"context"
	"fmt"
	"strings"

	perrors "github.com/yungbote/pathforge-backend/internal/pkg/errors"
)

type EmbedMode string

const (
	EmbedDocument EmbedMode = "search_document"
	EmbedQuery    EmbedMode = "search_query"
)

type embeddingsRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
	InputType  string   `json:"input_type,omitempty"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// Embed returns one vector per input, in input order, from a single request.
func (c *client) Embed(ctx context.Context, inputs []string, mode EmbedMode) ([][]float32, error) {
	if len(inputs) == 0 {
		return [][]float32{}, nil
	}
	clean := make([]string, len(inputs))
	for i := range inputs {
		s := strings.TrimSpace(inputs[i])
		if s == "" {
			s = " "
		}
		clean[i] = s
	}

	req := embeddingsRequest{
		Model:      c.cfg.EmbedModel,
		Input:      clean,
		Dimensions: c.cfg.EmbedDimensions,
	}
	if c.cfg.SendInputType {
		req.InputType = string(mode)
	}

	var resp embeddingsResponse
	if err := c.post(ctx, "/v1/embeddings", req, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", perrors.ErrEmbeddingUnavailable, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no vectors returned for %d inputs", perrors.ErrEmbeddingUnavailable, len(clean))
	}

	out := make([][]float32, len(clean))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			continue
		}
		vec := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			vec[i] = float32(f)
		}
		out[d.Index] = vec
	}
	for i := range out {
		if len(out[i]) == 0 {
			return nil, fmt.Errorf("%w: missing vector for input %d (requested=%d returned=%d)",
				perrors.ErrEmbeddingUnavailable, i, len(clean), len(resp.Data))
		}
	}
	return out, nil
}
