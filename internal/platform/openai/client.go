package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/pathforge-backend/internal/platform/envutil"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

// Client talks to an OpenAI-compatible API. Calls are made exactly once;
// failures are returned to the caller unchanged.
type Client interface {
	Embed(ctx context.Context, inputs []string, mode EmbedMode) ([][]float32, error)
	Converse(ctx context.Context, req ConverseRequest) (*ConverseReply, error)
	DescribeImage(ctx context.Context, instruction string, image ImageInput) (string, error)
}

// Observer receives one callback per HTTP request.
type Observer interface {
	ObserveExternalCall(service, op, status string, elapsed time.Duration)
}

type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	VisionModel     string
	EmbedModel      string
	EmbedDimensions int
	// SendInputType adds input_type (search_document/search_query) to
	// embedding requests for gateways that distinguish the two.
	SendInputType bool
	// Timeout of zero leaves requests unbounded.
	Timeout time.Duration
}

func ConfigFromEnv(log *logger.Logger) Config {
	return Config{
		APIKey:          envutil.String("OPENAI_API_KEY", ""),
		BaseURL:         envutil.String("OPENAI_BASE_URL", "https://api.openai.com"),
		Model:           envutil.String("OPENAI_MODEL", "gpt-4o-mini"),
		VisionModel:     envutil.String("OPENAI_VISION_MODEL", "gpt-4o-mini"),
		EmbedModel:      envutil.String("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		EmbedDimensions: envutil.Int("EMBEDDING_DIMENSIONS", 1536, log),
		SendInputType:   envutil.Bool("OPENAI_EMBED_INPUT_TYPE", false, log),
		Timeout:         time.Duration(envutil.Int("OPENAI_TIMEOUT_SECONDS", 0, log)) * time.Second,
	}
}

type Option func(*client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

func WithObserver(o Observer) Option {
	return func(c *client) { c.observer = o }
}

type client struct {
	log        *logger.Logger
	cfg        Config
	baseURL    string
	httpClient *http.Client
	observer   Observer
}

func NewClient(cfg Config, log *logger.Logger, opts ...Option) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = cfg.Model
	}
	c := &client{
		log:        log.With("client", "OpenAIClient"),
		cfg:        cfg,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// HTTPError is a non-2xx reply.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (c *client) post(ctx context.Context, path string, body any, out any) error {
	start := time.Now()
	status := "error"
	defer func() {
		if c.observer != nil {
			c.observer.ObserveExternalCall("openai", path, status, time.Since(start))
		}
	}()

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return fmt.Errorf("openai encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}
	status = fmt.Sprintf("%d", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("openai request failed", "path", path, "status", resp.StatusCode)
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("openai decode error: %w; raw=%s", err, string(raw))
	}
	return nil
}
