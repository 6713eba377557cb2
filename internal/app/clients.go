package app

import (
	"context"
	"fmt"

	"github.com/yungbote/pathforge-backend/internal/observability"
	"github.com/yungbote/pathforge-backend/internal/platform/gcp"
	"github.com/yungbote/pathforge-backend/internal/platform/localmedia"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
	"github.com/yungbote/pathforge-backend/internal/platform/openai"
)

type Clients struct {
	OpenAI openai.Client
	Speech gcp.Transcriber
	Media  localmedia.Tools
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	ai, err := openai.NewClient(cfg.OpenAI, log, openai.WithObserver(metrics))
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	media := localmedia.New(log, cfg.MediaWorkDir)
	if err := media.AssertReady(ctx); err != nil {
		log.Warn("media tools unavailable; pdf images, audio and video extraction degraded", "error", err)
	}

	// Without speech credentials audio and video formats stay unregistered.
	speech, err := gcp.NewSpeech(ctx, log)
	if err != nil {
		log.Warn("speech client unavailable; audio and video ingestion disabled", "error", err)
		speech = nil
	}

	return Clients{OpenAI: ai, Speech: speech, Media: media}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Speech != nil {
		_ = c.Speech.Close()
	}
}
