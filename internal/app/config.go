package app

import (
	"github.com/yungbote/pathforge-backend/internal/ingestion/chunker"
	"github.com/yungbote/pathforge-backend/internal/modules/learning"
	"github.com/yungbote/pathforge-backend/internal/observability"
	"github.com/yungbote/pathforge-backend/internal/platform/envutil"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
	"github.com/yungbote/pathforge-backend/internal/platform/openai"
)

type Config struct {
	OpenAI openai.Config

	SpeechLanguage string
	MediaWorkDir   string

	ChunkSize      int
	ChunkOverlap   int
	EmbedBatchSize int

	Learning learning.Config

	AgentsFile  string
	MetricsAddr string
	Environment string

	Tracing observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	exporter, err := observability.ParseTraceExporter(envutil.String("OTEL_TRACES_EXPORTER", "none"))
	if err != nil {
		log.Warn("ignoring OTEL_TRACES_EXPORTER", "error", err)
	}
	env := envutil.String("APP_ENV", "development")
	return Config{
		OpenAI:         openai.ConfigFromEnv(log),
		SpeechLanguage: envutil.String("SPEECH_LANGUAGE", "pt-BR"),
		MediaWorkDir:   envutil.String("MEDIA_WORK_DIR", ""),
		ChunkSize:      envutil.Int("CHUNK_SIZE", chunker.DefaultChunkSize, log),
		ChunkOverlap:   envutil.Int("CHUNK_OVERLAP", chunker.DefaultChunkOverlap, log),
		EmbedBatchSize: envutil.Int("EMBED_BATCH_SIZE", 0, log),
		Learning:       learning.ConfigFromEnv(log),
		AgentsFile:     envutil.String("AGENTS_FILE", ""),
		MetricsAddr:    envutil.String("METRICS_ADDR", ":9090"),
		Environment:    env,
		Tracing: observability.OtelConfig{
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "pathforge"),
			Environment: env,
			Version:     envutil.String("APP_VERSION", ""),
			Exporter:    exporter,
			SampleRatio: envutil.Float("OTEL_TRACES_SAMPLER_ARG", 0.1, log),
		},
	}
}
