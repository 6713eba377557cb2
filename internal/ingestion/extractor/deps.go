package extractor

import (
	"context"

	"github.com/yungbote/pathforge-backend/internal/platform/localmedia"
	"github.com/yungbote/pathforge-backend/internal/platform/openai"
)

type Vision interface {
	DescribeImage(ctx context.Context, instruction string, image openai.ImageInput) (string, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte, languageCode string) (string, error)
}

type Deps struct {
	Vision      Vision
	Transcriber Transcriber
	Tools       localmedia.Tools
	// Language is the fixed spoken language for transcription.
	Language string
}
