package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	perrors "github.com/yungbote/pathforge-backend/internal/pkg/errors"
	"github.com/yungbote/pathforge-backend/internal/platform/localmedia"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

var mediaFormats = []string{"mp4", "mov", "webm", "mkv", "mp3", "wav", "m4a", "ogg", "flac"}

// mediaExtractor transcribes audio or video in a fixed language. The payload
// and the extracted wav live in scratch files removed before Extract returns.
type mediaExtractor struct {
	tools    localmedia.Tools
	stt      Transcriber
	language string
	log      *logger.Logger
}

func (e *mediaExtractor) forFormat(format string) Extractor {
	return ExtractorFunc(func(ctx context.Context, data []byte) (string, error) {
		return e.extract(ctx, data, format)
	})
}

func (e *mediaExtractor) extract(ctx context.Context, data []byte, format string) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	inPath, cleanupIn, err := e.tools.WriteTempFile(ctx, data, "."+format)
	if err != nil {
		return "", err
	}
	defer cleanupIn()

	dir, cleanupDir, err := e.tools.TempDir(ctx)
	if err != nil {
		return "", err
	}
	defer cleanupDir()

	wavPath := filepath.Join(dir, "audio.wav")
	if err := e.tools.ExtractAudio(ctx, inPath, wavPath); err != nil {
		return "", err
	}
	wav, err := os.ReadFile(wavPath)
	if err != nil {
		return "", fmt.Errorf("read extracted audio: %w", err)
	}
	text, err := e.stt.Transcribe(ctx, wav, e.language)
	if err != nil {
		return "", perrors.Completion("transcribe", err)
	}
	return text, nil
}
