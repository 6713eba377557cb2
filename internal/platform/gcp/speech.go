package gcp

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/yungbote/pathforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

// Transcriber turns 16 kHz mono LINEAR16 audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte, languageCode string) (string, error)
	Close() error
}

// recognizer is the slice of the Speech API used here.
type recognizer interface {
	recognize(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error)
	Close() error
}

type apiRecognizer struct {
	client *speech.Client
}

func (r *apiRecognizer) recognize(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error) {
	op, err := r.client.LongRunningRecognize(ctx, req)
	if err != nil {
		return nil, err
	}
	return op.Wait(ctx)
}

func (r *apiRecognizer) Close() error { return r.client.Close() }

type speechService struct {
	log *logger.Logger
	rec recognizer
}

func NewSpeech(ctx context.Context, log *logger.Logger) (Transcriber, error) {
	c, err := speech.NewClient(ctxutil.Default(ctx), ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &speechService{log: log.With("service", "gcp.Speech"), rec: &apiRecognizer{client: c}}, nil
}

func (s *speechService) Close() error {
	if s == nil || s.rec == nil {
		return nil
	}
	return s.rec.Close()
}

func (s *speechService) Transcribe(ctx context.Context, wav []byte, languageCode string) (string, error) {
	if len(wav) == 0 {
		return "", nil
	}
	req := &speechpb.LongRunningRecognizeRequest{
		Config: recognitionConfig(languageCode),
		Audio:  &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: wav}},
	}
	resp, err := s.rec.recognize(ctxutil.Default(ctx), req)
	if err != nil {
		return "", fmt.Errorf("speech longrunningrecognize: %w", err)
	}
	text := transcript(resp)
	s.log.Debug("transcribed audio", "bytes", len(wav), "chars", len(text), "language", languageCode)
	return text, nil
}

func recognitionConfig(languageCode string) *speechpb.RecognitionConfig {
	if strings.TrimSpace(languageCode) == "" {
		languageCode = "pt-BR"
	}
	return &speechpb.RecognitionConfig{
		Encoding:                   speechpb.RecognitionConfig_LINEAR16,
		SampleRateHertz:            16000,
		AudioChannelCount:          1,
		LanguageCode:               languageCode,
		EnableAutomaticPunctuation: true,
	}
}

func transcript(resp *speechpb.LongRunningRecognizeResponse) string {
	if resp == nil {
		return ""
	}
	parts := make([]string, 0, len(resp.GetResults()))
	for _, r := range resp.GetResults() {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if t := strings.TrimSpace(alts[0].GetTranscript()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
