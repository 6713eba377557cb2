package extractor

import (
	"context"
	"sort"
	"strings"

	perrors "github.com/yungbote/pathforge-backend/internal/pkg/errors"
	"github.com/yungbote/pathforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

// Extractor turns the bytes of one format into plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

type ExtractorFunc func(ctx context.Context, data []byte) (string, error)

func (f ExtractorFunc) Extract(ctx context.Context, data []byte) (string, error) { return f(ctx, data) }

// Dispatcher routes raw bytes to the extractor registered for a format tag.
type Dispatcher struct {
	log        *logger.Logger
	extractors map[string]Extractor
}

// New registers every built-in format. Deps left nil disable the formats that need them.
func New(log *logger.Logger, deps Deps) *Dispatcher {
	d := &Dispatcher{log: log.With("service", "ExtractionDispatcher"), extractors: map[string]Extractor{}}

	plain := ExtractorFunc(extractPlain)
	for _, f := range []string{"txt", "md", "csv", "json"} {
		d.Register(f, plain)
	}
	d.Register("html", ExtractorFunc(extractHTML))
	d.Register("htm", ExtractorFunc(extractHTML))
	d.Register("docx", ExtractorFunc(extractDOCX))

	if deps.Vision != nil {
		img := &imageExtractor{vision: deps.Vision, log: d.log}
		for _, f := range imageFormats {
			d.Register(f, img)
		}
		d.Register("pdf", &pdfExtractor{images: img, tools: deps.Tools, pages: pdfPageText, log: d.log})
	}
	if deps.Transcriber != nil && deps.Tools != nil {
		media := &mediaExtractor{tools: deps.Tools, stt: deps.Transcriber, language: deps.Language, log: d.log}
		for _, f := range mediaFormats {
			d.Register(f, media.forFormat(f))
		}
	}
	return d
}

func (d *Dispatcher) Register(format string, e Extractor) {
	d.extractors[NormalizeFormat(format)] = e
}

func (d *Dispatcher) Supports(format string) bool {
	_, ok := d.extractors[NormalizeFormat(format)]
	return ok
}

func (d *Dispatcher) Formats() []string {
	out := make([]string, 0, len(d.extractors))
	for f := range d.extractors {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Extract fails with ErrUnsupportedFormat when nothing is registered for format.
func (d *Dispatcher) Extract(ctx context.Context, data []byte, format string) (string, error) {
	f := NormalizeFormat(format)
	e, ok := d.extractors[f]
	if !ok {
		return "", perrors.UnsupportedFormat(format)
	}
	text, err := e.Extract(ctxutil.Default(ctx), data)
	if err != nil {
		return "", err
	}
	d.log.Debug("extracted text", "format", f, "bytes", len(data), "chars", len(text))
	return text, nil
}

// NormalizeFormat lowercases a format tag and drops a leading dot.
func NormalizeFormat(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}
