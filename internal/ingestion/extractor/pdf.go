package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/yungbote/pathforge-backend/internal/platform/localmedia"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

// pdfExtractor emits each page's native text followed by the OCR output of
// the rasters embedded on that page.
type pdfExtractor struct {
	images Extractor
	tools  localmedia.Tools
	pages  func(data []byte) ([]string, error)
	log    *logger.Logger
}

func (e *pdfExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	pages, err := e.pages(data)
	if err != nil {
		return "", err
	}
	pageImages, err := e.embeddedImages(ctx, data)
	if err != nil {
		return "", err
	}

	var out []string
	for i, text := range pages {
		if t := strings.TrimSpace(text); t != "" {
			out = append(out, t)
		}
		for _, raw := range pageImages[i+1] {
			imgText, err := e.images.Extract(ctx, raw)
			if err != nil {
				return "", err
			}
			if t := strings.TrimSpace(imgText); t != "" {
				out = append(out, t)
			}
		}
	}
	return strings.Join(out, "\n"), nil
}

// embeddedImages loads every raster keyed by 1-based page. Scratch files are
// gone by the time it returns. A host without pdfimages yields no images.
func (e *pdfExtractor) embeddedImages(ctx context.Context, data []byte) (map[int][][]byte, error) {
	if e.tools == nil {
		return nil, nil
	}
	pdfPath, cleanupFile, err := e.tools.WriteTempFile(ctx, data, ".pdf")
	if err != nil {
		return nil, err
	}
	defer cleanupFile()
	dir, cleanupDir, err := e.tools.TempDir(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanupDir()

	paths, err := e.tools.ExtractPDFImages(ctx, pdfPath, dir)
	if errors.Is(err, exec.ErrNotFound) {
		e.log.Warn("pdfimages not installed; keeping native page text only", "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make(map[int][][]byte, len(paths))
	for page, files := range paths {
		for _, f := range files {
			raw, err := os.ReadFile(f)
			if err != nil {
				return nil, fmt.Errorf("read pdf image: %w", err)
			}
			out[page] = append(out[page], raw)
		}
	}
	return out, nil
}

func pdfPageText(data []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdf reader: %w", err)
	}
	n := r.NumPage()
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			out = append(out, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("pdf page %d: %w", i, err)
		}
		out = append(out, text)
	}
	return out, nil
}
