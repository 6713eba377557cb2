package localmedia

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/yungbote/pathforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

// Tools wraps the system binaries the extractors need:
// ffmpeg for audio/video and pdfimages (poppler-utils) for PDF rasters.
type Tools interface {
	AssertReady(ctx context.Context) error

	// WriteTempFile stores data under a unique name; cleanup removes it.
	WriteTempFile(ctx context.Context, data []byte, suffix string) (string, func(), error)
	// TempDir creates a unique scratch directory; cleanup removes it recursively.
	TempDir(ctx context.Context) (string, func(), error)

	// ExtractAudio writes 16 kHz mono LINEAR16 wav to outPath.
	ExtractAudio(ctx context.Context, inputPath, outPath string) error
	// ExtractPDFImages dumps embedded rasters into outDir, grouped by 1-based page.
	ExtractPDFImages(ctx context.Context, pdfPath, outDir string) (map[int][]string, error)
}

type tools struct {
	log *logger.Logger

	ffmpegPath    string
	pdfimagesPath string
	workRoot      string
}

func New(log *logger.Logger, workRoot string) Tools {
	if workRoot == "" {
		workRoot = filepath.Join(os.TempDir(), "pathforge-media")
	}
	return &tools{
		log:           log.With("service", "MediaTools"),
		ffmpegPath:    "ffmpeg",
		pdfimagesPath: "pdfimages",
		workRoot:      workRoot,
	}
}

func (m *tools) AssertReady(ctx context.Context) error {
	for _, bin := range []string{m.ffmpegPath, m.pdfimagesPath} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("missing required binary %q in PATH: %w", bin, err)
		}
	}
	if err := os.MkdirAll(m.workRoot, 0o755); err != nil {
		return fmt.Errorf("create workRoot: %w", err)
	}
	return nil
}

func (m *tools) WriteTempFile(ctx context.Context, data []byte, suffix string) (string, func(), error) {
	if err := os.MkdirAll(m.workRoot, 0o755); err != nil {
		return "", func() {}, fmt.Errorf("mkdir workRoot: %w", err)
	}
	if suffix != "" && !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	f, err := os.CreateTemp(m.workRoot, "scratch-*"+suffix)
	if err != nil {
		return "", func() {}, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("close temp file: %w", err)
	}
	return path, cleanup, nil
}

func (m *tools) TempDir(ctx context.Context) (string, func(), error) {
	if err := os.MkdirAll(m.workRoot, 0o755); err != nil {
		return "", func() {}, fmt.Errorf("mkdir workRoot: %w", err)
	}
	dir, err := os.MkdirTemp(m.workRoot, "scratch-")
	if err != nil {
		return "", func() {}, fmt.Errorf("create temp dir: %w", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

func (m *tools) ExtractAudio(ctx context.Context, inputPath, outPath string) error {
	if inputPath == "" || outPath == "" {
		return fmt.Errorf("inputPath and outPath required")
	}
	cmd := exec.CommandContext(ctxutil.Default(ctx), m.ffmpegPath,
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-acodec", "pcm_s16le",
		"-f", "wav",
		outPath,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio failed: %w; out=%s", err, tail(out))
	}
	return nil
}

func (m *tools) ExtractPDFImages(ctx context.Context, pdfPath, outDir string) (map[int][]string, error) {
	if pdfPath == "" || outDir == "" {
		return nil, fmt.Errorf("pdfPath and outDir required")
	}
	prefix := filepath.Join(outDir, "img")
	// -p embeds the page number in each file name; -png/-j keep formats the
	// vision API accepts.
	cmd := exec.CommandContext(ctxutil.Default(ctx), m.pdfimagesPath, "-p", "-png", "-j", pdfPath, prefix)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("pdfimages failed: %w; out=%s", err, tail(out))
	}
	return groupByPage(outDir)
}

var pageImageRe = regexp.MustCompile(`^img-(\d+)-(\d+)\.(png|jpg|jpeg)$`)

func groupByPage(dir string) (map[int][]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := map[int][]string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := pageImageRe.FindStringSubmatch(strings.ToLower(e.Name()))
		if m == nil {
			continue
		}
		page, _ := strconv.Atoi(m[1])
		out[page] = append(out[page], filepath.Join(dir, e.Name()))
	}
	for page := range out {
		sort.Strings(out[page])
	}
	return out, nil
}

func tail(b []byte) string {
	const max = 2000
	if len(b) > max {
		return string(b[len(b)-max:])
	}
	return string(b)
}
