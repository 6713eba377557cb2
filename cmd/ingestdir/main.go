package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/yungbote/pathforge-backend/internal/app"
	knowledgetypes "github.com/yungbote/pathforge-backend/internal/domain/knowledge"
	"github.com/yungbote/pathforge-backend/internal/modules/knowledge"
	"github.com/yungbote/pathforge-backend/internal/platform/apierr"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

// documentTypes maps a file extension to the document type it is stored as.
var documentTypes = map[string]string{
	"txt":  "text",
	"pdf":  "text",
	"json": "text",
	"md":   "text",
	"png":  "image",
	"jpg":  "image",
	"jpeg": "image",
	"mp4":  "video",
}

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup always happens.
func run() int {
	var (
		dir    = flag.String("dir", "", "directory to ingest (not recursive)")
		kbFlag = flag.String("kb", "", "knowledge base id; empty creates a new one")
		name   = flag.String("name", "", "name for a newly created knowledge base")
	)
	flag.Parse()
	_ = godotenv.Load()

	log, err := logger.New(envOr("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	if strings.TrimSpace(*dir) == "" {
		log.Error("missing -dir")
		return 2
	}

	ctx := context.Background()
	a, err := app.New(ctx, log)
	if err != nil {
		log.Error("app init failed", "error", err)
		return 1
	}
	defer a.Close(ctx)

	kbID, err := resolveKnowledgeBase(ctx, a.Services.Knowledge, *kbFlag, *name, *dir)
	if err != nil {
		log.Error("knowledge base", "error", err)
		return 1
	}

	res, err := ingestDir(ctx, log, a.Services.Knowledge, kbID, *dir)
	if err != nil {
		log.Error("read dir", "dir", *dir, "error", err)
		return 1
	}
	log.Info("ingest finished", "knowledge_base_id", kbID, "ingested", res.ok, "skipped", res.skipped, "failed", res.failed)
	if res.failed > 0 {
		return 1
	}
	return 0
}

type documentAdder interface {
	AddDocument(ctx context.Context, in knowledge.AddDocumentInput) (*knowledgetypes.Document, int, error)
}

type ingestResult struct {
	ok, skipped, failed int
}

// ingestDir adds every known file of dir in name order. A failed file is
// counted and logged; only an unreadable dir is an error.
func ingestDir(ctx context.Context, log *logger.Logger, kb documentAdder, kbID uuid.UUID, dir string) (ingestResult, error) {
	var res ingestResult
	entries, err := os.ReadDir(dir)
	if err != nil {
		return res, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(e.Name()), "."))
		docType, known := documentTypes[ext]
		if !known {
			log.Debug("skipping file", "file", e.Name())
			res.skipped++
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("read file failed", "file", path, "error", err)
			res.failed++
			continue
		}
		doc, chunks, err := kb.AddDocument(ctx, knowledge.AddDocumentInput{
			KnowledgeBaseID: kbID,
			Name:            e.Name(),
			Type:            docType,
			Format:          ext,
			Data:            data,
		})
		if err != nil {
			log.Warn("ingest failed", "file", path, "code", apierr.From(err).Code, "error", err)
			res.failed++
			continue
		}
		log.Info("ingested", "file", path, "document_id", doc.ID, "type", docType, "chunks", chunks)
		res.ok++
	}
	return res, nil
}

func resolveKnowledgeBase(ctx context.Context, kb knowledge.Usecases, raw, name, dir string) (uuid.UUID, error) {
	if raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, fmt.Errorf("parse -kb: %w", err)
		}
		if _, err := kb.GetKnowledgeBase(ctx, id); err != nil {
			return uuid.Nil, err
		}
		return id, nil
	}
	if name == "" {
		name = filepath.Base(filepath.Clean(dir))
	}
	created, err := kb.CreateKnowledgeBase(ctx, name)
	if err != nil {
		return uuid.Nil, err
	}
	return created.ID, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
