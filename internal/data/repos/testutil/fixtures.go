package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/pathforge-backend/internal/domain/agents"
	"github.com/yungbote/pathforge-backend/internal/domain/chat"
	"github.com/yungbote/pathforge-backend/internal/domain/knowledge"
	"github.com/yungbote/pathforge-backend/internal/domain/learning"
	"github.com/yungbote/pathforge-backend/internal/domain/users"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, profile string) *users.User {
	tb.Helper()
	u := &users.User{
		ID:          uuid.New(),
		Name:        "Ada",
		Username:    "ada-" + uuid.NewString()[:8],
		ProfileInfo: datatypes.JSON([]byte(profile)),
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedChat(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *chat.Chat {
	tb.Helper()
	c := &chat.Chat{ID: uuid.New(), UserID: userID}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed chat: %v", err)
	}
	return c
}

func SeedKnowledgeBase(tb testing.TB, ctx context.Context, tx *gorm.DB) *knowledge.KnowledgeBase {
	tb.Helper()
	kb := &knowledge.KnowledgeBase{ID: uuid.New(), Name: "kb"}
	if err := tx.WithContext(ctx).Create(kb).Error; err != nil {
		tb.Fatalf("seed knowledge base: %v", err)
	}
	return kb
}

func SeedDocument(tb testing.TB, ctx context.Context, tx *gorm.DB, kbID uuid.UUID, docType knowledge.DocumentType) *knowledge.Document {
	tb.Helper()
	d := &knowledge.Document{
		ID:              uuid.New(),
		KnowledgeBaseID: kbID,
		Name:            "doc." + string(docType),
		DocumentType:    docType,
		Format:          "txt",
		Payload:         []byte("payload"),
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed document: %v", err)
	}
	return d
}

func SeedChunk(tb testing.TB, ctx context.Context, tx *gorm.DB, docID uuid.UUID, index int, content string, vec []float32) *knowledge.Chunk {
	tb.Helper()
	c := &knowledge.Chunk{
		ID:         uuid.New(),
		DocumentID: docID,
		Index:      index,
		Content:    content,
		Embedding:  pgvector.NewVector(vec),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed chunk: %v", err)
	}
	return c
}

func SeedPlan(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, status learning.PlanStatus, kbID *uuid.UUID) *learning.Plan {
	tb.Helper()
	p := &learning.Plan{
		ID:              uuid.New(),
		UserID:          userID,
		Title:           "Learn Go",
		Description:     "From zero to services",
		Status:          status,
		KnowledgeBaseID: kbID,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed plan: %v", err)
	}
	return p
}

func SeedModule(tb testing.TB, ctx context.Context, tx *gorm.DB, planID uuid.UUID, order int, status learning.ModuleStatus) *learning.Module {
	tb.Helper()
	m := &learning.Module{
		ID:          uuid.New(),
		PlanID:      planID,
		Title:       "Module",
		Description: "module description",
		Order:       order,
		Status:      status,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	return m
}

func SeedContent(tb testing.TB, ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, order int, status learning.ContentStatus) *learning.Content {
	tb.Helper()
	body := "body"
	c := &learning.Content{
		ID:          uuid.New(),
		ModuleID:    moduleID,
		ContentType: learning.ContentTypeText,
		Status:      status,
		Title:       "Content",
		Order:       order,
		TextContent: &body,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed content: %v", err)
	}
	return c
}

func SeedAgent(tb testing.TB, ctx context.Context, tx *gorm.DB, key, systemPrompt string, outputFormat string) *agents.Agent {
	tb.Helper()
	a := &agents.Agent{ID: uuid.New(), Key: key, Label: key, SystemPrompt: systemPrompt}
	if outputFormat != "" {
		a.OutputFormat = datatypes.JSON([]byte(outputFormat))
	}
	// Keys are unique; a shared postgres keeps personas from earlier tests.
	if err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"label", "system_prompt", "output_format"}),
	}).Create(a).Error; err != nil {
		tb.Fatalf("seed agent: %v", err)
	}
	return a
}

// Vec pads vals with zeros to the stored embedding width.
func Vec(vals ...float32) []float32 {
	out := make([]float32, knowledge.EmbeddingDimensions)
	copy(out, vals)
	return out
}
