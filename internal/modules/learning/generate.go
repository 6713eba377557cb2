package learning

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/pathforge-backend/internal/completion"
	"github.com/yungbote/pathforge-backend/internal/domain/chat"
	"github.com/yungbote/pathforge-backend/internal/domain/knowledge"
	types "github.com/yungbote/pathforge-backend/internal/domain/learning"
	"github.com/yungbote/pathforge-backend/internal/domain/users"
	"github.com/yungbote/pathforge-backend/internal/observability"
	"github.com/yungbote/pathforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
	"github.com/yungbote/pathforge-backend/internal/platform/taskgroup"
	"github.com/yungbote/pathforge-backend/internal/retrieval"
)

// GenerateModules fills every pending module of the plan on the module pool.
// extraInstructions, when set, is sent as an ad-hoc system prompt on every
// module turn. A failed module is logged and left in creating_contents; the
// plan still ends in created.
func (s *Service) GenerateModules(ctx context.Context, userID, planID uuid.UUID, extraInstructions string) (summaries []types.ModuleSummary, err error) {
	ctx = ctxutil.Default(ctx)
	ctx, span := observability.StartSpan(ctx, "learning.generate_modules", attribute.String("plan_id", planID.String()))
	defer func() { observability.EndSpan(span, err) }()

	plan, err := s.deps.Plans.GetForUser(dbctx.New(ctx), planID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.setPlanStatus(ctx, plan, types.PlanCreatingModules); err != nil {
		return nil, err
	}
	modules, err := s.deps.Modules.ListByPlan(dbctx.New(ctx), plan.ID)
	if err != nil {
		return nil, err
	}

	group := s.pool("module", s.cfg.ModulePoolWidth)
	workCtx := ctxutil.Detached(ctx)
	for _, m := range modules {
		if m.Status == types.ModuleCreated || m.Status == types.ModuleCompleted {
			continue
		}
		moduleID := m.ID
		group.Go(func() error {
			err := s.generateModule(workCtx, userID, moduleID, extraInstructions)
			if err != nil {
				s.log.Warn("module generation failed", "plan_id", plan.ID, "module_id", moduleID, "error", err)
				s.deps.Metrics.ObserveGenerationUnit("module", "failed")
				return err
			}
			s.deps.Metrics.ObserveGenerationUnit("module", "ok")
			return nil
		})
	}
	failed := group.Wait()

	if err := s.setPlanStatus(ctx, plan, types.PlanCreated); err != nil {
		return nil, err
	}
	s.log.Info("plan modules generated", "plan_id", plan.ID, "modules", len(modules), "failed", len(failed))
	return s.ListModules(ctx, userID, plan.ID)
}

// GenerateModule generates one module's contents on the calling goroutine.
func (s *Service) GenerateModule(ctx context.Context, userID, moduleID uuid.UUID) (*types.ModuleSummary, error) {
	ctx = ctxutil.Default(ctx)
	if err := s.generateModule(ctx, userID, moduleID, ""); err != nil {
		return nil, err
	}
	return s.GetModule(ctx, userID, moduleID)
}

func (s *Service) generateModule(ctx context.Context, userID, moduleID uuid.UUID, extraInstructions string) (err error) {
	ctx, span := observability.StartSpan(ctx, "learning.generate_module", attribute.String("module_id", moduleID.String()))
	defer func() { observability.EndSpan(span, err) }()

	module, err := s.deps.Modules.GetForUser(dbctx.New(ctx), moduleID, userID)
	if err != nil {
		return err
	}
	plan, err := s.deps.Plans.GetForUser(dbctx.New(ctx), module.PlanID, userID)
	if err != nil {
		return err
	}
	user, err := s.deps.Users.GetByID(dbctx.New(ctx), userID)
	if err != nil {
		return err
	}
	if err := module.Status.Transition(types.ModuleCreatingContents); err != nil {
		return err
	}
	// A re-run starts from an empty content list.
	err = s.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.deps.Modules.UpdateStatus(dbc, module.ID, types.ModuleCreatingContents); err != nil {
			return err
		}
		return s.deps.Contents.DeleteByModule(dbc, module.ID)
	})
	if err != nil {
		return err
	}
	module.Status = types.ModuleCreatingContents

	prompt := fmt.Sprintf("User Profile Data: %s\nPlan Title: %s\nPlan Description: %s\nModule Title: %s. Module Description: %s",
		user.ProfileText(), plan.Title, plan.Description, module.Title, module.Description)
	reply, err := s.deps.Gateway.Complete(ctx, completion.Turn{
		UserID:       userID,
		Message:      chat.Text(prompt),
		SystemPrompt: strings.TrimSpace(extraInstructions),
		Persona:      s.modulePersona,
	})
	if err != nil {
		return err
	}
	var outline moduleContents
	if err := decodeStructured(reply.Content, &outline); err != nil {
		return err
	}

	kbID := s.knowledgeBaseFor(plan)
	group := s.pool("content", s.cfg.ContentPoolWidth)
	for i, d := range outline.Contents {
		order, desc := i, d
		group.Go(func() error {
			created, err := s.generateContent(ctx, user, kbID, module.ID, order, desc)
			switch {
			case err != nil:
				s.log.Warn("content generation failed",
					"plan_id", plan.ID, "module_id", module.ID, "content_index", order, "error", err)
				s.deps.Metrics.ObserveGenerationUnit("content", "failed")
				return err
			case created == nil:
				s.deps.Metrics.ObserveGenerationUnit("content", "skipped")
			default:
				s.deps.Metrics.ObserveGenerationUnit("content", "ok")
			}
			return nil
		})
	}
	group.Wait()

	if err := module.Status.Transition(types.ModuleCreated); err != nil {
		return err
	}
	return s.deps.Modules.UpdateStatus(dbctx.New(ctx), module.ID, types.ModuleCreated)
}

// generateContent returns nil without error when an image or video unit has
// nothing in the knowledge base to point at.
func (s *Service) generateContent(ctx context.Context, user *users.User, kbID *uuid.UUID, moduleID uuid.UUID, order int, d contentDescriptor) (content *types.Content, err error) {
	kind := d.kind()
	ctx, span := observability.StartSpan(ctx, "learning.generate_content",
		attribute.String("module_id", moduleID.String()),
		attribute.Int("order", order),
		attribute.String("content_type", string(kind)),
	)
	defer func() { observability.EndSpan(span, err) }()

	switch kind {
	case types.ContentTypeImage, types.ContentTypeVideo:
		content, err = s.referenceContent(ctx, kbID, moduleID, order, kind, d)
	default:
		content, err = s.textContent(ctx, user, kbID, moduleID, order, d)
	}
	if err != nil || content == nil {
		return nil, err
	}
	if err := s.deps.Contents.Create(dbctx.New(ctx), content); err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return content, nil
}

func (s *Service) textContent(ctx context.Context, user *users.User, kbID *uuid.UUID, moduleID uuid.UUID, order int, d contentDescriptor) (*types.Content, error) {
	var grounding string
	if kbID != nil {
		query := d.objective()
		if query == "" {
			query = d.Title
		}
		res, err := s.deps.Retriever.Query(ctx, *kbID, query, retrieval.Options{
			K:         s.cfg.TextGroundingK,
			Threshold: s.cfg.TextGroundingThreshold,
		})
		if err != nil {
			return nil, err
		}
		if res != nil {
			grounding = res.Grounding
		}
	}

	prompt := fmt.Sprintf("User Profile Data: %s\nContent Title: %s\nContent Objective: %s",
		user.ProfileText(), d.Title, d.objective())
	reply, err := s.deps.Gateway.Complete(ctx, completion.Turn{
		UserID:    user.ID,
		Message:   chat.Text(prompt),
		Persona:   s.textPersona,
		Grounding: grounding,
	})
	if err != nil {
		return nil, err
	}
	body, err := chat.Render(reply.Content)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = types.DefaultTextContentTitle
	}
	return &types.Content{
		ModuleID:    moduleID,
		ContentType: types.ContentTypeText,
		Status:      types.ContentCreated,
		Title:       title,
		Order:       order,
		TextContent: &body,
	}, nil
}

func (s *Service) referenceContent(ctx context.Context, kbID *uuid.UUID, moduleID uuid.UUID, order int, kind types.ContentType, d contentDescriptor) (*types.Content, error) {
	if kbID == nil {
		s.log.Debug("no knowledge base for reference content", "module_id", moduleID, "content_index", order)
		return nil, nil
	}
	query := d.objective()
	if query == "" {
		query = d.Title
	}
	res, err := s.deps.Retriever.Query(ctx, *kbID, query, retrieval.Options{
		K:             1,
		Threshold:     0,
		PreferredType: knowledge.DocumentType(kind),
	})
	if err != nil {
		return nil, err
	}
	if res == nil || len(res.DocumentIDs) == 0 {
		s.log.Debug("no matching document for reference content", "module_id", moduleID, "content_index", order, "type", kind)
		return nil, nil
	}
	docID := res.DocumentIDs[0]
	return &types.Content{
		ModuleID:         moduleID,
		ContentType:      kind,
		Status:           types.ContentCreated,
		Title:            strings.TrimSpace(d.Title),
		Order:            order,
		SourceDocumentID: &docID,
	}, nil
}

func (s *Service) knowledgeBaseFor(plan *types.Plan) *uuid.UUID {
	if plan.KnowledgeBaseID != nil {
		return plan.KnowledgeBaseID
	}
	return s.cfg.DefaultKnowledgeBaseID
}

func (s *Service) setPlanStatus(ctx context.Context, plan *types.Plan, to types.PlanStatus) error {
	if err := plan.Status.Transition(to); err != nil {
		return err
	}
	if err := s.deps.Plans.UpdateFields(dbctx.New(ctx), plan.ID, map[string]interface{}{"status": to}); err != nil {
		return err
	}
	plan.Status = to
	return nil
}

func (s *Service) pool(name string, width int) *taskgroup.Group {
	g := taskgroup.New(width)
	g.OnStart = func() { s.deps.Metrics.PoolStarted(name) }
	g.OnDone = func() { s.deps.Metrics.PoolDone(name) }
	return g
}
