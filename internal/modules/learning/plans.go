package learning

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pathforge-backend/internal/completion"
	"github.com/yungbote/pathforge-backend/internal/domain/chat"
	types "github.com/yungbote/pathforge-backend/internal/domain/learning"
	"github.com/yungbote/pathforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
)

type CreatePlanInput struct {
	UserID          uuid.UUID
	KnowledgeBaseID *uuid.UUID
}

// CreatePlan opens the plan conversation with the learner's profile. The
// chat and its first exchange are stored only if the turn succeeds.
func (s *Service) CreatePlan(ctx context.Context, in CreatePlanInput) (*types.Plan, error) {
	ctx = ctxutil.Default(ctx)
	user, err := s.deps.Users.GetByID(dbctx.New(ctx), in.UserID)
	if err != nil {
		return nil, err
	}

	reply, err := s.deps.Gateway.Complete(ctx, completion.Turn{
		UserID:  user.ID,
		Message: chat.Text(fmt.Sprintf("User Profile Data: %s.", user.ProfileText())),
		Persona: s.planPersona,
	})
	if err != nil {
		return nil, err
	}

	chatID := reply.ChatID
	plan := &types.Plan{
		UserID:          user.ID,
		ChatID:          &chatID,
		KnowledgeBaseID: in.KnowledgeBaseID,
		Title:           types.DefaultPlanTitle,
		Status:          types.PlanCreatingOutline,
	}
	if err := s.deps.Plans.Create(dbctx.New(ctx), plan); err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}
	s.log.Info("plan created", "plan_id", plan.ID, "user_id", user.ID, "chat_id", chatID)
	return plan, nil
}

type DevelopResult struct {
	Plan  *types.Plan
	Reply *completion.Reply
	// Applied is true when the reply replaced the plan's modules.
	Applied bool
}

// DevelopPlan runs one turn of the plan conversation. A reply marked
// ready_to_save replaces the title, description and every module, but only
// while the plan is still being outlined.
func (s *Service) DevelopPlan(ctx context.Context, userID, planID uuid.UUID, message chat.Content) (*DevelopResult, error) {
	ctx = ctxutil.Default(ctx)
	plan, err := s.deps.Plans.GetForUser(dbctx.New(ctx), planID, userID)
	if err != nil {
		return nil, err
	}

	reply, err := s.deps.Gateway.Complete(ctx, completion.Turn{
		UserID:  userID,
		ChatID:  plan.ChatID,
		Message: message,
		Persona: s.planPersona,
	})
	if err != nil {
		return nil, err
	}
	res := &DevelopResult{Plan: plan, Reply: reply}

	var outline planOutline
	if err := decodeStructured(reply.Content, &outline); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if plan.ChatID == nil || *plan.ChatID != reply.ChatID {
		chatID := reply.ChatID
		plan.ChatID = &chatID
		updates["chat_id"] = chatID
	}

	apply := outline.ReadyToSave && plan.Status == types.PlanCreatingOutline
	if outline.ReadyToSave && !apply {
		s.log.Info("outline ignored after generation started", "plan_id", plan.ID, "status", plan.Status)
	}
	if apply {
		if t := strings.TrimSpace(outline.Title); t != "" {
			plan.Title = t
		}
		if d := strings.TrimSpace(outline.Description); d != "" {
			plan.Description = d
		}
		updates["title"] = plan.Title
		updates["description"] = plan.Description
	}
	if len(updates) == 0 {
		return res, nil
	}

	err = s.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.deps.Plans.UpdateFields(dbc, plan.ID, updates); err != nil {
			return err
		}
		if !apply {
			return nil
		}
		if err := s.deps.Modules.DeleteByPlan(dbc, plan.ID); err != nil {
			return fmt.Errorf("discard modules: %w", err)
		}
		modules := make([]*types.Module, 0, len(outline.Modules))
		for i, m := range outline.Modules {
			modules = append(modules, &types.Module{
				PlanID:      plan.ID,
				Title:       strings.TrimSpace(m.Title),
				Description: strings.TrimSpace(m.Description),
				Order:       i,
			})
		}
		if _, err := s.deps.Modules.Create(dbc, modules); err != nil {
			return fmt.Errorf("create modules: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Applied = apply
	if apply {
		s.log.Info("plan outline saved", "plan_id", plan.ID, "modules", len(outline.Modules))
	}
	return res, nil
}

func (s *Service) ListPlans(ctx context.Context, userID uuid.UUID) ([]*types.Plan, error) {
	return s.deps.Plans.ListByUser(dbctx.New(ctxutil.Default(ctx)), userID)
}

func (s *Service) GetPlan(ctx context.Context, userID, planID uuid.UUID) (*types.Plan, error) {
	return s.deps.Plans.GetForUser(dbctx.New(ctxutil.Default(ctx)), planID, userID)
}

// DeletePlan removes the plan with its modules and contents. The chat stays.
func (s *Service) DeletePlan(ctx context.Context, userID, planID uuid.UUID) error {
	return s.deps.Plans.Delete(dbctx.New(ctxutil.Default(ctx)), planID, userID)
}

func (s *Service) SetPlanCompletion(ctx context.Context, userID, planID uuid.UUID, completed bool) (*types.Plan, error) {
	ctx = ctxutil.Default(ctx)
	plan, err := s.deps.Plans.GetForUser(dbctx.New(ctx), planID, userID)
	if err != nil {
		return nil, err
	}
	target := types.PlanCreated
	if completed {
		target = types.PlanCompleted
	}
	if plan.Status == target {
		return plan, nil
	}
	if err := plan.Status.Transition(target); err != nil {
		return nil, err
	}
	if err := s.deps.Plans.UpdateFields(dbctx.New(ctx), plan.ID, map[string]interface{}{"status": target}); err != nil {
		return nil, err
	}
	plan.Status = target
	return plan, nil
}
