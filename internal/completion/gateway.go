package completion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/pathforge-backend/internal/data/repos"
	"github.com/yungbote/pathforge-backend/internal/domain/agents"
	types "github.com/yungbote/pathforge-backend/internal/domain/chat"
	"github.com/yungbote/pathforge-backend/internal/observability"
	perrors "github.com/yungbote/pathforge-backend/internal/pkg/errors"
	"github.com/yungbote/pathforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
	"github.com/yungbote/pathforge-backend/internal/platform/openai"
)

type Converser interface {
	Converse(ctx context.Context, req openai.ConverseRequest) (*openai.ConverseReply, error)
}

// Turn is one inbound message and how to answer it.
type Turn struct {
	UserID uuid.UUID
	// ChatID selects an existing conversation; nil starts a new one.
	ChatID  *uuid.UUID
	Message types.Content

	SystemPrompt string
	Persona      *agents.Agent
	// Grounding is appended after the persona prompt as its own instruction.
	Grounding string
}

type Reply struct {
	ChatID  uuid.UUID
	Inbound *types.Message
	Message *types.Message
	Content types.Content
}

// Structured returns the reply payload when the persona forced a tool.
func (r *Reply) Structured() (types.Structured, bool) {
	s, ok := r.Content.(types.Structured)
	return s, ok
}

type Gateway struct {
	db       *gorm.DB
	log      *logger.Logger
	chats    repos.ChatRepo
	messages repos.MessageRepo
	model    Converser
	metrics  *observability.Metrics
}

func NewGateway(db *gorm.DB, log *logger.Logger, chats repos.ChatRepo, messages repos.MessageRepo, model Converser, metrics *observability.Metrics) *Gateway {
	return &Gateway{
		db:       db,
		log:      log.With("service", "CompletionGateway"),
		chats:    chats,
		messages: messages,
		model:    model,
		metrics:  metrics,
	}
}

// Complete runs one conversational turn. The inbound message and the reply
// are persisted together after the external call succeeds; a failed call
// leaves the conversation untouched.
func (g *Gateway) Complete(ctx context.Context, turn Turn) (reply *Reply, err error) {
	ctx = ctxutil.Default(ctx)
	persona := ""
	if turn.Persona != nil {
		persona = turn.Persona.Key
	}
	ctx, span := observability.StartSpan(ctx, "completion.complete",
		attribute.String("persona", persona),
		attribute.Bool("grounded", turn.Grounding != ""),
	)
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		g.metrics.ObserveCompletion(persona, status, time.Since(start))
		observability.EndSpan(span, err)
	}()

	if turn.Message == nil {
		return nil, fmt.Errorf("%w: empty message", perrors.ErrInvalidArgument)
	}

	var history []*types.Message
	if turn.ChatID != nil {
		if _, err := g.chats.GetForUser(dbctx.New(ctx), *turn.ChatID, turn.UserID); err != nil {
			return nil, err
		}
		history, err = g.messages.ListByChat(dbctx.New(ctx), *turn.ChatID)
		if err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
	}

	req, err := buildRequest(history, turn)
	if err != nil {
		return nil, err
	}
	out, err := g.model.Converse(ctx, req)
	if err != nil {
		return nil, perrors.Completion("converse", err)
	}
	content, err := replyContent(out, req.Tool)
	if err != nil {
		return nil, perrors.Completion("converse", err)
	}

	reply = &Reply{Content: content}
	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		var chatID uuid.UUID
		if turn.ChatID != nil {
			chatID = *turn.ChatID
		} else {
			c := &types.Chat{UserID: turn.UserID}
			if err := g.chats.Create(dbc, c); err != nil {
				return fmt.Errorf("create chat: %w", err)
			}
			chatID = c.ID
		}
		seq, err := g.messages.NextSeq(dbc, chatID)
		if err != nil {
			return err
		}
		inbound, err := types.NewMessage(chatID, seq, types.RoleUser, turn.Message)
		if err != nil {
			return err
		}
		outbound, err := types.NewMessage(chatID, seq+1, replyRole(out.Role), content)
		if err != nil {
			return err
		}
		if err := g.messages.Append(dbc, []*types.Message{inbound, outbound}); err != nil {
			return fmt.Errorf("append messages: %w", err)
		}
		reply.ChatID = chatID
		reply.Inbound = inbound
		reply.Message = outbound
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.log.Debug("completion turn stored",
		"chat_id", reply.ChatID,
		"persona", persona,
		"kind", string(content.Kind()),
		"history", len(history),
	)
	return reply, nil
}

// buildRequest renders history plus the inbound message. System instructions
// run ad-hoc prompt, persona prompt, grounding.
func buildRequest(history []*types.Message, turn Turn) (openai.ConverseRequest, error) {
	req := openai.ConverseRequest{Messages: make([]openai.Message, 0, len(history)+1)}
	for _, m := range history {
		payload, err := m.Payload()
		if err != nil {
			return req, err
		}
		text, err := types.Render(payload)
		if err != nil {
			return req, err
		}
		req.Messages = append(req.Messages, openai.Message{Role: openai.Role(m.Role), Text: text})
	}
	text, err := types.Render(turn.Message)
	if err != nil {
		return req, err
	}
	req.Messages = append(req.Messages, openai.Message{Role: openai.RoleUser, Text: text})

	if s := strings.TrimSpace(turn.SystemPrompt); s != "" {
		req.System = append(req.System, s)
	}
	if turn.Persona != nil {
		if s := strings.TrimSpace(turn.Persona.SystemPrompt); s != "" {
			req.System = append(req.System, s)
		}
		spec, err := turn.Persona.Tool()
		if err != nil {
			return req, err
		}
		if spec != nil {
			req.Tool = &openai.Tool{Name: spec.Name, Description: spec.Description, Parameters: spec.InputSchema}
		}
	}
	if turn.Grounding != "" {
		req.System = append(req.System, turn.Grounding)
	}
	return req, nil
}

func replyContent(out *openai.ConverseReply, tool *openai.Tool) (types.Content, error) {
	if tool == nil {
		return types.Text(out.Text), nil
	}
	if !out.Structured() {
		return nil, fmt.Errorf("reply did not call tool %s", tool.Name)
	}
	return types.Structured(out.ToolInput), nil
}

func replyRole(r openai.Role) types.Role {
	if r == openai.RoleUser {
		return types.RoleUser
	}
	return types.RoleAssistant
}
