package chat

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/pathforge-backend/internal/completion"
	"github.com/yungbote/pathforge-backend/internal/data/repos"
	types "github.com/yungbote/pathforge-backend/internal/domain/chat"
	"github.com/yungbote/pathforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

type Completer interface {
	Complete(ctx context.Context, turn completion.Turn) (*completion.Reply, error)
}

type UsecasesDeps struct {
	Log *logger.Logger

	Chats    repos.ChatRepo
	Messages repos.MessageRepo
	Gateway  Completer
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases { return Usecases{deps: deps} }

func (u Usecases) WithLog(log *logger.Logger) Usecases {
	u.deps.Log = log
	return u
}

func (u Usecases) ListChats(ctx context.Context, userID uuid.UUID) ([]*types.Chat, error) {
	return u.deps.Chats.ListByUser(dbctx.New(ctxutil.Default(ctx)), userID)
}

type SendInput struct {
	UserID uuid.UUID
	// ChatID continues a conversation; nil starts a new one.
	ChatID  *uuid.UUID
	Message types.Content
	// SystemPrompt is an optional ad-hoc instruction for this turn only.
	SystemPrompt string
}

// Send runs one free-form turn with no persona. Both messages are stored
// only when the turn succeeds.
func (u Usecases) Send(ctx context.Context, in SendInput) (*completion.Reply, error) {
	reply, err := u.deps.Gateway.Complete(ctxutil.Default(ctx), completion.Turn{
		UserID:       in.UserID,
		ChatID:       in.ChatID,
		Message:      in.Message,
		SystemPrompt: in.SystemPrompt,
	})
	if err != nil {
		return nil, err
	}
	if in.ChatID == nil {
		u.deps.Log.Info("chat started", "chat_id", reply.ChatID, "user_id", in.UserID)
	}
	return reply, nil
}

// History returns the conversation in sequence order.
func (u Usecases) History(ctx context.Context, userID, chatID uuid.UUID) ([]*types.Message, error) {
	ctx = ctxutil.Default(ctx)
	if _, err := u.deps.Chats.GetForUser(dbctx.New(ctx), chatID, userID); err != nil {
		return nil, err
	}
	return u.deps.Messages.ListByChat(dbctx.New(ctx), chatID)
}

// DeleteChat removes the chat and its messages. A plan linked to it keeps
// existing without a conversation.
func (u Usecases) DeleteChat(ctx context.Context, userID, chatID uuid.UUID) error {
	return u.deps.Chats.Delete(dbctx.New(ctxutil.Default(ctx)), chatID, userID)
}
