package chat

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/pathforge-backend/internal/domain/chat"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

type ChatRepo interface {
	Create(dbc dbctx.Context, c *types.Chat) error
	GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Chat, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Chat, error)
	Delete(dbc dbctx.Context, id, userID uuid.UUID) error
}

type chatRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatRepo(db *gorm.DB, baseLog *logger.Logger) ChatRepo {
	return &chatRepo{db: db, log: baseLog.With("repo", "ChatRepo")}
}

func (r *chatRepo) Create(dbc dbctx.Context, c *types.Chat) error {
	return dbc.DB(r.db).Create(c).Error
}

func (r *chatRepo) GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Chat, error) {
	var c types.Chat
	if err := dbc.DB(r.db).Where("id = ? AND user_id = ?", id, userID).First(&c).Error; err != nil {
		return nil, notFound(err, "chat")
	}
	return &c, nil
}

func (r *chatRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Chat, error) {
	var out []*types.Chat
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *chatRepo) Delete(dbc dbctx.Context, id, userID uuid.UUID) error {
	return dbc.DB(r.db).Transaction(func(tx *gorm.DB) error {
		var c types.Chat
		if err := tx.Select("id").Where("id = ? AND user_id = ?", id, userID).First(&c).Error; err != nil {
			return notFound(err, "chat")
		}
		if err := tx.Where("chat_id = ?", c.ID).Delete(&types.Message{}).Error; err != nil {
			return err
		}
		// Plans keep existing without their conversation.
		if err := tx.Table("plan").Where("chat_id = ?", c.ID).Update("chat_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", c.ID).Delete(&types.Chat{}).Error
	})
}
