package chat

import (
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/pathforge-backend/internal/domain/chat"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

type MessageRepo interface {
	// Append inserts messages in slice order.
	Append(dbc dbctx.Context, msgs []*types.Message) error
	ListByChat(dbc dbctx.Context, chatID uuid.UUID) ([]*types.Message, error)
	// NextSeq is one past the highest sequence number in the chat.
	NextSeq(dbc dbctx.Context, chatID uuid.UUID) (int, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: baseLog.With("repo", "MessageRepo")}
}

func (r *messageRepo) Append(dbc dbctx.Context, msgs []*types.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	transaction := dbc.DB(r.db)
	for _, m := range msgs {
		if err := transaction.Create(m).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *messageRepo) ListByChat(dbc dbctx.Context, chatID uuid.UUID) ([]*types.Message, error) {
	var out []*types.Message
	if err := dbc.DB(r.db).Where("chat_id = ?", chatID).Order("seq ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *messageRepo) NextSeq(dbc dbctx.Context, chatID uuid.UUID) (int, error) {
	var maxSeq sql.NullInt64
	if err := dbc.DB(r.db).Model(&types.Message{}).
		Where("chat_id = ?", chatID).
		Select("MAX(seq)").
		Scan(&maxSeq).Error; err != nil {
		return 0, err
	}
	if !maxSeq.Valid {
		return 0, nil
	}
	return int(maxSeq.Int64) + 1, nil
}
