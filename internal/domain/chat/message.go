package chat

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentKind is the stored discriminator of a message payload.
type ContentKind string

const (
	KindText       ContentKind = "text"
	KindStructured ContentKind = "dict"
)

// Content is a message payload: exactly one of Text or Structured.
type Content interface {
	Kind() ContentKind
	isContent()
}

type Text string

func (Text) Kind() ContentKind { return KindText }
func (Text) isContent()        {}

type Structured map[string]any

func (Structured) Kind() ContentKind { return KindStructured }
func (Structured) isContent()        {}

// Render gives the canonical text form sent to a completion service.
func Render(c Content) (string, error) {
	switch v := c.(type) {
	case Text:
		return string(v), nil
	case Structured:
		b, err := json.Marshal(map[string]any(v))
		if err != nil {
			return "", fmt.Errorf("render structured content: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unknown message content %T", c)
	}
}

// Message rows are append-only; Seq orders them within a chat.
type Message struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_message_chat_seq,priority:1" json:"chat_id"`
	Chat   *Chat     `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChatID;references:ID" json:"-"`
	Seq    int       `gorm:"column:seq;not null;uniqueIndex:idx_message_chat_seq,priority:2" json:"seq"`

	Role        Role           `gorm:"column:role;not null" json:"role"`
	ContentType ContentKind    `gorm:"column:content_type;not null" json:"content_type"`
	TextContent *string        `gorm:"column:text_content;type:text" json:"text_content,omitempty"`
	DictContent datatypes.JSON `gorm:"column:dict_content;type:jsonb" json:"dict_content,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Message) TableName() string { return "message" }

func (m *Message) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func NewMessage(chatID uuid.UUID, seq int, role Role, c Content) (*Message, error) {
	m := &Message{ChatID: chatID, Seq: seq, Role: role, ContentType: c.Kind()}
	switch v := c.(type) {
	case Text:
		s := string(v)
		m.TextContent = &s
	case Structured:
		b, err := json.Marshal(map[string]any(v))
		if err != nil {
			return nil, fmt.Errorf("encode structured content: %w", err)
		}
		m.DictContent = datatypes.JSON(b)
	default:
		return nil, fmt.Errorf("unknown message content %T", c)
	}
	return m, nil
}

// Payload decodes the stored discriminator back into a Content variant.
func (m *Message) Payload() (Content, error) {
	switch m.ContentType {
	case KindText:
		if m.TextContent == nil {
			return Text(""), nil
		}
		return Text(*m.TextContent), nil
	case KindStructured:
		out := Structured{}
		if len(m.DictContent) == 0 {
			return out, nil
		}
		if err := json.Unmarshal(m.DictContent, &out); err != nil {
			return nil, fmt.Errorf("decode structured content: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown content type %q", m.ContentType)
	}
}
