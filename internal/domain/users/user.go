package users

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"column:name;not null;default:''" json:"name"`
	Username string    `gorm:"column:username;not null;uniqueIndex" json:"username"`
	// ProfileInfo is free-form learner data fed into generation prompts.
	ProfileInfo datatypes.JSON `gorm:"column:profile_info;type:jsonb" json:"profile_info,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "user_account" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// ProfileText is the profile as prompt text; empty profiles render as "{}".
func (u *User) ProfileText() string {
	if u == nil || len(u.ProfileInfo) == 0 {
		return "{}"
	}
	return string(u.ProfileInfo)
}
