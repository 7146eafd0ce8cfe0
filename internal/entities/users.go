package entities

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;size:100" json:"username"`
	Email        string `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string `gorm:"size:100" json:"-"`

	// Profile fields editable by the user
	DisplayName string `gorm:"size:100" json:"display_name,omitempty"`
	Bio         string `gorm:"type:text" json:"bio,omitempty"`
	AvatarURL   string `gorm:"size:2048" json:"avatar_url,omitempty"`

	// Login lockout bookkeeping
	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`
	LastLoginAt      *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
