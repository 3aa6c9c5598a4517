package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Email          string     `gorm:"size:255;not null;unique" json:"email"`
	DisplayName    string     `gorm:"size:255" json:"display_name"`
	Password       string     `gorm:"not null" json:"-"`
	IsActive       bool       `gorm:"not null" json:"is_active"`
	FailedAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil    *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
