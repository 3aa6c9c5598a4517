package models

import "time"

// Favorite marks a teacher as favorited by a user; row existence is the marker.
type Favorite struct {
	UserID    string `gorm:"primaryKey;size:64"`
	TeacherID string `gorm:"primaryKey;size:64"`
	CreatedAt time.Time
}
