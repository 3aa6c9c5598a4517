package models

import (
	"time"

	"github.com/google/uuid"
)

const BookingStatusPending = "pending"

const (
	ReasonCareer  = "Career and business"
	ReasonKids    = "Lesson for kids"
	ReasonAbroad  = "Living abroad"
	ReasonExams   = "Exams and coursework"
	ReasonCulture = "Culture, travel or hobby"
)

var Reasons = []string{ReasonCareer, ReasonKids, ReasonAbroad, ReasonExams, ReasonCulture}

func IsReason(reason string) bool {
	for _, r := range Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

type Booking struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TeacherID   string    `gorm:"size:64;index;not null" json:"teacher_id"`
	TeacherName string    `gorm:"size:255" json:"teacher_name"`
	UserID      *string   `gorm:"size:64;index" json:"user_id,omitempty"`
	UserEmail   *string   `gorm:"size:255" json:"user_email,omitempty"`
	Reason      string    `gorm:"size:64;not null" json:"reason"`
	FullName    string    `gorm:"size:255;not null" json:"full_name"`
	Email       string    `gorm:"size:255;not null" json:"email"`
	Phone       string    `gorm:"size:32;not null" json:"phone"`
	Status      string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewBooking is what a client submits; the store assigns ID, Status and CreatedAt.
type NewBooking struct {
	TeacherID   string
	TeacherName string
	UserID      *string
	UserEmail   *string
	Reason      string
	FullName    string
	Email       string
	Phone       string
}
