package database

import (
	"context"

	"github.com/anjiri1684/learnlingo/models"
	"github.com/pkg/errors"
)

var (
	// ErrRemoteUnavailable wraps any transport or store failure.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("already exists")
)

// Gateway is the only component allowed to talk to the store. It never retries
// and never caches.
type Gateway interface {
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
	GetTeacher(ctx context.Context, id string) (models.Teacher, error)
	AddTeacher(ctx context.Context, t models.Teacher) (string, error)

	CreateBooking(ctx context.Context, nb models.NewBooking) (models.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error)
	ListTeacherBookings(ctx context.Context, teacherID string) ([]models.Booking, error)

	GetFavoriteIDs(ctx context.Context, userID string) ([]string, error)
	SetFavorite(ctx context.Context, userID, teacherID string, present bool) error
}

func unavailable(op string, err error) error {
	return errors.Wrapf(ErrRemoteUnavailable, "%s: %v", op, err)
}
