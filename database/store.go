package database

import (
	"context"
	"time"

	"github.com/anjiri1684/learnlingo/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the Postgres-backed Gateway.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	var teachers []models.Teacher
	err := s.db.WithContext(ctx).Preload("Reviews").Order("created_at asc, id asc").Find(&teachers).Error
	if err != nil {
		return nil, unavailable("list teachers", err)
	}
	return teachers, nil
}

func (s *Store) GetTeacher(ctx context.Context, id string) (models.Teacher, error) {
	var teacher models.Teacher
	err := s.db.WithContext(ctx).Preload("Reviews").First(&teacher, "id = ?", models.NormalizeID(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Teacher{}, errors.Wrapf(ErrNotFound, "teacher %s", id)
	}
	if err != nil {
		return models.Teacher{}, unavailable("get teacher", err)
	}
	return teacher, nil
}

func (s *Store) AddTeacher(ctx context.Context, t models.Teacher) (string, error) {
	t.ID = models.NormalizeID(t.ID)
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	for i := range t.Reviews {
		t.Reviews[i].ID = 0
		t.Reviews[i].TeacherID = t.ID
	}

	err := s.db.WithContext(ctx).Create(&t).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", errors.Wrapf(ErrDuplicate, "teacher %s", t.ID)
	}
	if err != nil {
		return "", unavailable("add teacher", err)
	}
	return t.ID, nil
}

func (s *Store) CreateBooking(ctx context.Context, nb models.NewBooking) (models.Booking, error) {
	booking := newBookingRecord(nb, s.now())
	if err := s.db.WithContext(ctx).Create(&booking).Error; err != nil {
		return models.Booking{}, unavailable("create booking", err)
	}
	return booking, nil
}

func (s *Store) ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&bookings).Error
	if err != nil {
		return nil, unavailable("list user bookings", err)
	}
	return bookings, nil
}

func (s *Store) ListTeacherBookings(ctx context.Context, teacherID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).Where("teacher_id = ?", models.NormalizeID(teacherID)).
		Order("created_at desc").Find(&bookings).Error
	if err != nil {
		return nil, unavailable("list teacher bookings", err)
	}
	return bookings, nil
}

func (s *Store) GetFavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ?", userID).Order("created_at asc").Pluck("teacher_id", &ids).Error
	if err != nil {
		return nil, unavailable("get favorites", err)
	}
	for i := range ids {
		ids[i] = models.NormalizeID(ids[i])
	}
	return ids, nil
}

func (s *Store) SetFavorite(ctx context.Context, userID, teacherID string, present bool) error {
	teacherID = models.NormalizeID(teacherID)
	db := s.db.WithContext(ctx)

	var err error
	if present {
		fav := models.Favorite{UserID: userID, TeacherID: teacherID, CreatedAt: s.now()}
		err = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&fav).Error
	} else {
		err = db.Where("user_id = ? AND teacher_id = ?", userID, teacherID).Delete(&models.Favorite{}).Error
	}
	if err != nil {
		return unavailable("set favorite", err)
	}
	return nil
}

func newBookingRecord(nb models.NewBooking, now time.Time) models.Booking {
	return models.Booking{
		ID:          uuid.New(),
		TeacherID:   models.NormalizeID(nb.TeacherID),
		TeacherName: nb.TeacherName,
		UserID:      nb.UserID,
		UserEmail:   nb.UserEmail,
		Reason:      nb.Reason,
		FullName:    nb.FullName,
		Email:       nb.Email,
		Phone:       nb.Phone,
		Status:      models.BookingStatusPending,
		CreatedAt:   now.UTC(),
	}
}
