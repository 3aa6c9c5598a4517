package booking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anjiri1684/learnlingo/logger"
	"github.com/anjiri1684/learnlingo/models"
	"github.com/anjiri1684/learnlingo/notifications"
	"github.com/anjiri1684/learnlingo/session"
	"github.com/anjiri1684/learnlingo/utils"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	// ErrBookingFailed is the only failure reported once a form is valid.
	ErrBookingFailed = errors.New("booking failed")
	ErrNoSession     = errors.New("sign in to see your bookings")
)

const (
	reasonTag = "reason"

	// FailureMessage is what the user sees for ErrBookingFailed.
	FailureMessage = "Failed to book the lesson. Please try again."
)

// Form is a trial lesson request as typed by the user.
type Form struct {
	Reason   string `json:"reason" validate:"required,reason"`
	FullName string `json:"full_name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=10"`
}

// ValidationError maps JSON field names to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid booking: " + strings.Join(parts, "; ")
}

// Store is the part of the gateway bookings go through.
type Store interface {
	CreateBooking(ctx context.Context, nb models.NewBooking) (models.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error)
	ListTeacherBookings(ctx context.Context, teacherID string) ([]models.Booking, error)
}

type Flow struct {
	store      Store
	mailer     notifications.Mailer
	log        logger.Logger
	validate   *validator.Validate
	translator ut.Translator
	mailWG     sync.WaitGroup
}

func NewFlow(store Store, mailer notifications.Mailer, log logger.Logger) *Flow {
	if log == nil {
		log = logger.Nop()
	}
	validate, translator := utils.NewValidator()
	_ = validate.RegisterValidation(reasonTag, func(fl validator.FieldLevel) bool {
		return models.IsReason(fl.Field().String())
	})
	utils.RegisterCustomTranslation(validate, translator, reasonTag, "{0} must be one of the listed reasons")

	return &Flow{
		store:      store,
		mailer:     mailer,
		log:        log,
		validate:   validate,
		translator: translator,
	}
}

// Defaults prefills the form from the session.
func Defaults(s *session.Session) Form {
	if s == nil {
		return Form{}
	}
	return Form{FullName: strings.TrimSpace(s.DisplayName), Email: s.Email}
}

// SuccessMessage is shown to the user once the request was recorded.
func SuccessMessage(t models.Teacher) string {
	return fmt.Sprintf("Trial lesson booked with %s! We'll contact you soon.", t.FullName())
}

func clean(f Form) Form {
	return Form{
		Reason:   strings.TrimSpace(f.Reason),
		FullName: utils.CleanString(f.FullName),
		Email:    utils.CleanString(f.Email),
		Phone:    utils.CleanString(f.Phone),
	}
}

// Validate returns a *ValidationError listing every invalid field.
func (f *Flow) Validate(form Form) error {
	form = clean(form)
	if err := f.validate.Struct(form); err != nil {
		fields, ok := utils.FieldErrors(err, f.translator)
		if !ok {
			return errors.Wrap(err, "validating booking")
		}
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Submit validates the form and records the request for teacher. The session is optional.
func (f *Flow) Submit(ctx context.Context, teacher models.Teacher, s *session.Session, form Form) (models.Booking, error) {
	if err := f.Validate(form); err != nil {
		return models.Booking{}, err
	}
	form = clean(form)

	nb := models.NewBooking{
		TeacherID:   models.NormalizeID(teacher.ID),
		TeacherName: teacher.FullName(),
		Reason:      form.Reason,
		FullName:    form.FullName,
		Email:       form.Email,
		Phone:       form.Phone,
	}
	if s != nil {
		userID, email := s.UserID, s.Email
		nb.UserID = &userID
		nb.UserEmail = &email
	}

	booking, err := f.store.CreateBooking(ctx, nb)
	if err != nil {
		f.log.Error("booking: create failed", err, map[string]interface{}{"teacher_id": nb.TeacherID})
		return models.Booking{}, errors.Wrap(ErrBookingFailed, err.Error())
	}

	f.confirm(booking)
	return booking, nil
}

// confirm mails the requester in the background; failures are only logged.
func (f *Flow) confirm(b models.Booking) {
	if f.mailer == nil {
		return
	}
	f.mailWG.Add(1)
	go func() {
		defer f.mailWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := f.mailer.Send(ctx, notifications.BookingConfirmation(b)); err != nil {
			f.log.Warn("booking: confirmation email failed", err, map[string]interface{}{"booking_id": b.ID.String()})
		}
	}()
}

// Wait blocks until queued confirmation e-mails are done.
func (f *Flow) Wait() {
	f.mailWG.Wait()
}

// History lists the signed-in user's bookings, newest first.
func (f *Flow) History(ctx context.Context, s *session.Session) ([]models.Booking, error) {
	if s == nil {
		return nil, ErrNoSession
	}
	bookings, err := f.store.ListUserBookings(ctx, s.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "listing bookings")
	}
	return bookings, nil
}

// OpenRequests counts the teacher's trial lesson requests still pending.
func (f *Flow) OpenRequests(ctx context.Context, teacherID string) (int, error) {
	bookings, err := f.store.ListTeacherBookings(ctx, models.NormalizeID(teacherID))
	if err != nil {
		return 0, errors.Wrap(err, "listing teacher bookings")
	}
	n := 0
	for _, b := range bookings {
		if b.Status == models.BookingStatusPending {
			n++
		}
	}
	return n, nil
}
