package booking

import (
	"context"
	"sync"
	"testing"

	"github.com/anjiri1684/learnlingo/database"
	"github.com/anjiri1684/learnlingo/logger"
	"github.com/anjiri1684/learnlingo/models"
	"github.com/anjiri1684/learnlingo/notifications"
	"github.com/anjiri1684/learnlingo/session"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []notifications.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg notifications.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

var diego = models.Teacher{ID: "2", Name: "Diego", Surname: "Hernandez"}

func validForm() Form {
	return Form{
		Reason:   models.ReasonCareer,
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Phone:    "+380501234567",
	}
}

func TestFlow_Validate(t *testing.T) {
	f := NewFlow(database.NewMemory(), nil, logger.Nop())

	tests := []struct {
		name   string
		mutate func(*Form)
		field  string
		msg    string
	}{
		{"missing reason", func(f *Form) { f.Reason = "" }, "reason", "this field is required"},
		{"unknown reason", func(f *Form) { f.Reason = "Because" }, "reason", "reason must be one of the listed reasons"},
		{"short name", func(f *Form) { f.FullName = " J " }, "full_name", ""},
		{"bad email", func(f *Form) { f.Email = "jane@" }, "email", ""},
		{"short phone", func(f *Form) { f.Phone = "12345" }, "phone", ""},
		{"blank phone", func(f *Form) { f.Phone = "   " }, "phone", "this field is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			err := f.Validate(form)
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			require.Contains(t, vErr.Fields, tt.field)
			assert.Len(t, vErr.Fields, 1)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, vErr.Fields[tt.field])
			}
		})
	}

	assert.NoError(t, f.Validate(validForm()))

	err := f.Validate(Form{})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Len(t, vErr.Fields, 4)
}

func TestFlow_Submit(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemory()
	mailer := &recordingMailer{}
	f := NewFlow(store, mailer, logger.Nop())
	s := &session.Session{UserID: "u1", Email: "jane@example.com"}

	form := validForm()
	form.FullName = "  Jane Doe  "
	b, err := f.Submit(ctx, diego, s, form)
	require.NoError(t, err)
	f.Wait()

	assert.Equal(t, "2", b.TeacherID)
	assert.Equal(t, "Diego Hernandez", b.TeacherName)
	assert.Equal(t, "Jane Doe", b.FullName)
	assert.Equal(t, models.BookingStatusPending, b.Status)
	require.NotNil(t, b.UserID)
	assert.Equal(t, "u1", *b.UserID)
	require.NotNil(t, b.UserEmail)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "jane@example.com", mailer.sent[0].ToEmail)

	history, err := f.History(ctx, s)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, b.ID, history[0].ID)
}

func TestFlow_Submit_anonymous(t *testing.T) {
	f := NewFlow(database.NewMemory(), nil, logger.Nop())

	b, err := f.Submit(context.Background(), diego, nil, validForm())
	require.NoError(t, err)
	assert.Nil(t, b.UserID)
	assert.Nil(t, b.UserEmail)

	_, err = f.History(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFlow_OpenRequests(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemory()
	f := NewFlow(store, nil, logger.Nop())

	n, err := f.OpenRequests(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	for i := 0; i < 2; i++ {
		_, err := f.Submit(ctx, diego, nil, validForm())
		require.NoError(t, err)
	}
	_, err = f.Submit(ctx, models.Teacher{ID: "3", Name: "Marie"}, nil, validForm())
	require.NoError(t, err)

	n, err = f.OpenRequests(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	store.Fail(database.OpListTeacherBookings)
	_, err = f.OpenRequests(ctx, "2")
	assert.ErrorIs(t, err, database.ErrRemoteUnavailable)
}

func TestFlow_Submit_storeFailure(t *testing.T) {
	store := database.NewMemory()
	store.Fail(database.OpCreateBooking)
	mailer := &recordingMailer{}
	f := NewFlow(store, mailer, logger.Nop())

	_, err := f.Submit(context.Background(), diego, nil, validForm())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBookingFailed))
	assert.Equal(t, 1, store.Calls(database.OpCreateBooking), "no retry")

	f.Wait()
	assert.Empty(t, mailer.sent)
}

func TestFlow_Submit_invalidFormSkipsStore(t *testing.T) {
	store := database.NewMemory()
	f := NewFlow(store, nil, logger.Nop())

	form := validForm()
	form.Email = "nope"
	_, err := f.Submit(context.Background(), diego, nil, form)

	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, 0, store.Calls(database.OpCreateBooking))
}

func TestFlow_Submit_mailFailureIgnored(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	f := NewFlow(database.NewMemory(), mailer, logger.Nop())

	_, err := f.Submit(context.Background(), diego, nil, validForm())
	assert.NoError(t, err)
	f.Wait()
	assert.Len(t, mailer.sent, 1)
}

func TestDefaultsAndMessages(t *testing.T) {
	assert.Equal(t, Form{}, Defaults(nil))
	assert.Equal(t,
		Form{FullName: "Jane", Email: "jane@example.com"},
		Defaults(&session.Session{DisplayName: " Jane ", Email: "jane@example.com"}))
	assert.Equal(t, "Trial lesson booked with Diego Hernandez! We'll contact you soon.", SuccessMessage(diego))
}
