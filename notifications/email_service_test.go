package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anjiri1684/learnlingo/logger"
	"github.com/anjiri1684/learnlingo/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMailer_unconfigured(t *testing.T) {
	m := NewMailer("", "", "", logger.Nop())
	_, ok := m.(LogMailer)
	require.True(t, ok)
	assert.NoError(t, m.Send(context.Background(), Message{ToEmail: "jane@example.com"}))
}

func TestBrevoService_Send(t *testing.T) {
	var got brevoPayload
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"1"}`))
	}))
	defer srv.Close()

	m := NewMailer("key-123", "hello@learnlingo.test", "LearnLingo", logger.Nop()).(*BrevoService)
	m.Endpoint = srv.URL

	err := m.Send(context.Background(), Message{ToEmail: "jane@example.com", Subject: "Hi", HTMLContent: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, "key-123", apiKey)
	assert.Equal(t, "Hi", got.Subject)
	require.Len(t, got.To, 1)
	assert.Equal(t, "jane", got.To[0]["name"])
	assert.Equal(t, "hello@learnlingo.test", got.Sender["email"])
}

func TestBrevoService_Send_errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"invalid_parameter"}`))
	}))
	defer srv.Close()

	m := NewMailer("key", "hello@learnlingo.test", "LearnLingo", logger.Nop()).(*BrevoService)
	m.Endpoint = srv.URL

	assert.Error(t, m.Send(context.Background(), Message{ToEmail: "not-an-email"}))
	err := m.Send(context.Background(), Message{ToEmail: "jane@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_parameter")
}

func TestBookingConfirmation(t *testing.T) {
	msg := BookingConfirmation(models.Booking{
		TeacherName: "Diego Hernandez",
		FullName:    "Jane <Doe>",
		Email:       "jane@example.com",
		Reason:      models.ReasonAbroad,
		Phone:       "+380501234567",
		Status:      models.BookingStatusPending,
	})
	assert.Equal(t, "jane@example.com", msg.ToEmail)
	assert.Contains(t, msg.HTMLContent, "Diego Hernandez")
	assert.Contains(t, msg.HTMLContent, "Jane &lt;Doe&gt;")
	assert.Contains(t, msg.HTMLContent, "Living abroad")
}
