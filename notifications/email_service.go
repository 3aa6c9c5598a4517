package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anjiri1684/learnlingo/logger"
	"github.com/anjiri1684/learnlingo/models"
	"github.com/pkg/errors"
)

const brevoURL = "https://api.brevo.com/v3/smtp/email"

type Message struct {
	ToEmail     string
	ToName      string
	Subject     string
	HTMLContent string
}

// Mailer delivers transactional e-mail.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string
	Endpoint    string
	client      *http.Client
	log         logger.Logger
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

// NewMailer returns a Brevo mailer, or one that only logs when Brevo is not configured.
func NewMailer(apiKey, senderEmail, senderName string, log logger.Logger) Mailer {
	if log == nil {
		log = logger.Nop()
	}
	if apiKey == "" || senderEmail == "" || senderName == "" {
		log.Warn("⚠️ Email service not configured. Missing API Key, Sender Email, or Sender Name.")
		return LogMailer{Log: log}
	}
	log.Info("✅ Email service initialized successfully.")
	return &BrevoService{
		APIKey:      apiKey,
		SenderEmail: senderEmail,
		SenderName:  senderName,
		Endpoint:    brevoURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		log:         log,
	}
}

func (s *BrevoService) Send(ctx context.Context, msg Message) error {
	if msg.ToEmail == "" || !strings.Contains(msg.ToEmail, "@") {
		return errors.Errorf("invalid recipient email: %s", msg.ToEmail)
	}

	recipientName := msg.ToName
	if recipientName == "" {
		recipientName = msg.ToEmail[:strings.Index(msg.ToEmail, "@")]
	}

	payload := brevoPayload{
		Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
		To:          []map[string]string{{"email": msg.ToEmail, "name": recipientName}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTMLContent,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal payload")
	}

	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = brevoURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	client := s.client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return errors.Errorf("failed to send email via Brevo: status %d: %s", resp.StatusCode, string(respBody))
	}
	if s.log != nil {
		s.log.Info(fmt.Sprintf("✅ Email sent successfully to %s", msg.ToEmail))
	}
	return nil
}

// LogMailer only logs messages; used when no provider is configured.
type LogMailer struct {
	Log logger.Logger
}

func (m LogMailer) Send(_ context.Context, msg Message) error {
	if m.Log != nil {
		m.Log.Info(fmt.Sprintf("Email client not configured, skipping %q to %s", msg.Subject, msg.ToEmail))
	}
	return nil
}

// BookingConfirmation is sent to the requester after a trial lesson is booked.
func BookingConfirmation(b models.Booking) Message {
	teacher := html.EscapeString(b.TeacherName)
	if teacher == "" {
		teacher = "your teacher"
	}
	content := fmt.Sprintf(
		"<h1>Trial lesson requested</h1>"+
			"<p>Hi %s,</p>"+
			"<p>Your trial lesson with %s has been booked! We'll contact you soon.</p>"+
			"<p><b>Reason:</b> %s<br><b>Phone:</b> %s<br><b>Status:</b> %s</p>",
		html.EscapeString(b.FullName), teacher,
		html.EscapeString(b.Reason), html.EscapeString(b.Phone), b.Status,
	)
	return Message{
		ToEmail:     b.Email,
		ToName:      b.FullName,
		Subject:     "Your LearnLingo trial lesson",
		HTMLContent: content,
	}
}
