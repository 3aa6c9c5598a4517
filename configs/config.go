package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const defaultSecret = "learnlingo-dev-secret-change-me"

type Settings struct {
	AppName string
	Env     string
	Debug   bool
	Port    string

	DatabaseURL string

	JWTSecret     string
	JWTExpiration time.Duration

	CacheDir          string
	ReconcileSchedule string

	BrevoAPIKey     string
	EmailSender     string
	EmailSenderName string

	CloudinaryURL string
	RollbarToken  string
	AllowOrigins  string
}

// DemoMode reports whether the app runs on the in-memory store.
func (s *Settings) DemoMode() bool {
	return s.DatabaseURL == ""
}

// Load reads settings from the environment, after loading `.env` when it exists.
func Load(dotEnvFiles ...string) (*Settings, error) {
	if len(dotEnvFiles) == 0 {
		dotEnvFiles = []string{".env"}
	}
	for _, f := range dotEnvFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, errors.Wrapf(err, "loading %s", f)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "stat %s", f)
		} else {
			log.Printf("Warning: %s file not found, reading from system environment variables", f)
		}
	}

	v := viper.New()
	v.SetDefault("APP_NAME", "LearnLingo")
	v.SetDefault("APP_ENV", "DEV")
	v.SetDefault("DEBUG", true)
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", defaultSecret)
	v.SetDefault("JWT_EXPIRATION", 72*time.Hour)
	v.SetDefault("FAVORITES_CACHE_DIR", "")
	v.SetDefault("RECONCILE_SCHEDULE", "*/5 * * * *")
	v.SetDefault("BREVO_API_KEY", "")
	v.SetDefault("EMAIL_SENDER", "")
	v.SetDefault("EMAIL_SENDER_NAME", "LearnLingo")
	v.SetDefault("CLOUDINARY_URL", "")
	v.SetDefault("ROLLBAR_TOKEN", "")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.AutomaticEnv()

	s := &Settings{
		AppName:           v.GetString("APP_NAME"),
		Env:               strings.ToUpper(v.GetString("APP_ENV")),
		Debug:             v.GetBool("DEBUG"),
		Port:              v.GetString("PORT"),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTExpiration:     v.GetDuration("JWT_EXPIRATION"),
		CacheDir:          v.GetString("FAVORITES_CACHE_DIR"),
		ReconcileSchedule: v.GetString("RECONCILE_SCHEDULE"),
		BrevoAPIKey:       v.GetString("BREVO_API_KEY"),
		EmailSender:       v.GetString("EMAIL_SENDER"),
		EmailSenderName:   v.GetString("EMAIL_SENDER_NAME"),
		CloudinaryURL:     v.GetString("CLOUDINARY_URL"),
		RollbarToken:      v.GetString("ROLLBAR_TOKEN"),
		AllowOrigins:      v.GetString("CORS_ALLOW_ORIGINS"),
	}

	if s.JWTExpiration <= 0 {
		return nil, errors.Errorf("JWT_EXPIRATION must be positive, got %s", s.JWTExpiration)
	}
	if !s.Debug && s.JWTSecret == defaultSecret {
		return nil, errors.New("JWT_SECRET must be set outside of debug mode")
	}
	return s, nil
}
