package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const MemoryDatabaseURL = "memory://"

type Config struct {
	Env                 string        `validate:"required,oneof=local development staging production test"`
	Port                string        `validate:"required,numeric"`
	DatabaseURL         string        `validate:"required"`
	JWTSecret           string        `validate:"required,min=16"`
	JWTRefreshSecret    string        `validate:"required,min=16,nefield=JWTSecret"`
	AccessTokenTTL      time.Duration `validate:"required,gt=0"`
	RefreshTokenTTL     time.Duration `validate:"required,gtfield=AccessTokenTTL"`
	CorsAllowedOrigins  []string      `validate:"required,min=1"`
	UploadDir           string        `validate:"required"`
	PublicBaseURL       string        `validate:"required,url"`
	SMTP                SMTP
	Gemini              Gemini
	SentryDSN           string `validate:"omitempty,url"`
	AllowResubmitAuthor bool
}

type SMTP struct {
	Host     string
	Port     int `validate:"required_with=Host,omitempty,min=1,max=65535"`
	User     string
	Password string `validate:"required_with=User"`
	From     string `validate:"required_with=Host,omitempty,email"`
}

type Gemini struct {
	APIKey       string
	BaseURL      string        `validate:"required,url"`
	Model        string        `validate:"required"`
	ImageBaseURL string        `validate:"required,url"`
	Timeout      time.Duration `validate:"gt=0"`
}

// Load reads .env (if present) and the environment, then validates the
// result.
func Load() (Config, error) {
	_ = godotenv.Load()

	port := getEnv("PORT", "8080")
	cfg := Config{
		Env:                getEnv("APP_ENV", "local"),
		Port:               port,
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTRefreshSecret:   getEnv("JWT_REFRESH_SECRET", ""),
		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
		SMTP: SMTP{
			Host:     getEnv("SMTP_HOST", ""),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", ""),
		},
		Gemini: Gemini{
			APIKey:       getEnv("GEMINI_API_KEY", ""),
			BaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Model:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			ImageBaseURL: getEnv("IMAGE_BASE_URL", "https://image.pollinations.ai/prompt/"),
		},
	}

	var err error
	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.RefreshTokenTTL, err = getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.Gemini.Timeout, err = getDuration("AI_TIMEOUT", 60*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SMTP.Port, err = getInt("SMTP_PORT", 587); err != nil {
		return Config{}, err
	}
	if cfg.AllowResubmitAuthor, err = getBool("AUTHOR_REQUEST_ALLOW_RESUBMIT", true); err != nil {
		return Config{}, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// UsesMemoryStore reports whether DATABASE_URL selects the in-memory store.
func (c Config) UsesMemoryStore() bool {
	return c.DatabaseURL == MemoryDatabaseURL
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
