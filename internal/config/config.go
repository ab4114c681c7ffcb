package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server Configuration
	Environment    string `env:"ENV" envDefault:"development"`
	Port           string `env:"PORT" envDefault:"8080"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`
	LogFile        string `env:"LOG_FILE"`

	// Rate limiting. REDIS_ADDR switches the ledger to a shared Redis store
	// so multiple instances enforce one limit.
	RedisAddr       string        `env:"REDIS_ADDR"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"10m"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"5" validate:"min=1"`

	// Global flood guard applied before the per-identity window.
	GlobalRPS   int `env:"GLOBAL_RATE_RPS" envDefault:"10" validate:"min=1"`
	GlobalBurst int `env:"GLOBAL_RATE_BURST" envDefault:"20" validate:"min=1"`

	// Message validation tunables. Defaults mirror the thresholds the site
	// shipped with; they are product decisions, not derived invariants.
	MessageMaxLength int      `env:"MESSAGE_MAX_LENGTH" envDefault:"500" validate:"min=1"`
	MessageMinLength int      `env:"MESSAGE_MIN_LENGTH" envDefault:"10" validate:"min=0"`
	MessageMaxLinks  int      `env:"MESSAGE_MAX_LINKS" envDefault:"2" validate:"min=0"`
	SpamPhrases      []string `env:"SPAM_PHRASES" envSeparator:"," envDefault:"viagra,loan approval"`

	// SMTP Configuration
	SMTPHost   string `env:"SMTP_HOST"`
	SMTPPort   int    `env:"SMTP_PORT"`
	SMTPUser   string `env:"SMTP_USER"`
	SMTPPass   string `env:"SMTP_PASS"`
	SMTPSecure *bool  `env:"SMTP_SECURE"` // unset means "secure if port 465"

	// Mail addressing
	MailFrom         string `env:"MAIL_FROM"`
	ContactRecipient string `env:"CONTACT_RECIPIENT" envDefault:"corgadogabriel@gmail.com" validate:"email"`
}

// Load loads the configuration from environment variables and .env files
func Load() (*Config, error) {
	// Load the first .env file that exists. godotenv never overwrites
	// variables that are already set.
	envLocations := []string{".env"}
	if envName := os.Getenv("ENV"); envName != "" {
		envLocations = append([]string{fmt.Sprintf(".env.%s", envName)}, envLocations...)
	}

	for _, loc := range envLocations {
		if err := godotenv.Load(loc); err == nil {
			break
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
