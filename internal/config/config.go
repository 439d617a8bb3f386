package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the binary reads from the environment.
type Config struct {
	ListenPort   string
	DBPath       string
	CookieSecret string
	Debug        bool

	ResetTokenTTL time.Duration

	// Requests per minute allowed on the login and password-reset endpoints,
	// per client IP.
	AuthRateLimit int
	AuthRateBurst int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPSender   string
}

// Load reads an optional .env file and then the process environment,
// falling back to development defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("could not load .env file: %v", err)
	}

	return &Config{
		ListenPort:    GetString("LISTEN_PORT", "8080"),
		DBPath:        GetString("DB_PATH", "data/ubrary.db"),
		CookieSecret:  GetString("COOKIE_SECRET", "fallback-secret-change-in-production"),
		Debug:         GetBool("APP_DEBUG", true),
		ResetTokenTTL: GetDuration("RESET_TOKEN_TTL", 24*time.Hour),
		AuthRateLimit: GetInt("AUTH_RATE_LIMIT", 10),
		AuthRateBurst: GetInt("AUTH_RATE_BURST", 5),
		SMTPHost:      GetString("SMTP_HOST", ""),
		SMTPPort:      GetInt("SMTP_PORT", 587),
		SMTPUsername:  GetString("SMTP_USERNAME", ""),
		SMTPPassword:  GetString("SMTP_PASSWORD", ""),
		SMTPSender:    GetString("SMTP_SENDER", "Ubrary <no-reply@ubrary.local>"),
	}
}

// MailerConfigured reports whether enough SMTP settings were supplied to
// actually send reset mail.
func (c *Config) MailerConfigured() bool {
	return c.SMTPHost != ""
}

// GetString returns the environment variable for key, or fallback when unset.
func GetString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	log.Printf("environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

// GetInt returns the environment variable for key parsed as int.
func GetInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("environment variable %s is not a valid integer, using default: %d", key, fallback)
	}
	return fallback
}

// GetBool returns the environment variable for key parsed as bool.
func GetBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("environment variable %s is not a valid bool, using default: %t", key, fallback)
	}
	return fallback
}

// GetDuration returns the environment variable for key parsed as a duration.
func GetDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("environment variable %s is not a valid duration, using default: %s", key, fallback)
	}
	return fallback
}
