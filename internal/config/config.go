package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	PostgresURI string
	RedisURI    string
	MongoURI    string

	Port           string
	FrontendURL    string
	AllowedOrigins []string
	Environment    string
	TrustProxy     bool

	// Mail relay
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	MailFrom           string
	AdminEmails        []string // recipients for contact/hosting relays
	EmailSubjectPrefix string

	// Account workflow
	AuthBackends        []string // identity provider backends, e.g. email,github
	AuthMaxAttempts     int      // per-session password attempt ceiling
	RegistrationOpen    bool
	RegistrationCaptcha bool
	OfferHosting        bool
	DemoServer          bool

	// Contact/hosting mail rate limiting (redis counter)
	MailRateLimitMax    int
	MailRateLimitWindow int // seconds

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := splitList(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{getEnv("FRONTEND_URL", "http://localhost:3000")}
	}

	backends := splitList(getEnv("AUTH_BACKENDS", "email"))
	if len(backends) == 0 {
		backends = []string{"email"}
	}

	return &Config{
		PostgresURI: getEnv("POSTGRES_URI", "postgres://localhost:5432/glossahub?sslmode=disable"),
		RedisURI:    getEnv("REDIS_URI", "redis://localhost:6379/0"),
		MongoURI:    getEnv("MONGODB_URI", "mongodb://localhost:27017/glossahub"),

		Port:           getEnv("PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins: allowedOrigins,
		Environment:    env,
		TrustProxy:     getBoolEnv("TRUST_PROXY", false),

		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getIntEnv("SMTP_PORT", 587),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		MailFrom:           getEnv("MAIL_FROM", "noreply@glossahub.org"),
		AdminEmails:        splitList(getEnv("ADMIN_EMAILS", "")),
		EmailSubjectPrefix: getEnv("EMAIL_SUBJECT_PREFIX", "[GlossaHub] "),

		AuthBackends:        backends,
		AuthMaxAttempts:     getIntEnv("AUTH_MAX_ATTEMPTS", 5),
		RegistrationOpen:    getBoolEnv("REGISTRATION_OPEN", true),
		RegistrationCaptcha: getBoolEnv("REGISTRATION_CAPTCHA", false),
		OfferHosting:        getBoolEnv("OFFER_HOSTING", false),
		DemoServer:          getBoolEnv("DEMO_SERVER", false),

		MailRateLimitMax:    getIntEnv("MAIL_RATE_LIMIT_MAX", 5),
		MailRateLimitWindow: getIntEnv("MAIL_RATE_LIMIT_WINDOW", 3600),

		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
	}
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasEmailBackend reports whether the local email identity provider is enabled.
func (c *Config) HasEmailBackend() bool {
	for _, b := range c.AuthBackends {
		if b == "email" {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
