package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strconv"
	"strings"
	"time"
)

// maxTemperature keeps generation deterministic enough for the structured
// output to parse.
const maxTemperature = 0.2

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// LLM (Groq, OpenAI-compatible)
	LLMAPIKey           string
	LLMCredentialPrefix string
	LLMBaseURL          string
	LLMModel            string
	LLMTemperature      float64
	LLMMaxTokens        int
	LLMTimeoutSec       int

	// Parse
	ParseDelay time.Duration

	// Session
	RedisURL       string
	SessionSecret  string
	SessionTTLHour int
	EncryptionKey  string // seals mailbox secrets at rest; defaults to SessionSecret

	// OAuth - Google
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// IMAP
	IMAPHost string
	IMAPPort int
	IMAPTLS  bool

	// Mailbox
	MailboxFetchCount int
	MockMailboxDelay  time.Duration

	// Rate limit
	AnalyzeRateLimit     int
	AnalyzeRateWindowSec int

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// LLM
		LLMAPIKey:           getEnv("GROQ_API_KEY", ""),
		LLMCredentialPrefix: getEnv("LLM_CREDENTIAL_PREFIX", "gsk_"),
		LLMBaseURL:          getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:            getEnv("LLM_MODEL", "compound-beta"),
		LLMTemperature:      getEnvFloat("LLM_TEMPERATURE", 0.1),
		LLMMaxTokens:        getEnvInt("LLM_MAX_TOKENS", 1000),
		LLMTimeoutSec:       getEnvInt("LLM_TIMEOUT_SEC", 30),

		// Parse
		ParseDelay: time.Duration(getEnvInt("PARSE_DELAY_MS", 0)) * time.Millisecond,

		// Session
		RedisURL:       getEnv("REDIS_URL", ""),
		SessionSecret:  getEnv("SESSION_SECRET", ""),
		SessionTTLHour: getEnvInt("SESSION_TTL_HOUR", 24),
		EncryptionKey:  getEnv("ENCRYPTION_KEY", ""),

		// OAuth - Google
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),

		// IMAP
		IMAPHost: getEnv("IMAP_HOST", ""),
		IMAPPort: getEnvInt("IMAP_PORT", 993),
		IMAPTLS:  getEnvBool("IMAP_TLS", true),

		// Mailbox
		MailboxFetchCount: getEnvInt("MAILBOX_FETCH_COUNT", 10),
		MockMailboxDelay:  time.Duration(getEnvInt("MOCK_MAILBOX_DELAY_MS", 1000)) * time.Millisecond,

		// Rate limit
		AnalyzeRateLimit:     getEnvInt("ANALYZE_RATE_LIMIT", 30),
		AnalyzeRateWindowSec: getEnvInt("ANALYZE_RATE_WINDOW_SEC", 60),

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}

	if cfg.LLMTemperature > maxTemperature {
		cfg.LLMTemperature = maxTemperature
	}
	if cfg.LLMTemperature < 0 {
		cfg.LLMTemperature = 0
	}
	if cfg.MailboxFetchCount <= 0 {
		cfg.MailboxFetchCount = 10
	}
	if cfg.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.SessionSecret = secret
	}
	if cfg.EncryptionKey == "" {
		cfg.EncryptionKey = cfg.SessionSecret
	}
	return cfg, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

// LLMTimeout returns the per-call backend timeout
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSec) * time.Second
}

// SessionTTL returns the session lifetime
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHour) * time.Hour
}

// GmailConfigured reports whether Gmail OAuth credentials are present
func (c *Config) GmailConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
