package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultAllowedOrigins is the CORS allow-list used when CORS_ALLOWED_ORIGINS is unset.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:3001",
	"http://localhost:3002",
	"https://chat-bot-2025.vercel.app",
	"https://chatbot2025.vercel.app",
	"https://*.vercel.app",
}

// Config is loaded once at startup and passed explicitly to every component.
// API keys are optional: a missing key routes all requests to the template fallback.
type Config struct {
	Port           string `env:"PORT" env-default:"8080"`
	GinMode        string `env:"GIN_MODE" env-default:"release"`
	LogLevel       string `env:"LOG_LEVEL" env-default:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" env-default:"false"`

	DatasetPath string `env:"DATASET_PATH" env-default:"omicron_2025.csv"`

	Gemini    ProviderConfig `env-prefix:"GEMINI_"`
	OpenAI    ProviderConfig `env-prefix:"OPENAI_"`
	Anthropic ProviderConfig `env-prefix:"ANTHROPIC_"`

	GatewayTimeout time.Duration `env:"GATEWAY_TIMEOUT" env-default:"30s"`

	EnableDB    bool   `env:"ENABLE_DB" env-default:"false"`
	DatabaseURL string `env:"DATABASE_URL"`

	RedisURL   string        `env:"REDIS_URL"`
	SessionTTL time.Duration `env:"SESSION_TTL" env-default:"24h"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

// ProviderConfig holds the settings of one external generation provider.
type ProviderConfig struct {
	APIKey  string `env:"API_KEY"`
	Model   string `env:"MODEL"`
	BaseURL string `env:"BASE_URL"`
}

// Configured reports whether the provider has a key.
func (p ProviderConfig) Configured() bool {
	return strings.TrimSpace(p.APIKey) != ""
}

// Status renders the provider state for the health payload.
func (p ProviderConfig) Status() string {
	if p.Configured() {
		return "configured"
	}
	return "not configured"
}

// Load reads an optional .env file and binds the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-1.5-flash"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-3.5-turbo"
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = "claude-3-haiku-20240307"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}
	if c.GatewayTimeout <= 0 {
		c.GatewayTimeout = 30 * time.Second
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.EnableDB && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}
	return nil
}
