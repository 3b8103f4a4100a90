package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port    string `env:"PORT" env-default:"8080"`
	Env     string `env:"ENV" env-default:"development"`
	LogMode string `env:"LOG_MODE" env-default:"development"`

	// Database
	DatabaseURL    string `env:"DATABASE_URL" env-required:"true"`
	MigrationsPath string `env:"MIGRATIONS_PATH" env-default:"migrations"`

	// Redis
	RedisURL string `env:"REDIS_URL" env-required:"true"`

	// JWT (validation only, tokens are issued by the auth service)
	JWTSecret string `env:"JWT_SECRET" env-required:"true"`

	// Completion provider
	LLMProvider       string `env:"LLM_PROVIDER" env-default:"groq"`
	LLMModel          string `env:"LLM_MODEL"`
	LLMRequestsPerMin int    `env:"LLM_REQUESTS_PER_MINUTE" env-default:"0"`
	LLMMaxRetries     int    `env:"LLM_MAX_RETRIES" env-default:"1"`
	GroqAPIKey        string `env:"GROQ_API_KEY"`
	GroqBaseURL       string `env:"GROQ_BASE_URL" env-default:"https://api.groq.com/openai/v1"`
	GeminiAPIKey      string `env:"GEMINI_API_KEY"`
	GeminiModel       string `env:"GEMINI_MODEL" env-default:"gemini-1.5-flash"`

	// Async generation
	WorkerCount int `env:"WORKER_COUNT" env-default:"4"`

	// SMTP
	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort string `env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	SMTPFrom string `env:"SMTP_FROM" env-default:"noreply@vetstudy.app"`

	// Frontend
	FrontendURL string `env:"FRONTEND_URL" env-default:"http://localhost:5173"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	switch cfg.LLMProvider {
	case "groq", "gemini":
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q (expected groq or gemini)", cfg.LLMProvider)
	}
	if cfg.LLMMaxRetries < 0 || cfg.LLMMaxRetries > 1 {
		return nil, fmt.Errorf("LLM_MAX_RETRIES must be 0 or 1, got %d", cfg.LLMMaxRetries)
	}
	if cfg.WorkerCount < 0 {
		cfg.WorkerCount = 0
	}

	return &cfg, nil
}

// ProviderKey returns the credential of the configured completion provider.
func (c *Config) ProviderKey() string {
	if c.LLMProvider == "gemini" {
		return c.GeminiAPIKey
	}
	return c.GroqAPIKey
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
