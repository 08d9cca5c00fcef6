package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	pkgRetry "github.com/ashabalin/brief-refiner/internal/pkg/retry"
)

// Config holds the application configuration
type Config struct {
	// Admin HTTP API
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// Telegram bot configuration
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// LLM gateway configuration
	LLMCfg LLMConfig `envPrefix:"LLM_"`

	// Knowledge base configuration
	KnowledgeCfg KnowledgeConfig `envPrefix:"KNOWLEDGE_"`

	// Per-user rate limits and input bounds
	LimitsCfg LimitsConfig `envPrefix:"LIMITS_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// EnableMocks replaces the model gateway with canned replies,
	// useful for local runs without an API key
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken        string        `env:"BOT_TOKEN,notEmpty"`
	UpdateTimeout   int           `env:"UPDATE_TIMEOUT" envDefault:"30"`
	AdminIDs        []int64       `env:"ADMIN_IDS" envSeparator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// LLMConfig holds the external model service configuration
type LLMConfig struct {
	ServiceURL     string        `env:"SERVICE_URL,notEmpty"`
	Token          string        `env:"TOKEN"`
	ChatModel      string        `env:"CHAT_MODEL" envDefault:"gpt-4o-mini"`
	VisionModel    string        `env:"VISION_MODEL" envDefault:"gpt-4o"`
	SpeechModel    string        `env:"SPEECH_MODEL" envDefault:"whisper-1"`
	Temperature    float64       `env:"TEMPERATURE" envDefault:"0.4"`
	MaxTokens      int           `env:"MAX_TOKENS" envDefault:"1200"`
	RequestTimeout time.Duration `env:"TIMEOUT" envDefault:"60s"`

	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// KnowledgeConfig holds the local retrieval index configuration
type KnowledgeConfig struct {
	DataDir    string        `env:"DATA_DIR" envDefault:"data/knowledge"`
	PersistDir string        `env:"PERSIST_DIR" envDefault:"data/index"`
	ChunkSize  int           `env:"CHUNK_SIZE" envDefault:"500"`
	TopK       int           `env:"TOP_K" envDefault:"3"`
	CacheTTL   time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

// LimitsConfig bounds user input and message rates
type LimitsConfig struct {
	RateLimitMessages int           `env:"RATE_MESSAGES" envDefault:"10"`
	RateLimitWindow   time.Duration `env:"RATE_WINDOW" envDefault:"60s"`
	MaxInputLength    int           `env:"MAX_INPUT_LENGTH" envDefault:"10000"`
	MaxMessageLength  int           `env:"MAX_MESSAGE_LENGTH" envDefault:"4000"`
	MaxHistoryLength  int           `env:"MAX_HISTORY_LENGTH" envDefault:"20"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.TelegramCfg.UpdateTimeout < 1 || cfg.TelegramCfg.UpdateTimeout > 120 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_UPDATE_TIMEOUT must be between 1 and 120 seconds, got %d", cfg.TelegramCfg.UpdateTimeout))
	}

	if cfg.LimitsCfg.RateLimitMessages < 1 || cfg.LimitsCfg.RateLimitMessages > 120 {
		errors = append(errors, fmt.Sprintf("LIMITS_RATE_MESSAGES must be between 1 and 120, got %d", cfg.LimitsCfg.RateLimitMessages))
	}

	if cfg.LimitsCfg.RateLimitWindow < time.Second {
		errors = append(errors, fmt.Sprintf("LIMITS_RATE_WINDOW must be at least 1s, got %s", cfg.LimitsCfg.RateLimitWindow))
	}

	if cfg.LimitsCfg.MaxMessageLength < 1 || cfg.LimitsCfg.MaxMessageLength > 4096 {
		errors = append(errors, fmt.Sprintf("LIMITS_MAX_MESSAGE_LENGTH must be between 1 and 4096, got %d", cfg.LimitsCfg.MaxMessageLength))
	}

	if cfg.KnowledgeCfg.ChunkSize < 50 {
		errors = append(errors, fmt.Sprintf("KNOWLEDGE_CHUNK_SIZE must be at least 50, got %d", cfg.KnowledgeCfg.ChunkSize))
	}

	if cfg.KnowledgeCfg.TopK < 1 || cfg.KnowledgeCfg.TopK > 20 {
		errors = append(errors, fmt.Sprintf("KNOWLEDGE_TOP_K must be between 1 and 20, got %d", cfg.KnowledgeCfg.TopK))
	}

	if cfg.LLMCfg.Temperature < 0 || cfg.LLMCfg.Temperature > 2 {
		errors = append(errors, fmt.Sprintf("LLM_TEMPERATURE must be between 0 and 2, got %g", cfg.LLMCfg.Temperature))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
