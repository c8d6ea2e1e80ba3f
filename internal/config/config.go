package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr      string
	StaticDir string
	LogLevel  string

	// sqlite file by default; a MySQL DSN takes over when set
	DBPath string
	DBDSN  string

	// LLM provider
	LLMProvider string
	LLMModel    string
	Temperature float64
	MaxTokens   int
	LLMTimeout  time.Duration

	GroqAPIKey        string
	GroqBaseURL       string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	AnthropicAPIKey   string
	GeminiAPIKey      string
	OllamaBaseURL     string
}

func Load() Config {
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "web/static"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "language_mistakes.db"
	}

	provider := strings.ToLower(os.Getenv("LLM_PROVIDER"))
	if provider == "" {
		provider = "groq"
	}

	temperature := 0.7
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			temperature = f
		}
	}

	maxTokens := 0
	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			maxTokens = n
		}
	}

	timeout := 30 * time.Second
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			timeout = d
		}
	}

	return Config{
		Addr:      addr,
		StaticDir: staticDir,
		LogLevel:  os.Getenv("LOG_LEVEL"),

		DBPath: dbPath,
		DBDSN:  os.Getenv("DB_DSN"),

		LLMProvider: provider,
		LLMModel:    os.Getenv("LLM_MODEL"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		LLMTimeout:  timeout,

		GroqAPIKey:        os.Getenv("GROQ_API_KEY"),
		GroqBaseURL:       os.Getenv("GROQ_BASE_URL"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: os.Getenv("OPENROUTER_BASE_URL"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		OllamaBaseURL:     os.Getenv("OLLAMA_BASE_URL"),
	}
}

// ConfigError is a startup-time configuration fault. The process
// reports it once and exits instead of failing on the first turn.
type ConfigError struct {
	Name   string // offending variable
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration: %s %s", e.Name, e.Reason)
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case "groq":
		if c.GroqAPIKey == "" {
			return &ConfigError{Name: "GROQ_API_KEY", Reason: "is required for the groq provider"}
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return &ConfigError{Name: "OPENAI_API_KEY", Reason: "is required for the openai provider"}
		}
	case "openrouter":
		if c.OpenRouterAPIKey == "" {
			return &ConfigError{Name: "OPENROUTER_API_KEY", Reason: "is required for the openrouter provider"}
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return &ConfigError{Name: "ANTHROPIC_API_KEY", Reason: "is required for the anthropic provider"}
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return &ConfigError{Name: "GEMINI_API_KEY", Reason: "is required for the gemini provider"}
		}
	case "ollama", "mock":
		// local providers need no credential
	default:
		return &ConfigError{Name: "LLM_PROVIDER", Reason: fmt.Sprintf("unknown provider %q", c.LLMProvider)}
	}
	if c.LLMTimeout <= 0 {
		return &ConfigError{Name: "LLM_TIMEOUT", Reason: "must be positive"}
	}
	return nil
}
