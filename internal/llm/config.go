package llm

import "time"

// OpenAIConfig configures the OpenAI provider and any OpenAI-compatible
// endpoint reached through BaseURL (Groq, OpenRouter).
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string // optional override for compatible endpoints
	Model       string
	Temperature float32
	MaxTokens   int
}

// AnthropicConfig configures the Anthropic provider.
type AnthropicConfig struct {
	APIKey      string
	Model       string // default: "claude-haiku"
	Temperature float32
	MaxTokens   int // default: 1024
}

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey      string
	Model       string // default: "gemini-flash"
	Temperature float32
	MaxTokens   int
}

// OllamaConfig configures a local Ollama server.
type OllamaConfig struct {
	BaseURL string // default: "http://localhost:11434"
	Model   string // default: "llama3:latest"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig returns the retry policy used when none is given.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Second,
		MaxWait:     10 * time.Second,
		Multiplier:  2.0,
	}
}
