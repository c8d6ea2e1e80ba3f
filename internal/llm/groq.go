package llm

const (
	// GroqBaseURL is Groq's OpenAI-compatible endpoint.
	GroqBaseURL = "https://api.groq.com/openai/v1"

	// DefaultGroqModel is the model used when none is configured.
	DefaultGroqModel = "deepseek-r1-distill-llama-70b"
)

// GroqProvider implements Provider using Groq's OpenAI-compatible API.
type GroqProvider struct {
	*OpenAIProvider
}

func NewGroqProvider(cfg OpenAIConfig) (*GroqProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = GroqBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGroqModel
	}
	inner, err := NewOpenAIProvider(cfg)
	if err != nil {
		return nil, err
	}
	return &GroqProvider{OpenAIProvider: inner}, nil
}

func (p *GroqProvider) Name() string { return "groq" }
