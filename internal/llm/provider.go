package llm

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Provider sends one chat completion request and returns the generated text.
type Provider interface {
	Name() string
	Chat(ctx context.Context, messages []Message) (string, error)
}
