package llm

import (
	"context"
)

// LLMClient is the generation capability injected into the QA and agent
// paths. Providers stream their answer through the chunk callback.
type LLMClient interface {
	GenerateInference(
		ctx context.Context,
		messages []Message,
		callback func(chunk string) error,
		opts ...LLMOption,
	) error

	GetModel() string
}

// Factory builds a client for a tenant's configured model.
type Factory func(model string) LLMClient

type LLMSettings struct {
	model       string  // model name
	temperature float64 // randomness (0.0 to 2.0)
	maxTokens   int     // maximum tokens to generate
	system      string  // system prompt
}

type LLMOption func(*LLMSettings)

func WithTemperature(temp float64) LLMOption {
	return func(s *LLMSettings) { s.temperature = temp }
}

func WithMaxTokens(tokens int) LLMOption {
	return func(s *LLMSettings) { s.maxTokens = tokens }
}

func WithSystemPrompt(prompt string) LLMOption {
	return func(s *LLMSettings) { s.system = prompt }
}

type Message struct {
	Role    string `json:"role" bson:"role"`       // "user", "assistant", "system"
	Content string `json:"content" bson:"content"` // the message content
}
