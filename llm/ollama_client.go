package llm

import (
	"context"

	"github.com/ollama/ollama/api"
)

// OllamaClient generates answers through a local Ollama instance.
type OllamaClient struct {
	client *api.Client
	model  string
}

func NewOllamaClient(client *api.Client, model string) LLMClient {
	return &OllamaClient{client: client, model: model}
}

func (c *OllamaClient) GetModel() string {
	return c.model
}

func (c *OllamaClient) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...LLMOption) error {
	settings := LLMSettings{
		model:       c.model,
		temperature: 0.7,
		maxTokens:   4096,
	}

	for _, opt := range opts {
		opt(&settings)
	}

	msgs := make([]api.Message, 0, len(messages)+1)
	if settings.system != "" {
		msgs = append(msgs, api.Message{Role: "system", Content: settings.system})
	}
	for _, m := range messages {
		msgs = append(msgs, api.Message{Role: m.Role, Content: m.Content})
	}

	stream := true
	req := &api.ChatRequest{
		Model:    settings.model,
		Messages: msgs,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": settings.temperature,
			"num_predict": settings.maxTokens,
		},
	}

	return c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		if resp.Message.Content == "" {
			return nil
		}
		return callback(resp.Message.Content)
	})
}
