package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/ds"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/llm"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/memory"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/prompts"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/vectorstore"
	"go.uber.org/zap"
)

// Retriever is the nearest-neighbor capability the agent needs from a
// tenant's synchronized index.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]vectorstore.ScoredChunk, error)
}

// AgentConfig holds the per-tenant wiring for a conversational agent.
type AgentConfig struct {
	Tenant      string
	Client      llm.LLMClient
	Retriever   Retriever
	TopK        int
	Temperature float64
	MaxTokens   int
}

// Agent answers questions over a tenant's knowledge base while keeping
// dialogue memory across turns. Turns are serialized per agent so the
// conversation buffer stays consistent.
type Agent struct {
	mu           sync.Mutex
	config       AgentConfig
	conversation *memory.Conversation
}

// AgentAnswer carries the answer plus the explicit fallback branch: when
// the conversational pass fails, a plain retrieval answer is produced
// instead and the reason recorded.
type AgentAnswer struct {
	Answer         string   `json:"answer"`
	Sources        []string `json:"sources"`
	FallbackUsed   bool     `json:"fallbackUsed"`
	FallbackReason string   `json:"fallbackReason,omitempty"`
}

// Ask runs one dialogue turn.
func (a *Agent) Ask(ctx context.Context, question string) (*AgentAnswer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	hits, err := a.config.Retriever.Search(ctx, question, a.config.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	excerpts, sources := buildContext(hits)

	answer, err := a.converse(ctx, question, excerpts)
	result := &AgentAnswer{Answer: answer, Sources: sources}
	if err != nil {
		logger.Log.Warn("Agent pass failed, falling back to plain retrieval answer",
			zap.String("tenant", a.config.Tenant), zap.Error(err))

		fallback, fbErr := a.plainAnswer(ctx, question, excerpts)
		if fbErr != nil {
			return nil, fmt.Errorf("agent pass failed (%v); fallback failed: %w", err, fbErr)
		}
		result.Answer = fallback
		result.FallbackUsed = true
		result.FallbackReason = err.Error()
	}

	a.conversation.AddUserMessage(question)
	a.conversation.AddAssistantMessage(result.Answer)
	return result, nil
}

// converse generates with the full dialogue history and the retrieved
// context as the system prompt.
func (a *Agent) converse(ctx context.Context, question, excerpts string) (string, error) {
	system, err := prompts.RenderAgentSystemPrompt(a.config.Tenant, excerpts)
	if err != nil {
		return "", err
	}

	messages := append(append([]llm.Message{}, a.conversation.Messages...),
		llm.Message{Role: "user", Content: question})

	return a.generate(ctx, messages, system)
}

// plainAnswer is the single-shot retrieval answer used as fallback; it
// carries no dialogue history.
func (a *Agent) plainAnswer(ctx context.Context, question, excerpts string) (string, error) {
	system, user, err := prompts.RenderAnswerPrompt(a.config.Tenant, question, excerpts)
	if err != nil {
		return "", err
	}

	return a.generate(ctx, []llm.Message{{Role: "user", Content: user}}, system)
}

func (a *Agent) generate(ctx context.Context, messages []llm.Message, system string) (string, error) {
	var responseContent strings.Builder
	err := a.config.Client.GenerateInference(
		ctx,
		messages,
		func(chunk string) error {
			responseContent.WriteString(chunk)
			return nil
		},
		llm.WithSystemPrompt(system),
		llm.WithTemperature(a.config.Temperature),
		llm.WithMaxTokens(a.config.MaxTokens),
	)
	if err != nil {
		return "", err
	}

	return responseContent.String(), nil
}

// ResetMemory clears the dialogue buffer.
func (a *Agent) ResetMemory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.conversation.Clear()
}

// Conversation returns the current dialogue buffer for persistence.
func (a *Agent) Conversation() *memory.Conversation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conversation
}

// Model reports the generation model backing this agent.
func (a *Agent) Model() string {
	return a.config.Client.GetModel()
}

func buildContext(hits []vectorstore.ScoredChunk) (string, []string) {
	var sb strings.Builder
	seen := ds.NewSet[string]()
	var sources []string

	for _, hit := range hits {
		fmt.Fprintf(&sb, "[%s p.%d] %s\n\n", hit.Chunk.Source, hit.Chunk.Page, hit.Chunk.Text)
		if !seen.Contains(hit.Chunk.Source) {
			seen.Add(hit.Chunk.Source)
			sources = append(sources, hit.Chunk.Source)
		}
	}

	return sb.String(), sources
}
