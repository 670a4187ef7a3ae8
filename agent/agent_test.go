package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/chunker"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/llm"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mock llm client for testing different generation outcomes
type mockLLMClient struct {
	responses []string
	errs      []error
	callCount int
	recorded  [][]llm.Message
	model     string
}

func (m *mockLLMClient) GetModel() string {
	return m.model
}

func (m *mockLLMClient) GenerateInference(
	ctx context.Context,
	messages []llm.Message,
	callback func(string) error,
	options ...llm.LLMOption,
) error {
	call := m.callCount
	m.callCount++
	m.recorded = append(m.recorded, messages)

	if call < len(m.errs) && m.errs[call] != nil {
		return m.errs[call]
	}
	if call < len(m.responses) {
		return callback(m.responses[call])
	}
	return callback("Default response")
}

type stubRetriever struct {
	hits []vectorstore.ScoredChunk
	err  error
	k    int
}

func (s *stubRetriever) Search(ctx context.Context, query string, k int) ([]vectorstore.ScoredChunk, error) {
	s.k = k
	return s.hits, s.err
}

func hit(source string, page int, text string, score float64) vectorstore.ScoredChunk {
	return vectorstore.ScoredChunk{
		Chunk: chunker.Chunk{Source: source, Page: page, Text: text},
		Score: score,
	}
}

func TestAskAnswersFromContext(t *testing.T) {
	client := &mockLLMClient{responses: []string{"Coverage starts on day one."}, model: "gpt-4o"}
	retriever := &stubRetriever{hits: []vectorstore.ScoredChunk{
		hit("policy.pdf", 1, "coverage begins immediately", 0.9),
		hit("policy.pdf", 2, "exclusions apply", 0.8),
		hit("faq.pdf", 1, "common questions", 0.7),
	}}

	a := NewAgentBuilder().
		WithTenant("acme").
		WithClient(client).
		WithRetriever(retriever).
		Build()

	answer, err := a.Ask(context.Background(), "When does coverage start?")
	require.NoError(t, err)
	assert.Equal(t, "Coverage starts on day one.", answer.Answer)
	assert.Equal(t, []string{"policy.pdf", "faq.pdf"}, answer.Sources)
	assert.False(t, answer.FallbackUsed)
	assert.Empty(t, answer.FallbackReason)
	assert.Equal(t, 3, retriever.k)
}

func TestAskFallsBackWhenAgentPassFails(t *testing.T) {
	client := &mockLLMClient{
		errs:      []error{errors.New("context length exceeded"), nil},
		responses: []string{"", "Plain retrieval answer."},
	}
	retriever := &stubRetriever{hits: []vectorstore.ScoredChunk{
		hit("policy.pdf", 1, "coverage begins immediately", 0.9),
	}}

	a := NewAgentBuilder().
		WithTenant("acme").
		WithClient(client).
		WithRetriever(retriever).
		Build()

	answer, err := a.Ask(context.Background(), "When does coverage start?")
	require.NoError(t, err)
	assert.Equal(t, "Plain retrieval answer.", answer.Answer)
	assert.True(t, answer.FallbackUsed)
	assert.Contains(t, answer.FallbackReason, "context length exceeded")
	assert.Equal(t, 2, client.callCount)
}

func TestAskErrorsWhenBothPassesFail(t *testing.T) {
	client := &mockLLMClient{
		errs: []error{errors.New("primary down"), errors.New("fallback down")},
	}
	retriever := &stubRetriever{hits: []vectorstore.ScoredChunk{
		hit("policy.pdf", 1, "text", 0.9),
	}}

	a := NewAgentBuilder().
		WithTenant("acme").
		WithClient(client).
		WithRetriever(retriever).
		Build()

	_, err := a.Ask(context.Background(), "question")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primary down")
	assert.Contains(t, err.Error(), "fallback down")
}

func TestAskErrorsWhenRetrievalFails(t *testing.T) {
	client := &mockLLMClient{}
	retriever := &stubRetriever{err: errors.New("index unavailable")}

	a := NewAgentBuilder().
		WithTenant("acme").
		WithClient(client).
		WithRetriever(retriever).
		Build()

	_, err := a.Ask(context.Background(), "question")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index unavailable")
	assert.Zero(t, client.callCount)
}

func TestConversationHistoryCarriesAcrossTurns(t *testing.T) {
	client := &mockLLMClient{responses: []string{"First answer.", "Second answer."}}
	retriever := &stubRetriever{hits: []vectorstore.ScoredChunk{
		hit("policy.pdf", 1, "text", 0.9),
	}}

	a := NewAgentBuilder().
		WithTenant("acme").
		WithClient(client).
		WithRetriever(retriever).
		Build()

	_, err := a.Ask(context.Background(), "first question")
	require.NoError(t, err)
	_, err = a.Ask(context.Background(), "second question")
	require.NoError(t, err)

	require.Len(t, client.recorded, 2)
	second := client.recorded[1]
	require.Len(t, second, 3)
	assert.Equal(t, "first question", second[0].Content)
	assert.Equal(t, "First answer.", second[1].Content)
	assert.Equal(t, "second question", second[2].Content)
}

func TestResetMemory(t *testing.T) {
	client := &mockLLMClient{responses: []string{"answer"}}
	retriever := &stubRetriever{hits: []vectorstore.ScoredChunk{
		hit("policy.pdf", 1, "text", 0.9),
	}}

	a := NewAgentBuilder().
		WithTenant("acme").
		WithClient(client).
		WithRetriever(retriever).
		Build()

	_, err := a.Ask(context.Background(), "question")
	require.NoError(t, err)
	require.NotEmpty(t, a.Conversation().Messages)

	a.ResetMemory()
	assert.Empty(t, a.Conversation().Messages)
}

func TestBuilderDefaults(t *testing.T) {
	a := NewAgentBuilder().
		WithTenant("acme").
		WithClient(&mockLLMClient{model: "gpt-4o"}).
		WithRetriever(&stubRetriever{}).
		Build()

	assert.Equal(t, defaultTopK, a.config.TopK)
	assert.Equal(t, "gpt-4o", a.Model())
	assert.NotNil(t, a.Conversation())
	assert.Equal(t, "acme", a.Conversation().ID)
}
