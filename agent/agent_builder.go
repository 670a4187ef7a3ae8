package agent

import (
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/llm"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/memory"
)

const defaultTopK = 3

type AgentBuilder struct {
	config       AgentConfig
	conversation *memory.Conversation
}

func NewAgentBuilder() *AgentBuilder {
	return &AgentBuilder{}
}

func (b *AgentBuilder) WithTenant(tenant string) *AgentBuilder {
	b.config.Tenant = tenant
	return b
}

func (b *AgentBuilder) WithClient(client llm.LLMClient) *AgentBuilder {
	b.config.Client = client
	return b
}

func (b *AgentBuilder) WithRetriever(retriever Retriever) *AgentBuilder {
	b.config.Retriever = retriever
	return b
}

func (b *AgentBuilder) WithTopK(k int) *AgentBuilder {
	b.config.TopK = k
	return b
}

func (b *AgentBuilder) WithTemperature(temperature float64) *AgentBuilder {
	b.config.Temperature = temperature
	return b
}

func (b *AgentBuilder) WithMaxTokens(max int) *AgentBuilder {
	b.config.MaxTokens = max
	return b
}

func (b *AgentBuilder) WithConversation(conversation *memory.Conversation) *AgentBuilder {
	b.conversation = conversation
	return b
}

func (b *AgentBuilder) Build() *Agent {
	if b.config.TopK <= 0 {
		b.config.TopK = defaultTopK
	}
	if b.conversation == nil {
		b.conversation = memory.NewConversation(b.config.Tenant)
	}
	return &Agent{config: b.config, conversation: b.conversation}
}
