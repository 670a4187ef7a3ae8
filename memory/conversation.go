package memory

import (
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/llm"
)

// Conversation is the dialogue buffer backing one tenant's agent.
type Conversation struct {
	ID       string        `bson:"_id"` // tenant name
	Messages []llm.Message `bson:"messages"`
}

func NewConversation(tenant string) *Conversation {
	return &Conversation{ID: tenant}
}

func (m Conversation) Id() string {
	return m.ID
}

func (m Conversation) CollectionName() string {
	return "conversations"
}

func (m *Conversation) AddUserMessage(content string) {
	m.Messages = append(m.Messages, llm.Message{Role: "user", Content: content})
}

func (m *Conversation) AddAssistantMessage(content string) {
	m.Messages = append(m.Messages, llm.Message{Role: "assistant", Content: content})
}

// Clear drops all buffered messages.
func (m *Conversation) Clear() {
	m.Messages = nil
}
