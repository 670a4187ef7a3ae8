package memory

import (
	"context"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/llm"
	"go.uber.org/zap"
)

// ConversationManager persists per-tenant conversation buffers. The
// collection is optional: with a nil collection conversations live only
// in memory, which is enough for the core to operate without Mongo.
type ConversationManager struct {
	collection odm.OdmCollectionInterface[Conversation]
	maxMsgs    int
}

func NewConversationManager(collection odm.OdmCollectionInterface[Conversation], maxMsgs int) *ConversationManager {
	return &ConversationManager{
		collection: collection,
		maxMsgs:    maxMsgs,
	}
}

// LoadConversation loads the stored conversation for a tenant. Errors are
// swallowed so a storage hiccup never blocks a question.
func (cm *ConversationManager) LoadConversation(ctx context.Context, tenant string) *Conversation {
	if cm.collection == nil {
		return &Conversation{ID: tenant}
	}

	conversation, err := async.Await(cm.collection.FindOneByID(ctx, tenant))
	if err != nil {
		logger.Error("Failed to load conversation", zap.String("tenant", tenant), zap.Error(err))
		return &Conversation{ID: tenant}
	}
	if conversation == nil {
		return &Conversation{ID: tenant}
	}

	return conversation
}

// SaveConversation persists the conversation, trimmed to the configured
// dialogue window.
func (cm *ConversationManager) SaveConversation(ctx context.Context, conversation *Conversation) error {
	conversation.Messages = cm.trim(conversation.Messages)

	if cm.collection == nil {
		return nil
	}

	_, err := async.Await(cm.collection.Save(ctx, *conversation))
	if err != nil {
		logger.Error("Failed to save conversation", zap.String("tenant", conversation.ID), zap.Error(err))
		return err
	}

	return nil
}

// trim keeps the last maxMsgs user messages and the assistant messages
// that follow them. Fewer user messages than the limit leaves msgs
// unchanged.
func (cm *ConversationManager) trim(msgs []llm.Message) []llm.Message {
	if cm.maxMsgs <= 0 || len(msgs) == 0 {
		return msgs
	}

	usersSeen := 0
	start := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == "user" {
			usersSeen++
			if usersSeen == cm.maxMsgs {
				start = i
				break
			}
		}
	}

	return msgs[start:]
}
