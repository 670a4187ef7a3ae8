package db

type AgentLogModel struct {
	LogID          string   `json:"logId" bson:"_id"`
	Company        string   `json:"company" bson:"company"`
	Question       string   `json:"question" bson:"question"`
	Answer         string   `json:"answer" bson:"answer"`
	Sources        []string `json:"sources" bson:"sources"`
	Model          string   `json:"model" bson:"model"`
	FallbackUsed   bool     `json:"fallbackUsed" bson:"fallbackUsed"`
	FallbackReason string   `json:"fallbackReason,omitempty" bson:"fallbackReason,omitempty"`
	CreatedOn      int64    `json:"createdOn" bson:"createdOn"`
}

func (m AgentLogModel) Id() string { return m.LogID }

func (m AgentLogModel) CollectionName() string { return "agent_logs" }
