package db

type QALogModel struct {
	LogID     string `json:"logId" bson:"_id"`
	Company   string `json:"company" bson:"company"`
	Question  string `json:"question" bson:"question"`
	Answer    string `json:"answer" bson:"answer"`
	Model     string `json:"model" bson:"model"`
	CreatedOn int64  `json:"createdOn" bson:"createdOn"`
}

func (m QALogModel) Id() string { return m.LogID }

func (m QALogModel) CollectionName() string { return "qa_logs" }
