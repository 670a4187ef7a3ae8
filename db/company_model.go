package db

type CompanyModel struct {
	Name        string  `json:"name" bson:"_id"`
	ModelName   string  `json:"modelName" bson:"modelName"` // generation model, e.g. "gpt-4o"
	Temperature float64 `json:"temperature" bson:"temperature"`
	MaxTokens   int     `json:"maxTokens" bson:"maxTokens"`
	UseOCR      bool    `json:"useOcr" bson:"useOcr"` // scan page renders for diagram text during extraction
	CreatedOn   int64   `json:"createdOn" bson:"createdOn"`
}

func (m CompanyModel) Id() string { return m.Name }

func (m CompanyModel) CollectionName() string { return "companies" }
