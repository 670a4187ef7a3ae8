package services

// Request/response types for the question answering and company
// management surfaces. The HTTP layer maps these 1:1.

type AskRequest struct {
	Company  string `json:"company"`
	Question string `json:"question"`
}

type AskResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
	Model   string   `json:"model"`
}

type AgentAskResponse struct {
	Answer         string   `json:"answer"`
	Sources        []string `json:"sources"`
	Model          string   `json:"model"`
	FallbackUsed   bool     `json:"fallbackUsed"`
	FallbackReason string   `json:"fallbackReason,omitempty"`
}

type CreateCompanyRequest struct {
	Name        string  `json:"name"`
	ModelName   string  `json:"modelName"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
	UseOCR      bool    `json:"useOcr"`
}

type UpdateCompanyRequest struct {
	Name        string   `json:"name"`
	ModelName   *string  `json:"modelName,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"maxTokens,omitempty"`
	UseOCR      *bool    `json:"useOcr,omitempty"`
}

type UploadPDFRequest struct {
	Company  string `json:"company"`
	FileName string `json:"fileName"`
	Data     []byte `json:"-"`
}

type RemovePDFRequest struct {
	Company  string `json:"company"`
	FileName string `json:"fileName"`
}

type PDFInfo struct {
	Name      string `json:"name"`
	Processed bool   `json:"processed"` // present in the tenant's index ledger
}

type ListPDFsResponse struct {
	Files []PDFInfo `json:"files"`
}

type IndexStatusResponse struct {
	Exists         bool     `json:"exists"`
	DocumentCount  int      `json:"documentCount"`
	ProcessedFiles []string `json:"processedFiles"`
}
