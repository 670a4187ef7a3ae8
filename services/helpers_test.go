package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/agentcache"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/db"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/extractor"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/indexer"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/llm"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/memory"
	"testing"
)

// memCompanyStore keeps companies in a map, standing in for Mongo.
type memCompanyStore struct {
	mu        sync.Mutex
	companies map[string]db.CompanyModel
}

func newMemCompanyStore() *memCompanyStore {
	return &memCompanyStore{companies: make(map[string]db.CompanyModel)}
}

func (s *memCompanyStore) Get(ctx context.Context, name string) (*db.CompanyModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.companies[name]; ok {
		out := c
		return &out, nil
	}
	return nil, nil
}

func (s *memCompanyStore) Save(ctx context.Context, company *db.CompanyModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[company.Name] = *company
	return nil
}

func (s *memCompanyStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[name]; !ok {
		return fmt.Errorf("company %q not found", name)
	}
	delete(s.companies, name)
	return nil
}

func (s *memCompanyStore) All(ctx context.Context) ([]db.CompanyModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]db.CompanyModel, 0, len(s.companies))
	for _, c := range s.companies {
		all = append(all, c)
	}
	return all, nil
}

// capturingLogStore records audit entries for assertions.
type capturingLogStore struct {
	mu        sync.Mutex
	qaLogs    []db.QALogModel
	agentLogs []db.AgentLogModel
}

func (s *capturingLogStore) SaveQALog(ctx context.Context, log db.QALogModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.qaLogs = append(s.qaLogs, log)
}

func (s *capturingLogStore) SaveAgentLog(ctx context.Context, log db.AgentLogModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agentLogs = append(s.agentLogs, log)
}

type fakeExtractor struct {
	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeExtractor) Extract(ctx context.Context, pdfPath string, useOCR bool) ([]extractor.PageText, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	name := filepath.Base(pdfPath)
	f.calls[name]++
	return []extractor.PageText{
		{Text: "policy terms for " + name, Page: 1, Source: name},
	}, nil
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

type stubLLMClient struct {
	model string
	reply string
}

func (s *stubLLMClient) GetModel() string { return s.model }

func (s *stubLLMClient) GenerateInference(
	ctx context.Context,
	messages []llm.Message,
	callback func(string) error,
	options ...llm.LLMOption,
) error {
	return callback(s.reply)
}

type testEnv struct {
	companies *memCompanyStore
	logs      *capturingLogStore
	extractor *fakeExtractor
	syncer    *indexer.Synchronizer
	agents    *agentcache.Manager
	qa        *QAService
	admin     *CompanyService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()

	e := &testEnv{
		companies: newMemCompanyStore(),
		logs:      &capturingLogStore{},
		extractor: &fakeExtractor{},
	}

	e.syncer = indexer.ProvideSynchronizer(
		filepath.Join(root, "companies"), filepath.Join(root, "vector_store"), e.extractor, stubEmbedder{})
	factory := func(model string) llm.LLMClient {
		return &stubLLMClient{model: model, reply: "Generated answer."}
	}
	conversations := memory.NewConversationManager(nil, 10)
	e.agents = agentcache.ProvideManager(e.syncer, factory, time.Hour, conversations)
	e.qa = ProvideQAService(e.companies, e.logs, e.syncer, e.agents, factory, conversations)
	e.admin = ProvideCompanyService(e.companies, e.syncer, e.agents)
	return e
}

func (e *testEnv) createCompany(t *testing.T, name string) *db.CompanyModel {
	t.Helper()
	company, err := e.admin.CreateCompany(context.Background(), &CreateCompanyRequest{
		Name:        name,
		ModelName:   "gpt-4o",
		Temperature: 0.2,
		MaxTokens:   512,
	})
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
	return company
}

func (e *testEnv) uploadPDF(t *testing.T, company, name string) {
	t.Helper()
	err := e.admin.UploadPDF(context.Background(), &UploadPDFRequest{
		Company:  company,
		FileName: name,
		Data:     []byte("%PDF-1.4 test content"),
	})
	if err != nil {
		t.Fatalf("UploadPDF failed: %v", err)
	}
}
