package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/ds"
	"github.com/google/uuid"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/agentcache"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/db"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/indexer"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/llm"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/memory"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/prompts"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/vectorstore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const retrievalTopK = 3

const noDocumentsAnswer = "No documents are available for this company yet. Upload a PDF to start asking questions."

type QAService struct {
	companies     db.CompanyStore
	logs          db.LogStore
	syncer        *indexer.Synchronizer
	agents        *agentcache.Manager
	clients       llm.Factory
	conversations *memory.ConversationManager
}

func ProvideQAService(companies db.CompanyStore, logs db.LogStore, syncer *indexer.Synchronizer, agents *agentcache.Manager, clients llm.Factory, conversations *memory.ConversationManager) *QAService {
	return &QAService{
		companies:     companies,
		logs:          logs,
		syncer:        syncer,
		agents:        agents,
		clients:       clients,
		conversations: conversations,
	}
}

// Ask answers a single question with plain retrieval, no dialogue
// memory. The tenant's index is synchronized first so freshly uploaded
// files are always visible.
func (s *QAService) Ask(ctx context.Context, req *AskRequest) (*AskResponse, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, status.Error(codes.InvalidArgument, "Question cannot be empty")
	}

	company, err := s.company(ctx, req.Company)
	if err != nil {
		return nil, err
	}

	index, err := s.syncer.Sync(ctx, company.Name, indexer.WithOCR(company.UseOCR))
	if errors.Is(err, indexer.ErrNoDocuments) || errors.Is(err, indexer.ErrNothingIndexable) {
		return &AskResponse{Answer: noDocumentsAnswer}, nil
	}
	if err != nil {
		return nil, status.Error(codes.Internal, "Failed to synchronize index: "+err.Error())
	}

	hits, err := index.Search(ctx, req.Question, retrievalTopK)
	if err != nil {
		return nil, status.Error(codes.Internal, "Retrieval failed: "+err.Error())
	}

	excerpts, sources := contextFromHits(hits)

	system, user, err := prompts.RenderAnswerPrompt(company.Name, req.Question, excerpts)
	if err != nil {
		return nil, status.Error(codes.Internal, "Failed to render prompt: "+err.Error())
	}

	client := s.clients(company.ModelName)
	answer, err := generate(ctx, client, []llm.Message{{Role: "user", Content: user}}, system, company)
	if err != nil {
		return nil, status.Error(codes.Internal, "Generation failed: "+err.Error())
	}

	if s.logs != nil {
		s.logs.SaveQALog(ctx, db.QALogModel{
			LogID:     uuid.NewString(),
			Company:   company.Name,
			Question:  req.Question,
			Answer:    answer,
			Model:     company.ModelName,
			CreatedOn: time.Now().Unix(),
		})
	}

	return &AskResponse{Answer: answer, Sources: sources, Model: company.ModelName}, nil
}

// AskAgent answers through the tenant's cached conversational agent.
func (s *QAService) AskAgent(ctx context.Context, req *AskRequest) (*AgentAskResponse, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, status.Error(codes.InvalidArgument, "Question cannot be empty")
	}

	company, err := s.company(ctx, req.Company)
	if err != nil {
		return nil, err
	}

	a, err := s.agents.GetOrCreate(ctx, company)
	if errors.Is(err, indexer.ErrNoDocuments) || errors.Is(err, indexer.ErrNothingIndexable) {
		return &AgentAskResponse{Answer: noDocumentsAnswer}, nil
	}
	if err != nil {
		return nil, status.Error(codes.FailedPrecondition, "Failed to build agent: "+err.Error())
	}

	answer, err := a.Ask(ctx, req.Question)
	if err != nil {
		return nil, status.Error(codes.Internal, "Agent failed: "+err.Error())
	}

	if s.conversations != nil {
		// Best effort: a failed save costs dialogue continuity across
		// restarts, never the answer.
		_ = s.conversations.SaveConversation(ctx, a.Conversation())
	}

	if answer.FallbackUsed {
		logger.Log.Warn("Agent answered via fallback",
			zap.String("company", company.Name), zap.String("reason", answer.FallbackReason))
	}

	if s.logs != nil {
		s.logs.SaveAgentLog(ctx, db.AgentLogModel{
			LogID:          uuid.NewString(),
			Company:        company.Name,
			Question:       req.Question,
			Answer:         answer.Answer,
			Sources:        answer.Sources,
			Model:          company.ModelName,
			FallbackUsed:   answer.FallbackUsed,
			FallbackReason: answer.FallbackReason,
			CreatedOn:      time.Now().Unix(),
		})
	}

	return &AgentAskResponse{
		Answer:         answer.Answer,
		Sources:        answer.Sources,
		Model:          company.ModelName,
		FallbackUsed:   answer.FallbackUsed,
		FallbackReason: answer.FallbackReason,
	}, nil
}

// ResetAgent clears the dialogue memory of a company's cached agent.
func (s *QAService) ResetAgent(ctx context.Context, companyName string) error {
	if _, err := s.company(ctx, companyName); err != nil {
		return err
	}

	if !s.agents.ResetMemory(companyName) {
		return status.Error(codes.NotFound, "No active agent for company: "+companyName)
	}
	return nil
}

// ListAgents reports the currently cached agents.
func (s *QAService) ListAgents() []agentcache.AgentInfo {
	return s.agents.List()
}

func (s *QAService) company(ctx context.Context, name string) (*db.CompanyModel, error) {
	if strings.TrimSpace(name) == "" {
		return nil, status.Error(codes.InvalidArgument, "Company cannot be empty")
	}

	company, err := s.companies.Get(ctx, name)
	if err != nil {
		return nil, status.Error(codes.Internal, "Failed to load company: "+err.Error())
	}
	if company == nil {
		return nil, status.Error(codes.NotFound, "Company not found: "+name)
	}
	return company, nil
}

func generate(ctx context.Context, client llm.LLMClient, messages []llm.Message, system string, company *db.CompanyModel) (string, error) {
	var responseContent strings.Builder
	err := client.GenerateInference(
		ctx,
		messages,
		func(chunk string) error {
			responseContent.WriteString(chunk)
			return nil
		},
		llm.WithSystemPrompt(system),
		llm.WithTemperature(company.Temperature),
		llm.WithMaxTokens(company.MaxTokens),
	)
	if err != nil {
		return "", err
	}
	return responseContent.String(), nil
}

func contextFromHits(hits []vectorstore.ScoredChunk) (string, []string) {
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
