package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SaiNageswarS/go-api-boot/config"
	"github.com/SaiNageswarS/go-api-boot/dotenv"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/agentcache"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/appconfig"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/db"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/extractor"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/indexer"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/llm"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/memory"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/services"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/vectorstore"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

func main() {

	dotenv.LoadEnv()

	// load config file
	ccfgg := &appconfig.AppConfig{}
	err := config.LoadConfig("config.ini", ccfgg)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ollamaClient, err := api.ClientFromEnvironment()
	if err != nil {
		logger.Fatal("Failed to create Ollama client", zap.Error(err))
	}

	mongoClient, err := odm.GetClient()
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}

	ctx := getCancellableContext()

	if err := db.InitCompanyDB(ctx, mongoClient, ccfgg.DatabaseName); err != nil {
		logger.Fatal("Failed to ensure DB indexes", zap.Error(err))
	}

	pdfExtractor := extractor.ProvideExtractor(ccfgg.OcrLanguages)
	embedder := vectorstore.ProvideOllamaEmbedder(
		ollamaClient, ccfgg.EmbeddingModel, time.Duration(ccfgg.EmbedTimeoutSeconds)*time.Second)
	syncer := indexer.ProvideSynchronizer(ccfgg.CompaniesDir, ccfgg.VectorDir, pdfExtractor, embedder)

	clients := generationFactory(ccfgg, ollamaClient)
	conversations := memory.NewConversationManager(
		odm.CollectionOf[memory.Conversation](mongoClient, ccfgg.DatabaseName), ccfgg.AgentMaxMessages)
	agents := agentcache.ProvideManager(syncer, clients, time.Duration(ccfgg.AgentTTLSeconds)*time.Second, conversations)

	companyStore := db.ProvideCompanyStore(mongoClient, ccfgg.DatabaseName)
	logStore := db.ProvideLogStore(mongoClient, ccfgg.DatabaseName)

	qaService := services.ProvideQAService(companyStore, logStore, syncer, agents, clients, conversations)
	companyService := services.ProvideCompanyService(companyStore, syncer, agents)

	// Pre-warm agents so the first question of each tenant does not pay
	// the index build. Tenants without documents are skipped.
	companies, err := companyService.ListCompanies(ctx)
	if err != nil {
		logger.Error("Failed to list companies for pre-warm", zap.Error(err))
	}
	for i := range companies {
		if _, err := agents.GetOrCreate(ctx, &companies[i]); err != nil {
			logger.Log.Warn("Skipping agent pre-warm",
				zap.String("company", companies[i].Name), zap.Error(err))
		}
	}

	// Transport is owned by the embedding application; this process
	// keeps the core services alive until interrupted.
	logger.Info("Core services ready",
		zap.String("companiesDir", ccfgg.CompaniesDir),
		zap.String("vectorDir", ccfgg.VectorDir),
		zap.String("embeddingModel", ccfgg.EmbeddingModel),
		zap.Int("agents", len(qaService.ListAgents())))

	<-ctx.Done()
	logger.Info("Shutting down")
}

func generationFactory(ccfgg *appconfig.AppConfig, ollamaClient *api.Client) llm.Factory {
	switch ccfgg.GenerationProvider {
	case "ollama":
		return func(model string) llm.LLMClient {
			return llm.NewOllamaClient(ollamaClient, model)
		}
	default:
		return func(model string) llm.LLMClient {
			return llm.NewOpenAIClient(model)
		}
	}
}

func getCancellableContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		cancel()
	}()

	return ctx
}
