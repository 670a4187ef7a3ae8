package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/ds"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/agentcache"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/db"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/indexer"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/vectorstore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const maxUploadBytes = 50 << 20 // 50 MB

type CompanyService struct {
	companies db.CompanyStore
	syncer    *indexer.Synchronizer
	agents    *agentcache.Manager
}

func ProvideCompanyService(companies db.CompanyStore, syncer *indexer.Synchronizer, agents *agentcache.Manager) *CompanyService {
	return &CompanyService{
		companies: companies,
		syncer:    syncer,
		agents:    agents,
	}
}

func (s *CompanyService) CreateCompany(ctx context.Context, req *CreateCompanyRequest) (*db.CompanyModel, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, status.Error(codes.InvalidArgument, "Company name cannot be empty")
	}
	if req.ModelName == "" {
		return nil, status.Error(codes.InvalidArgument, "Model name cannot be empty")
	}
	if req.Temperature < 0 || req.Temperature > 2 {
		return nil, status.Error(codes.InvalidArgument, "Temperature must be within [0, 2]")
	}

	existing, err := s.companies.Get(ctx, req.Name)
	if err != nil {
		return nil, status.Error(codes.Internal, "Failed to load company: "+err.Error())
	}
	if existing != nil {
		return nil, status.Error(codes.AlreadyExists, "Company already exists: "+req.Name)
	}

	company := &db.CompanyModel{
		Name:        req.Name,
		ModelName:   req.ModelName,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		UseOCR:      req.UseOCR,
		CreatedOn:   time.Now().Unix(),
	}

	if err := s.companies.Save(ctx, company); err != nil {
		return nil, status.Error(codes.Internal, "Failed to save company: "+err.Error())
	}

	if err := os.MkdirAll(s.syncer.CompanyDir(company.Name), 0o755); err != nil {
		return nil, status.Error(codes.Internal, "Failed to create company directory: "+err.Error())
	}

	logger.Info("Created company", zap.String("company", company.Name), zap.String("model", company.ModelName))
	return company, nil
}

// UpdateCompany applies the set fields and invalidates any cached agent,
// since a model or temperature change must take effect on the next
// question.
func (s *CompanyService) UpdateCompany(ctx context.Context, req *UpdateCompanyRequest) (*db.CompanyModel, error) {
	company, err := s.company(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	if req.ModelName != nil {
		if *req.ModelName == "" {
			return nil, status.Error(codes.InvalidArgument, "Model name cannot be empty")
		}
		company.ModelName = *req.ModelName
	}
	if req.Temperature != nil {
		if *req.Temperature < 0 || *req.Temperature > 2 {
			return nil, status.Error(codes.InvalidArgument, "Temperature must be within [0, 2]")
		}
		company.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		company.MaxTokens = *req.MaxTokens
	}
	if req.UseOCR != nil {
		company.UseOCR = *req.UseOCR
	}

	if err := s.companies.Save(ctx, company); err != nil {
		return nil, status.Error(codes.Internal, "Failed to save company: "+err.Error())
	}

	s.agents.ForceRemove(company.Name)
	return company, nil
}

// DeleteCompany removes the tenant and everything it owns: source PDFs,
// the vector index with its ledger, the cached agent, and the stored
// configuration.
func (s *CompanyService) DeleteCompany(ctx context.Context, name string) error {
	company, err := s.company(ctx, name)
	if err != nil {
		return err
	}

	s.agents.ForceRemove(company.Name)

	if err := s.syncer.Wipe(company.Name); err != nil {
		return status.Error(codes.Internal, "Failed to remove vector index: "+err.Error())
	}
	if err := os.RemoveAll(s.syncer.CompanyDir(company.Name)); err != nil {
		return status.Error(codes.Internal, "Failed to remove company documents: "+err.Error())
	}
	if err := s.companies.Delete(ctx, company.Name); err != nil {
		return status.Error(codes.Internal, "Failed to delete company: "+err.Error())
	}

	logger.Info("Deleted company", zap.String("company", name))
	return nil
}

func (s *CompanyService) ListCompanies(ctx context.Context) ([]db.CompanyModel, error) {
	companies, err := s.companies.All(ctx)
	if err != nil {
		return nil, status.Error(codes.Internal, "Failed to list companies: "+err.Error())
	}
	return companies, nil
}

// UploadPDF stores the file and synchronizes the tenant's index
// incrementally, so only the new file is extracted and embedded.
func (s *CompanyService) UploadPDF(ctx context.Context, req *UploadPDFRequest) error {
	company, err := s.company(ctx, req.Company)
	if err != nil {
		return err
	}
	if err := validatePDFName(req.FileName); err != nil {
		return err
	}
	if len(req.Data) == 0 {
		return status.Error(codes.InvalidArgument, "File is empty")
	}
	if len(req.Data) > maxUploadBytes {
		return status.Error(codes.InvalidArgument, "File exceeds the 50 MB upload limit")
	}

	dir := s.syncer.CompanyDir(company.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return status.Error(codes.Internal, "Failed to create company directory: "+err.Error())
	}
	if err := os.WriteFile(filepath.Join(dir, req.FileName), req.Data, 0o644); err != nil {
		return status.Error(codes.Internal, "Failed to store file: "+err.Error())
	}

	if _, err := s.syncer.Sync(ctx, company.Name, indexer.WithOCR(company.UseOCR)); err != nil {
		return status.Error(codes.Internal, "Failed to index uploaded file: "+err.Error())
	}

	s.refreshAgent(ctx, company)
	logger.Info("Uploaded PDF", zap.String("company", company.Name), zap.String("file", req.FileName))
	return nil
}

// RemovePDF deletes the file and rebuilds the tenant's index from the
// remaining documents. Removing the last document wipes the index
// instead of failing the rebuild.
func (s *CompanyService) RemovePDF(ctx context.Context, req *RemovePDFRequest) error {
	company, err := s.company(ctx, req.Company)
	if err != nil {
		return err
	}
	if err := validatePDFName(req.FileName); err != nil {
		return err
	}

	path := filepath.Join(s.syncer.CompanyDir(company.Name), req.FileName)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return status.Error(codes.NotFound, "File not found: "+req.FileName)
		}
		return status.Error(codes.Internal, "Failed to delete file: "+err.Error())
	}

	_, err = s.syncer.Sync(ctx, company.Name, indexer.WithRebuild(true), indexer.WithOCR(company.UseOCR))
	if errors.Is(err, indexer.ErrNoDocuments) || errors.Is(err, indexer.ErrNothingIndexable) {
		// Last document gone: drop the index and the agent with it.
		if err := s.syncer.Wipe(company.Name); err != nil {
			return status.Error(codes.Internal, "Failed to remove vector index: "+err.Error())
		}
		s.agents.ForceRemove(company.Name)
		logger.Info("Removed last PDF, index wiped", zap.String("company", company.Name))
		return nil
	}
	if err != nil {
		return status.Error(codes.Internal, "Failed to rebuild index: "+err.Error())
	}

	s.refreshAgent(ctx, company)
	logger.Info("Removed PDF", zap.String("company", company.Name), zap.String("file", req.FileName))
	return nil
}

// ListPDFs reports the tenant's documents and whether each one has been
// indexed yet.
func (s *CompanyService) ListPDFs(ctx context.Context, companyName string) (*ListPDFsResponse, error) {
	company, err := s.company(ctx, companyName)
	if err != nil {
		return nil, err
	}

	matches, err := filepath.Glob(filepath.Join(s.syncer.CompanyDir(company.Name), "*.pdf"))
	if err != nil {
		return nil, status.Error(codes.Internal, "Failed to list files: "+err.Error())
	}

	processed, err := vectorstore.LoadProcessedFiles(s.syncer.IndexDir(company.Name))
	if err != nil {
		return nil, status.Error(codes.Internal, "Failed to read ledger: "+err.Error())
	}
	processedSet := ds.NewSet[string]()
	for _, name := range processed {
		processedSet.Add(name)
	}

	resp := &ListPDFsResponse{Files: []PDFInfo{}}
	for _, match := range matches {
		name := filepath.Base(match)
		resp.Files = append(resp.Files, PDFInfo{Name: name, Processed: processedSet.Contains(name)})
	}
	sort.Slice(resp.Files, func(i, j int) bool { return resp.Files[i].Name < resp.Files[j].Name })
	return resp, nil
}

// IndexStatus reports the persisted index without triggering a sync.
func (s *CompanyService) IndexStatus(ctx context.Context, companyName string) (*IndexStatusResponse, error) {
	company, err := s.company(ctx, companyName)
	if err != nil {
		return nil, err
	}

	processed, err := vectorstore.LoadProcessedFiles(s.syncer.IndexDir(company.Name))
	if err != nil {
		return nil, status.Error(codes.Internal, "Failed to read ledger: "+err.Error())
	}

	index, err := s.syncer.LoadCurrent(company.Name)
	if errors.Is(err, os.ErrNotExist) {
		return &IndexStatusResponse{Exists: false, ProcessedFiles: processed}, nil
	}
	if err != nil {
		return nil, status.Error(codes.Internal, "Failed to load index: "+err.Error())
	}

	return &IndexStatusResponse{
		Exists:         true,
		DocumentCount:  index.Count(),
		ProcessedFiles: processed,
	}, nil
}

// refreshAgent rebuilds a cached agent after an index change, since its
// retriever still points at the replaced index. Agents are created
// lazily, so nothing happens when none is cached. Best effort: the next
// question recreates it anyway if this fails.
func (s *CompanyService) refreshAgent(ctx context.Context, company *db.CompanyModel) {
	if !s.agents.Has(company.Name) {
		return
	}
	if _, err := s.agents.ForceUpdate(ctx, company); err != nil {
		logger.Log.Warn("Failed to refresh agent after index change",
			zap.String("company", company.Name), zap.Error(err))
	}
}

func (s *CompanyService) company(ctx context.Context, name string) (*db.CompanyModel, error) {
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

func validatePDFName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return status.Error(codes.InvalidArgument, "Invalid file name")
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return status.Error(codes.InvalidArgument, "Only PDF files are supported")
	}
	return nil
}
