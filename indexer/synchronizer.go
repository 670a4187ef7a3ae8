package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/SaiNageswarS/go-collection-boot/ds"
	"github.com/SaiNageswarS/go-collection-boot/linq"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/chunker"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/extractor"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/vectorstore"
	"go.uber.org/zap"
)

var (
	// ErrNoDocuments means the tenant has no PDF files to index yet.
	// Callers treat this as "no content", not a system fault.
	ErrNoDocuments = errors.New("no PDF documents for tenant")

	// ErrNothingIndexable means every present PDF yielded zero chunks.
	ErrNothingIndexable = errors.New("no extractable content in tenant documents")
)

// DocumentExtractor is the extraction capability the synchronizer needs.
type DocumentExtractor interface {
	Extract(ctx context.Context, pdfPath string, useOCR bool) ([]extractor.PageText, error)
}

type syncOptions struct {
	useOCR  bool
	rebuild bool
}

type SyncOption func(*syncOptions)

func WithOCR(useOCR bool) SyncOption {
	return func(o *syncOptions) { o.useOCR = useOCR }
}

func WithRebuild(rebuild bool) SyncOption {
	return func(o *syncOptions) { o.rebuild = rebuild }
}

// Synchronizer keeps each tenant's vector index consistent with the PDFs
// currently present in the tenant's document directory. All index and
// ledger writes for a tenant happen under a per-tenant lock so two
// concurrent Sync calls cannot interleave the read-diff-write sequence.
type Synchronizer struct {
	companiesDir string
	vectorDir    string
	extractor    DocumentExtractor
	embedder     vectorstore.Embedder

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func ProvideSynchronizer(companiesDir, vectorDir string, ex DocumentExtractor, embedder vectorstore.Embedder) *Synchronizer {
	return &Synchronizer{
		companiesDir: companiesDir,
		vectorDir:    vectorDir,
		extractor:    ex,
		embedder:     embedder,
		locks:        make(map[string]*sync.Mutex),
	}
}

// CompanyDir is where a tenant's source PDFs live.
func (s *Synchronizer) CompanyDir(tenant string) string {
	return filepath.Join(s.companiesDir, tenant)
}

// IndexDir is where a tenant's persisted index and ledger live.
func (s *Synchronizer) IndexDir(tenant string) string {
	return filepath.Join(s.vectorDir, tenant)
}

// Sync returns a current index for the tenant, building from scratch,
// extending incrementally, or reusing the persisted index as needed.
func (s *Synchronizer) Sync(ctx context.Context, tenant string, opts ...SyncOption) (vectorstore.VectorIndex, error) {
	var options syncOptions
	for _, opt := range opts {
		opt(&options)
	}

	lock := s.tenantLock(tenant)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.listPDFs(tenant)
	if err != nil {
		return nil, err
	}

	indexDir := s.IndexDir(tenant)
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	if options.rebuild || !vectorstore.IndexFileExists(indexDir) {
		return s.rebuild(ctx, tenant, current, indexDir, options.useOCR)
	}

	idx, err := vectorstore.LoadFlatIndex(indexDir, s.embedder)
	if err != nil {
		logger.Log.Warn("Failed to load persisted index, rebuilding",
			zap.String("tenant", tenant), zap.Error(err))
		return s.rebuild(ctx, tenant, current, indexDir, options.useOCR)
	}
	if !idx.IsValid() {
		logger.Log.Warn("Persisted index is empty, rebuilding", zap.String("tenant", tenant))
		return s.rebuild(ctx, tenant, current, indexDir, options.useOCR)
	}

	processed, err := vectorstore.LoadProcessedFiles(indexDir)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	newFiles := subtract(current, processed)
	if len(newFiles) == 0 {
		return idx, nil
	}

	logger.Info("Indexing new tenant documents",
		zap.String("tenant", tenant), zap.Strings("files", newFiles))

	chunks, extracted := s.extractAll(ctx, tenant, newFiles, options.useOCR)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(chunks) > 0 {
		if err := idx.Add(ctx, chunks); err != nil {
			return nil, fmt.Errorf("embed new documents: %w", err)
		}
		if err := idx.Save(indexDir); err != nil {
			return nil, fmt.Errorf("persist index: %w", err)
		}
	}

	// Files that failed extraction stay out of the ledger so the next
	// sync retries them.
	if len(extracted) > 0 {
		if err := vectorstore.SaveProcessedFiles(indexDir, append(processed, extracted...)); err != nil {
			return nil, fmt.Errorf("persist ledger: %w", err)
		}
	}

	return idx, nil
}

// LoadCurrent loads the persisted index without synchronizing, for
// status reporting. Returns os.ErrNotExist when no index has been built.
func (s *Synchronizer) LoadCurrent(tenant string) (vectorstore.VectorIndex, error) {
	return vectorstore.LoadFlatIndex(s.IndexDir(tenant), s.embedder)
}

// Wipe removes a tenant's index directory (ledger included). Used when a
// tenant is deleted or its last document is removed.
func (s *Synchronizer) Wipe(tenant string) error {
	lock := s.tenantLock(tenant)
	lock.Lock()
	defer lock.Unlock()
	return os.RemoveAll(s.IndexDir(tenant))
}

func (s *Synchronizer) rebuild(ctx context.Context, tenant string, files []string, indexDir string, useOCR bool) (vectorstore.VectorIndex, error) {
	chunks, extracted := s.extractAll(ctx, tenant, files, useOCR)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: tenant %q", ErrNothingIndexable, tenant)
	}

	idx := vectorstore.NewFlatIndex(s.embedder)
	if err := idx.Add(ctx, chunks); err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}
	if err := idx.Save(indexDir); err != nil {
		return nil, fmt.Errorf("persist index: %w", err)
	}
	if err := vectorstore.SaveProcessedFiles(indexDir, extracted); err != nil {
		return nil, fmt.Errorf("persist ledger: %w", err)
	}

	logger.Info("Rebuilt tenant index",
		zap.String("tenant", tenant),
		zap.Int("documents", len(extracted)),
		zap.Int("chunks", idx.Count()))
	return idx, nil
}

type extraction struct {
	file  string
	pages []extractor.PageText
	ok    bool
}

// extractAll runs extraction and chunking for the given files on worker
// tasks. A file that fails extraction is logged and skipped; it never
// aborts the batch. Returns the combined chunks and the filenames that
// extracted successfully.
func (s *Synchronizer) extractAll(ctx context.Context, tenant string, files []string, useOCR bool) ([]chunker.Chunk, []string) {
	dir := s.CompanyDir(tenant)

	tasks := make([]<-chan async.Result[extraction], 0, len(files))
	for _, f := range files {
		file := f
		tasks = append(tasks, async.Go(func() (extraction, error) {
			pages, err := s.extractor.Extract(ctx, filepath.Join(dir, file), useOCR)
			if err != nil {
				logger.Error("Failed to extract PDF, skipping file",
					zap.String("tenant", tenant), zap.String("file", file), zap.Error(err))
				return extraction{file: file}, nil
			}
			return extraction{file: file, pages: pages, ok: true}, nil
		}))
	}

	results, _ := async.AwaitAll(tasks...)

	var chunks []chunker.Chunk
	var extracted []string
	for _, res := range results {
		if !res.ok {
			continue
		}
		chunks = append(chunks, chunker.Split(res.pages)...)
		extracted = append(extracted, res.file)
	}
	return chunks, extracted
}

func (s *Synchronizer) listPDFs(tenant string) ([]string, error) {
	dir := s.CompanyDir(tenant)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("%w: tenant %q", ErrNoDocuments, tenant)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: tenant %q", ErrNoDocuments, tenant)
	}

	return linq.Map(matches, filepath.Base), nil
}

func (s *Synchronizer) tenantLock(tenant string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[tenant]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[tenant] = lock
	}
	return lock
}

func subtract(current, processed []string) []string {
	seen := ds.NewSet[string]()
	for _, f := range processed {
		seen.Add(f)
	}

	var out []string
	for _, f := range current {
		if !seen.Contains(f) {
			out = append(out, f)
		}
	}
	return out
}
