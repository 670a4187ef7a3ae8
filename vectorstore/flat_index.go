package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/chunker"
)

const indexFileName = "index.json"

type indexEntry struct {
	Chunk  chunker.Chunk `json:"chunk"`
	Vector []float32     `json:"vector"`
}

type indexFile struct {
	Entries []indexEntry `json:"entries"`
}

// FlatIndex is a brute-force cosine-similarity index persisted as a single
// JSON file inside a tenant's vector directory.
type FlatIndex struct {
	mu       sync.RWMutex
	embedder Embedder
	entries  []indexEntry
}

func NewFlatIndex(embedder Embedder) *FlatIndex {
	return &FlatIndex{embedder: embedder}
}

// IndexFileExists reports whether dir holds a persisted index.
func IndexFileExists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, indexFileName))
	return err == nil
}

// LoadFlatIndex reads the persisted index from dir. A missing file
// surfaces as an os.ErrNotExist error for callers to branch on.
func LoadFlatIndex(dir string, embedder Embedder) (*FlatIndex, error) {
	data, err := os.ReadFile(filepath.Join(dir, indexFileName))
	if err != nil {
		return nil, err
	}

	var file indexFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	return &FlatIndex{embedder: embedder, entries: file.Entries}, nil
}

func (x *FlatIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

func (x *FlatIndex) IsValid() bool {
	return x.Count() > 0
}

func (x *FlatIndex) Add(ctx context.Context, chunks []chunker.Chunk) error {
	added := make([]indexEntry, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := x.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return err
		}
		added = append(added, indexEntry{Chunk: chunk, Vector: vector})
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries = append(x.entries, added...)
	return nil
}

// Save writes the index atomically: a temp file in dir is renamed over
// the previous index so readers never observe a partial write.
func (x *FlatIndex) Save(dir string) error {
	x.mu.RLock()
	data, err := json.MarshalIndent(indexFile{Entries: x.entries}, "", "  ")
	x.mu.RUnlock()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, indexFileName+".tmp*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), filepath.Join(dir, indexFileName))
}

func (x *FlatIndex) Search(ctx context.Context, query string, k int) ([]ScoredChunk, error) {
	if k <= 0 {
		return nil, errors.New("k must be positive")
	}

	queryVector, err := x.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	results := make([]ScoredChunk, 0, len(x.entries))
	for _, entry := range x.entries {
		results = append(results, ScoredChunk{
			Chunk: entry.Chunk,
			Score: cosineSimilarity(queryVector, entry.Vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
