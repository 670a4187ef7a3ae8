package vectorstore

import (
	"context"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaEmbedder embeds text through a local Ollama instance. Every call
// is bounded by the configured timeout since remote embedding calls are
// the dominant tail-latency risk during index builds.
type OllamaEmbedder struct {
	client  *api.Client
	model   string
	timeout time.Duration
}

func ProvideOllamaEmbedder(client *api.Client, model string, timeout time.Duration) *OllamaEmbedder {
	return &OllamaEmbedder{client: client, model: model, timeout: timeout}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	req := &api.EmbeddingRequest{
		Model:     e.model,
		Prompt:    text,
		KeepAlive: &api.Duration{Duration: 60 * time.Minute},
	}
	resp, err := e.client.Embeddings(ctx, req)
	if err != nil {
		return nil, err
	}

	emb64 := resp.Embedding
	emb32 := make([]float32, len(emb64))
	for i, v := range emb64 {
		emb32[i] = float32(v)
	}
	return emb32, nil
}
