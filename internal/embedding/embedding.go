package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"clause-rag/internal/models"
)

// Embedder maps a text string to a fixed-length vector. Implementations must
// be deterministic for a fixed model version so stored and query vectors
// stay comparable via cosine similarity.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// LangchainEmbedder adapts a langchaingo embedder to the engine's Embedder
// capability. Backend failures are surfaced as ErrEmbedderUnavailable; retry
// policy is left to the caller.
type LangchainEmbedder struct {
	impl *embeddings.EmbedderImpl
}

// NewOpenAIEmbedder creates an embedder backed by an OpenAI-compatible API.
func NewOpenAIEmbedder(apiKey, baseURL, model string) (*LangchainEmbedder, error) {
	llm, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(strings.TrimPrefix(apiKey, "Bearer ")),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing openai client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	return &LangchainEmbedder{impl: embedder}, nil
}

// NewOllamaEmbedder creates an embedder backed by a local Ollama server.
func NewOllamaEmbedder(serverURL, model string) (*LangchainEmbedder, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing ollama client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	return &LangchainEmbedder{impl: embedder}, nil
}

// Embed generates the embedding for a single text.
func (e *LangchainEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.impl.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEmbedderUnavailable, err)
	}
	return vec, nil
}
