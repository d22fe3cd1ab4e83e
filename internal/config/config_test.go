package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clause-rag/internal/retriever"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 512, cfg.Chunker.MaxTokens)
	require.NotNil(t, cfg.Chunker.OverlapTokens)
	assert.Equal(t, 50, *cfg.Chunker.OverlapTokens)
	assert.Equal(t, "ollama", cfg.Embedder.Type)
	assert.Equal(t, "nomic-embed-text", cfg.Embedder.Model)
	assert.Equal(t, "memory", cfg.Index.Backend)
	assert.Equal(t, "contract_clauses", cfg.Index.Collection)
	assert.Equal(t, retriever.DefaultTopK, cfg.Retriever.TopK)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
chunker:
  max_tokens: 128
embedder:
  type: openai
  model: text-embedding-3-large
index:
  backend: chromem
  path: ./chromemdb
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.Chunker.MaxTokens)
	require.NotNil(t, cfg.Chunker.OverlapTokens)
	assert.Equal(t, 50, *cfg.Chunker.OverlapTokens, "unset fields still get defaults")
	assert.Equal(t, "openai", cfg.Embedder.Type)
	assert.Equal(t, "text-embedding-3-large", cfg.Embedder.Model)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Embedder.BaseURL)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.APIKeyEnv)
	assert.Equal(t, "chromem", cfg.Index.Backend)
	assert.Equal(t, "./chromemdb", cfg.Index.Path)
}

func TestLoad_ExplicitZeroOverlap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
chunker:
  max_tokens: 100
  overlap_tokens: 0
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Chunker.MaxTokens)
	require.NotNil(t, cfg.Chunker.OverlapTokens)
	assert.Equal(t, 0, *cfg.Chunker.OverlapTokens, "zero overlap is valid and must not be coerced to the default")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - not: [valid"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
