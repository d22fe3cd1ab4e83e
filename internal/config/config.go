package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"clause-rag/internal/retriever"
)

// CorpusConfig locates the benchmark clause corpus.
type CorpusConfig struct {
	Dir      string         `yaml:"dir"`
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds the Postgres corpus store connection. The password
// is referenced by env var name, never stored in the file.
type DatabaseConfig struct {
	DSN         string `yaml:"dsn"`
	PasswordEnv string `yaml:"password_env"`
	Debug       bool   `yaml:"debug"`
}

// ChunkerConfig configures the token windows clauses are split into.
// OverlapTokens is a pointer so an explicit zero, a valid overlap, is
// distinguishable from an absent field.
type ChunkerConfig struct {
	MaxTokens     int  `yaml:"max_tokens"`
	OverlapTokens *int `yaml:"overlap_tokens"`
}

// EmbedderConfig selects and configures the embedding backend.
type EmbedderConfig struct {
	Type      string `yaml:"type"` // "ollama" or "openai"
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// IndexConfig selects the vector store backend and its on-disk location.
type IndexConfig struct {
	Backend    string `yaml:"backend"` // "memory" or "chromem"
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
}

// RetrieverConfig configures query-time behavior.
type RetrieverConfig struct {
	TopK int `yaml:"top_k"`
}

// Config is the root application configuration.
type Config struct {
	Corpus    CorpusConfig    `yaml:"corpus"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Index     IndexConfig     `yaml:"index"`
	Retriever RetrieverConfig `yaml:"retriever"`
}

// Load reads the config from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Corpus.Dir == "" {
		cfg.Corpus.Dir = "./contract_database"
	}
	if cfg.Chunker.MaxTokens == 0 {
		cfg.Chunker.MaxTokens = 512
	}
	if cfg.Chunker.OverlapTokens == nil {
		overlap := 50
		cfg.Chunker.OverlapTokens = &overlap
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "ollama"
	}
	switch cfg.Embedder.Type {
	case "ollama":
		if cfg.Embedder.BaseURL == "" {
			cfg.Embedder.BaseURL = "http://localhost:11434"
		}
		if cfg.Embedder.Model == "" {
			cfg.Embedder.Model = "nomic-embed-text"
		}
	case "openai":
		if cfg.Embedder.BaseURL == "" {
			cfg.Embedder.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.APIKeyEnv == "" {
			cfg.Embedder.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.Model == "" {
			cfg.Embedder.Model = "text-embedding-3-small"
		}
	}
	if cfg.Index.Backend == "" {
		cfg.Index.Backend = "memory"
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = "./index/clauses.gob"
	}
	if cfg.Index.Collection == "" {
		cfg.Index.Collection = "contract_clauses"
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = retriever.DefaultTopK
	}
	if cfg.Corpus.Database.PasswordEnv == "" {
		cfg.Corpus.Database.PasswordEnv = "CORPUS_DB_PASSWORD"
	}
}
