// Package config loads application configuration from YAML files.
//
// Configuration is optional everywhere: a missing file yields defaults, and
// unset fields are filled with the same defaults after parsing. Command-line
// flags are expected to override loaded values.
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// StoreConfig configures the document store backends.
type StoreConfig struct {
	// Path is the BadgerDB directory for the primary store.
	Path string `yaml:"path"`

	// FallbackDir is the flat-file store directory used when the primary
	// store cannot be opened.
	FallbackDir string `yaml:"fallback_dir"`
}

// CrawlConfig configures the crawl pipeline.
type CrawlConfig struct {
	ChunkSize     int    `yaml:"chunk_size"`
	MaxConcurrent int    `yaml:"max_concurrent"`
	UserAgent     string `yaml:"user_agent"`
	TimeoutSecs   int    `yaml:"timeout_secs"`
	Readability   bool   `yaml:"readability"`
}

// AIConfig configures the OpenAI-compatible AI services.
type AIConfig struct {
	EmbeddingHost   string `yaml:"embedding_host"`
	CompletionHost  string `yaml:"completion_host"`
	EmbeddingModel  string `yaml:"embedding_model"`
	CompletionModel string `yaml:"completion_model"`
	APIKeyEnv       string `yaml:"api_key_env"`
	EmbeddingDim    int    `yaml:"embedding_dim"`
	CacheSize       int    `yaml:"cache_size"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Store StoreConfig `yaml:"store"`
	Crawl CrawlConfig `yaml:"crawl"`
	AI    AIConfig    `yaml:"ai"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Store.Path == "" {
		cfg.Store.Path = "crawlit.db"
	}
	if cfg.Store.FallbackDir == "" {
		cfg.Store.FallbackDir = "crawlit_docs"
	}
	if cfg.Crawl.ChunkSize == 0 {
		cfg.Crawl.ChunkSize = 5000
	}
	if cfg.Crawl.MaxConcurrent == 0 {
		cfg.Crawl.MaxConcurrent = 3
	}
	if cfg.Crawl.TimeoutSecs == 0 {
		cfg.Crawl.TimeoutSecs = 30
	}
	if cfg.AI.EmbeddingHost == "" {
		cfg.AI.EmbeddingHost = "http://localhost:11434/v1"
	}
	if cfg.AI.CompletionHost == "" {
		cfg.AI.CompletionHost = cfg.AI.EmbeddingHost
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.AI.CompletionModel == "" {
		cfg.AI.CompletionModel = "gpt-4o-mini"
	}
	if cfg.AI.APIKeyEnv == "" {
		cfg.AI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.AI.EmbeddingDim == 0 {
		cfg.AI.EmbeddingDim = 1536
	}
	if cfg.AI.CacheSize == 0 {
		cfg.AI.CacheSize = 4096
	}
}
