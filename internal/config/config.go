package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"key"`
	Model   string `yaml:"model"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

type VectorDBConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	InMemory   bool   `yaml:"in_memory"`
}

type RAGConfig struct {
	ChunkSize      int `yaml:"chunk_size"`      // tokens per chunk
	ChunkOverlap   int `yaml:"chunk_overlap"`   // overlapping tokens between chunks
	TopK           int `yaml:"top_k"`           // raw candidates fetched per query
	MaxPerSource   int `yaml:"max_per_source"`  // diversity filter per-source cap
	MaxSources     int `yaml:"max_sources"`     // diversity filter total cap
	UpsertBatch    int `yaml:"upsert_batch"`    // records per index upsert request
	RequestTimeout int `yaml:"request_timeout"` // seconds per external call
}

type Config struct {
	EmbedLLM     LLMConfig      `yaml:"embed_llm"`
	InferenceLLM LLMConfig      `yaml:"inference_llm"`
	Database     DatabaseConfig `yaml:"database"`
	VectorDB     VectorDBConfig `yaml:"vector_db"`
	RAG          RAGConfig      `yaml:"rag"`
}

const (
	DefaultChunkSize    = 400 // tokens
	DefaultChunkOverlap = 50  // tokens
	DefaultTopK         = 8
	DefaultMaxPerSource = 3
	DefaultMaxSources   = 5
	DefaultUpsertBatch  = 100
	DefaultTimeout      = 30 // seconds
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills unset RAG parameters.
func (c *Config) ApplyDefaults() {
	if c.RAG.ChunkSize == 0 {
		c.RAG.ChunkSize = DefaultChunkSize
	}
	if c.RAG.ChunkOverlap == 0 {
		c.RAG.ChunkOverlap = DefaultChunkOverlap
	}
	if c.RAG.TopK == 0 {
		c.RAG.TopK = DefaultTopK
	}
	if c.RAG.MaxPerSource == 0 {
		c.RAG.MaxPerSource = DefaultMaxPerSource
	}
	if c.RAG.MaxSources == 0 {
		c.RAG.MaxSources = DefaultMaxSources
	}
	if c.RAG.UpsertBatch == 0 {
		c.RAG.UpsertBatch = DefaultUpsertBatch
	}
	if c.RAG.RequestTimeout == 0 {
		c.RAG.RequestTimeout = DefaultTimeout
	}
}

func (c *Config) Validate() error {
	if c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be less than chunk_size (%d)", c.RAG.ChunkOverlap, c.RAG.ChunkSize)
	}
	return nil
}
