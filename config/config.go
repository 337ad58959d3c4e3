// Package config loads the application configuration from a YAML file.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config mirrors the structure of config.yaml.
type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	Corpus    CorpusConfig      `mapstructure:"corpus"`
	Chroma    ChromaConfig      `mapstructure:"chroma"`
	Embedding EmbeddingConfig   `mapstructure:"embedding"`
	Expansion ExpansionConfig   `mapstructure:"expansion"`
	Retrieval RetrievalConfig   `mapstructure:"retrieval"`
	Answer    AnswerConfig      `mapstructure:"answer"`
	Titles    map[string]string `mapstructure:"titles"`
	Log       LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// CorpusConfig points at the directory of source PDFs/CSV.
type CorpusConfig struct {
	Path string `mapstructure:"path"`
}

// ChromaConfig locates the persisted vector index.
type ChromaConfig struct {
	URL         string `mapstructure:"url"`
	Collection  string `mapstructure:"collection"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// EmbeddingConfig selects the embedding collaborator. Provider is "ollama"
// or "openai"; the same provider and model must serve ingestion and query
// time or stored vectors are not comparable.
type EmbeddingConfig struct {
	Provider    string `mapstructure:"provider"`
	BaseURL     string `mapstructure:"base_url"`
	Model       string `mapstructure:"model"`
	APIKeyEnv   string `mapstructure:"api_key_env"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

type ExpansionConfig struct {
	Model       string `mapstructure:"model"`
	Count       int    `mapstructure:"count"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

type RetrievalConfig struct {
	TopK          int `mapstructure:"top_k"`
	ContextChunks int `mapstructure:"context_chunks"`
}

type AnswerConfig struct {
	Model       string `mapstructure:"model"`
	Persona     string `mapstructure:"persona"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads and parses the config file at the given path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Chroma.Collection == "" {
		cfg.Chroma.Collection = "royal-archives"
	}
	if cfg.Chroma.TimeoutSecs == 0 {
		cfg.Chroma.TimeoutSecs = 30
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "ollama"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:11434"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "nomic-embed-text:v1.5"
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 30
	}
	if cfg.Expansion.Model == "" {
		cfg.Expansion.Model = "gemini-2.5-flash"
	}
	if cfg.Expansion.Count == 0 {
		cfg.Expansion.Count = 3
	}
	if cfg.Expansion.TimeoutSecs == 0 {
		cfg.Expansion.TimeoutSecs = 20
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 4
	}
	if cfg.Retrieval.ContextChunks == 0 {
		cfg.Retrieval.ContextChunks = 6
	}
	if cfg.Answer.Model == "" {
		cfg.Answer.Model = "gemini-2.5-flash"
	}
	if cfg.Answer.TimeoutSecs == 0 {
		cfg.Answer.TimeoutSecs = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}
