// Package config provides configuration loading and structs for the Mitsuke server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StoreConfig selects and configures the vector store backend.
// Backend is one of "memory", "sqlite", "qdrant".
type StoreConfig struct {
	Backend      string `yaml:"backend"`
	DatabasePath string `yaml:"database_path"` // sqlite backend
	SnapshotPath string `yaml:"snapshot_path"` // memory backend persistence file
	Collection   string `yaml:"collection"`    // qdrant collection name
	QdrantHost   string `yaml:"qdrant_host"`
	QdrantPort   int    `yaml:"qdrant_port"`
}

// EmbeddingConfig selects and configures the embedding backend.
// Backend is one of "clip" (local ONNX), "remote" (HTTP embedding server), "mock".
type EmbeddingConfig struct {
	Backend             string `yaml:"backend"`
	TextModelPath       string `yaml:"text_model_path"`
	ImageModelPath      string `yaml:"image_model_path"`
	Dimensions          int    `yaml:"dimensions"`
	MaxTokens           int    `yaml:"max_tokens"`
	CacheSize           int    `yaml:"cache_size"`
	RemoteURL           string `yaml:"remote_url"`
	FetchTimeoutSeconds int    `yaml:"fetch_timeout_seconds"` // image URL download timeout
}

// WatchConfig holds directory watch settings for automatic file ingestion.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Store.DatabasePath = expandPath(cfg.Store.DatabasePath, configDir)
	cfg.Store.SnapshotPath = expandPath(cfg.Store.SnapshotPath, configDir)
	cfg.Embedding.TextModelPath = expandPath(cfg.Embedding.TextModelPath, configDir)
	cfg.Embedding.ImageModelPath = expandPath(cfg.Embedding.ImageModelPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Save writes cfg to path as YAML. Used to persist watch directory changes
// made through the API.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
