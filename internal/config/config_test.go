package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: 0.0.0.0
  port: 9090
store:
  backend: memory
  snapshot_path: ./data/records.idx
embedding:
  backend: mock
  dimensions: 64
watch:
  directories:
    - ./corpus
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug: got false")
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("server: got %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Store.Backend != StoreBackendMemory {
		t.Errorf("store backend: got %q", cfg.Store.Backend)
	}
	if cfg.Embedding.Backend != EmbeddingBackendMock {
		t.Errorf("embedding backend: got %q", cfg.Embedding.Backend)
	}
	if cfg.Embedding.Dimensions != 64 {
		t.Errorf("dimensions: got %d", cfg.Embedding.Dimensions)
	}

	// ./-relative paths expand against the config directory.
	want := filepath.Join(dir, "data/records.idx")
	if cfg.Store.SnapshotPath != want {
		t.Errorf("snapshot path: got %q, want %q", cfg.Store.SnapshotPath, want)
	}
	if cfg.Watch.Directories[0] != filepath.Join(dir, "corpus") {
		t.Errorf("watch dir: got %q", cfg.Watch.Directories[0])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults: got %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Store.Backend != StoreBackendSQLite {
		t.Errorf("store backend default: got %q", cfg.Store.Backend)
	}
	if cfg.Embedding.Backend != EmbeddingBackendCLIP {
		t.Errorf("embedding backend default: got %q", cfg.Embedding.Backend)
	}
	if cfg.Embedding.Dimensions != 512 {
		t.Errorf("dimensions default: got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.MaxTokens != 77 {
		t.Errorf("max tokens default: got %d", cfg.Embedding.MaxTokens)
	}
	if cfg.Embedding.FetchTimeoutSeconds != 10 {
		t.Errorf("fetch timeout default: got %d", cfg.Embedding.FetchTimeoutSeconds)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 3000
	cfg.Store.Backend = StoreBackendQdrant
	ApplyDefaults(cfg)
	if cfg.Server.Port != 3000 {
		t.Errorf("explicit port overridden: got %d", cfg.Server.Port)
	}
	if cfg.Store.Backend != StoreBackendQdrant {
		t.Errorf("explicit backend overridden: got %q", cfg.Store.Backend)
	}
	if cfg.Store.QdrantHost != "localhost" || cfg.Store.QdrantPort != 6334 {
		t.Errorf("qdrant defaults: got %s:%d", cfg.Store.QdrantHost, cfg.Store.QdrantPort)
	}
}
