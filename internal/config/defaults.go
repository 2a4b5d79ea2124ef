package config

// Backend identifiers for store and embedding config.
const (
	StoreBackendMemory = "memory"
	StoreBackendSQLite = "sqlite"
	StoreBackendQdrant = "qdrant"

	EmbeddingBackendCLIP   = "clip"
	EmbeddingBackendRemote = "remote"
	EmbeddingBackendMock   = "mock"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = StoreBackendSQLite
	}
	if cfg.Store.DatabasePath == "" {
		cfg.Store.DatabasePath = "/usr/local/var/mitsuke/data/db/records.db"
	}
	if cfg.Store.SnapshotPath == "" {
		cfg.Store.SnapshotPath = "/usr/local/var/mitsuke/data/indices/records.idx"
	}
	if cfg.Store.Collection == "" {
		cfg.Store.Collection = "multimodal_embeddings"
	}
	if cfg.Store.QdrantHost == "" {
		cfg.Store.QdrantHost = "localhost"
	}
	if cfg.Store.QdrantPort == 0 {
		cfg.Store.QdrantPort = 6334
	}
	if cfg.Embedding.Backend == "" {
		cfg.Embedding.Backend = EmbeddingBackendCLIP
	}
	if cfg.Embedding.TextModelPath == "" {
		cfg.Embedding.TextModelPath = "/usr/local/var/mitsuke/data/models/clip-vit-b-32-text.onnx"
	}
	if cfg.Embedding.ImageModelPath == "" {
		cfg.Embedding.ImageModelPath = "/usr/local/var/mitsuke/data/models/clip-vit-b-32-image.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 512
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 77
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.FetchTimeoutSeconds == 0 {
		cfg.Embedding.FetchTimeoutSeconds = 10
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".jpg", ".jpeg", ".png", ".gif", ".pdf", ".docx", ".xlsx"}
	}
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
