package embedding

import (
	"fmt"
	"time"

	"github.com/hyperjump/mitsuke/internal/config"
)

// NewEmbedder creates the embedding backend named by cfg.Backend.
// Supported backends: "clip" (local ONNX, requires CGO), "remote" (HTTP
// embedding server), "mock" (deterministic, for tests and development).
func NewEmbedder(cfg *config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Backend {
	case config.EmbeddingBackendCLIP, "":
		return NewCLIPEmbedder(cfg.TextModelPath, cfg.ImageModelPath, cfg.Dimensions, cfg.MaxTokens)
	case config.EmbeddingBackendRemote:
		if cfg.RemoteURL == "" {
			return nil, fmt.Errorf("remote embedding backend requires remote_url")
		}
		timeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
		return NewRemoteEmbedder(cfg.RemoteURL, cfg.Dimensions, timeout), nil
	case config.EmbeddingBackendMock:
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding backend: %s (supported: clip, remote, mock)", cfg.Backend)
	}
}
