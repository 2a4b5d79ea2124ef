// Package embedding provides multimodal embedding via CLIP ONNX models,
// a remote embedding server, and input resolution for text and images.
package embedding

import (
	"context"
	"image"
)

// Embedder produces vector embeddings for text and images in one shared
// vector space, so embeddings of either modality are cosine-comparable.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedImage(ctx context.Context, img image.Image) ([]float32, error)
	Dimensions() int
	Close() error
}
