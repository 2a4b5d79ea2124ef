package embedding

import (
	"context"
	"image"
	"math"
)

// MockEmbedder is a deterministic embedder for tests. The same text (or the
// same image pixels) always gets the same embedding, so ranking and
// round-trip behavior can be asserted without model files.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns an embedder that produces deterministic embeddings of the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 512
	}
	return &MockEmbedder{dimensions: dimensions}
}

// EmbedText returns a deterministic unit vector derived from the text hash.
func (e *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return e.fromSeed(HashString(text)), nil
}

// EmbedImage returns a deterministic unit vector derived from the image
// bounds and a sparse pixel sample.
func (e *MockEmbedder) EmbedImage(ctx context.Context, img image.Image) ([]float32, error) {
	b := img.Bounds()
	h := b.Dx()*31 + b.Dy()
	step := b.Dx() / 8
	if step == 0 {
		step = 1
	}
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, _ := img.At(x, y).RGBA()
			h = 31*h + int(r>>8) + int(g>>8)*7 + int(bl>>8)*13
		}
	}
	if h < 0 {
		h = -h
	}
	return e.fromSeed(h), nil
}

func (e *MockEmbedder) fromSeed(seed int) []float32 {
	emb := make([]float32, e.dimensions)
	for i := 0; i < e.dimensions; i++ {
		emb[i] = float32(math.Sin(float64(seed*(i+1)))*0.1 + 0.01)
	}
	// Normalize to unit length for cosine similarity
	var sum float64
	for _, v := range emb {
		sum += float64(v * v)
	}
	if sum > 0 {
		norm := 1.0 / math.Sqrt(sum)
		for i := range emb {
			emb[i] *= float32(norm)
		}
	}
	return emb
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error {
	return nil
}

// HashString returns a deterministic non-negative hash of s.
func HashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	return h
}
