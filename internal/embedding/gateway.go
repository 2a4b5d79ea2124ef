package embedding

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	// Register decoders for the image formats accepted as input.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/hyperjump/mitsuke/internal/models"
)

// maxImageBytes caps downloaded/decoded image payloads.
const maxImageBytes = 32 << 20

// Gateway turns raw modality input (text, image URL, base64 image) into
// embedding vectors. Image references are resolved here: http(s) URLs are
// fetched synchronously, anything else is treated as base64 (optionally a
// data URI). Unresolvable input surfaces as *models.ModalityInputError;
// embedder failures pass through untouched.
type Gateway struct {
	embedder Embedder
	cache    *EmbeddingCache
	fetcher  *http.Client
}

// NewGateway wraps embedder with input resolution, an LRU embedding cache of
// cacheSize entries, and an image fetch client with the given timeout.
func NewGateway(embedder Embedder, cacheSize int, fetchTimeout time.Duration) *Gateway {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	return &Gateway{
		embedder: embedder,
		cache:    NewEmbeddingCache(cacheSize),
		fetcher:  &http.Client{Timeout: fetchTimeout},
	}
}

// EmbedTextInput embeds text. Text that is empty after trimming is a
// ModalityInputError.
func (g *Gateway) EmbedTextInput(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.NewModalityInputError(models.QueryTypeText, "text must be non-empty", nil)
	}
	key := "text\x00" + text
	if cached, ok := g.cache.Get(key); ok {
		return cached, nil
	}
	vec, err := g.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	g.cache.Set(key, vec)
	return vec, nil
}

// EmbedImageInput resolves ref to image bytes, decodes them, and embeds the
// image. Fetch, decode, and base64 failures are ModalityInputErrors.
func (g *Gateway) EmbedImageInput(ctx context.Context, ref string) ([]float32, error) {
	raw, err := g.resolveImage(ctx, ref)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(raw)
	key := "image\x00" + hex.EncodeToString(sum[:])
	if cached, ok := g.cache.Get(key); ok {
		return cached, nil
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, models.NewModalityInputError(models.QueryTypeImage, "undecodable image bytes", err)
	}
	vec, err := g.embedder.EmbedImage(ctx, img)
	if err != nil {
		return nil, err
	}
	g.cache.Set(key, vec)
	return vec, nil
}

// Dimensions returns the embedding dimension of the wrapped embedder.
func (g *Gateway) Dimensions() int {
	return g.embedder.Dimensions()
}

// Close closes the wrapped embedder.
func (g *Gateway) Close() error {
	return g.embedder.Close()
}

func (g *Gateway) resolveImage(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" {
		return nil, models.NewModalityInputError(models.QueryTypeImage, "image must be non-empty", nil)
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return g.fetchImage(ctx, ref)
	}
	// Base64, optionally a data URI ("data:image/png;base64,...").
	if idx := strings.IndexByte(ref, ','); idx >= 0 && strings.HasPrefix(ref, "data:") {
		ref = ref[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(ref)
	if err != nil {
		return nil, models.NewModalityInputError(models.QueryTypeImage, "invalid base64 image", err)
	}
	return raw, nil
}

func (g *Gateway) fetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, models.NewModalityInputError(models.QueryTypeImage, "invalid image URL", err)
	}
	resp, err := g.fetcher.Do(req)
	if err != nil {
		return nil, models.NewModalityInputError(models.QueryTypeImage, "image URL unreachable", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, models.NewModalityInputError(
			models.QueryTypeImage,
			fmt.Sprintf("image URL returned status %d", resp.StatusCode),
			nil,
		)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, models.NewModalityInputError(models.QueryTypeImage, "reading image body failed", err)
	}
	return raw, nil
}
