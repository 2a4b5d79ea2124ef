package embedding

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/mitsuke/pkg/utils"
)

// RemoteEmbedder calls an external embedding server over HTTP. The server is
// expected to expose POST <base>/embed/text and POST <base>/embed/image,
// both returning {"embedding": [...]}. Text and image endpoints must encode
// into the same vector space (e.g. a CLIP serving container).
type RemoteEmbedder struct {
	baseURL    string
	dimensions int
	client     *http.Client
}

type embedTextRequest struct {
	Text string `json:"text"`
}

type embedImageRequest struct {
	Image string `json:"image"` // base64-encoded PNG
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewRemoteEmbedder creates a remote embedder for the given base URL and
// expected dimensionality.
func NewRemoteEmbedder(baseURL string, dimensions int, timeout time.Duration) *RemoteEmbedder {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteEmbedder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		dimensions: dimensions,
		client:     &http.Client{Timeout: timeout},
	}
}

// EmbedText requests a text embedding from the server.
func (e *RemoteEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return e.post(ctx, "/embed/text", embedTextRequest{Text: text})
}

// EmbedImage encodes img as PNG and requests an image embedding from the server.
func (e *RemoteEmbedder) EmbedImage(ctx context.Context, img image.Image) ([]float32, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	req := embedImageRequest{Image: base64.StdEncoding.EncodeToString(buf.Bytes())}
	return e.post(ctx, "/embed/image", req)
}

func (e *RemoteEmbedder) post(ctx context.Context, path string, payload any) ([]float32, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding server request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedding server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(out.Embedding) != e.dimensions {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(out.Embedding), e.dimensions)
	}
	utils.NormalizeL2(out.Embedding)
	return out.Embedding, nil
}

// Dimensions returns the embedding dimension.
func (e *RemoteEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for RemoteEmbedder.
func (e *RemoteEmbedder) Close() error {
	return nil
}
