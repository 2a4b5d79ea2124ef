package embedding

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hyperjump/mitsuke/internal/models"
)

func testPNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestGateway() *Gateway {
	return NewGateway(NewMockEmbedder(8), 16, time.Second)
}

func TestGatewayEmbedTextInput(t *testing.T) {
	g := newTestGateway()
	vec, err := g.EmbedTextInput(context.Background(), "ocean sunset")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 8 {
		t.Errorf("dimensions: got %d", len(vec))
	}
	again, err := g.EmbedTextInput(context.Background(), "ocean sunset")
	if err != nil {
		t.Fatal(err)
	}
	for i := range vec {
		if vec[i] != again[i] {
			t.Fatal("same text produced different embeddings")
		}
	}
}

func TestGatewayEmbedTextInput_Empty(t *testing.T) {
	g := newTestGateway()
	var merr *models.ModalityInputError
	if _, err := g.EmbedTextInput(context.Background(), "   \n"); !errors.As(err, &merr) {
		t.Errorf("whitespace text: got %v, want ModalityInputError", err)
	}
}

func TestGatewayEmbedImageInput_Base64(t *testing.T) {
	g := newTestGateway()
	raw := testPNG(t, color.RGBA{R: 200, A: 255})
	b64 := base64.StdEncoding.EncodeToString(raw)

	vec, err := g.EmbedImageInput(context.Background(), b64)
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 8 {
		t.Errorf("dimensions: got %d", len(vec))
	}

	// Data URI form resolves to the same bytes, so the same embedding.
	vec2, err := g.EmbedImageInput(context.Background(), "data:image/png;base64,"+b64)
	if err != nil {
		t.Fatal(err)
	}
	for i := range vec {
		if vec[i] != vec2[i] {
			t.Fatal("data URI and plain base64 diverged")
		}
	}
}

func TestGatewayEmbedImageInput_URL(t *testing.T) {
	raw := testPNG(t, color.RGBA{G: 120, A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(raw)
	}))
	defer srv.Close()

	g := newTestGateway()
	vec, err := g.EmbedImageInput(context.Background(), srv.URL+"/img.png")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 8 {
		t.Errorf("dimensions: got %d", len(vec))
	}
}

func TestGatewayEmbedImageInput_URLErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	g := newTestGateway()
	var merr *models.ModalityInputError
	if _, err := g.EmbedImageInput(context.Background(), srv.URL+"/missing.png"); !errors.As(err, &merr) {
		t.Errorf("404 URL: got %v, want ModalityInputError", err)
	}
	if _, err := g.EmbedImageInput(context.Background(), "http://127.0.0.1:1/x.png"); !errors.As(err, &merr) {
		t.Errorf("unreachable URL: got %v, want ModalityInputError", err)
	}
}

func TestGatewayEmbedImageInput_BadInput(t *testing.T) {
	g := newTestGateway()
	var merr *models.ModalityInputError
	if _, err := g.EmbedImageInput(context.Background(), "!!!not-base64!!!"); !errors.As(err, &merr) {
		t.Errorf("bad base64: got %v, want ModalityInputError", err)
	}
	notAnImage := base64.StdEncoding.EncodeToString([]byte("plain text"))
	if _, err := g.EmbedImageInput(context.Background(), notAnImage); !errors.As(err, &merr) {
		t.Errorf("undecodable bytes: got %v, want ModalityInputError", err)
	}
	if _, err := g.EmbedImageInput(context.Background(), ""); !errors.As(err, &merr) {
		t.Errorf("empty image: got %v, want ModalityInputError", err)
	}
}
