//go:build cgo
// +build cgo

// Package embedding: CLIP ONNX backend (requires CGO and the onnxruntime library).
package embedding

import (
	"context"
	"fmt"
	"image"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/hyperjump/mitsuke/pkg/utils"
)

// CLIPEmbedder runs a pair of ONNX sessions (text encoder and image encoder)
// exported from the same CLIP checkpoint, so both modalities land in one
// vector space. Requires CGO and the onnxruntime shared library.
type CLIPEmbedder struct {
	textSession  *ort.AdvancedSession
	imageSession *ort.AdvancedSession
	dimensions   int
	maxTokens    int
	tokenizer    Tokenizer
	// Pre-allocated tensors for Run(); we update input data and read output.
	inputIDsTensor      *ort.Tensor[int64]
	attentionMaskTensor *ort.Tensor[int64]
	textOutputTensor    *ort.Tensor[float32]
	pixelValuesTensor   *ort.Tensor[float32]
	imageOutputTensor   *ort.Tensor[float32]
	mu                  sync.Mutex
}

// NewCLIPEmbedder creates a CLIP embedder from the text and image encoder
// model paths. InitializeEnvironment is called if not already done.
func NewCLIPEmbedder(textModelPath, imageModelPath string, dimensions, maxTokens int) (*CLIPEmbedder, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}

	tokenizer := &SimpleTokenizer{}
	inputIDs, attentionMask := tokenizer.Tokenize("", maxTokens)

	e := &CLIPEmbedder{
		dimensions: dimensions,
		maxTokens:  maxTokens,
		tokenizer:  tokenizer,
	}

	var err error
	e.inputIDsTensor, err = ort.NewTensor(ort.NewShape(1, int64(maxTokens)), inputIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	e.attentionMaskTensor, err = ort.NewTensor(ort.NewShape(1, int64(maxTokens)), attentionMask)
	if err != nil {
		e.destroyTensors()
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	e.textOutputTensor, err = ort.NewTensor(ort.NewShape(1, int64(dimensions)), make([]float32, dimensions))
	if err != nil {
		e.destroyTensors()
		return nil, fmt.Errorf("failed to create text output tensor: %w", err)
	}
	e.pixelValuesTensor, err = ort.NewTensor(
		ort.NewShape(1, 3, clipImageSize, clipImageSize),
		make([]float32, 3*clipImageSize*clipImageSize),
	)
	if err != nil {
		e.destroyTensors()
		return nil, fmt.Errorf("failed to create pixel_values tensor: %w", err)
	}
	e.imageOutputTensor, err = ort.NewTensor(ort.NewShape(1, int64(dimensions)), make([]float32, dimensions))
	if err != nil {
		e.destroyTensors()
		return nil, fmt.Errorf("failed to create image output tensor: %w", err)
	}

	e.textSession, err = ort.NewAdvancedSession(
		textModelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"text_embeds"},
		[]ort.ArbitraryTensor{e.inputIDsTensor, e.attentionMaskTensor},
		[]ort.ArbitraryTensor{e.textOutputTensor},
		nil,
	)
	if err != nil {
		e.destroyTensors()
		return nil, fmt.Errorf("failed to create text session: %w", err)
	}
	e.imageSession, err = ort.NewAdvancedSession(
		imageModelPath,
		[]string{"pixel_values"},
		[]string{"image_embeds"},
		[]ort.ArbitraryTensor{e.pixelValuesTensor},
		[]ort.ArbitraryTensor{e.imageOutputTensor},
		nil,
	)
	if err != nil {
		_ = e.textSession.Destroy()
		e.destroyTensors()
		return nil, fmt.Errorf("failed to create image session: %w", err)
	}
	return e, nil
}

// EmbedText runs the text encoder and returns a normalized embedding.
func (e *CLIPEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	inputIDs, attentionMask := e.tokenizer.Tokenize(text, e.maxTokens)
	copy(e.inputIDsTensor.GetData(), inputIDs)
	copy(e.attentionMaskTensor.GetData(), attentionMask)

	if err := e.textSession.Run(); err != nil {
		return nil, fmt.Errorf("text inference failed: %w", err)
	}
	return e.copyOutput(e.textOutputTensor), nil
}

// EmbedImage runs the image encoder and returns a normalized embedding.
func (e *CLIPEmbedder) EmbedImage(ctx context.Context, img image.Image) ([]float32, error) {
	pixels := PixelValues(img)

	e.mu.Lock()
	defer e.mu.Unlock()

	copy(e.pixelValuesTensor.GetData(), pixels)
	if err := e.imageSession.Run(); err != nil {
		return nil, fmt.Errorf("image inference failed: %w", err)
	}
	return e.copyOutput(e.imageOutputTensor), nil
}

func (e *CLIPEmbedder) copyOutput(t *ort.Tensor[float32]) []float32 {
	out := make([]float32, e.dimensions)
	copy(out, t.GetData()[:e.dimensions])
	utils.NormalizeL2(out)
	return out
}

// Dimensions returns the embedding dimension.
func (e *CLIPEmbedder) Dimensions() int {
	return e.dimensions
}

// Close destroys the sessions and tensors.
func (e *CLIPEmbedder) Close() error {
	var err error
	if e.textSession != nil {
		err = e.textSession.Destroy()
		e.textSession = nil
	}
	if e.imageSession != nil {
		if derr := e.imageSession.Destroy(); err == nil {
			err = derr
		}
		e.imageSession = nil
	}
	e.destroyTensors()
	return err
}

// destroyTensors checks each field at its concrete type; wrapping a nil
// *ort.Tensor in the ArbitraryTensor interface would defeat a nil check.
func (e *CLIPEmbedder) destroyTensors() {
	if e.inputIDsTensor != nil {
		_ = e.inputIDsTensor.Destroy()
		e.inputIDsTensor = nil
	}
	if e.attentionMaskTensor != nil {
		_ = e.attentionMaskTensor.Destroy()
		e.attentionMaskTensor = nil
	}
	if e.textOutputTensor != nil {
		_ = e.textOutputTensor.Destroy()
		e.textOutputTensor = nil
	}
	if e.pixelValuesTensor != nil {
		_ = e.pixelValuesTensor.Destroy()
		e.pixelValuesTensor = nil
	}
	if e.imageOutputTensor != nil {
		_ = e.imageOutputTensor.Destroy()
		e.imageOutputTensor = nil
	}
}
