// Package search runs similarity queries against the vector store.
package search

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/mitsuke/internal/embedding"
	"github.com/hyperjump/mitsuke/internal/models"
	"github.com/hyperjump/mitsuke/internal/store"
)

// Engine embeds a query into the shared vector space and ranks stored
// records by cosine similarity.
type Engine struct {
	gateway *embedding.Gateway
	store   store.VectorStore
	logger  *zap.Logger
}

// NewEngine creates a search engine with the given dependencies.
func NewEngine(gateway *embedding.Gateway, vs store.VectorStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{gateway: gateway, store: vs, logger: logger}
}

// Search validates query, embeds it according to its modality, and returns
// the top matches. Text and image queries rank the same record set; only the
// query-side embedding path differs.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := query.Validate(); err != nil {
		return nil, err
	}

	queryType := query.Type()
	var (
		vec []float32
		err error
	)
	switch queryType {
	case models.QueryTypeText:
		vec, err = e.gateway.EmbedTextInput(ctx, query.QueryText)
	case models.QueryTypeImage:
		vec, err = e.gateway.EmbedImageInput(ctx, query.QueryImage)
	}
	if err != nil {
		return nil, err
	}

	matches, err := e.store.Query(ctx, vec, query.TopK, query.FilterMetadata)
	if err != nil {
		return nil, err
	}

	results := make([]*models.SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, &models.SearchResult{
			ID:              m.ID,
			SimilarityScore: similarityScore(m.Distance),
			Metadata:        m.Metadata,
			Document:        m.Document,
		})
	}

	e.logger.Debug("search completed",
		zap.String("query_type", queryType),
		zap.Int("top_k", query.TopK),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", time.Since(startTime)),
	)
	return &models.SearchResponse{
		QueryType: queryType,
		Results:   results,
		QueryTime: time.Since(startTime).Milliseconds(),
	}, nil
}

// similarityScore converts a cosine distance to a similarity rounded to four
// decimal places. The value is not clamped; slightly negative scores can
// occur for near-orthogonal vectors.
func similarityScore(distance float64) float64 {
	return math.Round((1-distance)*10000) / 10000
}
