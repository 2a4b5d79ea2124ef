// Package ingest orchestrates validation, embedding, and storage of items.
package ingest

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/mitsuke/internal/embedding"
	"github.com/hyperjump/mitsuke/internal/models"
	"github.com/hyperjump/mitsuke/internal/store"
)

// imageDocPrefixLen bounds how much of the image reference goes into the
// placeholder document for image records.
const imageDocPrefixLen = 50

// Ingestor turns items into vector records and persists them. It holds no
// state of its own; records live entirely inside the vector store.
type Ingestor struct {
	gateway *embedding.Gateway
	store   store.VectorStore
	logger  *zap.Logger
}

// NewIngestor creates an ingestor with the given dependencies.
func NewIngestor(gateway *embedding.Gateway, vs store.VectorStore, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{gateway: gateway, store: vs, logger: logger}
}

// Ingest validates item, embeds each present modality, and stores one vector
// record per modality under a fresh entity id. An embedding failure aborts
// the whole item with nothing stored.
func (ing *Ingestor) Ingest(ctx context.Context, item *models.Item) (*models.IngestResponse, error) {
	return ing.ingest(ctx, item, uuid.NewString(), uuid.NewString, nil)
}

// ingest runs the shared ingestion path. recordID generates ids in modality
// order (text first); extraMeta keys are merged into the user metadata before
// the derived keys are applied.
func (ing *Ingestor) ingest(ctx context.Context, item *models.Item, entityID string, recordID func() string, extraMeta map[string]any) (*models.IngestResponse, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	hasText := item.Text != ""
	hasImage := item.Image != ""

	userMeta := item.Metadata
	if len(extraMeta) > 0 {
		merged := make(map[string]any, len(userMeta)+len(extraMeta))
		for k, v := range userMeta {
			merged[k] = v
		}
		for k, v := range extraMeta {
			merged[k] = v
		}
		userMeta = merged
	}

	// Embed every present modality before writing anything, so a modality
	// input failure leaves no partial entity behind.
	var records []*models.VectorRecord
	vectorIndex := 0
	if hasText {
		vec, err := ing.gateway.EmbedTextInput(ctx, item.Text)
		if err != nil {
			return nil, err
		}
		records = append(records, &models.VectorRecord{
			ID:       recordID(),
			Vector:   vec,
			Document: item.Text,
			Metadata: models.RecordMetadata(userMeta, entityID, hasText, hasImage, vectorIndex),
		})
		vectorIndex++
	}
	if hasImage {
		vec, err := ing.gateway.EmbedImageInput(ctx, item.Image)
		if err != nil {
			return nil, err
		}
		records = append(records, &models.VectorRecord{
			ID:       recordID(),
			Vector:   vec,
			Document: imageDocument(item.Image),
			Metadata: models.RecordMetadata(userMeta, entityID, hasText, hasImage, vectorIndex),
		})
	}

	if err := ing.store.Add(ctx, records); err != nil {
		return nil, err
	}

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	ing.logger.Debug("ingested item",
		zap.String("entity_id", entityID),
		zap.Bool("has_text", hasText),
		zap.Bool("has_image", hasImage),
		zap.Int("records", len(records)),
	)
	return &models.IngestResponse{
		EntityID: entityID,
		IDs:      ids,
		Message:  "Successfully ingested item",
	}, nil
}

// IngestBatch applies Ingest to each item independently. One item's failure
// does not abort the others; results enumerate per-item outcomes in input
// order.
func (ing *Ingestor) IngestBatch(ctx context.Context, items []*models.Item) *models.BatchIngestResponse {
	results := make([]*models.BatchItemResult, len(items))
	for i, item := range items {
		resp, err := ing.Ingest(ctx, item)
		if err != nil {
			ing.logger.Debug("batch item failed", zap.Int("index", i), zap.Error(err))
			results[i] = &models.BatchItemResult{Index: i, Success: false, Message: err.Error()}
			continue
		}
		results[i] = &models.BatchItemResult{
			Index:    i,
			EntityID: resp.EntityID,
			IDs:      resp.IDs,
			Success:  true,
			Message:  resp.Message,
		}
	}
	return &models.BatchIngestResponse{Results: results}
}

// imageDocument builds the placeholder document stored alongside an image
// vector. Only a short prefix of the reference is kept; a base64 payload or a
// long URL would otherwise bloat every search result it appears in.
func imageDocument(ref string) string {
	if len(ref) > imageDocPrefixLen {
		ref = ref[:imageDocPrefixLen]
	}
	return "Image: " + ref
}

// Delete removes records by id and reports the count actually removed.
// A count lower than len(ids) means some ids did not exist; that is not an
// error.
func (ing *Ingestor) Delete(ctx context.Context, req *models.DeleteRequest) (int, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	removed, err := ing.store.Delete(ctx, req.IDs)
	if err != nil {
		return 0, err
	}
	ing.logger.Debug("deleted records", zap.Int("requested", len(req.IDs)), zap.Int("removed", removed))
	return removed, nil
}
