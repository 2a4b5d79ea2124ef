// Package models defines core data structures for items, queries, and search results.
package models

// Reserved metadata keys derived at ingestion time. User-supplied values for
// these keys are overwritten before a record is stored.
const (
	MetaEntityID    = "entity_id"
	MetaHasText     = "has_text"
	MetaHasImage    = "has_image"
	MetaVectorIndex = "vector_index"
)

// Item is the ingestion input. At least one of Text/Image must be set.
// Image is either an http(s) URL or a base64-encoded image (optionally a data URI).
type Item struct {
	Text     string         `json:"text,omitempty"`
	Image    string         `json:"image,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Validate checks that the item carries at least one modality.
func (it *Item) Validate() error {
	if it.Text == "" && it.Image == "" {
		return NewValidationError("at least one of 'text' or 'image' must be provided")
	}
	return nil
}

// VectorRecord is one stored vector. An ingested item produces one record per
// present modality, all sharing the entity_id metadata key.
type VectorRecord struct {
	ID       string
	Vector   []float32
	Document string
	Metadata map[string]any
}

// RecordMetadata merges user metadata with the derived keys for one record of
// an entity. Reserved keys always reflect the derived values.
func RecordMetadata(user map[string]any, entityID string, hasText, hasImage bool, vectorIndex int) map[string]any {
	meta := make(map[string]any, len(user)+4)
	for k, v := range user {
		meta[k] = v
	}
	meta[MetaEntityID] = entityID
	meta[MetaHasText] = hasText
	meta[MetaHasImage] = hasImage
	meta[MetaVectorIndex] = vectorIndex
	return meta
}
