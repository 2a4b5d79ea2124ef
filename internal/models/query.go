package models

// Query modality as reported in the search response.
const (
	QueryTypeText  = "text"
	QueryTypeImage = "image"
)

// Default and maximum number of results for a search.
const (
	DefaultTopK = 10
	MaxTopK     = 100
)

// SearchQuery represents a similarity search request. Exactly one of
// QueryText/QueryImage must be set.
type SearchQuery struct {
	QueryText      string         `json:"query_text,omitempty"`
	QueryImage     string         `json:"query_image,omitempty"`
	TopK           int            `json:"top_k,omitempty"`
	FilterMetadata map[string]any `json:"filter_metadata,omitempty"`
}

// Validate ensures exactly one query modality is present and normalizes TopK.
// A zero TopK becomes DefaultTopK; out-of-range values are a validation error.
func (q *SearchQuery) Validate() error {
	if q.QueryText == "" && q.QueryImage == "" {
		return NewValidationError("exactly one of 'query_text' or 'query_image' must be provided")
	}
	if q.QueryText != "" && q.QueryImage != "" {
		return NewValidationError("'query_text' and 'query_image' are mutually exclusive")
	}
	if q.TopK == 0 {
		q.TopK = DefaultTopK
	}
	if q.TopK < 1 || q.TopK > MaxTopK {
		return NewValidationError("'top_k' must be between 1 and 100")
	}
	return nil
}

// Type returns the query modality ("text" or "image"). Only meaningful after
// Validate has accepted the query.
func (q *SearchQuery) Type() string {
	if q.QueryImage != "" {
		return QueryTypeImage
	}
	return QueryTypeText
}

// DeleteRequest asks for removal of stored records by id.
type DeleteRequest struct {
	IDs []string `json:"ids"`
}

// Validate ensures the id list is non-empty and contains no blank ids.
func (r *DeleteRequest) Validate() error {
	if len(r.IDs) == 0 {
		return NewValidationError("'ids' must be a non-empty list")
	}
	for _, id := range r.IDs {
		if id == "" {
			return NewValidationError("'ids' must not contain empty strings")
		}
	}
	return nil
}
