package models

// SearchResult is a single search hit. SimilarityScore is 1 - store distance
// for the configured cosine space (higher = more similar). Scores are not
// clamped: a store whose distance metric leaves [0,2] produces scores
// outside [0,1].
type SearchResult struct {
	ID              string         `json:"id"`
	SimilarityScore float64        `json:"similarity_score"`
	Metadata        map[string]any `json:"metadata"`
	Document        string         `json:"document"`
}

// SearchResponse is the response for a search request. Results preserve the
// store's returned order (distance-ascending, so score-descending).
type SearchResponse struct {
	QueryType string          `json:"query_type"`
	Results   []*SearchResult `json:"results"`
	QueryTime int64           `json:"query_time_ms"`
}

// IngestResponse is the response for a single ingest. IDs holds one record id
// per stored modality; EntityID groups them.
type IngestResponse struct {
	EntityID string   `json:"entity_id"`
	IDs      []string `json:"ids"`
	Message  string   `json:"message"`
}

// BatchIngestRequest is the input for batch ingestion.
type BatchIngestRequest struct {
	Items []*Item `json:"items"`
}

// BatchItemResult is the per-item outcome of a batch ingest, in input order.
type BatchItemResult struct {
	Index    int      `json:"index"`
	EntityID string   `json:"entity_id,omitempty"`
	IDs      []string `json:"ids,omitempty"`
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
}

// BatchIngestResponse is the response for batch ingestion.
type BatchIngestResponse struct {
	Results []*BatchItemResult `json:"results"`
}

// DeleteResponse reports how many records were actually removed. The count
// may be lower than the number of requested ids when some did not exist.
type DeleteResponse struct {
	DeletedCount int    `json:"deleted_count"`
	Message      string `json:"message"`
}
