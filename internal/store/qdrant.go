// Package store: Qdrant backend for deployments with a remote vector index.
package store

import (
	"context"
	"fmt"
	"math"

	"github.com/qdrant/go-client/qdrant"

	"github.com/hyperjump/mitsuke/internal/models"
)

// payloadDocumentKey is the reserved payload key the document text is stored
// under. User metadata with this key is overwritten.
const payloadDocumentKey = "document"

// QdrantStore persists vector records in a Qdrant collection configured for
// cosine distance. Qdrant reports cosine similarity natively; this adapter
// translates it to the distance convention of the VectorStore contract
// (distance = 1 - similarity) without applying any scoring policy.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	dimensions int
}

// NewQdrantStore connects to Qdrant and ensures the collection exists with
// cosine distance and the given vector size.
func NewQdrantStore(host string, port int, collection string, dimensions int) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{Host: host, Port: port})
	if err != nil {
		return nil, fmt.Errorf("connect qdrant: %w", err)
	}
	s := &QdrantStore{client: client, collection: collection, dimensions: dimensions}
	if err := s.ensureCollection(context.Background()); err != nil {
		_ = client.Close()
		return nil, err
	}
	return s, nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return models.NewStoreUnavailableError("init", err)
	}
	if exists {
		return nil
	}
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(s.dimensions),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return models.NewStoreUnavailableError("init", err)
	}
	return nil
}

// Add upserts records as points. The document travels in the payload under
// payloadDocumentKey next to the metadata keys.
func (s *QdrantStore) Add(ctx context.Context, records []*models.VectorRecord) error {
	points := make([]*qdrant.PointStruct, len(records))
	for i, r := range records {
		if len(r.Vector) != s.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(r.Vector), s.dimensions)
		}
		payload := make(map[string]any, len(r.Metadata)+1)
		for k, v := range r.Metadata {
			payload[k] = v
		}
		payload[payloadDocumentKey] = r.Document
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(r.ID),
			Vectors: qdrant.NewVectors(r.Vector...),
			Payload: qdrant.NewValueMap(payload),
		}
	}
	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return models.NewStoreUnavailableError("add", err)
	}
	return nil
}

// Query returns up to topK nearest records. Filters become must-match
// payload conditions, so topK counts filtered records only.
func (s *QdrantStore) Query(ctx context.Context, vector []float32, topK int, filter map[string]any) ([]*Match, error) {
	if topK <= 0 {
		return nil, nil
	}
	qfilter, err := buildQdrantFilter(filter)
	if err != nil {
		return nil, err
	}
	limit := uint64(topK)
	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		Filter:         qfilter,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, models.NewStoreUnavailableError("query", err)
	}

	matches := make([]*Match, 0, len(resp))
	for _, p := range resp {
		meta := make(map[string]any, len(p.Payload))
		document := ""
		for k, v := range p.Payload {
			if k == payloadDocumentKey {
				document, _ = payloadValue(v).(string)
				continue
			}
			meta[k] = payloadValue(v)
		}
		matches = append(matches, &Match{
			ID:       p.Id.GetUuid(),
			Distance: 1 - float64(p.Score),
			Metadata: meta,
			Document: document,
		})
	}
	return matches, nil
}

func buildQdrantFilter(filter map[string]any) (*qdrant.Filter, error) {
	if len(filter) == 0 {
		return nil, nil
	}
	f := &qdrant.Filter{}
	for k, v := range filter {
		switch val := v.(type) {
		case string:
			f.Must = append(f.Must, qdrant.NewMatch(k, val))
		case bool:
			f.Must = append(f.Must, qdrant.NewMatchBool(k, val))
		case int:
			f.Must = append(f.Must, qdrant.NewMatchInt(k, int64(val)))
		case int64:
			f.Must = append(f.Must, qdrant.NewMatchInt(k, val))
		case float64:
			if val != math.Trunc(val) {
				return nil, models.NewValidationError(fmt.Sprintf("unsupported filter value for %q: non-integral number", k))
			}
			f.Must = append(f.Must, qdrant.NewMatchInt(k, int64(val)))
		default:
			return nil, models.NewValidationError(fmt.Sprintf("unsupported filter value type for %q: %T", k, v))
		}
	}
	return f, nil
}

func payloadValue(v *qdrant.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_ListValue:
		items := kind.ListValue.GetValues()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = payloadValue(item)
		}
		return out
	case *qdrant.Value_StructValue:
		out := make(map[string]any, len(kind.StructValue.GetFields()))
		for k, field := range kind.StructValue.GetFields() {
			out[k] = payloadValue(field)
		}
		return out
	default:
		return nil
	}
}

// Delete removes points by id and returns how many of the requested ids
// existed beforehand (Qdrant's delete API does not report a count).
func (s *QdrantStore) Delete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewIDUUID(id)
	}
	existing, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            pointIDs,
	})
	if err != nil {
		return 0, models.NewStoreUnavailableError("delete", err)
	}
	wait := true
	_, err = s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelector(pointIDs...),
		Wait:           &wait,
	})
	if err != nil {
		return 0, models.NewStoreUnavailableError("delete", err)
	}
	return len(existing), nil
}

// Count returns the number of stored records.
func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.Count(ctx, &qdrant.CountPoints{CollectionName: s.collection})
	if err != nil {
		return 0, models.NewStoreUnavailableError("count", err)
	}
	return int(n), nil
}

// Close closes the client connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}
