package models

import (
	"errors"
	"testing"
)

func TestItemValidate(t *testing.T) {
	item := &Item{}
	var verr *ValidationError
	if err := item.Validate(); !errors.As(err, &verr) {
		t.Errorf("empty item: got %v, want ValidationError", err)
	}
	if err := (&Item{Text: "ocean sunset"}).Validate(); err != nil {
		t.Errorf("text-only item: got %v", err)
	}
	if err := (&Item{Image: "aGVsbG8="}).Validate(); err != nil {
		t.Errorf("image-only item: got %v", err)
	}
}

func TestSearchQueryValidate_ExactlyOneModality(t *testing.T) {
	var verr *ValidationError
	if err := (&SearchQuery{}).Validate(); !errors.As(err, &verr) {
		t.Errorf("no modality: got %v, want ValidationError", err)
	}
	q := &SearchQuery{QueryText: "cats", QueryImage: "aGVsbG8="}
	if err := q.Validate(); !errors.As(err, &verr) {
		t.Errorf("both modalities: got %v, want ValidationError", err)
	}
}

func TestSearchQueryValidate_TopK(t *testing.T) {
	q := &SearchQuery{QueryText: "cats"}
	if err := q.Validate(); err != nil {
		t.Fatal(err)
	}
	if q.TopK != DefaultTopK {
		t.Errorf("default top_k: got %d, want %d", q.TopK, DefaultTopK)
	}

	var verr *ValidationError
	q = &SearchQuery{QueryText: "cats", TopK: 101}
	if err := q.Validate(); !errors.As(err, &verr) {
		t.Errorf("top_k=101: got %v, want ValidationError", err)
	}
	q = &SearchQuery{QueryText: "cats", TopK: -1}
	if err := q.Validate(); !errors.As(err, &verr) {
		t.Errorf("top_k=-1: got %v, want ValidationError", err)
	}
	q = &SearchQuery{QueryText: "cats", TopK: 100}
	if err := q.Validate(); err != nil {
		t.Errorf("top_k=100: got %v", err)
	}
}

func TestSearchQueryType(t *testing.T) {
	if got := (&SearchQuery{QueryText: "cats"}).Type(); got != QueryTypeText {
		t.Errorf("text query type: got %q", got)
	}
	if got := (&SearchQuery{QueryImage: "aGVsbG8="}).Type(); got != QueryTypeImage {
		t.Errorf("image query type: got %q", got)
	}
}

func TestDeleteRequestValidate(t *testing.T) {
	var verr *ValidationError
	if err := (&DeleteRequest{}).Validate(); !errors.As(err, &verr) {
		t.Errorf("empty ids: got %v, want ValidationError", err)
	}
	if err := (&DeleteRequest{IDs: []string{"a", ""}}).Validate(); !errors.As(err, &verr) {
		t.Errorf("blank id: got %v, want ValidationError", err)
	}
	if err := (&DeleteRequest{IDs: []string{"a"}}).Validate(); err != nil {
		t.Errorf("valid ids: got %v", err)
	}
}

func TestRecordMetadata_ReservedKeys(t *testing.T) {
	user := map[string]any{
		"category":  "nature",
		"entity_id": "spoofed",
		"has_text":  "yes",
	}
	meta := RecordMetadata(user, "e-1", true, false, 0)
	if meta[MetaEntityID] != "e-1" {
		t.Errorf("entity_id: got %v", meta[MetaEntityID])
	}
	if meta[MetaHasText] != true || meta[MetaHasImage] != false {
		t.Errorf("modality flags: got %v / %v", meta[MetaHasText], meta[MetaHasImage])
	}
	if meta[MetaVectorIndex] != 0 {
		t.Errorf("vector_index: got %v", meta[MetaVectorIndex])
	}
	if meta["category"] != "nature" {
		t.Errorf("user key lost: %v", meta)
	}
	if user[MetaEntityID] != "spoofed" {
		t.Error("caller map was mutated")
	}
}
