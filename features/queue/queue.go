package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Content types as stored in ingest_queue.content_type.
const (
	ContentStructured = "E"
	ContentBinary     = "B"
)

// Actions as stored in ingest_queue.action.
const (
	ActionInsert = "I"
	ActionDelete = "E"
)

// Item is one unit of ingestion work. ProcessedAt is nil while the item is
// pending and is set exactly once, by the drain worker, after the item's
// side effects have completed.
type Item struct {
	ID           int64      `json:"id"`
	Reference    string     `json:"reference"`
	DocumentID   string     `json:"document_id"`
	ContentType  string     `json:"content_type"`
	Action       string     `json:"action"`
	Payload      string     `json:"payload"`
	EnqueuedAt   time.Time  `json:"enqueued_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	FailureCount int        `json:"failure_count"`
	LastError    string     `json:"last_error,omitempty"`
}

// BinaryPayload addresses a blob in object storage. It is decoded from the
// payload column when ContentType is ContentBinary.
type BinaryPayload struct {
	Bucket string `json:"bucket"`
	Hash   string `json:"hash"`
}

// DecodeBinaryPayload parses the payload of a binary item.
func DecodeBinaryPayload(payload string) (BinaryPayload, error) {
	var bp BinaryPayload
	if err := json.Unmarshal([]byte(payload), &bp); err != nil {
		return BinaryPayload{}, fmt.Errorf("decode binary payload: %w", err)
	}
	if bp.Bucket == "" || bp.Hash == "" {
		return BinaryPayload{}, fmt.Errorf("decode binary payload: missing bucket or hash")
	}
	return bp, nil
}

// Stats summarizes the state of the queue for the admin endpoint.
type Stats struct {
	Pending   int `json:"pending"`
	Processed int `json:"processed"`
	Failing   int `json:"failing"`
}
