package worker

import (
	"context"

	"caselens/features/queue"
)

// Chunk is one bounded block of text from one queue item, the unit of
// vector indexing.
type Chunk struct {
	ItemID     string
	Reference  string
	DocumentID string
	ChunkIndex int
	Text       string
}

type QueueStore interface {
	FetchPending(ctx context.Context, limit int) ([]queue.Item, error)
	MarkProcessed(ctx context.Context, id int64) error
	RecordFailure(ctx context.Context, id int64, reason string) error
}

type ObjectStore interface {
	FetchToTemp(ctx context.Context, bucket, key string) (string, error)
}

type VectorStore interface {
	UpsertChunks(ctx context.Context, chunks []Chunk, vectors [][]float32) error
	DeleteByItem(ctx context.Context, itemID string) error
}

type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type Segmenter interface {
	Segment(text string) []string
}
