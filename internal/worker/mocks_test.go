package worker_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"caselens/features/queue"
	"caselens/internal/worker"
)

// Mocks

type MockQueueStore struct{ mock.Mock }

func (m *MockQueueStore) FetchPending(ctx context.Context, limit int) ([]queue.Item, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]queue.Item), args.Error(1)
}

func (m *MockQueueStore) MarkProcessed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQueueStore) RecordFailure(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

type MockObjectStore struct{ mock.Mock }

func (m *MockObjectStore) FetchToTemp(ctx context.Context, bucket, key string) (string, error) {
	args := m.Called(ctx, bucket, key)
	return args.String(0), args.Error(1)
}

type MockVectorStore struct{ mock.Mock }

func (m *MockVectorStore) UpsertChunks(ctx context.Context, chunks []worker.Chunk, vectors [][]float32) error {
	args := m.Called(ctx, chunks, vectors)
	return args.Error(0)
}

func (m *MockVectorStore) DeleteByItem(ctx context.Context, itemID string) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

type MockEmbedder struct{ mock.Mock }

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

type MockExtractor struct{ mock.Mock }

func (m *MockExtractor) Extract(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

// wordSegmenter is a trivial stand-in for the sentence segmenter: one block
// per input, empty input yields none.
type wordSegmenter struct{}

func (wordSegmenter) Segment(text string) []string {
	if text == "" {
		return nil
	}
	return []string{text}
}
