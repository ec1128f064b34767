package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"caselens/features/query"
	"caselens/internal/vector"
	"caselens/internal/worker"
)

type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

// UpsertChunks writes one object per chunk with its precomputed vector.
// chunks and vectors are parallel slices.
func (s *Store) UpsertChunks(ctx context.Context, chunks []worker.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	objects := make([]*models.Object, len(chunks))
	for i, chunk := range chunks {
		objects[i] = &models.Object{
			Class: vector.ClassName,
			Properties: map[string]interface{}{
				"content":    chunk.Text,
				"itemId":     chunk.ItemID,
				"reference":  chunk.Reference,
				"documentId": chunk.DocumentID,
				"chunkIndex": chunk.ChunkIndex,
			},
			Vector: vectors[i],
		}
	}

	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return err
	}
	for _, obj := range resp {
		if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
			return fmt.Errorf("batch insert error: %s", obj.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

// DeleteByItem removes every chunk object belonging to one queue item.
func (s *Store) DeleteByItem(ctx context.Context, itemID string) error {
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(vector.ClassName).
		WithOutput("minimal").
		WithWhere(filters.Where().
			WithPath([]string{"itemId"}).
			WithOperator(filters.Equal).
			WithValueString(itemID)).
		Do(ctx)
	return err
}

// SearchByReference runs a nearVector search restricted to one case reference.
func (s *Store) SearchByReference(ctx context.Context, vec []float32, reference string, limit int) ([]query.SearchResult, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vec)

	where := filters.Where().
		WithPath([]string{"reference"}).
		WithOperator(filters.Equal).
		WithValueString(reference)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "reference"},
		{Name: "documentId"},
		{Name: "chunkIndex"},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ClassName).
		WithNearVector(nearVector).
		WithWhere(where).
		WithLimit(limit).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var results []query.SearchResult
	if data, ok := res.Data["Get"].(map[string]interface{}); ok {
		if objects, ok := data[vector.ClassName].([]interface{}); ok {
			for _, o := range objects {
				props, ok := o.(map[string]interface{})
				if !ok {
					continue
				}
				result := query.SearchResult{}
				if content, ok := props["content"].(string); ok {
					result.Content = content
				}
				if ref, ok := props["reference"].(string); ok {
					result.Reference = ref
				}
				if docID, ok := props["documentId"].(string); ok {
					result.DocumentID = docID
				}
				if idx, ok := props["chunkIndex"].(float64); ok {
					result.ChunkIndex = int(idx)
				}
				results = append(results, result)
			}
		}
	}
	return results, nil
}
