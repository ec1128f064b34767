package weaviate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	adapter "caselens/internal/adapter/weaviate"
	"caselens/internal/worker"
)

func mockWeaviate(t *testing.T, handler http.HandlerFunc) (*weaviate.Client, *httptest.Server) {
	ts := httptest.NewServer(handler)
	cfg := weaviate.Config{Host: ts.Listener.Addr().String(), Scheme: "http"}
	client, err := weaviate.NewClient(cfg)
	assert.NoError(t, err)
	return client, ts
}

func TestStore_UpsertChunks(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"version": "1.19.0"}`))
			return
		}
		assert.Equal(t, "/v1/batch/objects", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		objects := body["objects"].([]interface{})
		assert.Len(t, objects, 2)

		first := objects[0].(map[string]interface{})
		assert.Equal(t, "CaseChunk", first["class"])
		props := first["properties"].(map[string]interface{})
		assert.Equal(t, "primeiro trecho", props["content"])
		assert.Equal(t, "7", props["itemId"])
		assert.Equal(t, "IP 10/2024", props["reference"])
		assert.Equal(t, "doc-1", props["documentId"])

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode([]map[string]interface{}{{"id": "1"}, {"id": "2"}})
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	chunks := []worker.Chunk{
		{ItemID: "7", Reference: "IP 10/2024", DocumentID: "doc-1", ChunkIndex: 0, Text: "primeiro trecho"},
		{ItemID: "7", Reference: "IP 10/2024", DocumentID: "doc-1", ChunkIndex: 1, Text: "segundo trecho"},
	}
	vectors := [][]float32{{0.1, 0.2}, {0.3, 0.4}}

	err := store.UpsertChunks(context.Background(), chunks, vectors)
	assert.NoError(t, err)
}

func TestStore_UpsertChunks_CountMismatch(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"version": "1.19.0"}`))
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	err := store.UpsertChunks(context.Background(), []worker.Chunk{{Text: "a"}}, nil)
	assert.Error(t, err)
}

func TestStore_DeleteByItem(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"version": "1.19.0"}`))
			return
		}
		assert.Equal(t, "/v1/batch/objects", r.URL.Path)
		assert.Equal(t, "DELETE", r.Method)

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		match := body["match"].(map[string]interface{})
		assert.Equal(t, "CaseChunk", match["class"])
		where := match["where"].(map[string]interface{})
		assert.Equal(t, []interface{}{"itemId"}, where["path"])
		assert.Equal(t, "42", where["valueString"])

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{})
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	err := store.DeleteByItem(context.Background(), "42")
	assert.NoError(t, err)
}

func TestStore_SearchByReference(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"version": "1.19.0"}`))
			return
		}
		assert.Equal(t, "/v1/graphql", r.URL.Path)

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"Get": map[string]interface{}{
					"CaseChunk": []interface{}{
						map[string]interface{}{
							"content":    "laudo pericial assinado",
							"reference":  "IP 10/2024",
							"documentId": "doc-1",
							"chunkIndex": float64(2),
						},
					},
				},
			},
		})
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	results, err := store.SearchByReference(context.Background(), []float32{0.1, 0.2}, "IP 10/2024", 5)

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "laudo pericial assinado", results[0].Content)
	assert.Equal(t, "IP 10/2024", results[0].Reference)
	assert.Equal(t, "doc-1", results[0].DocumentID)
	assert.Equal(t, 2, results[0].ChunkIndex)
}

func TestStore_SearchByReference_GraphQLError(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"version": "1.19.0"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"errors": []map[string]interface{}{{"message": "class not found"}},
		})
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	_, err := store.SearchByReference(context.Background(), []float32{0.1}, "IP 10/2024", 5)
	assert.Error(t, err)
}
