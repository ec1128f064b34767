package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caselens/features/query"
	"caselens/internal/app"
	"caselens/internal/config"
	"caselens/internal/extract"
	"caselens/internal/metrics"
	"caselens/internal/worker"
)

type stubVectorIndex struct {
	results []query.SearchResult
}

func (s *stubVectorIndex) UpsertChunks(ctx context.Context, chunks []worker.Chunk, vectors [][]float32) error {
	return nil
}

func (s *stubVectorIndex) DeleteByItem(ctx context.Context, itemID string) error {
	return nil
}

func (s *stubVectorIndex) SearchByReference(ctx context.Context, vector []float32, reference string, limit int) ([]query.SearchResult, error) {
	return s.results, nil
}

type stubEmbedder struct{}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1}, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1}
	}
	return vectors, nil
}

type stubGenerator struct {
	answer string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return s.answer, nil
}

type stubObjectStore struct{}

func (s *stubObjectStore) FetchToTemp(ctx context.Context, bucket, key string) (string, error) {
	return "", nil
}

func testConfig() *config.Config {
	return &config.Config{
		ChunkLanguage: "portuguese",
		MaxChunkWords: 500,
		SearchTopK:    5,
		BatchSize:     10,
	}
}

func TestApp_HealthEndpoint(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	a, err := app.New(
		testConfig(), db, &stubVectorIndex{}, &stubObjectStore{},
		&stubEmbedder{}, &stubGenerator{},
		map[extract.Family]extract.Extractor{}, metrics.New(),
	)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestApp_QueryEndpoint(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	vectors := &stubVectorIndex{results: []query.SearchResult{
		{Content: "trecho", Reference: "IP 10/2024", DocumentID: "doc-1"},
	}}

	a, err := app.New(
		testConfig(), db, vectors, &stubObjectStore{},
		&stubEmbedder{}, &stubGenerator{answer: "resposta"},
		map[extract.Family]extract.Extractor{}, metrics.New(),
	)
	require.NoError(t, err)

	body := `{"reference": "IP 10/2024", "question": "Quem?"}`
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resposta")
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestApp_QueueStatsEndpoint(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"pending", "processed", "failing"}).AddRow(3, 12, 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).WillReturnRows(rows)

	a, err := app.New(
		testConfig(), db, &stubVectorIndex{}, &stubObjectStore{},
		&stubEmbedder{}, &stubGenerator{},
		map[extract.Family]extract.Extractor{}, metrics.New(),
	)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/queue/stats", nil)
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pending":3`)
}

func TestApp_MetricsEndpoint(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	a, err := app.New(
		testConfig(), db, &stubVectorIndex{}, &stubObjectStore{},
		&stubEmbedder{}, &stubGenerator{},
		map[extract.Family]extract.Extractor{}, metrics.New(),
	)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
