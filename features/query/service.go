package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"caselens/internal/middleware"
)

// ErrNoDocuments is returned when a case reference has no indexed chunks.
var ErrNoDocuments = errors.New("no indexed documents for reference")

type SearchResult struct {
	Content    string `json:"content"`
	Reference  string `json:"reference"`
	DocumentID string `json:"documentId"`
	ChunkIndex int    `json:"chunkIndex"`
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	SearchByReference(ctx context.Context, vector []float32, reference string, limit int) ([]SearchResult, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	embedder  Embedder
	store     VectorStore
	generator Generator
	topK      int
	audit     *AuditLogger
}

func NewService(e Embedder, s VectorStore, g Generator, topK int, audit *AuditLogger) *Service {
	if topK <= 0 {
		topK = 10
	}
	return &Service{embedder: e, store: s, generator: g, topK: topK, audit: audit}
}

// Answer embeds the question, retrieves the closest chunks filtered to the
// case reference and asks the model to answer from that context only.
func (s *Service) Answer(ctx context.Context, reference, question string) (string, error) {
	start := time.Now()

	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embedding question: %w", err)
	}

	results, err := s.store.SearchByReference(ctx, vec, reference, s.topK)
	if err != nil {
		return "", fmt.Errorf("searching chunks: %w", err)
	}
	if len(results) == 0 {
		return "", ErrNoDocuments
	}

	answer, err := s.generator.Generate(ctx, buildPrompt(reference, question, results))
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}

	slog.InfoContext(ctx, "answered question",
		"reference", reference,
		"chunks", len(results),
		"durationMs", time.Since(start).Milliseconds())

	if s.audit != nil {
		s.audit.Log(AuditEntry{
			Reference:     reference,
			Question:      question,
			NumChunks:     len(results),
			LatencyMs:     time.Since(start).Milliseconds(),
			CorrelationID: middleware.GetCorrelationID(ctx),
		})
	}

	return answer, nil
}

func buildPrompt(reference, question string, results []SearchResult) string {
	var b strings.Builder
	b.WriteString("You are assisting an investigator reviewing case file ")
	b.WriteString(reference)
	b.WriteString(".\nAnswer the question using only the excerpts below. ")
	b.WriteString("If the excerpts do not contain the answer, say so.\n\n")
	for _, r := range results {
		fmt.Fprintf(&b, "[document %s, part %d]\n%s\n\n", r.DocumentID, r.ChunkIndex, r.Content)
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}
