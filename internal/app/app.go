package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"caselens/features/query"
	"caselens/features/queue"
	"caselens/internal/config"
	"caselens/internal/extract"
	"caselens/internal/metrics"
	"caselens/internal/middleware"
	"caselens/internal/text"
	"caselens/internal/worker"
)

// VectorIndex is everything the app needs from the vector database: the
// worker writes chunks, the query feature searches them.
type VectorIndex interface {
	worker.VectorStore
	query.VectorStore
}

// Embedder spans both call sites: batch embedding of chunks during ingest
// and single-text embedding of questions.
type Embedder interface {
	worker.Embedder
	query.Embedder
}

type App struct {
	Handler   http.Handler
	Scheduler *worker.Scheduler
	Processor *worker.Processor
}

// BuildExtractors wires one extractor per binary format family. The speech
// model load is the expensive step; it fails when the model directory is
// missing.
func BuildExtractors(cfg *config.Config) (map[extract.Family]extract.Extractor, error) {
	image := extract.NewImageExtractor(cfg.OCRLanguage)
	document := extract.NewDocumentExtractor(image, cfg.PdftoppmPath, cfg.TempDir)

	transcoder := extract.NewFFmpegTranscoder(cfg.FFmpegPath)
	audio, err := extract.NewAudioExtractor(cfg.SpeechModelPath, transcoder)
	if err != nil {
		return nil, fmt.Errorf("loading speech model: %w", err)
	}
	video := extract.NewVideoExtractor(audio, transcoder)

	return map[extract.Family]extract.Extractor{
		extract.FamilyDocument: document,
		extract.FamilyImage:    image,
		extract.FamilyAudio:    audio,
		extract.FamilyVideo:    video,
	}, nil
}

func New(
	cfg *config.Config,
	db *sql.DB,
	vectors VectorIndex,
	objects worker.ObjectStore,
	embedder Embedder,
	generator query.Generator,
	extractors map[extract.Family]extract.Extractor,
	m *metrics.Metrics,
) (*App, error) {
	segmenter, err := text.NewSegmenter(cfg.ChunkLanguage, cfg.MaxChunkWords)
	if err != nil {
		return nil, fmt.Errorf("loading sentence tokenizer: %w", err)
	}

	queueRepo := queue.NewPostgresRepo(db)
	queueHandler := queue.NewHandler(queueRepo)

	auditLogger, err := query.NewFileAuditLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query audit logger, falling back to stdout", "error", err)
		auditLogger = query.NewAuditLogger(os.Stdout)
	}

	queryService := query.NewService(embedder, vectors, generator, cfg.SearchTopK, auditLogger)
	queryHandler := query.NewHandler(queryService)

	processor := worker.NewProcessor(
		queueRepo, objects, vectors, embedder, segmenter, extractors,
		cfg.BatchSize, cfg.ItemTimeout, m,
	)
	scheduler := worker.NewScheduler(cfg.DrainInterval, processor.Drain)

	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("POST /query", middleware.CorrelationID(enableCORS(queryHandler.Ask)))
	mux.Handle("GET /queue/stats", middleware.CorrelationID(enableCORS(queueHandler.GetStats)))
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{
		Handler:   mux,
		Scheduler: scheduler,
		Processor: processor,
	}, nil
}

func (a *App) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
