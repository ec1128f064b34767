package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"caselens/features/queue"
	"caselens/internal/extract"
	"caselens/internal/metrics"
	"caselens/internal/middleware"
)

const DefaultBatchSize = 10

// Processor owns one drain cycle: fetch a bounded batch of pending items,
// run each through extraction and segmentation, synchronize the vector
// index, and commit processed status. Failures are isolated per item; a
// failed item stays pending and is retried on a later cycle.
type Processor struct {
	store      QueueStore
	objects    ObjectStore
	vectors    VectorStore
	embedder   Embedder
	segmenter  Segmenter
	extractors map[extract.Family]extract.Extractor

	batchSize   int
	itemTimeout time.Duration
	metrics     *metrics.Metrics
}

func NewProcessor(
	store QueueStore,
	objects ObjectStore,
	vectors VectorStore,
	embedder Embedder,
	segmenter Segmenter,
	extractors map[extract.Family]extract.Extractor,
	batchSize int,
	itemTimeout time.Duration,
	m *metrics.Metrics,
) *Processor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Processor{
		store:       store,
		objects:     objects,
		vectors:     vectors,
		embedder:    embedder,
		segmenter:   segmenter,
		extractors:  extractors,
		batchSize:   batchSize,
		itemTimeout: itemTimeout,
		metrics:     m,
	}
}

// Drain runs one cycle. Items are processed strictly sequentially in fetch
// order; the shared clients and the speech model are not built for
// concurrent use.
func (p *Processor) Drain(ctx context.Context) {
	ctx = middleware.WithCorrelationID(ctx, uuid.New().String())
	start := time.Now()

	items, err := p.store.FetchPending(ctx, p.batchSize)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch pending items", "error", err)
		return
	}
	if len(items) == 0 {
		return
	}

	slog.InfoContext(ctx, "drain cycle started", "items", len(items))

	for i, item := range items {
		if ctx.Err() != nil {
			slog.WarnContext(ctx, "drain cancelled mid-batch", "remaining", len(items)-i)
			return
		}

		if err := p.processItem(ctx, item); err != nil {
			slog.ErrorContext(ctx, "item failed, left pending",
				"id", item.ID, "reference", item.Reference, "action", item.Action, "error", err)
			p.metrics.ItemsFailed.WithLabelValues(item.Action, item.ContentType).Inc()
			if rfErr := p.store.RecordFailure(ctx, item.ID, err.Error()); rfErr != nil {
				slog.WarnContext(ctx, "failed to record item failure", "id", item.ID, "error", rfErr)
			}
			continue
		}

		if err := p.store.MarkProcessed(ctx, item.ID); err != nil {
			// The side effects are done but the commit failed; the item
			// will be re-processed, which is safe because insert deletes
			// its own records before upserting.
			slog.ErrorContext(ctx, "failed to mark item processed", "id", item.ID, "error", err)
			continue
		}

		p.metrics.ItemsProcessed.WithLabelValues(item.Action, item.ContentType).Inc()
		slog.InfoContext(ctx, "item processed", "id", item.ID, "reference", item.Reference, "action", item.Action)
	}

	p.metrics.DrainDuration.Observe(time.Since(start).Seconds())
	slog.InfoContext(ctx, "drain cycle finished", "duration", time.Since(start))
}

func (p *Processor) processItem(ctx context.Context, item queue.Item) error {
	if p.itemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.itemTimeout)
		defer cancel()
	}

	switch item.Action {
	case queue.ActionInsert:
		return p.insert(ctx, item)
	case queue.ActionDelete:
		return p.vectors.DeleteByItem(ctx, itemID(item))
	default:
		// Unknown actions are committed without side effects so they do
		// not clog the queue forever.
		slog.WarnContext(ctx, "unknown action, skipping", "id", item.ID, "action", item.Action)
		return nil
	}
}

func (p *Processor) insert(ctx context.Context, item queue.Item) error {
	var text string

	switch item.ContentType {
	case queue.ContentStructured:
		text = item.Payload
	case queue.ContentBinary:
		extracted, supported, err := p.extractBinary(ctx, item)
		if err != nil {
			return err
		}
		if !supported {
			return nil
		}
		text = extracted
	default:
		return fmt.Errorf("unknown content type %q", item.ContentType)
	}

	chunks := p.segmenter.Segment(text)

	// Re-processing after a mid-item failure must not duplicate records,
	// so the item's previous records are always removed first.
	if err := p.vectors.DeleteByItem(ctx, itemID(item)); err != nil {
		return fmt.Errorf("clear previous records: %w", err)
	}

	if len(chunks) == 0 {
		slog.InfoContext(ctx, "no content to index", "id", item.ID, "reference", item.Reference)
		return nil
	}

	vectors, err := p.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	records := make([]Chunk, len(chunks))
	for i, c := range chunks {
		records[i] = Chunk{
			ItemID:     itemID(item),
			Reference:  item.Reference,
			DocumentID: item.DocumentID,
			ChunkIndex: i,
			Text:       c,
		}
	}

	if err := p.vectors.UpsertChunks(ctx, records, vectors); err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}

	p.metrics.ChunksIndexed.Add(float64(len(records)))
	return nil
}

// extractBinary downloads the blob, classifies it, and runs the matching
// extractor. The downloaded file is removed on every exit path. The second
// return is false for unsupported formats, which are skipped but still
// committed. An extraction failure is logged and counted but yields empty
// text, preserving the queue's forward progress.
func (p *Processor) extractBinary(ctx context.Context, item queue.Item) (string, bool, error) {
	bp, err := queue.DecodeBinaryPayload(item.Payload)
	if err != nil {
		return "", false, err
	}

	path, err := p.objects.FetchToTemp(ctx, bp.Bucket, bp.Hash)
	if err != nil {
		return "", false, fmt.Errorf("download %s/%s: %w", bp.Bucket, bp.Hash, err)
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.WarnContext(ctx, "failed to remove downloaded blob", "path", path, "error", err)
		}
	}()

	family := extract.Classify(path)
	if family == extract.FamilyUnsupported {
		slog.WarnContext(ctx, "unsupported format, skipping indexing", "id", item.ID, "hash", bp.Hash)
		return "", false, nil
	}

	extractor, ok := p.extractors[family]
	if !ok {
		return "", false, fmt.Errorf("no extractor registered for family %q", family)
	}

	text, err := extractor.Extract(ctx, path)
	if err != nil {
		slog.ErrorContext(ctx, "extraction failed, continuing with empty text",
			"id", item.ID, "family", family, "error", err)
		p.metrics.ExtractionFailures.WithLabelValues(string(family)).Inc()
		return "", true, nil
	}

	return text, true, nil
}

func itemID(item queue.Item) string {
	return strconv.FormatInt(item.ID, 10)
}
