package query

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEntry is one answered question. Investigative use means every
// consultation of a case file must be traceable.
type AuditEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	Reference     string    `json:"reference"`
	Question      string    `json:"question"`
	NumChunks     int       `json:"num_chunks"`
	LatencyMs     int64     `json:"latency_ms"`
	CorrelationID string    `json:"correlation_id"`
}

type AuditLogger struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewAuditLogger(w io.Writer) *AuditLogger {
	return &AuditLogger{writer: w}
}

func NewFileAuditLogger(path string) (*AuditLogger, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}

	cleanPath := filepath.Clean(path)
	f, err := os.OpenFile(cleanPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- path is from application config, not user input
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stdout, f)
	return NewAuditLogger(mw), nil
}

func (l *AuditLogger) Log(entry AuditEntry) {
	entry.Timestamp = time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := json.NewEncoder(l.writer).Encode(entry); err != nil {
		slog.Error("failed to write audit log entry", "error", err)
	}
}
