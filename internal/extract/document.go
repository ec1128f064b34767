package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DocumentExtractor reads the embedded text layer of a PDF page by page.
// Scanned documents carry no text layer, so an empty result falls back to
// rasterizing each page and running optical recognition on it.
type DocumentExtractor struct {
	ocr      *ImageExtractor
	pdftoppm string
	tempDir  string
}

func NewDocumentExtractor(ocr *ImageExtractor, pdftoppmBinary, tempDir string) *DocumentExtractor {
	if pdftoppmBinary == "" {
		pdftoppmBinary = "pdftoppm"
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &DocumentExtractor{ocr: ocr, pdftoppm: pdftoppmBinary, tempDir: tempDir}
}

func (e *DocumentExtractor) Extract(ctx context.Context, path string) (string, error) {
	text, err := e.textLayer(path)
	if err != nil {
		return "", fmt.Errorf("read pdf %s: %w", path, err)
	}

	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	slog.InfoContext(ctx, "pdf has no text layer, falling back to ocr", "path", path)
	return e.ocrPages(ctx, path)
}

func (e *DocumentExtractor) textLayer(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// A single corrupt page should not sink the document.
			slog.Warn("failed to read pdf page", "path", path, "page", i, "error", err)
			continue
		}
		sb.WriteString(pageText)
	}
	return sb.String(), nil
}

// ocrPages rasterizes every page to PNG under a scratch directory and runs
// recognition on each image in page order. The scratch directory is removed
// on every exit path.
func (e *DocumentExtractor) ocrPages(ctx context.Context, path string) (string, error) {
	dir, err := os.MkdirTemp(e.tempDir, "ocr-pages-")
	if err != nil {
		return "", fmt.Errorf("create ocr scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	cmd := exec.CommandContext(ctx, e.pdftoppm, "-png", "-r", "300", path, filepath.Join(dir, "page"))
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm %s: %w: %s", path, err, out)
	}

	pages, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return "", err
	}
	sort.Strings(pages)

	var sb strings.Builder
	for _, page := range pages {
		pageText, err := e.ocr.Extract(ctx, page)
		if err != nil {
			return "", fmt.Errorf("ocr page %s: %w", filepath.Base(page), err)
		}
		sb.WriteString(pageText)
	}
	return sb.String(), nil
}
