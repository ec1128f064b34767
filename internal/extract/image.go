package extract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// ImageExtractor runs optical recognition over an image file. A fresh
// tesseract client is created per call; the client is not safe for reuse
// across files and item processing is strictly sequential anyway.
type ImageExtractor struct {
	language string
}

func NewImageExtractor(language string) *ImageExtractor {
	if language == "" {
		language = "por"
	}
	return &ImageExtractor{language: language}
}

func (e *ImageExtractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.language); err != nil {
		return "", fmt.Errorf("set ocr language %q: %w", e.language, err)
	}
	if err := client.SetImage(path); err != nil {
		return "", fmt.Errorf("set ocr image %s: %w", path, err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr %s: %w", path, err)
	}
	return text, nil
}
