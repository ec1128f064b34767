package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Transcoder produces the mono 16 kHz wav form the speech recognizer
// consumes.
type Transcoder interface {
	ToWav(ctx context.Context, src, dst string) error
}

// FFmpegTranscoder shells out to ffmpeg.
type FFmpegTranscoder struct {
	binary string
}

func NewFFmpegTranscoder(binary string) *FFmpegTranscoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegTranscoder{binary: binary}
}

func (t *FFmpegTranscoder) ToWav(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, t.binary,
		"-y",
		"-i", src,
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		dst,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg %s: %w: %s", src, err, stderr.String())
	}
	return nil
}
