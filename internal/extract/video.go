package extract

import (
	"context"
	"fmt"
)

// VideoExtractor demuxes the audio track to a derived mono 16 kHz wav and
// hands it to the owned audio extractor. The derived waveform is removed on
// every exit path, including a failed transcode.
type VideoExtractor struct {
	audio      Extractor
	transcoder Transcoder
}

func NewVideoExtractor(audio Extractor, transcoder Transcoder) *VideoExtractor {
	return &VideoExtractor{audio: audio, transcoder: transcoder}
}

func (e *VideoExtractor) Extract(ctx context.Context, path string) (string, error) {
	wavPath := path + ".wav"
	defer removeIfExists(wavPath)

	if err := e.transcoder.ToWav(ctx, path, wavPath); err != nil {
		return "", fmt.Errorf("extract audio track: %w", err)
	}

	return e.audio.Extract(ctx, wavPath)
}
