package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	vosk "github.com/alphacep/vosk-api/go"
)

const (
	// audioWindowSize is how many bytes of waveform are fed to the
	// recognizer per step.
	audioWindowSize = 4000
	// audioSampleRate is the sample rate the recognizer expects; every
	// input is mono 16 kHz by the time it reaches the model.
	audioSampleRate = 16000
)

// recognizer is the slice of the vosk recognizer the transcription loop
// uses.
type recognizer interface {
	AcceptWaveform(buffer []byte) int
	Result() string
	FinalResult() string
	Free()
}

// AudioExtractor transcribes speech. The model is loaded once at
// construction and shared across all calls; loading is expensive and a
// failure there aborts startup.
type AudioExtractor struct {
	model         *vosk.VoskModel
	transcoder    Transcoder
	newRecognizer func() (recognizer, error)
}

func NewAudioExtractor(modelPath string, transcoder Transcoder) (*AudioExtractor, error) {
	vosk.SetLogLevel(-1)
	model, err := vosk.NewModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load speech model %s: %w", modelPath, err)
	}
	return &AudioExtractor{
		model:      model,
		transcoder: transcoder,
		newRecognizer: func() (recognizer, error) {
			rec, err := vosk.NewRecognizer(model, audioSampleRate)
			if err != nil {
				return nil, err
			}
			return rec, nil
		},
	}, nil
}

// Extract streams the file through the recognizer in fixed-size windows,
// appending each finalized utterance to the transcript. Compressed inputs
// (.mp3, .ogg) are first transcoded to a derived wav next to the source;
// the derived file is removed on every exit path.
func (e *AudioExtractor) Extract(ctx context.Context, path string) (string, error) {
	wavPath := path
	if !strings.HasSuffix(path, ".wav") {
		wavPath = path + ".wav"
		defer removeIfExists(wavPath)

		if err := e.transcoder.ToWav(ctx, path, wavPath); err != nil {
			return "", fmt.Errorf("transcode audio: %w", err)
		}
	}

	return e.transcribe(ctx, wavPath)
}

func (e *AudioExtractor) transcribe(ctx context.Context, wavPath string) (string, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return "", fmt.Errorf("open audio %s: %w", wavPath, err)
	}
	defer f.Close()

	rec, err := e.newRecognizer()
	if err != nil {
		return "", fmt.Errorf("create recognizer: %w", err)
	}
	defer rec.Free()

	var transcript strings.Builder
	buf := make([]byte, audioWindowSize)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := f.Read(buf)
		if n > 0 {
			if rec.AcceptWaveform(buf[:n]) != 0 {
				appendUtterance(&transcript, rec.Result())
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read audio %s: %w", wavPath, err)
		}
	}

	appendUtterance(&transcript, rec.FinalResult())
	return transcript.String(), nil
}

// appendUtterance pulls the recognized text out of a vosk result payload
// and appends it to the transcript with a separating space.
func appendUtterance(transcript *strings.Builder, result string) {
	var utterance struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(result), &utterance); err != nil {
		slog.Warn("unparseable recognizer result", "error", err)
		return
	}
	if utterance.Text == "" {
		return
	}
	if transcript.Len() > 0 {
		transcript.WriteString(" ")
	}
	transcript.WriteString(utterance.Text)
}

func removeIfExists(path string) {
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			slog.Warn("failed to remove temporary file", "path", path, "error", err)
		}
	}
}
