package text

import (
	"embed"
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/data"
)

// Portuguese is not among the training sets the sentences module compiles
// in (only english ships embedded), so the Punkt JSON is vendored here.
//
//go:embed data/*.json
var trainingData embed.FS

const DefaultMaxWords = 500

// Segmenter splits extracted text into ordered blocks of whole sentences,
// each bounded by a word budget. Word counts are whitespace-delimited
// tokens, a proxy for true token counts.
type Segmenter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
	maxWords  int
}

// NewSegmenter loads the Punkt training data for the given language
// (e.g. "portuguese", "english").
func NewSegmenter(language string, maxWords int) (*Segmenter, error) {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	b, err := loadTrainingData(language)
	if err != nil {
		return nil, fmt.Errorf("load sentence training data for %q: %w", language, err)
	}
	training, err := sentences.LoadTraining(b)
	if err != nil {
		return nil, fmt.Errorf("parse sentence training data: %w", err)
	}

	return &Segmenter{
		tokenizer: sentences.NewSentenceTokenizer(training),
		maxWords:  maxWords,
	}, nil
}

// loadTrainingData prefers the vendored training sets and falls back to
// the ones the sentences module embeds itself.
func loadTrainingData(language string) ([]byte, error) {
	name := fmt.Sprintf("data/%s.json", language)
	if b, err := trainingData.ReadFile(name); err == nil {
		return b, nil
	}
	return data.Asset(name)
}

// Segment splits text into blocks of consecutive sentences. A block is
// flushed before a sentence would push it past the word budget; the
// sentence itself is always added, so a single oversized sentence may
// occupy a block that exceeds the budget on its own. Sentence order is
// preserved and empty input yields no blocks.
func (s *Segmenter) Segment(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var blocks []string
	var current []string
	wordCount := 0

	for _, sent := range s.tokenizer.Tokenize(text) {
		sentence := strings.TrimSpace(sent.Text)
		if sentence == "" {
			continue
		}

		n := len(strings.Fields(sentence))
		if wordCount+n > s.maxWords && len(current) > 0 {
			blocks = append(blocks, strings.Join(current, " "))
			current = current[:0]
			wordCount = 0
		}

		current = append(current, sentence)
		wordCount += n
	}

	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, " "))
	}

	return blocks
}
