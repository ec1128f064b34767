// Package extract turns binary case-file attachments into plain text.
// Each supported content family has one extractor; all of them expose the
// same capability and are dispatched by the format classifier.
package extract

import "context"

// Extractor converts a local file into plain text. A returned error is a
// real extraction failure; an empty string with a nil error means the file
// genuinely contained no recognizable text. Callers that need the legacy
// "fail silently" behavior log the error and continue with empty text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}
