package extract

import "strings"

// Family is the content family of a case-file attachment.
type Family string

const (
	FamilyDocument    Family = "document"
	FamilyImage       Family = "image"
	FamilyAudio       Family = "audio"
	FamilyVideo       Family = "video"
	FamilyUnsupported Family = "unsupported"
)

var (
	documentExts = []string{".pdf"}
	imageExts    = []string{".png", ".jpg", ".jpeg"}
	audioExts    = []string{".mp3", ".ogg", ".wav"}
	videoExts    = []string{".mp4", ".webm", ".avi"}
)

// Classify maps a file path to its content family by extension. Families
// are checked in a fixed order (document, image, audio, video) and the
// first match wins. Matching is case-sensitive: uploads arrive with
// normalized lowercase names, and an uppercase extension is treated as
// unsupported rather than guessed at.
func Classify(path string) Family {
	switch {
	case hasAnySuffix(path, documentExts):
		return FamilyDocument
	case hasAnySuffix(path, imageExts):
		return FamilyImage
	case hasAnySuffix(path, audioExts):
		return FamilyAudio
	case hasAnySuffix(path, videoExts):
		return FamilyVideo
	default:
		return FamilyUnsupported
	}
}

func hasAnySuffix(path string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
