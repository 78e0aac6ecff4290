package extract

import (
	"context"

	"github.com/otiai10/gosseract/v2"

	"github.com/m-mizutani/tapir/pkg/utils/logging"
)

// OCR recognizes text in images with Tesseract using two simultaneous
// script hints. Recognition is best-effort: an engine error degrades to an
// empty string so the containing file still produces an (empty) record.
type OCR struct {
	languages []string
}

// NewOCR creates an OCR extractor. Without explicit languages it recognizes
// Cyrillic and Latin scripts, matching the source material the agent is fed.
func NewOCR(languages ...string) *OCR {
	if len(languages) == 0 {
		languages = []string{"rus", "eng"}
	}
	return &OCR{
		languages: languages,
	}
}

func (x *OCR) Extract(ctx context.Context, path string) (string, error) {
	logger := logging.From(ctx)

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(x.languages...); err != nil {
		logger.Warn("failed to set OCR languages", "languages", x.languages, "error", err)
		return "", nil
	}
	if err := client.SetImage(path); err != nil {
		logger.Warn("failed to load image for OCR", "path", path, "error", err)
		return "", nil
	}

	text, err := client.Text()
	if err != nil {
		logger.Warn("OCR recognition failed", "path", path, "error", err)
		return "", nil
	}

	return text, nil
}
