package extract

import (
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/tapir/pkg/utils/logging"
)

// PDF extracts the concatenated text of all pages in page order. A document
// with no extractable text (e.g. scanned-only) yields an empty string, not
// an error.
type PDF struct{}

func NewPDF() *PDF {
	return &PDF{}
}

func (x *PDF) Extract(ctx context.Context, path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to open PDF", goerr.V("path", path))
	}
	defer f.Close()

	var sb strings.Builder
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A broken page does not spoil the rest of the document
			logging.From(ctx).Warn("failed to extract PDF page", "path", path, "page", i, "error", err)
			continue
		}
		sb.WriteString(text)
	}

	return sb.String(), nil
}
