package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/tapir/pkg/model"
	"github.com/m-mizutani/tapir/pkg/repository"
	"github.com/m-mizutani/tapir/pkg/service/extract"
	"github.com/m-mizutani/tapir/pkg/utils/logging"
)

// DefaultFolders is the source folder set scanned when no configuration
// overrides it.
var DefaultFolders = []string{"articles", "videos", "audio", "screenshots"}

// Pipeline walks source folders, routes each file to the matching extractor
// and writes the resulting text into memory under a deterministic ID. Files
// are processed one at a time; a failing file never stops the rest of the
// batch.
type Pipeline struct {
	repo   repository.Repository
	pdf    extract.Extractor
	speech extract.Extractor
	ocr    extract.Extractor
}

// NewInput contains dependencies for the ingestion pipeline. Speech may be
// nil when the transcription engine is unavailable; media files are then
// skipped entirely.
type NewInput struct {
	Repo   repository.Repository
	PDF    extract.Extractor
	Speech extract.Extractor
	OCR    extract.Extractor
}

func New(input NewInput) *Pipeline {
	return &Pipeline{
		repo:   input.Repo,
		pdf:    input.PDF,
		speech: input.Speech,
		ocr:    input.OCR,
	}
}

// Result summarizes one ingestion run
type Result struct {
	Ingested int
	Skipped  int
	Failed   int
}

// Run ingests all supported files under the given folders. Folders that do
// not exist are skipped. There is no global transaction: the final state is
// the union of the files that succeeded.
func (p *Pipeline) Run(ctx context.Context, folders []string) (*Result, error) {
	logger := logging.From(ctx)
	result := &Result{}

	for _, folder := range folders {
		entries, err := os.ReadDir(folder)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Debug("source folder does not exist, skipping", "folder", folder)
			} else {
				logger.Warn("failed to read source folder", "folder", folder, "error", err)
			}
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			p.ingestFile(ctx, folder, entry.Name(), result)
		}
	}

	logger.Info("ingestion completed",
		"ingested", result.Ingested, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

func (p *Pipeline) ingestFile(ctx context.Context, folder, name string, result *Result) {
	logger := logging.From(ctx)

	kind, ok := classify(name)
	if !ok {
		logger.Debug("unsupported file extension, skipping", "file", name)
		result.Skipped++
		return
	}

	extractor := p.extractorFor(kind)
	if extractor == nil {
		logger.Debug("extractor unavailable, skipping", "file", name, "kind", kind)
		result.Skipped++
		return
	}

	path := filepath.Join(folder, name)
	text, err := extractor.Extract(ctx, path)
	if err != nil {
		// Isolated to this file; the batch continues
		logger.Warn("extraction failed", "path", path, "error", err)
		result.Failed++
		return
	}

	record := model.NewMemoryRecord(model.NewFileRecordID(kind, name), text)
	if err := p.repo.PutRecord(ctx, record); err != nil {
		logger.Warn("failed to save record", "id", record.ID, "error", err)
		result.Failed++
		return
	}

	logger.Debug("file ingested", "id", record.ID, "chars", len(record.Text))
	result.Ingested++
}

func (p *Pipeline) extractorFor(kind model.RecordKind) extract.Extractor {
	switch kind {
	case model.RecordKindPDF:
		return p.pdf
	case model.RecordKindMedia:
		return p.speech
	case model.RecordKindOCR:
		return p.ocr
	default:
		return nil
	}
}

// classify maps a file name to its record kind by extension. Unsupported
// extensions report ok=false.
func classify(name string) (model.RecordKind, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return model.RecordKindPDF, true
	case ".mp3", ".mp4", ".wav":
		return model.RecordKindMedia, true
	case ".png", ".jpg", ".jpeg":
		return model.RecordKindOCR, true
	default:
		return "", false
	}
}
