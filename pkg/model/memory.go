package model

import (
	"time"
)

// MaxRecordText is the maximum length of a stored record text. Longer
// content is truncated before storage, never rejected.
const MaxRecordText = 50000

type RecordID string

// RecordKind classifies the source of an ingested record and determines
// its ID prefix.
type RecordKind string

const (
	RecordKindPDF   RecordKind = "pdf"
	RecordKindMedia RecordKind = "media"
	RecordKindOCR   RecordKind = "ocr"
)

// NewFileRecordID builds a deterministic record ID for an ingested file.
// The same file name always maps to the same ID, so re-ingestion
// overwrites instead of duplicating.
func NewFileRecordID(kind RecordKind, fileName string) RecordID {
	return RecordID(string(kind) + "_" + fileName)
}

// MemoryRecord is one stored unit of text, retrievable by similarity search
type MemoryRecord struct {
	ID        RecordID
	Text      string
	CreatedAt time.Time
}

// NewMemoryRecord creates a record with the text already capped to
// MaxRecordText.
func NewMemoryRecord(id RecordID, text string) *MemoryRecord {
	return &MemoryRecord{
		ID:        id,
		Text:      TruncateText(text),
		CreatedAt: time.Now(),
	}
}

// TruncateText caps text at MaxRecordText runes. The limit counts
// characters, not bytes, so multibyte text keeps its full budget.
func TruncateText(text string) string {
	if len(text) <= MaxRecordText {
		return text
	}

	runes := []rune(text)
	if len(runes) <= MaxRecordText {
		return text
	}
	return string(runes[:MaxRecordText])
}
