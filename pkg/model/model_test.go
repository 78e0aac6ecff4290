package model_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/tapir/pkg/model"
)

func TestTruncateText(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		gt.Equal(t, model.TruncateText("hello"), "hello")
	})

	t.Run("caps at limit", func(t *testing.T) {
		long := strings.Repeat("x", model.MaxRecordText+1)
		capped := model.TruncateText(long)
		gt.V(t, len(capped)).Equal(model.MaxRecordText)
		gt.Equal(t, capped, long[:model.MaxRecordText])
	})

	t.Run("multibyte text keeps the full character budget", func(t *testing.T) {
		// 2 bytes per rune: a byte-based cap would lose half the text
		long := strings.Repeat("п", model.MaxRecordText+100)
		capped := model.TruncateText(long)
		gt.V(t, utf8.RuneCountInString(capped)).Equal(model.MaxRecordText)
		gt.True(t, strings.HasPrefix(long, capped))
	})

	t.Run("multibyte text within the limit is unchanged", func(t *testing.T) {
		long := strings.Repeat("п", model.MaxRecordText)
		gt.Equal(t, model.TruncateText(long), long)
	})
}

func TestFileRecordID(t *testing.T) {
	id := model.NewFileRecordID(model.RecordKindPDF, "report.pdf")
	gt.Equal(t, id, model.RecordID("pdf_report.pdf"))

	// Deterministic: the same file always maps to the same ID
	gt.Equal(t, id, model.NewFileRecordID(model.RecordKindPDF, "report.pdf"))
}

func TestTurnRecord(t *testing.T) {
	turn := model.NewTurn("what is the answer?")
	turn.FinalAnswer = "42"

	record := turn.Record()
	gt.Equal(t, record.ID, model.RecordID("turn_"+string(turn.ID)))
	gt.Equal(t, record.Text, "Q: what is the answer? | A: 42")
}

func TestNewMemoryRecordCapsText(t *testing.T) {
	long := strings.Repeat("y", model.MaxRecordText*2)
	record := model.NewMemoryRecord("pdf_big.pdf", long)
	gt.V(t, len(record.Text)).Equal(model.MaxRecordText)
}
