package repository

import (
	"context"

	"github.com/m-mizutani/tapir/pkg/model"
)

// Repository defines the interface for memory record persistence. Records
// are retrievable by vector similarity to a query text.
type Repository interface {
	// PutRecord upserts a record. Writing the same ID again overwrites the
	// previous text.
	PutRecord(ctx context.Context, record *model.MemoryRecord) error

	// QuerySimilar returns up to limit record texts ordered by decreasing
	// similarity to the given text. An empty store yields an empty result,
	// not an error.
	QuerySimilar(ctx context.Context, text string, limit int) ([]string, error)

	// Close releases the underlying storage
	Close() error
}
