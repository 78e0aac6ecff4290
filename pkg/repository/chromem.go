package repository

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	chromem "github.com/philippgille/chromem-go"

	"github.com/m-mizutani/tapir/pkg/model"
)

const collectionName = "memory"

// chromemRepo implements Repository on chromem-go, a pure Go embedded
// vector database persisted on disk. chromem synchronizes access per
// collection internally, so concurrent turns and ingestion runs need no
// extra locking here.
type chromemRepo struct {
	db    *chromem.DB
	col   *chromem.Collection
	embed chromem.EmbeddingFunc
}

// NewChromem creates a repository backed by a persistent chromem database
// at the given path. Embeddings for stored and queried texts are computed
// by embed.
func NewChromem(path string, embed chromem.EmbeddingFunc) (Repository, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open chromem database", goerr.V("path", path))
	}

	col, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open collection", goerr.V("collection", collectionName))
	}

	return &chromemRepo{
		db:    db,
		col:   col,
		embed: embed,
	}, nil
}

func (r *chromemRepo) PutRecord(ctx context.Context, record *model.MemoryRecord) error {
	doc := chromem.Document{
		ID:      string(record.ID),
		Content: model.TruncateText(record.Text),
		Metadata: map[string]string{
			"created_at": record.CreatedAt.Format(time.RFC3339),
		},
	}

	// chromem refuses a document with neither content nor embedding, but an
	// empty extraction (scanned-only PDF, failed OCR) must still be stored.
	// Embed the record ID as a stand-in vector and keep the content empty.
	if doc.Content == "" {
		emb, err := r.embed(ctx, string(record.ID))
		if err != nil {
			return goerr.Wrap(err, "failed to embed empty record", goerr.V("id", record.ID))
		}
		doc.Embedding = emb
	}

	if err := r.col.AddDocument(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to add document", goerr.V("id", record.ID))
	}

	return nil
}

func (r *chromemRepo) QuerySimilar(ctx context.Context, text string, limit int) ([]string, error) {
	// chromem rejects queries asking for more results than stored documents
	if count := r.col.Count(); count < limit {
		limit = count
	}
	if limit <= 0 {
		return nil, nil
	}

	results, err := r.col.Query(ctx, text, limit, nil, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query collection")
	}

	texts := make([]string, 0, len(results))
	for _, result := range results {
		texts = append(texts, result.Content)
	}

	return texts, nil
}

func (r *chromemRepo) Close() error {
	// chromem persists each write immediately, nothing to flush
	return nil
}
