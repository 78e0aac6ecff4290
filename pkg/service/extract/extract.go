package extract

import "context"

// Extractor converts one source file into plain text. Implementations are
// stateless given a constructed engine; a single file's failure must never
// abort a whole ingestion batch, so callers isolate returned errors per
// file.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}
