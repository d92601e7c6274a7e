// Package docstore is the document storage used by the document repositories.
//
// Documents are opaque JSON blobs keyed by id inside a named collection.
// Each operation is atomic per document: Insert never overwrites and Replace never creates.
package docstore

import "context"

// Store is implemented by the in-memory and Redis stores.
type Store interface {
	// Insert stores doc under id unless the id already exists. It reports whether doc was stored.
	Insert(ctx context.Context, collection, id string, doc []byte) (bool, error)
	// Replace overwrites the document under id only if it exists. It reports whether doc was stored.
	Replace(ctx context.Context, collection, id string, doc []byte) (bool, error)
	// Get returns the document under id and whether it exists.
	Get(ctx context.Context, collection, id string) ([]byte, bool, error)
	// GetMany returns the documents found among ids. Missing ids are absent from the result.
	GetMany(ctx context.Context, collection string, ids []string) (map[string][]byte, error)
	// Delete removes the given ids and returns the ones that existed, in argument order.
	Delete(ctx context.Context, collection string, ids ...string) ([]string, error)
	// Scan returns every document of the collection.
	Scan(ctx context.Context, collection string) (map[string][]byte, error)
}
