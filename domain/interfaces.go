// Package domain contains the interfaces and query types shared by both
// storage backends.
//
// This package defines the collection contract the application depends on, as
// well as the tagged filter, update and pipeline variants the backends
// evaluate. Implementations live in internal/adapter.
package domain

import "context"

// Collection is the document store contract satisfied by both the MongoDB
// backend and the in-memory emulation backend. Calling code depends only on
// this interface and never learns which backend is active.
//
// A query miss is not an error: FindOne reports absence through its bool
// result, UpdateOne through a zero modified count and Find/Aggregate through
// an empty slice.
type Collection interface {
	// FindOne returns the first document matching the filter. A filter
	// carrying an identifier condition is resolved as a direct key
	// lookup.
	FindOne(ctx context.Context, filter Filter) (Document, bool, error)

	// Find returns all documents matching the filter, in the store's
	// insertion order. A nil or empty filter matches every document.
	Find(ctx context.Context, filter Filter) ([]Document, error)

	// Count returns the number of documents matching the filter.
	Count(ctx context.Context, filter Filter) (int64, error)

	// Insert stores a document keyed by its identifier field. An existing
	// document under the same identifier is overwritten silently; callers
	// guarantee non-collision through emptiness checks before seeding.
	Insert(ctx context.Context, doc Document) error

	// UpdateOne applies a single update operation to the first document
	// matching the filter and returns the number of documents modified
	// (0 or 1).
	UpdateOne(ctx context.Context, filter Filter, update Update) (int64, error)

	// Aggregate runs a pipeline. Only the unwind-and-group-distinct shape
	// is recognized; any other shape yields an empty result, not an
	// error.
	Aggregate(ctx context.Context, pipeline Pipeline) ([]Document, error)
}

// Matcher evaluates whether a document satisfies a filter.
type Matcher interface {
	// Match returns true if the document matches every condition in the
	// filter.
	Match(doc Document, filter Filter) (bool, error)
}

// Modifier applies update operations to documents.
type Modifier interface {
	// Modify applies the update to a copy of the document and returns the
	// result. The input document is never mutated.
	Modify(doc Document, update Update) (Document, error)
}

// Decoder converts documents into user-defined types.
type Decoder interface {
	// Decode converts from a document representation into the target.
	Decode(src any, target any) error
}

// PasswordHasher prepares credentials before they enter storage.
type PasswordHasher interface {
	// Hash returns a one-way, self-describing hash of the plaintext with
	// a fresh salt on every call.
	Hash(plaintext string) (string, error)
	// Verify reports whether the plaintext matches a previously produced
	// hash.
	Verify(plaintext string, encoded string) (bool, error)
}

// Snapshotter persists the full state of an in-memory collection so the
// fallback store can survive restarts.
type Snapshotter interface {
	// Load reads the last saved snapshot. A missing snapshot yields an
	// empty result and no error.
	Load(ctx context.Context) ([]Document, error)
	// Save atomically replaces the snapshot with the given documents.
	Save(ctx context.Context, docs []Document) error
}
