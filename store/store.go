// Package store abstracts the document store a migration run mutates.
//
// The engine talks to the [Writer] surface only; [Client] adds the bounded
// query and lifecycle methods the ledger and the CLI need. A [Recorder]
// wraps any Client to count, log, and optionally simulate mutations.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDocumentExists   = errors.New("document already exists")
	ErrDocumentNotFound = errors.New("document does not exist")
	ErrInvalidPath      = errors.New("invalid document path")
)

// sentinel is the private type behind the value-construction sentinels,
// so user data can never collide with them.
type sentinel int

const (
	// ServerTimestamp is replaced by the store's notion of the current time
	// when a document is written.
	ServerTimestamp sentinel = iota

	// DeleteField removes the field it is assigned to during a set-with-merge
	// or update.
	DeleteField
)

// Update describes a single field change applied to an existing document.
type Update struct {
	Field string
	Value any
}

// Document is a read result: a document ID and its decoded fields.
type Document struct {
	ID   string
	Path string
	Data map[string]any
}

// Query is a bounded, ordered read over a single collection.
type Query struct {
	Collection string
	OrderBy    string
	Desc       bool
	Limit      int
}

// Writer is the mutating surface a migration unit executes against.
//
// Paths are slash-separated: document paths have an even number of
// segments ("users/alice"), collection paths an odd number ("users").
type Writer interface {
	// Create writes a new document at path, failing if one already exists.
	Create(ctx context.Context, path string, data map[string]any) error

	// Set writes the document at path, creating it if needed. With merge
	// enabled only the given fields are touched.
	Set(ctx context.Context, path string, data map[string]any, merge bool) error

	// Update applies field updates to an existing document.
	Update(ctx context.Context, path string, updates []Update) error

	// Delete removes the document at path. Deleting a missing document is
	// not an error.
	Delete(ctx context.Context, path string) error

	// Add creates a document with a generated ID under the given collection
	// and returns the new ID.
	Add(ctx context.Context, collection string, data map[string]any) (string, error)

	// Batch starts an ordered batch of writes applied together on Commit.
	Batch() Batch
}

// Batch collects writes and applies them in order on Commit.
type Batch interface {
	Create(path string, data map[string]any)
	Set(path string, data map[string]any, merge bool)
	Update(path string, updates []Update)
	Delete(path string)

	Commit(ctx context.Context) error
}

// Client is a full store handle.
type Client interface {
	Writer

	Query(ctx context.Context, q Query) ([]Document, error)
	Close() error
}

// ValidateDocPath checks that p names a document: a non-empty,
// slash-separated path with an even number of non-empty segments.
func ValidateDocPath(p string) error {
	n, err := countSegments(p)
	if err != nil {
		return err
	}

	if n%2 != 0 {
		return fmt.Errorf("%w: %q does not name a document", ErrInvalidPath, p)
	}

	return nil
}

// ValidateCollectionPath checks that p names a collection: an odd number of
// non-empty segments.
func ValidateCollectionPath(p string) error {
	n, err := countSegments(p)
	if err != nil {
		return err
	}

	if n%2 == 0 {
		return fmt.Errorf("%w: %q does not name a collection", ErrInvalidPath, p)
	}

	return nil
}

func countSegments(p string) (int, error) {
	if len(p) == 0 {
		return 0, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	segments := strings.Split(p, "/")
	for _, s := range segments {
		if len(s) == 0 {
			return 0, fmt.Errorf("%w: %q contains an empty segment", ErrInvalidPath, p)
		}
	}

	return len(segments), nil
}

// parentCollection returns the collection a document path belongs to.
func parentCollection(docPath string) string {
	i := strings.LastIndex(docPath, "/")
	if i < 0 {
		return ""
	}

	return docPath[:i]
}
