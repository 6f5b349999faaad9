package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore is the Cloud Firestore backed [Client].
type Firestore struct {
	client *firestore.Client
}

var _ Client = &Firestore{}

// OpenFirestore dials a Firestore project. Credentials follow the usual
// Google application-default chain unless overridden via opts.
func OpenFirestore(ctx context.Context, projectID string, opts ...option.ClientOption) (*Firestore, error) {
	c, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("open firestore project %q: %w", projectID, err)
	}

	return &Firestore{client: c}, nil
}

// WrapFirestore adapts an existing Firestore client.
func WrapFirestore(c *firestore.Client) *Firestore {
	return &Firestore{client: c}
}

func (f *Firestore) Create(ctx context.Context, path string, data map[string]any) error {
	if err := ValidateDocPath(path); err != nil {
		return err
	}

	if _, err := f.client.Doc(path).Create(ctx, translateMap(data)); err != nil {
		return mapStatus(err, path)
	}

	return nil
}

func (f *Firestore) Set(ctx context.Context, path string, data map[string]any, merge bool) error {
	if err := ValidateDocPath(path); err != nil {
		return err
	}

	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}

	if _, err := f.client.Doc(path).Set(ctx, translateMap(data), opts...); err != nil {
		return mapStatus(err, path)
	}

	return nil
}

func (f *Firestore) Update(ctx context.Context, path string, updates []Update) error {
	if err := ValidateDocPath(path); err != nil {
		return err
	}

	if _, err := f.client.Doc(path).Update(ctx, translateUpdates(updates)); err != nil {
		return mapStatus(err, path)
	}

	return nil
}

func (f *Firestore) Delete(ctx context.Context, path string) error {
	if err := ValidateDocPath(path); err != nil {
		return err
	}

	if _, err := f.client.Doc(path).Delete(ctx); err != nil {
		return mapStatus(err, path)
	}

	return nil
}

func (f *Firestore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := ValidateCollectionPath(collection); err != nil {
		return "", err
	}

	ref, _, err := f.client.Collection(collection).Add(ctx, translateMap(data))
	if err != nil {
		return "", mapStatus(err, collection)
	}

	return ref.ID, nil
}

func (f *Firestore) Query(ctx context.Context, q Query) ([]Document, error) {
	if err := ValidateCollectionPath(q.Collection); err != nil {
		return nil, err
	}

	dir := firestore.Asc
	if q.Desc {
		dir = firestore.Desc
	}

	fq := f.client.Collection(q.Collection).OrderBy(q.OrderBy, dir)
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}

	it := fq.Documents(ctx)
	defer it.Stop()

	var docs []Document

	for {
		snap, err := it.Next()
		if err != nil {
			if err == iterator.Done { //nolint:errorlint // iterator.Done is compared directly by convention.
				break
			}

			return nil, fmt.Errorf("query %q: %w", q.Collection, err)
		}

		docs = append(docs, Document{
			ID:   snap.Ref.ID,
			Path: q.Collection + "/" + snap.Ref.ID,
			Data: snap.Data(),
		})
	}

	return docs, nil
}

func (f *Firestore) Batch() Batch {
	return &firestoreBatch{
		client: f.client,
		batch:  f.client.Batch(),
	}
}

func (f *Firestore) Close() error {
	return f.client.Close()
}

type firestoreBatch struct {
	client *firestore.Client
	batch  *firestore.WriteBatch
}

func (b *firestoreBatch) Create(path string, data map[string]any) {
	b.batch.Create(b.client.Doc(path), translateMap(data))
}

func (b *firestoreBatch) Set(path string, data map[string]any, merge bool) {
	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}

	b.batch.Set(b.client.Doc(path), translateMap(data), opts...)
}

func (b *firestoreBatch) Update(path string, updates []Update) {
	b.batch.Update(b.client.Doc(path), translateUpdates(updates))
}

func (b *firestoreBatch) Delete(path string) {
	b.batch.Delete(b.client.Doc(path))
}

func (b *firestoreBatch) Commit(ctx context.Context) error {
	if _, err := b.batch.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	return nil
}

// translateMap rewrites the store-agnostic value sentinels into their
// Firestore equivalents.
func translateMap(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = translateValue(v)
	}

	return out
}

func translateValue(v any) any {
	switch val := v.(type) {
	case sentinel:
		if val == ServerTimestamp {
			return firestore.ServerTimestamp
		}

		return firestore.Delete
	case map[string]any:
		return translateMap(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = translateValue(e)
		}

		return out
	default:
		return v
	}
}

func translateUpdates(updates []Update) []firestore.Update {
	out := make([]firestore.Update, len(updates))
	for i, u := range updates {
		out[i] = firestore.Update{Path: u.Field, Value: translateValue(u.Value)}
	}

	return out
}

func mapStatus(err error, path string) error {
	switch status.Code(err) {
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %q", ErrDocumentExists, path)
	case codes.NotFound:
		return fmt.Errorf("%w: %q", ErrDocumentNotFound, path)
	default:
		return fmt.Errorf("%q: %w", path, err)
	}
}
