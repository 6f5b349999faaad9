package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-memory [Client] used by tests and local dry runs.
// It mirrors the document semantics of the hosted store: create fails on an
// existing document, update fails on a missing one, delete is idempotent,
// and queries skip documents lacking the ordering field.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]map[string]any

	// now is the clock used to resolve [ServerTimestamp] values.
	now func() time.Time
}

var _ Client = &Memory{}

func NewMemory() *Memory {
	return &Memory{
		docs: make(map[string]map[string]any),
		now:  time.Now,
	}
}

// SetClock overrides the clock used for server timestamps.
func (m *Memory) SetClock(now func() time.Time) {
	m.now = now
}

// Len reports the number of stored documents.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.docs)
}

// Doc returns a copy of the document at path, if present.
func (m *Memory) Doc(path string) (map[string]any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[path]
	if !ok {
		return nil, false
	}

	return deepCopy(doc), true
}

func (m *Memory) Create(ctx context.Context, path string, data map[string]any) error {
	if err := ValidateDocPath(path); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[path]; ok {
		return fmt.Errorf("%w: %q", ErrDocumentExists, path)
	}

	m.docs[path] = m.resolve(data)

	return ctx.Err()
}

func (m *Memory) Set(ctx context.Context, path string, data map[string]any, merge bool) error {
	if err := ValidateDocPath(path); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !merge {
		m.docs[path] = m.resolve(data)
		return ctx.Err()
	}

	doc, ok := m.docs[path]
	if !ok {
		doc = make(map[string]any)
		m.docs[path] = doc
	}

	for k, v := range data {
		if v == DeleteField {
			delete(doc, k)
			continue
		}

		doc[k] = m.resolveValue(v)
	}

	return ctx.Err()
}

func (m *Memory) Update(ctx context.Context, path string, updates []Update) error {
	if err := ValidateDocPath(path); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[path]
	if !ok {
		return fmt.Errorf("%w: %q", ErrDocumentNotFound, path)
	}

	for _, u := range updates {
		if u.Value == DeleteField {
			delete(doc, u.Field)
			continue
		}

		doc[u.Field] = m.resolveValue(u.Value)
	}

	return ctx.Err()
}

func (m *Memory) Delete(ctx context.Context, path string) error {
	if err := ValidateDocPath(path); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.docs, path)

	return ctx.Err()
}

func (m *Memory) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := ValidateCollectionPath(collection); err != nil {
		return "", err
	}

	id := uuid.NewString()

	return id, m.Create(ctx, collection+"/"+id, data)
}

func (m *Memory) Query(ctx context.Context, q Query) ([]Document, error) {
	if err := ValidateCollectionPath(q.Collection); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []Document

	for path, data := range m.docs {
		if parentCollection(path) != q.Collection {
			continue
		}

		if _, ok := data[q.OrderBy]; !ok {
			continue
		}

		docs = append(docs, Document{
			ID:   path[strings.LastIndex(path, "/")+1:],
			Path: path,
			Data: deepCopy(data),
		})
	}

	slices.SortFunc(docs, func(a, b Document) int {
		c := compareValues(a.Data[q.OrderBy], b.Data[q.OrderBy])
		if q.Desc {
			return -c
		}

		return c
	})

	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}

	return docs, ctx.Err()
}

func (m *Memory) Close() error { return nil }

// Batch returns a batch whose writes are applied sequentially on Commit.
// Unlike the hosted store, a failing write aborts the remainder without
// rolling back earlier ones.
func (m *Memory) Batch() Batch {
	return &memoryBatch{client: m}
}

type memoryBatch struct {
	client *Memory
	queued []func(ctx context.Context) error
}

func (b *memoryBatch) Create(path string, data map[string]any) {
	b.queued = append(b.queued, func(ctx context.Context) error {
		return b.client.Create(ctx, path, data)
	})
}

func (b *memoryBatch) Set(path string, data map[string]any, merge bool) {
	b.queued = append(b.queued, func(ctx context.Context) error {
		return b.client.Set(ctx, path, data, merge)
	})
}

func (b *memoryBatch) Update(path string, updates []Update) {
	b.queued = append(b.queued, func(ctx context.Context) error {
		return b.client.Update(ctx, path, updates)
	})
}

func (b *memoryBatch) Delete(path string) {
	b.queued = append(b.queued, func(ctx context.Context) error {
		return b.client.Delete(ctx, path)
	})
}

func (b *memoryBatch) Commit(ctx context.Context) error {
	for _, apply := range b.queued {
		if err := apply(ctx); err != nil {
			return err
		}
	}

	b.queued = nil

	return nil
}

func (m *Memory) resolve(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))

	for k, v := range data {
		if v == DeleteField {
			continue
		}

		out[k] = m.resolveValue(v)
	}

	return out
}

func (m *Memory) resolveValue(v any) any {
	switch val := v.(type) {
	case sentinel:
		if val == ServerTimestamp {
			return m.now()
		}

		return nil
	case map[string]any:
		return m.resolve(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = m.resolveValue(e)
		}

		return out
	default:
		return v
	}
}

func deepCopy(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))

	for k, v := range data {
		switch val := v.(type) {
		case map[string]any:
			out[k] = deepCopy(val)
		case []any:
			s := make([]any, len(val))
			copy(s, val)
			out[k] = s
		default:
			out[k] = v
		}
	}

	return out
}

//nolint:cyclop
func compareValues(a, b any) int {
	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)

	switch {
	case aNum && bNum:
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	case aNum:
		return -1
	case bNum:
		return 1
	}

	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case bv:
				return -1
			default:
				return 1
			}
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	}

	return strings.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b))
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
