// Package ledger maintains the append-only history of applied migrations
// inside the document store itself.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/j1mmie/fireway/store"
)

// DefaultCollection is the collection holding ledger entries.
const DefaultCollection = "fireway"

// Entry records one attempted migration. Entries are immutable once
// written; their installed ranks form a contiguous sequence starting at 0.
type Entry struct {
	InstalledRank int64
	Version       string
	Description   string
	Script        string
	Type          string
	Checksum      string
	InstalledBy   string
	InstalledOn   time.Time
	ExecutionTime time.Duration
	Success       bool
}

// DocumentID derives the entry's durable key from its rank, version, and
// description, giving the ledger an idempotent, human-readable naming
// scheme.
func (e Entry) DocumentID() string {
	return fmt.Sprintf("%d-%s-%s", e.InstalledRank, e.Version, e.Description)
}

// Ledger is the read-latest / append-entry contract the orchestrator
// depends on.
type Ledger interface {
	// Latest returns the entry with the maximum installed rank, or nil when
	// the ledger is empty.
	Latest(ctx context.Context) (*Entry, error)

	// Append durably writes a new entry under its derived document ID.
	Append(ctx context.Context, e Entry) error
}

// Client is the store-backed [Ledger]. Reads go to the raw store handle;
// appends go through the run's write surface so a dry run never commits
// ledger entries either.
type Client struct {
	store      store.Client
	writer     store.Writer
	collection string
}

var _ Ledger = &Client{}

type Opt func(*Client)

// WithWriter routes appends through the given write surface, typically the
// run's recorder.
func WithWriter(w store.Writer) Opt {
	return func(c *Client) {
		if w != nil {
			c.writer = w
		}
	}
}

// WithCollection overrides the ledger collection name.
func WithCollection(name string) Opt {
	return func(c *Client) {
		if len(name) > 0 {
			c.collection = name
		}
	}
}

func New(s store.Client, opts ...Opt) *Client {
	c := &Client{
		store:      s,
		writer:     s,
		collection: DefaultCollection,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Latest issues a single bounded query: order by installed rank descending,
// limit one.
func (c *Client) Latest(ctx context.Context) (*Entry, error) {
	docs, err := c.store.Query(ctx, store.Query{
		Collection: c.collection,
		OrderBy:    "installed_rank",
		Desc:       true,
		Limit:      1,
	})
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	if len(docs) == 0 {
		return nil, nil //nolint:nilnil // empty ledger is a valid state, not an error.
	}

	e := decode(docs[0].Data)

	return &e, nil
}

func (c *Client) Append(ctx context.Context, e Entry) error {
	path := c.collection + "/" + e.DocumentID()

	if err := c.writer.Create(ctx, path, encode(e)); err != nil {
		return fmt.Errorf("append ledger entry %q: %w", e.DocumentID(), err)
	}

	return nil
}

func encode(e Entry) map[string]any {
	return map[string]any{
		"installed_rank": e.InstalledRank,
		"version":        e.Version,
		"description":    e.Description,
		"script":         e.Script,
		"type":           e.Type,
		"checksum":       e.Checksum,
		"installed_by":   e.InstalledBy,
		"installed_on":   e.InstalledOn,
		"execution_time": e.ExecutionTime.Milliseconds(),
		"success":        e.Success,
	}
}

func decode(data map[string]any) Entry {
	return Entry{
		InstalledRank: asInt64(data["installed_rank"]),
		Version:       asString(data["version"]),
		Description:   asString(data["description"]),
		Script:        asString(data["script"]),
		Type:          asString(data["type"]),
		Checksum:      asString(data["checksum"]),
		InstalledBy:   asString(data["installed_by"]),
		InstalledOn:   asTime(data["installed_on"]),
		ExecutionTime: time.Duration(asInt64(data["execution_time"])) * time.Millisecond,
		Success:       asBool(data["success"]),
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asTime(v any) time.Time {
	t, _ := v.(time.Time)
	return t
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}
