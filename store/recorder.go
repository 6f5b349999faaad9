package store

import (
	"context"

	"github.com/google/uuid"
)

// Logger receives a human-readable description of every intercepted
// mutation. *genericclioptions.IOStreams satisfies it.
type Logger interface {
	Infof(format string, args ...any)
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

// Recorder wraps a [Client] with per-run mutation accounting. It counts
// every write by kind, logs a description of it, and under dry-run
// validates and records the write without contacting the underlying store.
//
// A Recorder belongs to exactly one run. Distinct runs against distinct
// store handles each get their own Recorder; two concurrent runs sharing a
// Recorder are unsupported.
type Recorder struct {
	client Client
	stats  *Stats
	log    Logger
	dryRun bool
}

var _ Writer = &Recorder{}

func NewRecorder(client Client, stats *Stats, log Logger, dryRun bool) *Recorder {
	return &Recorder{
		client: client,
		stats:  stats,
		log:    log,
		dryRun: dryRun,
	}
}

// DryRun reports whether the recorder suppresses durable writes.
func (r *Recorder) DryRun() bool { return r.dryRun }

// Stats returns the run's mutation counters.
func (r *Recorder) Stats() *Stats { return r.stats }

func (r *Recorder) Create(ctx context.Context, path string, data map[string]any) error {
	if err := ValidateDocPath(path); err != nil {
		return err
	}

	r.record(KindCreated, "Creating %s", path)

	if r.dryRun {
		return nil
	}

	return r.client.Create(ctx, path, data)
}

func (r *Recorder) Set(ctx context.Context, path string, data map[string]any, merge bool) error {
	if err := ValidateDocPath(path); err != nil {
		return err
	}

	if merge {
		r.record(KindSet, "Setting %s (merge)", path)
	} else {
		r.record(KindSet, "Setting %s", path)
	}

	if r.dryRun {
		return nil
	}

	return r.client.Set(ctx, path, data, merge)
}

func (r *Recorder) Update(ctx context.Context, path string, updates []Update) error {
	if err := ValidateDocPath(path); err != nil {
		return err
	}

	r.record(KindUpdated, "Updating %s (%d fields)", path, len(updates))

	if r.dryRun {
		return nil
	}

	return r.client.Update(ctx, path, updates)
}

func (r *Recorder) Delete(ctx context.Context, path string) error {
	if err := ValidateDocPath(path); err != nil {
		return err
	}

	r.record(KindDeleted, "Deleting %s", path)

	if r.dryRun {
		return nil
	}

	return r.client.Delete(ctx, path)
}

// Add counts once as "added"; it never passes through Create, so the
// convenience call cannot be double-counted.
func (r *Recorder) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := ValidateCollectionPath(collection); err != nil {
		return "", err
	}

	r.record(KindAdded, "Adding document to %s", collection)

	if r.dryRun {
		return uuid.NewString(), nil
	}

	return r.client.Add(ctx, collection, data)
}

// Batch returns a two-phase batch: calls queue intents, and Commit replays
// them in order for counting and logging before the underlying commit.
// Under dry-run the replay is the whole commit.
func (r *Recorder) Batch() Batch {
	return &recorderBatch{recorder: r}
}

func (r *Recorder) record(k Kind, format string, args ...any) {
	r.stats.count(k)

	if r.dryRun {
		r.log.Infof(format+" (dry run)\n", args...)
		return
	}

	r.log.Infof(format+"\n", args...)
}

// intent is one deferred batch mutation. The target path is carried
// explicitly so validation never depends on the shape of the log line.
type intent struct {
	kind    Kind
	path    string
	format  string
	args    []any
	enqueue func(b Batch)
}

type recorderBatch struct {
	recorder *Recorder
	intents  []intent
}

func (b *recorderBatch) Create(path string, data map[string]any) {
	b.intents = append(b.intents, intent{
		kind:    KindCreated,
		path:    path,
		format:  "Creating %s (batch)",
		args:    []any{path},
		enqueue: func(ub Batch) { ub.Create(path, data) },
	})
}

func (b *recorderBatch) Set(path string, data map[string]any, merge bool) {
	b.intents = append(b.intents, intent{
		kind:    KindSet,
		path:    path,
		format:  "Setting %s (batch)",
		args:    []any{path},
		enqueue: func(ub Batch) { ub.Set(path, data, merge) },
	})
}

func (b *recorderBatch) Update(path string, updates []Update) {
	b.intents = append(b.intents, intent{
		kind:    KindUpdated,
		path:    path,
		format:  "Updating %s (%d fields) (batch)",
		args:    []any{path, len(updates)},
		enqueue: func(ub Batch) { ub.Update(path, updates) },
	})
}

func (b *recorderBatch) Delete(path string) {
	b.intents = append(b.intents, intent{
		kind:    KindDeleted,
		path:    path,
		format:  "Deleting %s (batch)",
		args:    []any{path},
		enqueue: func(ub Batch) { ub.Delete(path) },
	})
}

// Commit replays queued intents in order, attributing each to the run, then
// commits them against the underlying store. Under dry-run the queue is
// drained without any store contact.
func (b *recorderBatch) Commit(ctx context.Context) error {
	for _, in := range b.intents {
		if err := b.validate(in); err != nil {
			return err
		}
	}

	if b.recorder.dryRun {
		for _, in := range b.intents {
			b.recorder.record(in.kind, in.format, in.args...)
		}

		b.intents = nil

		return nil
	}

	underlying := b.recorder.client.Batch()

	for _, in := range b.intents {
		b.recorder.record(in.kind, in.format, in.args...)
		in.enqueue(underlying)
	}

	b.intents = nil

	return underlying.Commit(ctx)
}

func (b *recorderBatch) validate(in intent) error {
	return ValidateDocPath(in.path)
}
