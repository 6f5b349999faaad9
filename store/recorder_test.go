package store_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/j1mmie/fireway/genericclioptions"
	"github.com/j1mmie/fireway/store"

	"github.com/google/go-cmp/cmp"
)

func issueOneOfEach(ctx context.Context, t *testing.T, w store.Writer) {
	t.Helper()

	if err := w.Create(ctx, "users/alice", map[string]any{"name": "alice"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := w.Set(ctx, "users/bob", map[string]any{"name": "bob"}, false); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := w.Update(ctx, "users/alice", []store.Update{{Field: "age", Value: 30}}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if err := w.Delete(ctx, "users/bob"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := w.Add(ctx, "users", map[string]any{"name": "carol"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
}

func TestRecorder_CountsLiveMutations(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	stats := &store.Stats{}

	rec := store.NewRecorder(m, stats, genericclioptions.NewTestIOStreamsDiscard(), false)

	issueOneOfEach(ctx, t, rec)

	want := store.Counts{Created: 1, Set: 1, Updated: 1, Deleted: 1, Added: 1}
	if diff := cmp.Diff(want, stats.Snapshot()); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}

	// alice + carol remain; bob was deleted.
	if m.Len() != 2 {
		t.Errorf("store has %d documents, want 2", m.Len())
	}
}

func TestRecorder_DryRunLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	stats := &store.Stats{}

	rec := store.NewRecorder(m, stats, genericclioptions.NewTestIOStreamsDiscard(), true)

	issueOneOfEach(ctx, t, rec)

	if m.Len() != 0 {
		t.Errorf("dry run committed %d documents", m.Len())
	}

	want := store.Counts{Created: 1, Set: 1, Updated: 1, Deleted: 1, Added: 1}
	if diff := cmp.Diff(want, stats.Snapshot()); diff != "" {
		t.Errorf("dry-run counts mismatch (-want +got):\n%s", diff)
	}
}

func TestRecorder_DryRunAddReturnsID(t *testing.T) {
	rec := store.NewRecorder(store.NewMemory(), &store.Stats{}, genericclioptions.NewTestIOStreamsDiscard(), true)

	id, err := rec.Add(context.Background(), "users", map[string]any{})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if len(id) == 0 {
		t.Error("dry-run Add returned an empty ID")
	}
}

func TestRecorder_DryRunStillValidates(t *testing.T) {
	rec := store.NewRecorder(store.NewMemory(), &store.Stats{}, genericclioptions.NewTestIOStreamsDiscard(), true)

	err := rec.Create(context.Background(), "users", map[string]any{})
	if !errors.Is(err, store.ErrInvalidPath) {
		t.Errorf("Create error = %v, want ErrInvalidPath", err)
	}

	if got := rec.Stats().Snapshot().Total(); got != 0 {
		t.Errorf("invalid write was counted: %d", got)
	}
}

func TestRecorder_FrozenSuppressesCounting(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	stats := &store.Stats{}

	rec := store.NewRecorder(m, stats, genericclioptions.NewTestIOStreamsDiscard(), false)

	stats.Freeze()

	if err := rec.Create(ctx, "fireway/0-1.0.0-init", map[string]any{}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stats.Unfreeze()

	if got := stats.Snapshot().Total(); got != 0 {
		t.Errorf("frozen write was counted: %d", got)
	}

	// the write itself still happened.
	if m.Len() != 1 {
		t.Errorf("frozen write did not reach the store")
	}
}

func TestRecorderBatch_DefersUntilCommit(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	stats := &store.Stats{}
	iostreams, out, _ := genericclioptions.NewTestIOStreams()

	rec := store.NewRecorder(m, stats, iostreams, false)

	b := rec.Batch()
	b.Create("users/alice", map[string]any{"n": 1})
	b.Set("users/alice", map[string]any{"n": 2}, false)
	b.Delete("users/zed")

	// nothing is counted, logged, or written before commit.
	if stats.Snapshot().Total() != 0 {
		t.Error("batched writes counted before Commit")
	}

	if out.Len() != 0 {
		t.Errorf("batched writes logged before Commit: %q", out.String())
	}

	if err := b.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	want := store.Counts{Created: 1, Set: 1, Deleted: 1}
	if diff := cmp.Diff(want, stats.Snapshot()); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}

	// replay order matches queue order.
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 ||
		!strings.Contains(lines[0], "Creating") ||
		!strings.Contains(lines[1], "Setting") ||
		!strings.Contains(lines[2], "Deleting") {
		t.Errorf("unexpected replay log order:\n%s", out.String())
	}

	if doc, _ := m.Doc("users/alice"); doc["n"] != 2 {
		t.Errorf("n = %v, want 2", doc["n"])
	}
}

func TestRecorderBatch_DryRunCommitsNothing(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	stats := &store.Stats{}

	rec := store.NewRecorder(m, stats, genericclioptions.NewTestIOStreamsDiscard(), true)

	b := rec.Batch()
	b.Create("users/alice", map[string]any{})
	b.Update("users/alice", []store.Update{{Field: "n", Value: 1}})

	if err := b.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if m.Len() != 0 {
		t.Errorf("dry-run batch committed %d documents", m.Len())
	}

	want := store.Counts{Created: 1, Updated: 1}
	if diff := cmp.Diff(want, stats.Snapshot()); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestRecorderBatch_ValidatesIntentPathsDirectly(t *testing.T) {
	m := store.NewMemory()
	stats := &store.Stats{}
	iostreams, out, _ := genericclioptions.NewTestIOStreams()

	rec := store.NewRecorder(m, stats, iostreams, false)

	if err := m.Create(context.Background(), "users/alice", map[string]any{}); err != nil {
		t.Fatal(err)
	}

	// the update log line carries more than the path; validation must not
	// depend on the log arguments.
	b := rec.Batch()
	b.Update("users/alice", []store.Update{{Field: "n", Value: 1}, {Field: "m", Value: 2}})

	if err := b.Commit(context.Background()); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if !strings.Contains(out.String(), "Updating users/alice (2 fields)") {
		t.Errorf("unexpected replay log:\n%s", out.String())
	}

	bad := rec.Batch()
	bad.Update("users", []store.Update{{Field: "n", Value: 1}})

	if err := bad.Commit(context.Background()); !errors.Is(err, store.ErrInvalidPath) {
		t.Errorf("Commit error = %v, want ErrInvalidPath", err)
	}
}

func TestRecorderBatch_ValidatesBeforeReplay(t *testing.T) {
	m := store.NewMemory()
	stats := &store.Stats{}

	rec := store.NewRecorder(m, stats, genericclioptions.NewTestIOStreamsDiscard(), false)

	b := rec.Batch()
	b.Create("users/alice", map[string]any{})
	b.Create("not-a-document", map[string]any{})

	err := b.Commit(context.Background())
	if !errors.Is(err, store.ErrInvalidPath) {
		t.Fatalf("Commit error = %v, want ErrInvalidPath", err)
	}

	if stats.Snapshot().Total() != 0 {
		t.Error("invalid batch was partially counted")
	}

	if m.Len() != 0 {
		t.Error("invalid batch was partially applied")
	}
}
