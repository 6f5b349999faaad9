package migration_test

import (
	"context"
	"errors"
	"testing"

	"github.com/j1mmie/fireway/migration"
)

type ctxKey struct{}

func TestContext_SpawnWithoutSupervisorRunsInline(t *testing.T) {
	ctx := context.WithValue(context.Background(), ctxKey{}, "run")
	mctx := migration.NewContext(ctx, nil, false, nil)

	ran := false

	err := mctx.Spawn("inline", func(ctx context.Context) error {
		ran = true

		if ctx.Value(ctxKey{}) != "run" {
			t.Error("operation did not receive the run context")
		}

		return nil
	})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	if !ran {
		t.Error("unsupervised Spawn did not run inline")
	}
}

func TestContext_SpawnWithoutSupervisorReturnsError(t *testing.T) {
	mctx := migration.NewContext(context.Background(), nil, false, nil)

	boom := errors.New("boom")

	if err := mctx.Spawn("inline", func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Spawn err = %v, want the operation's error", err)
	}
}

func TestContext_SpawnWithSupervisorReturnsNil(t *testing.T) {
	var spawned string

	hook := func(label string, fn func(ctx context.Context) error) {
		spawned = label

		if err := fn(context.Background()); err == nil {
			t.Error("hook expected the operation's error")
		}
	}

	mctx := migration.NewContext(context.Background(), nil, false, hook)

	err := mctx.Spawn("tracked", func(context.Context) error { return errors.New("boom") })
	if err != nil {
		t.Fatalf("supervised Spawn returned %v, want nil", err)
	}

	if spawned != "tracked" {
		t.Errorf("hook received label %q", spawned)
	}
}
