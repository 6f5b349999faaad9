package migration_test

import (
	"context"
	"testing"

	"github.com/j1mmie/fireway/migration"
)

func TestRegisterAndLookup(t *testing.T) {
	called := false

	migration.Register("v9.9.9__registry-roundtrip.go", func(context.Context, *migration.Context) error {
		called = true
		return nil
	})

	fn, ok := migration.Lookup("v9.9.9__registry-roundtrip.go")
	if !ok {
		t.Fatal("Lookup missed a registered script")
	}

	if err := fn(context.Background(), migration.NewContext(context.Background(), nil, false, nil)); err != nil {
		t.Fatalf("registered func failed: %v", err)
	}

	if !called {
		t.Error("registered func was not invoked")
	}
}

func TestLookup_Unregistered(t *testing.T) {
	if _, ok := migration.Lookup("v0.0.0__never-registered.go"); ok {
		t.Error("Lookup returned a func for an unregistered script")
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("duplicate Register did not panic")
		}
	}()

	fn := func(context.Context, *migration.Context) error { return nil }

	migration.Register("v8.8.8__duplicate.go", fn)
	migration.Register("v8.8.8__duplicate.go", fn)
}

func TestRegister_NilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("nil Register did not panic")
		}
	}()

	migration.Register("v7.7.7__nil.go", nil)
}
