package migration

import (
	"fmt"
	"sync"
)

// The process-wide registry maps script filenames to their entry points.
// Migration scripts register themselves from init, typically in the same
// file the resolver discovers on disk:
//
//	func init() {
//		migration.Register("v1.0.0__add-users.go", func(ctx context.Context, m *migration.Context) error {
//			return m.Store.Create(ctx, "users/admin", map[string]any{"role": "admin"})
//		})
//	}
var registry = struct {
	sync.RWMutex
	funcs map[string]Func
}{funcs: make(map[string]Func)}

// Register binds a migration entry point to its script filename. It panics
// on a nil function or a duplicate registration, both of which are
// programmer errors surfacing at process start.
func Register(script string, fn Func) {
	registry.Lock()
	defer registry.Unlock()

	if fn == nil {
		panic(fmt.Sprintf("migration: Register(%q) with nil function", script))
	}

	if _, dup := registry.funcs[script]; dup {
		panic(fmt.Sprintf("migration: Register called twice for %q", script))
	}

	registry.funcs[script] = fn
}

// Lookup returns the entry point registered for the given script filename.
func Lookup(script string) (Func, bool) {
	registry.RLock()
	defer registry.RUnlock()

	fn, ok := registry.funcs[script]

	return fn, ok
}
