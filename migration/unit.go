// Package migration defines migration units: versioned script files
// discovered on disk, paired with Go entry points registered against the
// script filename.
package migration

import (
	"context"

	"github.com/j1mmie/fireway/store"
)

// Unit is a single discovered migration script.
type Unit struct {
	// Version is the canonical semantic version parsed from the filename.
	Version string

	// Description is the human-readable token after the "__" separator.
	Description string

	// Filename is the script's base name, used to look up its entry point.
	Filename string

	// Path is the absolute or directory-relative location of the script.
	Path string

	// Checksum is the SHA-1 hex digest of the script's content.
	Checksum string
}

// Func is a migration entry point. It resolves when the unit's logical work
// has been issued; work spawned through [Context.Spawn] may still be
// outstanding when it returns.
type Func func(ctx context.Context, m *Context) error

// Context is the bundle a migration entry point executes against.
type Context struct {
	// Store is the run's write surface. Under dry-run it validates and
	// records mutations without committing them.
	Store store.Writer

	// DryRun reports whether mutations are being simulated.
	DryRun bool

	ctx   context.Context
	spawn func(label string, fn func(ctx context.Context) error)
}

// NewContext builds a unit execution context for the given run context. The
// spawn hook is installed by the execution supervisor; a nil hook runs
// spawned work inline.
func NewContext(ctx context.Context, w store.Writer, dryRun bool, spawn func(label string, fn func(ctx context.Context) error)) *Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return &Context{
		Store:  w,
		DryRun: dryRun,
		ctx:    ctx,
		spawn:  spawn,
	}
}

// Spawn issues a tracked asynchronous operation. The unit is not considered
// quiescent until every spawned operation has completed, and a spawned
// operation failing or panicking marks the unit failed even after the entry
// point has returned.
//
// Under supervision Spawn returns nil immediately and failures surface
// through the unit's recorded outcome. Without a supervisor the operation
// runs inline against the run context and its error is returned.
func (m *Context) Spawn(label string, fn func(ctx context.Context) error) error {
	if m.spawn == nil {
		return fn(m.ctx)
	}

	m.spawn(label, fn)

	return nil
}
