// Package runner executes one migration unit at a time and decides whether
// its asynchronous side effects have settled before the outcome is
// finalized.
package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/j1mmie/fireway/fireerrors"
	"github.com/j1mmie/fireway/migration"
	"github.com/j1mmie/fireway/store"
)

const (
	// DefaultCeiling bounds the forced quiescence wait.
	DefaultCeiling = 30 * time.Second

	// DefaultPoll is the interval between quiescence checks while waiting.
	DefaultPoll = time.Second

	// DefaultGrace is the window after settlement in which a late failure
	// still marks the unit failed.
	DefaultGrace = 100 * time.Millisecond
)

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Debugf(string, ...any) {}

// Supervisor runs migration units under structured-concurrency
// bookkeeping: every operation a unit spawns is registered in a per-unit
// set and deregistered on completion, and quiescence means the set is
// empty.
//
// Zero durations fall back to the package defaults; tests shrink them.
type Supervisor struct {
	// ForceWait makes the supervisor wait for quiescence after the unit's
	// entry point returns, up to Ceiling. Without it, outstanding
	// operations only produce a warning.
	ForceWait bool

	Ceiling time.Duration
	Poll    time.Duration
	Grace   time.Duration

	Log Logger
}

// Result is the supervised outcome of one unit.
type Result struct {
	Success bool
	Start   time.Time
	Finish  time.Time

	// Err carries the failure cause when Success is false. It is recorded
	// in the ledger by the caller, never returned as a run abort directly.
	Err error
}

// Run executes the unit's entry point against the given write surface and
// supervises it to a final verdict. The returned result is always
// populated; supervision itself does not fail.
func (s *Supervisor) Run(ctx context.Context, unit migration.Unit, fn migration.Func, w store.Writer, dryRun bool) Result {
	var (
		ops = newOperationSet()

		failMu   sync.Mutex
		asyncErr error
	)

	report := func(err error) {
		failMu.Lock()
		defer failMu.Unlock()

		if asyncErr == nil {
			asyncErr = err
		}
	}

	spawn := func(label string, op func(ctx context.Context) error) {
		id := ops.track(label)

		go func() {
			defer ops.done(id)
			defer func() {
				if r := recover(); r != nil {
					report(fmt.Errorf("operation %q: panic: %v", label, r))
				}
			}()

			if err := op(ctx); err != nil {
				report(fmt.Errorf("operation %q: %w", label, err))
			}
		}()
	}

	mctx := migration.NewContext(ctx, w, dryRun, spawn)

	start := time.Now()
	err := s.invoke(ctx, fn, mctx)

	if ops.len() > 0 {
		qerr := s.awaitQuiescence(unit, ops)
		if err == nil {
			err = qerr
		}
	}

	// Grace window: a spawned operation may surface a failure just after
	// the entry point settled.
	time.Sleep(s.grace())

	failMu.Lock()
	if err == nil {
		err = asyncErr
	}
	failMu.Unlock()

	finish := time.Now()

	if err != nil {
		s.logger().Warnf("migration %s failed: %v\n", unit.Version, err)
	}

	return Result{
		Success: err == nil,
		Start:   start,
		Finish:  finish,
		Err:     err,
	}
}

// invoke runs the entry point, converting a panic into a unit failure.
func (s *Supervisor) invoke(ctx context.Context, fn migration.Func, mctx *migration.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("entry point panicked: %v", r)
		}
	}()

	return fn(ctx, mctx)
}

// awaitQuiescence handles a unit whose entry point returned while spawned
// operations were still outstanding.
func (s *Supervisor) awaitQuiescence(unit migration.Unit, ops *operationSet) error {
	if !s.ForceWait {
		s.logger().Warnf("migration %s returned with %d outstanding operations: %s\n",
			unit.Version, ops.len(), strings.Join(ops.outstanding(), ", "))
		return nil
	}

	deadline := time.Now().Add(s.ceiling())

	for {
		n := ops.len()
		if n == 0 {
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s still outstanding after %s",
				fireerrors.ErrQuiescenceTimeout, strings.Join(ops.outstanding(), ", "), s.ceiling())
		}

		s.logger().Infof("waiting on %d outstanding operations: %s\n", n, strings.Join(ops.outstanding(), ", "))
		time.Sleep(s.poll())
	}
}

func (s *Supervisor) logger() Logger {
	if s.Log != nil {
		return s.Log
	}

	return nopLogger{}
}

func (s *Supervisor) ceiling() time.Duration {
	if s.Ceiling > 0 {
		return s.Ceiling
	}

	return DefaultCeiling
}

func (s *Supervisor) poll() time.Duration {
	if s.Poll > 0 {
		return s.Poll
	}

	return DefaultPoll
}

func (s *Supervisor) grace() time.Duration {
	if s.Grace > 0 {
		return s.Grace
	}

	return DefaultGrace
}
