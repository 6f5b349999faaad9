// Package fireway applies versioned migration scripts against a document
// store exactly once each, in order, recording every attempt in an
// append-only ledger held in the store itself.
//
// There is no cross-unit transaction and no automatic rollback: a failed
// unit halts the run with its failure recorded, and the operator resolves
// the store state manually before the engine proceeds again.
package fireway

import (
	"context"
	"errors"
	"fmt"
	"os/user"
	"time"

	"github.com/j1mmie/fireway/fireerrors"
	"github.com/j1mmie/fireway/ledger"
	"github.com/j1mmie/fireway/migration"
	"github.com/j1mmie/fireway/runner"
	"github.com/j1mmie/fireway/store"

	"google.golang.org/api/option"
)

// entryType is recorded in every ledger entry this engine writes.
const entryType = "go"

// Logger is the run's log sink. *genericclioptions.IOStreams satisfies it.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Debugf(string, ...any) {}

// Runner orchestrates migration runs against a single store handle.
//
// A Runner drives one run at a time: units execute strictly sequentially,
// and the ledger rank counter is tracked in memory for the duration of a
// run. Concurrent runs against the same store handle are unsupported.
type Runner struct {
	store     store.Client
	ownsStore bool

	collection  string
	dryRun      bool
	forceWait   bool
	lookup      func(script string) (migration.Func, bool)
	log         Logger
	installedBy string

	credentialsFile string

	ceiling time.Duration
	poll    time.Duration
	grace   time.Duration
}

type Opt func(*Runner)

// WithDryRun simulates mutations, including ledger appends, without
// committing them.
func WithDryRun(enabled bool) Opt {
	return func(r *Runner) {
		r.dryRun = enabled
	}
}

// WithForceWait makes each unit wait for its outstanding operations to
// drain, bounded by the quiescence ceiling, before its outcome is recorded.
func WithForceWait(enabled bool) Opt {
	return func(r *Runner) {
		r.forceWait = enabled
	}
}

// WithCollection overrides the ledger collection name.
func WithCollection(name string) Opt {
	return func(r *Runner) {
		if len(name) > 0 {
			r.collection = name
		}
	}
}

// WithLogger sets the run's log sink.
func WithLogger(log Logger) Opt {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// WithLookup overrides how script filenames resolve to entry points.
// Defaults to the process-wide [migration.Lookup] registry.
func WithLookup(fn func(script string) (migration.Func, bool)) Opt {
	return func(r *Runner) {
		if fn != nil {
			r.lookup = fn
		}
	}
}

// WithInstalledBy overrides the recorded ledger author. Defaults to the
// current OS user.
func WithInstalledBy(name string) Opt {
	return func(r *Runner) {
		if len(name) > 0 {
			r.installedBy = name
		}
	}
}

// WithCredentialsFile points [Open] at a service account key file instead
// of application-default credentials.
func WithCredentialsFile(path string) Opt {
	return func(r *Runner) {
		r.credentialsFile = path
	}
}

// WithQuiescenceWindow overrides the supervisor's ceiling, poll interval,
// and post-settlement grace. Zero values keep the defaults.
func WithQuiescenceWindow(ceiling, poll, grace time.Duration) Opt {
	return func(r *Runner) {
		r.ceiling, r.poll, r.grace = ceiling, poll, grace
	}
}

// New builds a Runner over a caller-supplied store handle. The caller keeps
// ownership of the handle; the Runner never closes it.
func New(client store.Client, opts ...Opt) *Runner {
	r := &Runner{
		store:      client,
		collection: ledger.DefaultCollection,
		lookup:     migration.Lookup,
		log:        noopLogger{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Open dials Firestore and builds a Runner owning the resulting handle.
// The handle is released when the run finishes, so an opened Runner drives
// a single run.
func Open(ctx context.Context, projectID string, opts ...Opt) (*Runner, error) {
	r := New(nil, opts...)

	var clientOpts []option.ClientOption
	if len(r.credentialsFile) > 0 {
		clientOpts = append(clientOpts, option.WithCredentialsFile(r.credentialsFile))
	}

	fs, err := store.OpenFirestore(ctx, projectID, clientOpts...)
	if err != nil {
		return nil, err
	}

	r.store = fs
	r.ownsStore = true

	return r, nil
}

// Close releases the store handle if the Runner created it. Handles
// supplied through [New] are left open.
func (r *Runner) Close() error {
	if !r.ownsStore {
		return nil
	}

	r.ownsStore = false

	return r.store.Close()
}

// Plan resolves the migration directory and returns the pending units in
// execution order, without executing anything.
func (r *Runner) Plan(ctx context.Context, dir string) ([]migration.Unit, error) {
	units, err := migration.Resolve(dir, r.log)
	if err != nil {
		return nil, err
	}

	latest, err := ledger.New(r.store, ledger.WithCollection(r.collection)).Latest(ctx)
	if err != nil {
		return nil, err
	}

	if latest != nil && !latest.Success {
		return nil, poisonedErr(latest)
	}

	return pendingUnits(units, latest), nil
}

// Migrate runs every pending migration in order, appending a ledger entry
// per attempted unit, and aborts on the first failure after that failure
// is recorded. The returned stats are valid even when an error is
// returned.
func (r *Runner) Migrate(ctx context.Context, dir string) (stats *RunStats, retErr error) {
	defer r.release()

	stats = &RunStats{DryRun: r.dryRun}

	if r.dryRun {
		r.log.Infof("Dry run: simulating writes, nothing will be committed\n")
	}

	units, err := migration.Resolve(dir, r.log)
	if err != nil {
		return stats, err
	}

	stats.Scanned = len(units)

	mutations := &store.Stats{}
	defer func() { stats.Counts = mutations.Snapshot() }()

	rec := store.NewRecorder(r.store, mutations, r.log, r.dryRun)
	led := ledger.New(r.store, ledger.WithCollection(r.collection), ledger.WithWriter(rec))

	latest, err := led.Latest(ctx)
	if err != nil {
		return stats, err
	}

	if latest != nil && !latest.Success {
		return stats, poisonedErr(latest)
	}

	pending := pendingUnits(units, latest)
	if len(pending) == 0 {
		r.log.Infof("No pending migrations\n")
		return stats, nil
	}

	// Every pending unit must have a loadable entry point before anything
	// executes; a missing one aborts the run with no ledger attempt.
	fns := make([]migration.Func, len(pending))

	for i, u := range pending {
		fn, ok := r.lookup(u.Filename)
		if !ok {
			return stats, fmt.Errorf("%w: %q", fireerrors.ErrUnitNotRegistered, u.Filename)
		}

		fns[i] = fn
	}

	// The rank counter is seeded once and never re-read mid-run.
	rank := int64(-1)
	if latest != nil {
		rank = latest.InstalledRank
	}

	sup := &runner.Supervisor{
		ForceWait: r.forceWait,
		Ceiling:   r.ceiling,
		Poll:      r.poll,
		Grace:     r.grace,
		Log:       r.log,
	}

	installedBy := r.resolveInstalledBy()

	for i, u := range pending {
		r.log.Infof("Applying migration %s: %s\n", u.Version, u.Description)

		res := sup.Run(ctx, u, fns[i], rec, r.dryRun)
		stats.Executed++
		rank++

		entry := ledger.Entry{
			InstalledRank: rank,
			Version:       u.Version,
			Description:   u.Description,
			Script:        u.Filename,
			Type:          entryType,
			Checksum:      u.Checksum,
			InstalledBy:   installedBy,
			InstalledOn:   res.Start,
			ExecutionTime: res.Finish.Sub(res.Start),
			Success:       res.Success,
		}

		// The ledger append itself must not show up in the run's mutation
		// counters.
		mutations.Freeze()
		appendErr := led.Append(ctx, entry)
		mutations.Unfreeze()

		if appendErr != nil {
			return stats, appendErr
		}

		if !res.Success {
			cause := res.Err
			if cause == nil {
				cause = errors.New("unit reported failure")
			}

			return stats, fmt.Errorf("migration %s (%s): %w", u.Version, u.Filename,
				errors.Join(fireerrors.ErrMigrationFailed, cause))
		}
	}

	return stats, nil
}

// release closes an owned store handle. Best effort: a teardown failure is
// logged and never overwrites the run's outcome.
func (r *Runner) release() {
	if !r.ownsStore {
		return
	}

	r.ownsStore = false

	if err := r.store.Close(); err != nil {
		r.log.Warnf("closing store handle: %v\n", err)
	}
}

func (r *Runner) resolveInstalledBy() string {
	if len(r.installedBy) > 0 {
		return r.installedBy
	}

	if u, err := user.Current(); err == nil && len(u.Username) > 0 {
		return u.Username
	}

	return "unknown"
}

// pendingUnits returns the units with a version strictly greater than the
// latest applied one, in ascending order. Units versioned below the ledger
// head are never revisited.
func pendingUnits(units []migration.Unit, latest *ledger.Entry) []migration.Unit {
	if latest == nil {
		return units
	}

	var pending []migration.Unit

	for _, u := range units {
		if migration.CompareVersions(u.Version, latest.Version) > 0 {
			pending = append(pending, u)
		}
	}

	return pending
}

func poisonedErr(latest *ledger.Entry) error {
	return fmt.Errorf("%w: version %s (rank %d)",
		fireerrors.ErrPoisonedLedger, latest.Version, latest.InstalledRank)
}
