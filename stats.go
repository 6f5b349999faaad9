package fireway

import (
	"fmt"

	"github.com/j1mmie/fireway/store"
)

// RunStats aggregates the outcome of one migration run. It is created at
// run start, owned by the orchestrator, and returned to the caller.
type RunStats struct {
	// Scanned is the number of migration units discovered in the directory.
	Scanned int

	// Executed is the number of units whose execution was attempted,
	// including a final failed one.
	Executed int

	// DryRun reports whether mutations were simulated.
	DryRun bool

	// Counts holds the per-kind mutation counters recorded during the run.
	Counts store.Counts
}

// Summary renders a one-line, human-readable run report.
func (s *RunStats) Summary() string {
	mode := ""
	if s.DryRun {
		mode = " (dry run)"
	}

	return fmt.Sprintf("Scanned %d migrations, executed %d%s: %d created, %d set, %d updated, %d deleted, %d added",
		s.Scanned, s.Executed, mode,
		s.Counts.Created, s.Counts.Set, s.Counts.Updated, s.Counts.Deleted, s.Counts.Added)
}
