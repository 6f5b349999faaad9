package fireerrors

import "errors"

var (
	// ErrInvalidFilename indicates a migration filename with a parseable
	// version but no description.
	ErrInvalidFilename = errors.New("filename does not match the required <version>__<description> format")

	ErrDuplicateVersion = errors.New("duplicate migration version")

	// ErrPoisonedLedger indicates the most recent ledger entry records a
	// failed migration. The engine never recovers from this automatically;
	// the operator must resolve the store state and the failed entry first.
	ErrPoisonedLedger = errors.New("latest ledger entry records a failed migration")

	// ErrUnitNotRegistered indicates a discovered migration script with no
	// registered entry point.
	ErrUnitNotRegistered = errors.New("no registered entry point for migration script")

	ErrQuiescenceTimeout = errors.New("timed out waiting for outstanding operations")

	ErrMigrationFailed = errors.New("migration failed")
)
