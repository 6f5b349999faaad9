package clierror

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/j1mmie/fireway/fireerrors"
)

const (
	DefaultErrorExitCode = 1
)

var (
	// errHandler is the function used to handle cli errors.
	errHandler = FatalErrHandler

	// errWriter is used to output cli error messages.
	errWriter io.Writer = os.Stderr

	// debugMode enables always printing raw error values.
	debugMode bool
)

// SetErrorHandler overrides the default [FatalErrHandler] error handler.
func SetErrorHandler(f func(string, int)) {
	errHandler = f
}

// ResetErrorHandler restores the default error handler.
func ResetErrorHandler() {
	errHandler = FatalErrHandler
}

// SetErrWriter overrides the default error output writer [os.Stderr].
func SetErrWriter(w io.Writer) {
	errWriter = w
}

// ResetErrWriter restores the default error output writer to [os.Stderr].
func ResetErrWriter() {
	errWriter = os.Stderr
}

// DebugMode sets whether debug logging is enabled.
//
// When enabled, raw error values are printed to stderr.
func DebugMode(enabled bool) {
	debugMode = enabled
}

// FatalErrHandler prints the message provided and then exits with the given code.
func FatalErrHandler(msg string, code int) {
	printError(msg)

	//nolint:revive // Intentional exit after fatal error.
	os.Exit(code)
}

func PrintErrHandler(msg string, _ int) {
	printError(msg)
}

func printError(msg string) {
	if len(msg) == 0 {
		return
	}

	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}

	_, _ = fmt.Fprintf(errWriter, "%s", msg)
}

func debugPrint(err error) {
	if !debugMode {
		return
	}

	_, _ = fmt.Fprintf(errWriter, "DEBUG %+v\n", err)
}

// Check prints a user-friendly error message and invokes the configured error handler.
//
// When the [FatalErrHandler] is used, the program will exit before this function returns.
func Check(err error) error {
	check(err, errHandler)
	return err
}

//nolint:revive
func check(err error, handleErr func(string, int)) {
	if err == nil {
		return
	}

	debugPrint(err)

	switch {
	case errors.Is(err, fireerrors.ErrPoisonedLedger):
		handleErr("fireway: "+err.Error()+"\nResolve the store state and the failed ledger entry manually before re-running.", DefaultErrorExitCode)
	case errors.Is(err, fireerrors.ErrDuplicateVersion):
		handleErr("fireway: "+err.Error()+"\nEach migration file must carry a unique version.", DefaultErrorExitCode)
	case errors.Is(err, fireerrors.ErrInvalidFilename):
		handleErr("fireway: "+err.Error()+"\nExpected <version>__<description>.<ext>, e.g. 'v1.0.0__add-users.go'.", DefaultErrorExitCode)
	case errors.Is(err, fireerrors.ErrUnitNotRegistered):
		handleErr("fireway: "+err.Error()+"\nEvery migration script must register its entry point with migration.Register.", DefaultErrorExitCode)
	default:
		msg := err.Error()
		if !strings.HasPrefix(msg, "fireway: ") {
			msg = "fireway: " + msg
		}

		handleErr(msg, DefaultErrorExitCode)
	}
}
