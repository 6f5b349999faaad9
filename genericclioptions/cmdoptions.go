package genericclioptions

import "context"

// BaseOptions is the two-phase setup contract for fireway commands.
// Complete resolves flags, the config file, and the environment into a
// usable option set; Validate then rejects an unusable one (a missing
// project ID, an unreadable credentials file) before any store handle is
// opened.
type BaseOptions interface {
	// Complete fills in defaults and derived values. It runs before
	// Validate and must not touch the store.
	Complete() error

	// Validate rejects an unusable option set.
	Validate() error
}

// CmdOptions is a runnable command: BaseOptions plus the command body.
type CmdOptions interface {
	BaseOptions

	// Run executes the command against completed, validated options.
	Run(ctx context.Context, args ...string) error
}

// ExecuteCommand drives a command through its lifecycle. Each phase aborts
// the invocation on error, so Run only ever sees options that completed
// and validated cleanly.
func ExecuteCommand(ctx context.Context, cmd CmdOptions, args ...string) error {
	for _, phase := range []func() error{cmd.Complete, cmd.Validate} {
		if err := phase(); err != nil {
			return err
		}
	}

	return cmd.Run(ctx, args...)
}
