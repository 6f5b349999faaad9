package cli

import (
	"errors"

	"github.com/j1mmie/fireway/clierror"
	"github.com/j1mmie/fireway/genericclioptions"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func newVersionCommand(defaults *DefaultFirewayOptions) *cobra.Command {
	cmd := cobra.Command{
		Use:                "version",
		Short:              "Show version",
		DisableFlagParsing: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return clierror.Check(func() error {
				if len(args) > 0 {
					return errors.New("version: command takes no arguments")
				}

				defaults.Printf("%s\n", Version)

				return nil
			}())
		},
	}

	genericclioptions.MarkAllFlagsHidden(&cmd)

	return &cmd
}
