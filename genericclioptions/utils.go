package genericclioptions

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// MarkAllFlagsHidden hides every inherited flag from the command's help output.
func MarkAllFlagsHidden(cmd *cobra.Command) {
	f := cmd.HelpFunc()
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		c.InheritedFlags().VisitAll(func(fl *pflag.Flag) {
			fl.Hidden = true
		})

		f(c, args)
	})
}

// MarkFlagsHidden hides the named flags from the command's help output.
func MarkFlagsHidden(cmd *cobra.Command, hidden ...string) {
	f := cmd.HelpFunc()
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		for _, n := range hidden {
			if fl := c.Flags().Lookup(n); fl != nil {
				fl.Hidden = true
			}
		}

		f(c, args)
	})
}

// RejectDisallowedFlags returns an error if any of the given flags were set.
func RejectDisallowedFlags(cmd *cobra.Command, disallowed ...string) error {
	for _, name := range disallowed {
		if cmd.Flags().Changed(name) {
			return fmt.Errorf("flag --%s is not allowed with %q command", name, cmd.Name())
		}
	}

	return nil
}
