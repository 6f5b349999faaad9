package cli

import (
	"fmt"
	"strconv"

	"github.com/j1mmie/fireway/clierror"
	"github.com/j1mmie/fireway/genericclioptions"
	"github.com/j1mmie/fireway/randstring"

	"github.com/spf13/cobra"
)

// defaultRandomLength matches the length of store-generated document IDs.
const defaultRandomLength = 20

// NewCmdRandom creates the random command, a small utility for generating
// identifiers or substituting entropy into a template, useful when seeding
// test documents.
func NewCmdRandom(defaults *DefaultFirewayOptions) *cobra.Command {
	var template string

	cmd := &cobra.Command{
		Use:   "random [length]",
		Short: "Generate a random identifier",
		Long: `Generate a random identifier using the document-ID alphabet.

With --template, every '?' in the template is replaced with a random
character instead, e.g. 'user-????' -> 'user-x7Qb'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return clierror.Check(func() error {
				if len(template) > 0 {
					if len(args) > 0 {
						return fmt.Errorf("random: --template and a length argument are mutually exclusive")
					}

					s, err := randstring.Substitute(template, '?')
					if err != nil {
						return err
					}

					defaults.Printf("%s\n", s)

					return nil
				}

				n := defaultRandomLength

				if len(args) > 0 {
					parsed, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("random: invalid length %q", args[0])
					}

					n = parsed
				}

				s, err := randstring.New(n)
				if err != nil {
					return err
				}

				defaults.Printf("%s\n", s)

				return nil
			}())
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "", "template whose '?' runes are replaced with random characters")

	genericclioptions.MarkAllFlagsHidden(cmd)

	return cmd
}
