package cli

import (
	"cmp"
	"context"
	"os"
	"slices"

	"github.com/j1mmie/fireway/clierror"
	"github.com/j1mmie/fireway/genericclioptions"
	"github.com/j1mmie/fireway/ledger"

	"github.com/spf13/cobra"
)

// defaultMigrationsDir is used when neither the flag nor the config file
// names a migrations directory.
const defaultMigrationsDir = "migrations"

// ConfigOptions loads the optional TOML configuration file.
type ConfigOptions struct {
	userPath string

	*FileConfig
}

var _ genericclioptions.BaseOptions = &ConfigOptions{}

func (o *ConfigOptions) Complete() error {
	c, err := LoadFileConfig(cmp.Or(o.userPath, os.Getenv(envConfigPathKey)))
	if err != nil {
		return err
	}

	o.FileConfig = c

	return nil
}

func (o *ConfigOptions) Validate() error { return nil }

// FirewayOptions carries the resolved engine target: where the migrations
// live and which store they apply to.
type FirewayOptions struct {
	Path        string
	Project     string
	Credentials string
	Collection  string
}

// DefaultFirewayOptions is the shared option set completed once per
// invocation and consumed by the subcommands.
type DefaultFirewayOptions struct {
	*genericclioptions.IOStreams

	configOptions  *ConfigOptions
	firewayOptions *FirewayOptions
}

var _ genericclioptions.CmdOptions = &DefaultFirewayOptions{}

func NewDefaultFirewayOptions(iostreams *genericclioptions.IOStreams) *DefaultFirewayOptions {
	return &DefaultFirewayOptions{
		IOStreams:      iostreams,
		configOptions:  &ConfigOptions{},
		firewayOptions: &FirewayOptions{},
	}
}

func (o *DefaultFirewayOptions) Complete() error {
	clierror.DebugMode(o.Verbose)

	return o.configOptions.Complete()
}

func (o *DefaultFirewayOptions) Validate() error {
	return o.configOptions.Validate()
}

// Run merges file configuration under any explicitly set flags.
func (o *DefaultFirewayOptions) Run(_ context.Context, _ ...string) error {
	c := o.configOptions.Fireway

	o.firewayOptions.Path = cmp.Or(o.firewayOptions.Path, c.Path, defaultMigrationsDir)
	o.firewayOptions.Project = cmp.Or(o.firewayOptions.Project, c.Project)
	o.firewayOptions.Credentials = cmp.Or(o.firewayOptions.Credentials, c.Credentials)
	o.firewayOptions.Collection = cmp.Or(o.firewayOptions.Collection, c.Collection, ledger.DefaultCollection)

	return nil
}

// configForceWait reports the config file's force_wait default.
func (o *DefaultFirewayOptions) configForceWait() bool {
	fw := o.configOptions.Fireway.ForceWait
	return fw != nil && *fw
}

// NewDefaultFirewayCommand creates the `fireway` command with its sub-commands.
func NewDefaultFirewayCommand(iostreams *genericclioptions.IOStreams, args []string) *cobra.Command {
	o := NewDefaultFirewayOptions(iostreams)

	cmd := &cobra.Command{
		Use:   "fireway",
		Short: "Versioned migrations for Firestore",
		Long: `fireway applies versioned migration scripts against a Firestore database
exactly once each, recording every attempt in an append-only ledger.

Environment Variables:
    FIREWAY_CONFIG_PATH: overrides the default config path: "~/.fireway.toml".`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if slices.Contains([]string{"config", "version", "random", "help"}, cmd.Name()) {
				return
			}

			clierror.Check(genericclioptions.ExecuteCommand(cmd.Context(), o))
		},
	}

	cmd.SetArgs(args)

	cmd.PersistentFlags().BoolVarP(&o.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().StringVar(&o.configOptions.userPath, "config", "",
		"configuration file path (default: ~/"+defaultConfigName+")")
	cmd.PersistentFlags().StringVarP(&o.firewayOptions.Path, "path", "p", "",
		"migrations directory (default: ./"+defaultMigrationsDir+")")
	cmd.PersistentFlags().StringVar(&o.firewayOptions.Project, "project", "",
		"Google Cloud project ID")
	cmd.PersistentFlags().StringVar(&o.firewayOptions.Credentials, "credentials", "",
		"service account key file")
	cmd.PersistentFlags().StringVar(&o.firewayOptions.Collection, "collection", "",
		"ledger collection name (default: "+ledger.DefaultCollection+")")

	cmd.AddCommand(NewCmdMigrate(o))
	cmd.AddCommand(NewCmdPlan(o))
	cmd.AddCommand(NewCmdConfig(o))
	cmd.AddCommand(NewCmdRandom(o))
	cmd.AddCommand(newVersionCommand(o))

	return cmd
}
