package cli

import (
	"context"
	"errors"

	"github.com/j1mmie/fireway"
	"github.com/j1mmie/fireway/clierror"
	"github.com/j1mmie/fireway/genericclioptions"

	"github.com/spf13/cobra"
)

var ErrMissingProject = errors.New("no project ID provided; use --project or the config file")

type MigrateOptions struct {
	*DefaultFirewayOptions

	DryRun    bool
	ForceWait bool
}

var _ genericclioptions.CmdOptions = &MigrateOptions{}

func NewMigrateOptions(defaults *DefaultFirewayOptions) *MigrateOptions {
	return &MigrateOptions{DefaultFirewayOptions: defaults}
}

func (o *MigrateOptions) Complete() error {
	// the flag wins when set; the config file can only opt in.
	o.ForceWait = o.ForceWait || o.configForceWait()

	return nil
}

func (o *MigrateOptions) Validate() error {
	if len(o.firewayOptions.Project) == 0 {
		return ErrMissingProject
	}

	return nil
}

func (o *MigrateOptions) Run(ctx context.Context, _ ...string) error {
	opts := []fireway.Opt{
		fireway.WithCredentialsFile(o.firewayOptions.Credentials),
		fireway.WithCollection(o.firewayOptions.Collection),
		fireway.WithDryRun(o.DryRun),
		fireway.WithForceWait(o.ForceWait),
		fireway.WithLogger(o.IOStreams),
	}

	r, err := fireway.Open(ctx, o.firewayOptions.Project, opts...)
	if err != nil {
		return err
	}

	defer func() { _ = r.Close() }()

	stats, err := r.Migrate(ctx, o.firewayOptions.Path)
	if stats != nil {
		o.Printf("%s\n", stats.Summary())
	}

	return err
}

// NewCmdMigrate creates the migrate command.
func NewCmdMigrate(defaults *DefaultFirewayOptions) *cobra.Command {
	o := NewMigrateOptions(defaults)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations in version order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return clierror.Check(genericclioptions.ExecuteCommand(cmd.Context(), o, args...))
		},
	}

	cmd.Flags().BoolVar(&o.DryRun, "dry-run", false, "simulate mutations without committing anything")
	cmd.Flags().BoolVar(&o.ForceWait, "force-wait", false, "wait for each migration's outstanding operations to settle")

	return cmd
}
