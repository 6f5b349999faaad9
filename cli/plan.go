package cli

import (
	"context"

	"github.com/j1mmie/fireway"
	"github.com/j1mmie/fireway/clierror"
	"github.com/j1mmie/fireway/genericclioptions"

	"github.com/spf13/cobra"
)

type PlanOptions struct {
	*DefaultFirewayOptions
}

var _ genericclioptions.CmdOptions = &PlanOptions{}

func NewPlanOptions(defaults *DefaultFirewayOptions) *PlanOptions {
	return &PlanOptions{DefaultFirewayOptions: defaults}
}

func (o *PlanOptions) Complete() error { return nil }

func (o *PlanOptions) Validate() error {
	if len(o.firewayOptions.Project) == 0 {
		return ErrMissingProject
	}

	return nil
}

func (o *PlanOptions) Run(ctx context.Context, _ ...string) error {
	r, err := fireway.Open(ctx, o.firewayOptions.Project,
		fireway.WithCredentialsFile(o.firewayOptions.Credentials),
		fireway.WithCollection(o.firewayOptions.Collection),
		fireway.WithLogger(o.IOStreams),
	)
	if err != nil {
		return err
	}

	defer func() { _ = r.Close() }()

	pending, err := r.Plan(ctx, o.firewayOptions.Path)
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		o.Printf("No pending migrations\n")
		return nil
	}

	for _, u := range pending {
		o.Printf("%s\t%s\t(%s)\n", u.Version, u.Description, u.Filename)
	}

	return nil
}

// NewCmdPlan creates the plan command, which lists pending migrations
// without executing them.
func NewCmdPlan(defaults *DefaultFirewayOptions) *cobra.Command {
	o := NewPlanOptions(defaults)

	return &cobra.Command{
		Use:   "plan",
		Short: "List pending migrations without executing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return clierror.Check(genericclioptions.ExecuteCommand(cmd.Context(), o, args...))
		},
	}
}
