package cli

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"

	"github.com/j1mmie/fireway/clierror"
	"github.com/j1mmie/fireway/genericclioptions"
	"github.com/j1mmie/fireway/ledger"

	"github.com/spf13/cobra"
)

// ResolvedConfig is the effective configuration after merging flags, the
// config file, and built-in defaults.
//
//nolint:tagliatelle
type ResolvedConfig struct {
	Path        string `json:"path"`
	Project     string `json:"project,omitempty"`
	Credentials string `json:"credentials,omitempty"`
	Collection  string `json:"collection"`
	ForceWait   bool   `json:"force_wait"`
}

type ConfigCmdOptions struct {
	*DefaultFirewayOptions

	template bool
}

var _ genericclioptions.CmdOptions = &ConfigCmdOptions{}

func (o *ConfigCmdOptions) Complete() error {
	return o.configOptions.Complete()
}

func (o *ConfigCmdOptions) Validate() error { return nil }

func (o *ConfigCmdOptions) Run(_ context.Context, _ ...string) error {
	if o.template {
		t, err := Template()
		if err != nil {
			return err
		}

		o.Printf("%s", t)

		return nil
	}

	c := o.configOptions.Fireway

	resolved := ResolvedConfig{
		Path:        cmp.Or(o.firewayOptions.Path, c.Path, defaultMigrationsDir),
		Project:     cmp.Or(o.firewayOptions.Project, c.Project),
		Credentials: cmp.Or(o.firewayOptions.Credentials, c.Credentials),
		Collection:  cmp.Or(o.firewayOptions.Collection, c.Collection, ledger.DefaultCollection),
		ForceWait:   o.configForceWait(),
	}

	out := struct {
		Path     string         `json:"path,omitempty"`
		Parsed   *FileConfig    `json:"parsed_config"`   //nolint:tagliatelle
		Resolved ResolvedConfig `json:"resolved_config"` //nolint:tagliatelle
	}{
		Path:     o.configOptions.Path(),
		Parsed:   o.configOptions.FileConfig,
		Resolved: resolved,
	}

	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	o.Printf("%s\n", raw)

	return nil
}

// NewCmdConfig creates the config command, which prints the parsed and
// resolved configuration as JSON.
func NewCmdConfig(defaults *DefaultFirewayOptions) *cobra.Command {
	o := &ConfigCmdOptions{DefaultFirewayOptions: defaults}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the parsed and resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			clierror.DebugMode(o.Verbose)

			return clierror.Check(genericclioptions.ExecuteCommand(cmd.Context(), o, args...))
		},
	}

	cmd.Flags().BoolVar(&o.template, "template", false, "print a commented example config file")

	return cmd
}
