package main

import (
	"os"

	"github.com/j1mmie/fireway/cli"
	"github.com/j1mmie/fireway/clierror"
	"github.com/j1mmie/fireway/genericclioptions"
)

func main() {
	cmd := cli.NewDefaultFirewayCommand(genericclioptions.NewDefaultIOStreams(), os.Args[1:])

	if err := cmd.Execute(); err != nil {
		os.Exit(clierror.DefaultErrorExitCode)
	}
}
