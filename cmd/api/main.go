package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configDir string
	root := &cobra.Command{
		Use:           "api",
		Short:         "Confrarias de Portugal backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory holding config.yaml")

	root.AddCommand(
		newServeCmd(&configDir),
		newMigrateCmd(&configDir),
		newProvisionCmd(&configDir),
		newCheckSealsCmd(&configDir),
	)
	return root
}
