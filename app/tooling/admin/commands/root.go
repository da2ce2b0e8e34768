// Package commands contains the admin commands.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs the base command with every subcommand attached.
func NewRoot(build string) *cobra.Command {
	root := &cobra.Command{
		Use:          "admin",
		Short:        "Administrative tasks for the dating ledger",
		Version:      build,
		SilenceUsage: true,
	}

	root.AddCommand(keygenCmd())
	root.AddCommand(simulateCmd())

	return root
}
