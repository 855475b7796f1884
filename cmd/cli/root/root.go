package root

import (
	"github.com/spf13/cobra"
)

// RootCmd is the top-level rh command.
var RootCmd = &cobra.Command{
	Use:           "rh",
	Short:         "reporthub CLI",
	Long:          "Command line interface for the reporthub API: schedules, notification channels and reporters.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// GetRoot returns the root command.
func GetRoot() *cobra.Command {
	return RootCmd
}
