package commands

import (
	"github.com/spf13/cobra"

	"github.com/PrinceMuichkine/stackshift"
	"github.com/PrinceMuichkine/stackshift/internal/output"
)

// RootCmd creates and returns the root command for the stackshift CLI.
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "stackshift",
		Short: "Migrate Vite + React projects to Next.js",
		Long: `Stackshift analyzes a Vite + React project and migrates it to Next.js
conventions: dependencies, build configuration, routes, and component
directives. Validation and an AI-assisted fix loop close the gap the
mechanical transforms leave behind.`,
		Version: stackshift.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")

	return cmd
}
