package main

import (
	"os"

	"github.com/PrinceMuichkine/stackshift/internal/commands"
)

func main() {
	rootCmd := commands.RootCmd()

	rootCmd.AddCommand(commands.ScanCmd())
	rootCmd.AddCommand(commands.TransformCmd())
	rootCmd.AddCommand(commands.ValidateCmd())
	rootCmd.AddCommand(commands.FixCmd())
	rootCmd.AddCommand(commands.RollbackCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
