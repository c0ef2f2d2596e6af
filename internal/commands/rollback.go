package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PrinceMuichkine/stackshift/internal/apply"
	"github.com/PrinceMuichkine/stackshift/internal/output"
)

// RollbackCmd restores the newest backup for every file the tool has ever
// rewritten in this project.
func RollbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollback [path]",
		Short: "Restore files from their most recent backups",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveRoot(args)
			if err != nil {
				return err
			}

			store, err := apply.NewBackupStore(root)
			if err != nil {
				return err
			}
			paths, err := store.Paths()
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				output.Info("No backups recorded")
				return nil
			}

			var failed int
			for _, rel := range paths {
				if err := store.Restore(rel); err != nil {
					output.Error(fmt.Sprintf("Could not restore %s: %v", rel, err))
					failed++
					continue
				}
				output.Step(fmt.Sprintf("Restored %s", rel))
			}
			if failed > 0 {
				return fmt.Errorf("%d files could not be restored", failed)
			}
			output.Success(fmt.Sprintf("Restored %d files", len(paths)))
			return nil
		},
	}
	return cmd
}
