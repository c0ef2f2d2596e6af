package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PrinceMuichkine/stackshift/internal/fixer"
	"github.com/PrinceMuichkine/stackshift/internal/output"
	"github.com/PrinceMuichkine/stackshift/internal/validate"
)

// FixCmd is the standalone fix loop: validate, repair every failure through
// the oracle, validate again. Equivalent to `validate --fix` but reads better
// in scripts that separate checking from repairing.
func FixCmd() *cobra.Command {
	var createMissing bool

	cmd := &cobra.Command{
		Use:   "fix [path]",
		Short: "Fix validation failures with the AI oracle",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveRoot(args)
			if err != nil {
				return err
			}
			_, cfg, err := loadProject(root)
			if err != nil {
				return err
			}
			convention := targetConvention(root, cfg)

			client, err := newOracleClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			f, err := fixer.New(root, client)
			if err != nil {
				return err
			}

			if createMissing {
				created, err := f.CreateMissingFiles(cmd.Context(), convention)
				if err != nil {
					return err
				}
				output.Info(fmt.Sprintf("Created %d missing files", len(created)))
			}

			validator := validate.NewValidator(root)
			result := validator.Validate(convention)
			if result.Success {
				output.Success("Nothing to fix")
				return nil
			}

			fixed, err := f.FixIssues(cmd.Context(), result)
			if err != nil {
				return err
			}
			output.Info(fmt.Sprintf("Fixed %d files", len(fixed)))

			result = validator.Validate(convention)
			renderResult(result)
			if !result.Success {
				return fmt.Errorf("validation still failing with %d errors", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&createMissing, "create-missing", false, "Generate required convention files that are absent")
	return cmd
}
