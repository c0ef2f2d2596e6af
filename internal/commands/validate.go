package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PrinceMuichkine/stackshift/internal/fixer"
	"github.com/PrinceMuichkine/stackshift/internal/output"
	"github.com/PrinceMuichkine/stackshift/internal/validate"
)

// ValidateCmd runs the migration checklist and, with --fix, feeds failures
// into the oracle-assisted fix loop.
func ValidateCmd() *cobra.Command {
	var fix, createMissing bool

	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate a migrated project against Next.js conventions",
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

			validator := validate.NewValidator(root)
			result := validator.Validate(convention)
			renderResult(result)

			if !fix && !createMissing {
				if !result.Success {
					return fmt.Errorf("validation failed with %d errors", len(result.Errors))
				}
				return nil
			}

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

			if fix && !result.Success {
				fixed, err := f.FixIssues(cmd.Context(), result)
				if err != nil {
					return err
				}
				output.Info(fmt.Sprintf("Fixed %d files", len(fixed)))

				result = validator.Validate(convention)
				renderResult(result)
			}

			if !result.Success {
				return fmt.Errorf("validation still failing with %d errors", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Fix failures with the AI oracle and re-validate")
	cmd.Flags().BoolVar(&createMissing, "create-missing", false, "Generate required convention files that are absent")

	return cmd
}

func renderResult(result *validate.Result) {
	output.Info(fmt.Sprintf("Validating against the %s router", result.Convention))
	for _, msg := range result.Passed {
		output.Success(msg)
	}
	for _, msg := range result.Warnings {
		output.Warn(msg)
	}
	for _, msg := range result.Errors {
		output.Error(msg)
	}
	if result.Success {
		output.Success("Validation passed")
	} else {
		output.Error(fmt.Sprintf("Validation failed: %d errors, %d warnings", len(result.Errors), len(result.Warnings)))
	}
}
