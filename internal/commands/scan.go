package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PrinceMuichkine/stackshift/internal/config"
	"github.com/PrinceMuichkine/stackshift/internal/oracle"
	"github.com/PrinceMuichkine/stackshift/internal/output"
	"github.com/PrinceMuichkine/stackshift/internal/project"
	configplan "github.com/PrinceMuichkine/stackshift/internal/transform/config"
	"github.com/PrinceMuichkine/stackshift/internal/transform/deps"
	"github.com/PrinceMuichkine/stackshift/internal/transform/routes"
)

// ScanCmd reports what the planners see without touching anything.
func ScanCmd() *cobra.Command {
	var ai bool

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Analyze a project and report the migration surface",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveRoot(args)
			if err != nil {
				return err
			}
			snap, cfg, err := loadProject(root)
			if err != nil {
				return err
			}

			output.Info(fmt.Sprintf("Scanned %s (%d files)", root, len(snap.Files)))
			if project.IsViteProject(snap) {
				output.Info("Vite project detected")
			} else {
				output.Warn("No Vite dependency found; this may not be a Vite project")
			}

			reportDependencies(snap)
			reportRoutes(snap)
			reportConfig(snap)

			if ai {
				return reportRecommendations(cmd, cfg, summarize(snap))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&ai, "ai", false, "Ask the AI oracle for migration recommendations")
	return cmd
}

func reportDependencies(snap *project.Snapshot) {
	analysis, err := deps.Analyze(snap)
	if err != nil {
		output.Warn(fmt.Sprintf("Dependency analysis skipped: %v", err))
		return
	}
	plan := deps.BuildPlan(analysis)

	output.Info("Dependencies")
	if len(analysis.Incompatible) > 0 {
		output.Step(fmt.Sprintf("Incompatible packages: %s", strings.Join(analysis.Incompatible, ", ")))
	}
	output.Step(fmt.Sprintf("To add: %d, to remove: %d", len(plan.AddDeps)+len(plan.AddDevDeps), len(plan.RemoveDeps)+len(plan.RemoveDevDeps)))
}

func reportRoutes(snap *project.Snapshot) {
	records := routes.Analyze(snap)
	output.Info(fmt.Sprintf("Routes discovered: %d", len(records)))
	for _, rec := range records {
		if rec.File == "" {
			output.Step(fmt.Sprintf("%s (component not resolved)", rec.Route))
			continue
		}
		output.Step(fmt.Sprintf("%s <- %s", rec.Route, rec.File))
	}
}

func reportConfig(snap *project.Snapshot) {
	ir, err := configplan.Analyze(snap)
	if err != nil {
		output.Warn(fmt.Sprintf("Config analysis skipped: %v", err))
		return
	}
	output.Info("Build configuration")
	if len(ir.Plugins) > 0 {
		output.Step(fmt.Sprintf("Plugins: %s", strings.Join(ir.Plugins, ", ")))
	}
	if ir.OutDir != "" {
		output.Step(fmt.Sprintf("Output directory: %s", ir.OutDir))
	}
	if ir.Port != "" {
		output.Step(fmt.Sprintf("Dev server port: %s", ir.Port))
	}
	if len(ir.Aliases) > 0 {
		output.Step(fmt.Sprintf("Path aliases: %d", len(ir.Aliases)))
	}
}

func reportRecommendations(cmd *cobra.Command, cfg *config.ProjectConfig, summary string) error {
	client, err := newOracleClient(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	response, err := client.Complete(cmd.Context(), oracle.BuildRecommendationsPrompt(summary))
	if err != nil {
		output.Warn(fmt.Sprintf("Oracle unavailable: %v", err))
		return nil
	}

	recs, err := oracle.DecodeJSON[oracle.Recommendations](response)
	if err != nil || len(recs.Items) == 0 {
		output.Warn("No usable recommendations returned")
		return nil
	}
	output.Info("Recommendations")
	for _, item := range recs.Items {
		output.Step(item)
	}
	return nil
}

func summarize(snap *project.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Files: %d\n", len(snap.Files))
	if snap.Manifest != nil {
		fmt.Fprintf(&b, "Dependencies: %d, devDependencies: %d\n", len(snap.Manifest.Dependencies), len(snap.Manifest.DevDependencies))
	}
	records := routes.Analyze(snap)
	fmt.Fprintf(&b, "Routes: %d\n", len(records))
	for _, rec := range records {
		fmt.Fprintf(&b, "- %s (%s)\n", rec.Route, rec.File)
	}
	return b.String()
}
