package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PrinceMuichkine/stackshift/internal/apply"
	"github.com/PrinceMuichkine/stackshift/internal/output"
	"github.com/PrinceMuichkine/stackshift/internal/project"
	configplan "github.com/PrinceMuichkine/stackshift/internal/transform/config"
	"github.com/PrinceMuichkine/stackshift/internal/transform/component"
	"github.com/PrinceMuichkine/stackshift/internal/transform/deps"
	"github.com/PrinceMuichkine/stackshift/internal/transform/rewrite"
	"github.com/PrinceMuichkine/stackshift/internal/transform/routes"
)

const defaultLayout = `export default function Layout({ children }: { children: React.ReactNode }) {
  return <>{children}</>;
}
`

// TransformCmd applies the mechanical migration aspects. Aspects run in
// pipeline order: dependencies, configuration, routes, source rewrites,
// component directives.
func TransformCmd() *cobra.Command {
	var (
		depsFlag, configFlag, routesFlag, importsFlag, componentsFlag, all bool
		dryRun, force, skip, diff                                         bool
	)

	cmd := &cobra.Command{
		Use:   "transform [path]",
		Short: "Apply migration transforms to the project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				depsFlag, configFlag, routesFlag, importsFlag, componentsFlag = true, true, true, true, true
			}
			if !depsFlag && !configFlag && !routesFlag && !importsFlag && !componentsFlag {
				return fmt.Errorf("nothing to do: pass --deps, --config, --routes, --imports, --components, or --all")
			}

			strategy, err := apply.SelectStrategy(force, skip, diff)
			if err != nil {
				return err
			}

			root, err := resolveRoot(args)
			if err != nil {
				return err
			}
			snap, _, err := loadProject(root)
			if err != nil {
				return err
			}

			opts := apply.ExecuteOptions{DryRun: dryRun, Force: force}
			ctx := cmd.Context()

			if depsFlag {
				if err := transformDeps(root, snap, dryRun); err != nil {
					return err
				}
			}
			if configFlag {
				if err := transformConfig(ctx, root, snap, strategy, opts); err != nil {
					return err
				}
			}
			if routesFlag {
				if err := transformRoutes(ctx, root, snap, opts); err != nil {
					return err
				}
			}
			if importsFlag {
				if err := transformImports(root, snap, dryRun); err != nil {
					return err
				}
			}
			if componentsFlag {
				if err := transformComponents(root, snap, dryRun); err != nil {
					return err
				}
			}
			output.Success("Transform complete")
			return nil
		},
	}

	cmd.Flags().BoolVar(&depsFlag, "deps", false, "Migrate package.json dependencies and scripts")
	cmd.Flags().BoolVar(&configFlag, "config", false, "Migrate build configuration")
	cmd.Flags().BoolVar(&routesFlag, "routes", false, "Move route files to the app directory")
	cmd.Flags().BoolVar(&importsFlag, "imports", false, "Rewrite react-router and <img> usage to Next.js equivalents")
	cmd.Flags().BoolVar(&componentsFlag, "components", false, "Insert \"use client\" directives where needed")
	cmd.Flags().BoolVar(&all, "all", false, "Run every transform")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show planned changes without writing")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files without prompting")
	cmd.Flags().BoolVar(&skip, "skip", false, "Keep existing files without prompting")
	cmd.Flags().BoolVar(&diff, "diff", false, "Show diffs before each conflict decision")

	return cmd
}

func transformDeps(root string, snap *project.Snapshot, dryRun bool) error {
	analysis, err := deps.Analyze(snap)
	if err != nil {
		return err
	}
	plan := deps.BuildPlan(analysis)

	output.Info("Dependency plan")
	for name, version := range plan.AddDeps {
		output.Step(fmt.Sprintf("+ %s %s", name, version))
	}
	for name, version := range plan.AddDevDeps {
		output.Step(fmt.Sprintf("+ %s %s (dev)", name, version))
	}
	for _, name := range append(append([]string(nil), plan.RemoveDeps...), plan.RemoveDevDeps...) {
		output.Step(fmt.Sprintf("- %s", name))
	}
	for name, script := range plan.AddScripts {
		output.Step(fmt.Sprintf("~ scripts.%s = %q", name, script))
	}

	if dryRun {
		return nil
	}
	next := deps.Apply(plan, snap.Manifest)
	if err := project.WriteManifest(root, next); err != nil {
		return err
	}
	output.Success("Updated package.json")
	return nil
}

func transformConfig(ctx context.Context, root string, snap *project.Snapshot, strategy apply.ConflictStrategy, opts apply.ExecuteOptions) error {
	ir, err := configplan.Analyze(snap)
	if err != nil {
		return err
	}
	plan := configplan.BuildPlan(ir)

	writeNext := true
	nextPath := filepath.Join(root, "next.config.js")
	if existing, err := os.ReadFile(nextPath); err == nil && !opts.DryRun {
		resolution, err := strategy.Resolve(nextPath, existing, configplan.RenderNextConfig(plan))
		if err != nil {
			return err
		}
		switch resolution {
		case apply.ResolutionSkip:
			output.Step("Skipped next.config.js")
			writeNext = false
		case apply.ResolutionCancel:
			return fmt.Errorf("transform cancelled")
		}
	}

	ops, err := configplan.Operations(root, plan, writeNext)
	if err != nil {
		return err
	}
	return apply.Execute(ctx, ops, opts)
}

func transformRoutes(ctx context.Context, root string, snap *project.Snapshot, opts apply.ExecuteOptions) error {
	records := routes.Analyze(snap)
	transforms, err := routes.GenerateTransforms(snap, records)
	if err != nil {
		return err
	}
	if len(transforms) == 0 {
		output.Info("No routes to move")
		return nil
	}

	var ops []apply.Operation
	for _, t := range transforms {
		ops = append(ops, &apply.MoveFileOp{
			Source: filepath.Join(root, filepath.FromSlash(t.SourcePath)),
			Target: filepath.Join(root, filepath.FromSlash(t.TargetPath)),
		})
		for _, move := range t.AssetMoves {
			ops = append(ops, &apply.MoveFileOp{
				Source: filepath.Join(root, filepath.FromSlash(move[0])),
				Target: filepath.Join(root, filepath.FromSlash(move[1])),
			})
		}
		if t.LayoutFile != "" {
			layoutPath := filepath.Join(root, filepath.FromSlash(t.LayoutFile))
			if _, err := os.Stat(layoutPath); os.IsNotExist(err) {
				ops = append(ops, &apply.WriteFileOp{Path: layoutPath, Content: []byte(defaultLayout)})
			}
		}
	}
	return apply.Execute(ctx, ops, opts)
}

// sourceCandidates lists the project-relative source files the content
// rewrites may touch.
func sourceCandidates(snap *project.Snapshot) []string {
	var candidates []string
	for rel := range snap.Files {
		switch filepath.Ext(rel) {
		case ".tsx", ".jsx", ".ts", ".js":
			if strings.HasPrefix(rel, "src/") || strings.HasPrefix(rel, "app/") || strings.HasPrefix(rel, "components/") {
				candidates = append(candidates, rel)
			}
		}
	}
	return candidates
}

func transformImports(root string, snap *project.Snapshot, dryRun bool) error {
	candidates := sourceCandidates(snap)

	if dryRun {
		for _, rel := range candidates {
			src, err := snap.Content(rel)
			if err != nil {
				continue
			}
			if out := rewrite.ImagesToNext(rewrite.RouterToNext(src)); string(out) != string(src) {
				output.Step(fmt.Sprintf("[dry-run] Would rewrite %s", rel))
			}
		}
		return nil
	}

	modified, err := rewrite.Apply(root, candidates)
	if err != nil {
		return err
	}
	for _, rel := range modified {
		output.Step(fmt.Sprintf("Rewrote %s", rel))
	}
	output.Info(fmt.Sprintf("Files rewritten: %d", len(modified)))
	return nil
}

func transformComponents(root string, snap *project.Snapshot, dryRun bool) error {
	candidates := sourceCandidates(snap)

	if dryRun {
		for _, rel := range candidates {
			src, err := snap.Content(rel)
			if err != nil {
				continue
			}
			if component.NeedsClient(rel, src) && !component.HasDirective(src) {
				output.Step(fmt.Sprintf("[dry-run] Would add directive to %s", rel))
			}
		}
		return nil
	}

	modified, err := component.AddClientDirectives(root, candidates)
	if err != nil {
		return err
	}
	for _, rel := range modified {
		output.Step(fmt.Sprintf("Added \"use client\" to %s", rel))
	}
	output.Info(fmt.Sprintf("Directives added: %d", len(modified)))
	return nil
}
