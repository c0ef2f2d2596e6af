package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/PrinceMuichkine/stackshift/internal/config"
	"github.com/PrinceMuichkine/stackshift/internal/oracle"
	"github.com/PrinceMuichkine/stackshift/internal/project"
	"github.com/PrinceMuichkine/stackshift/internal/validate"
)

// resolveRoot turns an optional positional path argument into an absolute
// project root.
func resolveRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving project path: %w", err)
	}
	return abs, nil
}

// loadProject resolves per-project config and scans the tree.
func loadProject(root string) (*project.Snapshot, *config.ProjectConfig, error) {
	cfg, err := config.LoadProjectConfig(root)
	if err != nil {
		return nil, nil, err
	}
	snap, err := project.NewScanner(root, cfg.Ignore...).Scan()
	if err != nil {
		return nil, nil, err
	}
	return snap, cfg, nil
}

// newOracleClient builds the Gemini client from the resolved API key and an
// optional per-project model override.
func newOracleClient(ctx context.Context, cfg *config.ProjectConfig) (oracle.Client, error) {
	key, err := config.APIKey()
	if err != nil {
		return nil, err
	}
	return oracle.NewGemini(ctx, key, cfg.Model)
}

// targetConvention honors a per-project override before falling back to
// detection.
func targetConvention(root string, cfg *config.ProjectConfig) validate.Convention {
	if cfg.Convention != "" {
		return validate.Convention(cfg.Convention)
	}
	return validate.DetectConvention(root)
}
