// Package project walks a web project's tree and produces an immutable
// snapshot: file records classified by role plus the parsed dependency
// manifest. Everything downstream (planners, validator, fixer) reads project
// state through a snapshot rather than touching the filesystem ad hoc.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// ErrNotAProject means no package.json exists at the root. This is the only
// fatal scan failure.
var ErrNotAProject = errors.New("no package.json found at project root")

// defaultIgnoreDirs are skipped during traversal regardless of .gitignore.
var defaultIgnoreDirs = []string{
	"node_modules", ".git", ".svn", ".hg",
	"dist", "build", ".next", "out", "coverage",
	".idea", ".vscode",
}

var sourceExtensions = map[string]bool{
	".ts": true, ".tsx": true, ".js": true, ".jsx": true,
	".mjs": true, ".cjs": true, ".css": true,
}

// buildConfigPrefixes identify the build-tool config files of either
// supported tool, in any extension variant.
var buildConfigPrefixes = []string{"vite.config.", "next.config."}

// Scanner walks one project root. Scanners are cheap; create one per scan.
type Scanner struct {
	root       string
	ignoreDirs map[string]bool
}

// NewScanner creates a scanner rooted at root. extraIgnore entries are
// directory names skipped in addition to the defaults.
func NewScanner(root string, extraIgnore ...string) *Scanner {
	dirs := make(map[string]bool, len(defaultIgnoreDirs)+len(extraIgnore))
	for _, d := range defaultIgnoreDirs {
		dirs[d] = true
	}
	for _, d := range extraIgnore {
		dirs[d] = true
	}
	return &Scanner{root: root, ignoreDirs: dirs}
}

// Scan walks the tree and returns a snapshot. A malformed package.json does
// not fail the scan; the parse error is carried on the snapshot for the
// dependency planner to surface.
func (s *Scanner) Scan() (*Snapshot, error) {
	manifestPath := filepath.Join(s.root, ManifestName)
	if _, err := os.Stat(manifestPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotAProject, s.root)
	}

	matcher := loadGitignore(s.root)

	snap := &Snapshot{
		Root:  s.root,
		Files: map[string]FileRecord{},
	}

	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		name := info.Name()

		if info.IsDir() {
			if path == s.root {
				return nil
			}
			if s.ignoreDirs[name] || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}

		snap.Files[rel] = FileRecord{
			Path: rel,
			Role: classify(rel, name),
			Size: info.Size(),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", s.root, err)
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ManifestName, err)
	}
	manifest, perr := ParseManifest(data)
	if perr != nil {
		snap.ManifestErr = perr
	} else {
		snap.Manifest = manifest
	}

	return snap, nil
}

// IsViteProject reports whether the manifest declares vite anywhere, which is
// how commands decide a directory is a migration candidate.
func IsViteProject(snap *Snapshot) bool {
	if snap.Manifest == nil {
		return false
	}
	_, dep := snap.Manifest.Dependencies["vite"]
	_, dev := snap.Manifest.DevDependencies["vite"]
	return dep || dev
}

func classify(rel, name string) Role {
	if rel == ManifestName {
		return RoleManifest
	}
	for _, prefix := range buildConfigPrefixes {
		if strings.HasPrefix(name, prefix) {
			return RoleBuildConfig
		}
	}
	if strings.HasPrefix(name, ".env") {
		return RoleEnv
	}
	if sourceExtensions[filepath.Ext(name)] {
		return RoleSource
	}
	return RoleOther
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
