// Package deps plans and applies the package.json edits a Next.js migration
// needs: add the Next.js core and tooling packages, drop Vite-specific ones,
// and swap the lifecycle scripts.
package deps

import (
	"fmt"

	"github.com/PrinceMuichkine/stackshift/internal/project"
)

// Pinned versions for the packages a migrated project must carry.
var nextCoreDeps = map[string]string{
	"next":      "^14.0.0",
	"react":     "^18.2.0",
	"react-dom": "^18.2.0",
}

var nextDevDeps = map[string]string{
	"@types/node":        "^20.0.0",
	"@types/react":       "^18.2.0",
	"@types/react-dom":   "^18.2.0",
	"typescript":         "^5.0.0",
	"eslint":             "^8.0.0",
	"eslint-config-next": "^14.0.0",
}

// viteRemovals are dropped from whichever dependency map contains them.
var viteRemovals = []string{
	"vite",
	"@vitejs/plugin-react",
	"@vitejs/plugin-react-swc",
}

var nextScripts = map[string]string{
	"dev":   "next dev",
	"build": "next build",
	"start": "next start",
	"lint":  "next lint",
}

// legacyScripts are Vite-era script names with no Next.js counterpart.
var legacyScripts = []string{"serve"}

// Analysis summarizes the manifest's current migration state.
type Analysis struct {
	Incompatible []string // Vite-specific packages found in either map
	HasNext      bool
	HasReact     bool

	manifest *project.Manifest
}

// Plan is a computed, not-yet-applied set of manifest edits. A name never
// appears in both an add map and the same-kind remove list.
type Plan struct {
	AddDeps       map[string]string
	RemoveDeps    []string
	AddDevDeps    map[string]string
	RemoveDevDeps []string
	AddScripts    map[string]string
	RemoveScripts []string
}

// Analyze inspects the snapshot's manifest. A snapshot whose manifest failed
// to parse yields an error the caller surfaces as a warning; sibling planners
// keep running.
func Analyze(snap *project.Snapshot) (*Analysis, error) {
	if snap.ManifestErr != nil {
		return nil, fmt.Errorf("manifest unreadable: %w", snap.ManifestErr)
	}
	if snap.Manifest == nil {
		return nil, project.ErrNotAProject
	}

	m := snap.Manifest
	a := &Analysis{manifest: m}
	for _, name := range viteRemovals {
		_, inDeps := m.Dependencies[name]
		_, inDev := m.DevDependencies[name]
		if inDeps || inDev {
			a.Incompatible = append(a.Incompatible, name)
		}
	}
	_, a.HasNext = m.Dependencies["next"]
	_, hasReact := m.Dependencies["react"]
	_, hasReactDOM := m.Dependencies["react-dom"]
	a.HasReact = hasReact && hasReactDOM
	return a, nil
}

// BuildPlan diffs the analyzed manifest against the Next.js target policy.
func BuildPlan(a *Analysis) *Plan {
	m := a.manifest
	plan := &Plan{
		AddDeps:    map[string]string{},
		AddDevDeps: map[string]string{},
		AddScripts: map[string]string{},
	}

	for name, version := range nextCoreDeps {
		if _, ok := m.Dependencies[name]; !ok {
			plan.AddDeps[name] = version
		}
	}
	for name, version := range nextDevDeps {
		if _, ok := m.DevDependencies[name]; !ok {
			plan.AddDevDeps[name] = version
		}
	}
	for _, name := range viteRemovals {
		if _, ok := m.Dependencies[name]; ok {
			plan.RemoveDeps = append(plan.RemoveDeps, name)
		}
		if _, ok := m.DevDependencies[name]; ok {
			plan.RemoveDevDeps = append(plan.RemoveDevDeps, name)
		}
	}

	for name, cmd := range nextScripts {
		plan.AddScripts[name] = cmd
	}
	for _, name := range legacyScripts {
		if _, ok := m.Scripts[name]; ok {
			plan.RemoveScripts = append(plan.RemoveScripts, name)
		}
	}
	return plan
}

// Apply merges a plan into a manifest and returns the result. Pure: the
// input manifest is untouched, removals of absent names are no-ops, and
// additions win on conflict. Callers persist the result with
// project.WriteManifest, which writes atomically.
func Apply(plan *Plan, m *project.Manifest) *project.Manifest {
	out := m.Clone()

	for _, name := range plan.RemoveDeps {
		delete(out.Dependencies, name)
	}
	for name, version := range plan.AddDeps {
		out.Dependencies[name] = version
	}

	for _, name := range plan.RemoveDevDeps {
		delete(out.DevDependencies, name)
	}
	for name, version := range plan.AddDevDeps {
		out.DevDependencies[name] = version
	}

	for _, name := range plan.RemoveScripts {
		delete(out.Scripts, name)
	}
	for name, cmd := range plan.AddScripts {
		out.Scripts[name] = cmd
	}

	return out
}
