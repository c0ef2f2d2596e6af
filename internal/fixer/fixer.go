package fixer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/PrinceMuichkine/stackshift/internal/apply"
	"github.com/PrinceMuichkine/stackshift/internal/oracle"
	"github.com/PrinceMuichkine/stackshift/internal/output"
	"github.com/PrinceMuichkine/stackshift/internal/project"
	"github.com/PrinceMuichkine/stackshift/internal/validate"
)

var importRe = regexp.MustCompile(`import\s+(\w+)\s+from\s+["'](.+?)["']`)

var sourceExts = []string{".tsx", ".jsx", ".ts", ".js"}

// Fixer drives the oracle-assisted fix loop over a validation result.
type Fixer struct {
	root    string
	client  oracle.Client
	applier *apply.Applier
}

func New(root string, client oracle.Client) (*Fixer, error) {
	applier, err := apply.NewApplier(root)
	if err != nil {
		return nil, err
	}
	return &Fixer{root: root, client: client, applier: applier}, nil
}

// Applier exposes the underlying applier so callers can roll back a pass.
func (f *Fixer) Applier() *apply.Applier { return f.applier }

// FixIssues asks the oracle for a replacement per file and category, in
// priority order, applying each accepted fix before moving on. After a
// primary fix lands, related files are fixed sequentially. Oracle failures
// are logged and skipped; they never abort the pass.
func (f *Fixer) FixIssues(ctx context.Context, result *validate.Result) ([]string, error) {
	grouped := Group(result.Errors)

	files := make([]string, 0, len(grouped))
	for file := range grouped {
		files = append(files, file)
	}
	sort.Strings(files)

	fixed := map[string]bool{}
	for _, file := range files {
		byCategory := grouped[file]
		for _, category := range OrderedFor(byCategory) {
			if err := ctx.Err(); err != nil {
				return keys(fixed), err
			}
			ok, err := f.fixFile(ctx, file, byCategory[category], category, result.Convention)
			if err != nil {
				output.Warn(fmt.Sprintf("Could not fix %s: %v", file, err))
				continue
			}
			if !ok {
				continue
			}
			fixed[file] = true
			output.Success(fmt.Sprintf("Fixed %s (%s)", file, category))

			for _, related := range f.RelatedFiles(file, category) {
				if fixed[related] {
					continue
				}
				ok, err := f.fixRelatedFile(ctx, related, file, category, result.Convention)
				if err != nil {
					output.Warn(fmt.Sprintf("Could not fix related file %s: %v", related, err))
					continue
				}
				if ok {
					fixed[related] = true
					output.Step(fmt.Sprintf("Updated related file %s", related))
				}
			}
		}
	}
	return keys(fixed), nil
}

func (f *Fixer) fixFile(ctx context.Context, rel string, issues []string, category string, convention validate.Convention) (bool, error) {
	full := filepath.Join(f.root, filepath.FromSlash(rel))
	content, err := os.ReadFile(full)
	if err != nil {
		return false, nil // issue text named a file that is not on disk
	}

	prompt := oracle.BuildFixPrompt(oracle.FixRequest{
		Content:      string(content),
		Issues:       issues,
		Category:     category,
		Convention:   string(convention),
		Imports:      importedModules(string(content)),
		Dependencies: f.manifestDependencies(),
	})

	response, err := f.client.Complete(ctx, prompt)
	if err != nil {
		return false, err
	}
	candidate := oracle.ExtractCode(response)
	if candidate == "" {
		return false, nil
	}
	return f.applier.ApplyFix(ctx, rel, []byte(candidate), category)
}

func (f *Fixer) fixRelatedFile(ctx context.Context, rel, sourceFile, category string, convention validate.Convention) (bool, error) {
	full := filepath.Join(f.root, filepath.FromSlash(rel))
	content, err := os.ReadFile(full)
	if err != nil {
		return false, nil
	}

	prompt := oracle.BuildRelatedFixPrompt(string(content), sourceFile, category, string(convention))
	response, err := f.client.Complete(ctx, prompt)
	if err != nil {
		return false, err
	}
	candidate := oracle.ExtractCode(response)
	if candidate == "" {
		return false, nil
	}
	return f.applier.ApplyFix(ctx, rel, []byte(candidate), category)
}

// RelatedFiles finds files a fix may ripple into. For routing fixes these
// are the file's resolved import targets; for component fixes, every source
// file mentioning the component's base name. The latter is a containment
// heuristic and can false-positive on short component names.
func (f *Fixer) RelatedFiles(rel, category string) []string {
	switch category {
	case "routing":
		return f.importTargets(rel)
	case "components":
		return f.filesMentioning(rel)
	default:
		return nil
	}
}

func (f *Fixer) importTargets(rel string) []string {
	content, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil
	}

	var targets []string
	for _, m := range importRe.FindAllStringSubmatch(string(content), -1) {
		spec := m[2]
		candidates := []string{spec}
		if filepath.Ext(spec) == "" {
			for _, ext := range sourceExts {
				candidates = append(candidates, spec+ext)
			}
		}
		for _, candidate := range candidates {
			clean := filepath.ToSlash(filepath.Clean(candidate))
			if _, err := os.Stat(filepath.Join(f.root, filepath.FromSlash(clean))); err == nil {
				targets = append(targets, clean)
				break
			}
		}
	}
	return targets
}

func (f *Fixer) filesMentioning(rel string) []string {
	base := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	if base == "" {
		return nil
	}
	tokenRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(base) + `\b`)

	var matches []string
	filepath.Walk(f.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			name := info.Name()
			if name == "node_modules" || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !hasSourceExt(path) {
			return nil
		}
		fileRel, _ := filepath.Rel(f.root, path)
		fileRel = filepath.ToSlash(fileRel)
		if fileRel == rel {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if tokenRe.Match(content) {
			matches = append(matches, fileRel)
		}
		return nil
	})
	sort.Strings(matches)
	return matches
}

// CreateMissingFiles generates required convention files that are absent,
// using the oracle. Returns the files written.
func (f *Fixer) CreateMissingFiles(ctx context.Context, convention validate.Convention) ([]string, error) {
	type wanted struct{ path, kind, description string }
	required := []wanted{
		{"next.config.js", "config", "Next.js configuration file"},
	}
	if convention == validate.ConventionApp {
		required = append(required,
			wanted{"app/layout.tsx", "layout", "Root layout component"},
			wanted{"app/page.tsx", "page", "Home page component"},
		)
	} else {
		required = append(required,
			wanted{"pages/_app.tsx", "layout", "Custom App component"},
			wanted{"pages/index.tsx", "page", "Home page component"},
		)
	}

	var created []string
	for _, w := range required {
		full := filepath.Join(f.root, filepath.FromSlash(w.path))
		if _, err := os.Stat(full); err == nil {
			continue
		}

		response, err := f.client.Complete(ctx, oracle.BuildCreateFilePrompt(w.path, w.kind, w.description, string(convention)))
		if err != nil {
			output.Warn(fmt.Sprintf("Could not create %s: %v", w.path, err))
			continue
		}
		code := oracle.ExtractCode(response)
		if code == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return created, err
		}
		if err := os.WriteFile(full, []byte(code+"\n"), 0o644); err != nil {
			return created, err
		}
		created = append(created, w.path)
		output.Success(fmt.Sprintf("Created %s", w.path))
	}
	return created, nil
}

func (f *Fixer) manifestDependencies() []string {
	data, err := os.ReadFile(filepath.Join(f.root, project.ManifestName))
	if err != nil {
		return nil
	}
	m, err := project.ParseManifest(data)
	if err != nil {
		return nil
	}

	var deps []string
	for name := range m.Dependencies {
		deps = append(deps, name)
	}
	for name := range m.DevDependencies {
		deps = append(deps, name)
	}
	sort.Strings(deps)
	return deps
}

func importedModules(content string) []string {
	var modules []string
	for _, m := range importRe.FindAllStringSubmatch(content, -1) {
		modules = append(modules, m[2])
	}
	return modules
}

func hasSourceExt(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range sourceExts {
		if ext == e {
			return true
		}
	}
	return false
}

func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
