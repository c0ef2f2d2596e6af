// Package validate re-scans a migrated project and reports a pass/fail/warn
// checklist. Each call re-derives everything from disk; nothing is cached
// between runs, so the validator can feed the fix loop repeatedly.
package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PrinceMuichkine/stackshift/internal/project"
	"github.com/PrinceMuichkine/stackshift/internal/transform/component"
	"github.com/PrinceMuichkine/stackshift/internal/transform/routes"
)

// Convention is the target router layout.
type Convention string

const (
	ConventionApp   Convention = "app"
	ConventionPages Convention = "pages"
)

// Result aggregates one validation run.
type Result struct {
	Convention Convention
	Errors     []string
	Warnings   []string
	Passed     []string
	Success    bool
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) passf(format string, args ...any) {
	r.Passed = append(r.Passed, fmt.Sprintf(format, args...))
}

// DetectConvention picks the router convention from the tree: an app/
// directory wins, otherwise pages is assumed.
func DetectConvention(root string) Convention {
	if info, err := os.Stat(filepath.Join(root, "app")); err == nil && info.IsDir() {
		return ConventionApp
	}
	return ConventionPages
}

// Validator checks a project root against a router convention.
type Validator struct {
	root string
}

func NewValidator(root string) *Validator {
	return &Validator{root: root}
}

// Validate runs every check in fixed order and returns the aggregated
// result. Success means zero errors; warnings never fail a run.
func (v *Validator) Validate(convention Convention) *Result {
	result := &Result{Convention: convention}

	v.checkStructure(result)
	v.checkRouting(result)
	v.checkComponents(result)
	v.checkDependencies(result)
	v.checkConfiguration(result)
	v.checkAPIRoutes(result)

	result.Success = len(result.Errors) == 0
	return result
}

var requiredCommonFiles = []string{"next.config.js", "tsconfig.json", "package.json"}

func requiredFiles(convention Convention) []string {
	files := append([]string(nil), requiredCommonFiles...)
	if convention == ConventionApp {
		return append(files, "app/layout.tsx", "app/page.tsx")
	}
	return append(files, "pages/_app.tsx", "pages/index.tsx")
}

func (v *Validator) checkStructure(result *Result) {
	dir := string(result.Convention)
	if info, err := os.Stat(filepath.Join(v.root, dir)); err != nil || !info.IsDir() {
		result.errorf("Missing required directory: %s", dir)
	}

	for _, rel := range requiredFiles(result.Convention) {
		if _, err := os.Stat(filepath.Join(v.root, rel)); err != nil {
			result.errorf("Missing required file: %s", rel)
		}
	}

	// Leftover build-tool config is suspicious but not fatal.
	for _, name := range []string{"vite.config.ts", "vite.config.js", "vite.config.mts", "vite.config.mjs"} {
		if _, err := os.Stat(filepath.Join(v.root, name)); err == nil {
			result.warnf("Found Vite configuration file: %s", name)
		}
	}

	if len(result.Errors) == 0 {
		result.passf("Project structure matches the %s router", result.Convention)
	}
}

var (
	defaultExportFnRe = regexp.MustCompile(`export\s+default\s+function`)
	defaultExportRe   = regexp.MustCompile(`export\s+default`)
	metadataRe        = regexp.MustCompile(`export\s+const\s+metadata`)
	loadingExportRe   = regexp.MustCompile(`export\s+default\s+function\s+Loading`)
	initialPropsRe    = regexp.MustCompile(`getInitialProps`)
	classErrorPageRe  = regexp.MustCompile(`Error\s*extends\s*React\.Component`)
	anyExportRe       = regexp.MustCompile(`export\s+(?:default|const|function)`)
	componentTypeRe   = regexp.MustCompile(`:\s*(?:React\.)?(?:FC|FunctionComponent|ComponentType)`)
	handlerExportRe   = regexp.MustCompile(`export\s+(?:default\s+(?:async\s+)?function|(?:async\s+)?function\s+(?:GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)|const\s+(?:GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)\s*=)`)
	envUsageRe        = regexp.MustCompile(`process\.env\.`)
	routerImportRe    = regexp.MustCompile(`from\s+['"]react-router(?:-dom)?['"]`)
)

func (v *Validator) checkRouting(result *Result) {
	routerDir := filepath.Join(v.root, string(result.Convention))
	if _, err := os.Stat(routerDir); err != nil {
		return
	}

	before := len(result.Errors)
	if result.Convention == ConventionApp {
		v.checkRouteTargets(result)
	}
	walkSources(routerDir, ".tsx", func(full string, content string) {
		rel, _ := filepath.Rel(v.root, full)
		rel = filepath.ToSlash(rel)
		if result.Convention == ConventionApp {
			v.checkAppRoute(rel, content, result)
		} else {
			v.checkPagesRoute(rel, content, result)
		}
	})
	if len(result.Errors) == before {
		result.passf("Route files follow %s router conventions", result.Convention)
	}
}

// checkRouteTargets re-runs route discovery over the source tree and verifies
// every discovered route has been materialized at its app router target. A
// route still sitting in src/ with no target file means the move never
// happened.
func (v *Validator) checkRouteTargets(result *Result) {
	snap, err := project.NewScanner(v.root).Scan()
	if err != nil {
		return
	}
	transforms, err := routes.GenerateTransforms(snap, routes.Analyze(snap))
	if err != nil {
		result.warnf("Route targets could not be derived: %v", err)
		return
	}
	for _, t := range transforms {
		if _, err := os.Stat(filepath.Join(v.root, filepath.FromSlash(t.TargetPath))); err != nil {
			result.errorf("Route not migrated: %s (expected %s)", t.SourcePath, t.TargetPath)
		}
	}
}

func (v *Validator) checkAppRoute(rel, content string, result *Result) {
	if !defaultExportFnRe.MatchString(content) {
		result.errorf("Missing default export in route: %s", rel)
	}
	if routerImportRe.MatchString(content) {
		result.errorf("Found react-router import in route: %s", rel)
	}
	base := filepath.Base(rel)
	if base == "page.tsx" && !metadataRe.MatchString(content) {
		result.warnf("Missing metadata in page: %s", rel)
	}
	if base == "page.tsx" && strings.Contains(rel, "[") && !strings.Contains(content, "params") {
		result.warnf("Dynamic route does not read its params: %s", rel)
	}
	if base == "error.tsx" && !component.HasDirective([]byte(content)) {
		result.errorf("Error boundary must be client component: %s", rel)
	}
	if base == "loading.tsx" && !loadingExportRe.MatchString(content) {
		result.errorf("Invalid loading component: %s", rel)
	}
}

func (v *Validator) checkPagesRoute(rel, content string, result *Result) {
	if !defaultExportRe.MatchString(content) {
		result.errorf("Missing default export in route: %s", rel)
	}
	if routerImportRe.MatchString(content) {
		result.errorf("Found react-router import in route: %s", rel)
	}
	if initialPropsRe.MatchString(content) {
		result.warnf("Found legacy getInitialProps in: %s", rel)
	}
	if filepath.Base(rel) == "_error.tsx" && !classErrorPageRe.MatchString(content) {
		result.errorf("Invalid error page implementation: %s", rel)
	}
}

func (v *Validator) checkComponents(result *Result) {
	before := len(result.Errors)
	for _, dir := range []string{"components", "src/components"} {
		walkSources(filepath.Join(v.root, dir), ".tsx", func(full string, content string) {
			rel, _ := filepath.Rel(v.root, full)
			v.checkComponent(filepath.ToSlash(rel), content, result)
		})
	}
	if len(result.Errors) == before {
		result.passf("Components carry directives and exports")
	}
}

func (v *Validator) checkComponent(rel, content string, result *Result) {
	clientBound := component.NeedsClient(rel, []byte(content)) || eventHandlerBound(content)
	if clientBound && !component.HasDirective([]byte(content)) {
		result.errorf("Missing 'use client' directive in client component: %s", rel)
	}
	if !anyExportRe.MatchString(content) {
		result.errorf("Missing component export: %s", rel)
	}
	if !componentTypeRe.MatchString(content) {
		result.warnf("Missing type definition in component: %s", rel)
	}
}

// eventHandlerBound reports whether markup binds DOM event handlers, which
// forces the client context even when no hook is called.
func eventHandlerBound(content string) bool {
	return strings.Contains(content, "onClick") || strings.Contains(content, "onChange")
}

func (v *Validator) checkDependencies(result *Result) {
	data, err := os.ReadFile(filepath.Join(v.root, "package.json"))
	if err != nil {
		result.errorf("Missing package.json")
		return
	}

	var manifest struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		result.errorf("Invalid package.json")
		return
	}

	all := map[string]bool{}
	for name := range manifest.Dependencies {
		all[name] = true
	}
	for name := range manifest.DevDependencies {
		all[name] = true
	}

	before := len(result.Errors)
	for _, dep := range []string{"next", "react", "react-dom"} {
		if !all[dep] {
			result.errorf("Missing required dependency: %s", dep)
		}
	}
	for _, dep := range []string{"react-router", "react-router-dom", "@vitejs/plugin-react"} {
		if all[dep] {
			result.errorf("Found conflicting dependency: %s", dep)
		}
	}
	if len(result.Errors) == before {
		result.passf("Dependencies match the target stack")
	}
}

var moduleExportsRe = regexp.MustCompile(`module\.exports\s*=`)

func (v *Validator) checkConfiguration(result *Result) {
	before := len(result.Errors)

	nextConfig, err := os.ReadFile(filepath.Join(v.root, "next.config.js"))
	if err != nil {
		result.errorf("Missing next.config.js")
	} else if !moduleExportsRe.Match(nextConfig) {
		result.errorf("Invalid next.config.js format")
	}

	tsData, err := os.ReadFile(filepath.Join(v.root, "tsconfig.json"))
	if err != nil {
		result.errorf("Missing tsconfig.json")
	} else {
		var tsconfig struct {
			CompilerOptions map[string]json.RawMessage `json:"compilerOptions"`
		}
		if err := json.Unmarshal(tsData, &tsconfig); err != nil {
			result.errorf("Invalid tsconfig.json")
		} else {
			if _, ok := tsconfig.CompilerOptions["jsx"]; !ok {
				result.warnf("Missing JSX configuration in tsconfig.json")
			}
			if _, ok := tsconfig.CompilerOptions["baseUrl"]; !ok {
				result.warnf("Missing baseUrl in tsconfig.json")
			}
		}
	}

	if len(result.Errors) == before {
		result.passf("Configuration files are in place")
	}
}

func (v *Validator) checkAPIRoutes(result *Result) {
	apiDir := filepath.Join(v.root, "app", "api")
	pattern := "route.ts"
	if result.Convention == ConventionPages {
		apiDir = filepath.Join(v.root, "pages", "api")
		pattern = ""
	}
	if _, err := os.Stat(apiDir); err != nil {
		return
	}

	hasEnvFile := false
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(filepath.Join(v.root, name)); err == nil {
			hasEnvFile = true
			break
		}
	}

	before := len(result.Errors)
	for _, ext := range []string{".ts", ".tsx"} {
		walkSources(apiDir, ext, func(full string, content string) {
			rel, _ := filepath.Rel(v.root, full)
			rel = filepath.ToSlash(rel)
			if pattern != "" && !strings.HasPrefix(filepath.Base(full), "route.") {
				return
			}
			if !handlerExportRe.MatchString(content) {
				result.errorf("API route missing handler export: %s", rel)
			}
			if envUsageRe.MatchString(content) && !hasEnvFile {
				result.warnf("Environment variable used without an env file: %s", rel)
			}
		})
	}
	if len(result.Errors) == before {
		result.passf("API routes expose handlers")
	}
}

// walkSources calls fn with the content of every file under dir with the
// given extension. Unreadable files are skipped; the checks that care report
// their own errors on required files.
func walkSources(dir, ext string, fn func(path string, content string)) {
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || filepath.Ext(path) != ext {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		fn(path, string(data))
		return nil
	})
}
