// Package routes discovers a project's route declarations and maps each one
// to a Next.js App Router file path.
//
// Two discovery strategies run: a directory-convention scan over
// src/{routes,pages,views}, and a regex scan over router-table files. Their
// results are concatenated without deduplication; a route appearing in both
// is a signal the project declares it twice, and collapsing the records would
// hide that from the operator.
package routes

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/PrinceMuichkine/stackshift/internal/project"
)

// PageFileName is the App Router's page filename.
const PageFileName = "page.tsx"

// LayoutFileName is the sibling layout filename attached when a record
// carries a layout.
const LayoutFileName = "layout.tsx"

// TargetRoot is the directory all route transforms land under.
const TargetRoot = "app"

// conventionDirs are the candidate route directories, scanned in order.
var conventionDirs = []string{"src/routes", "src/pages", "src/views"}

// routerTableFiles are the candidate inline router configuration files.
var routerTableFiles = []string{"src/router.ts", "src/router.js", "src/routes.ts", "src/routes.js"}

var routeExtensions = map[string]bool{".tsx": true, ".jsx": true, ".ts": true, ".js": true}

var (
	routeAnnotationRe = regexp.MustCompile(`@route\s+([^\n]+)`)
	pathLiteralRe     = regexp.MustCompile(`path:\s*['"]([^'"]+)['"]`)
	paramRe           = regexp.MustCompile(`:(\w+)`)
	bracketSegmentRe  = regexp.MustCompile(`\[(\w+)\]`)
	routerEntryRe     = regexp.MustCompile(`\{\s*path:\s*['"]([^'"]+)['"]\s*,\s*component:\s*([^,}]+)`)
	componentCleanRe  = regexp.MustCompile(`['"\s()]`)
	layoutStemRe      = regexp.MustCompile(`(?i)layout`)
)

// Record is one discovered route. File is empty when the route came from a
// router table whose component could not be resolved to a file.
type Record struct {
	File      string // project-relative source path, may be empty
	Route     string // pattern in :param syntax
	Params    []string
	HasLayout bool
}

// Transform maps one record to its target location.
type Transform struct {
	SourcePath string
	TargetPath string
	Params     []string
	LayoutFile string      // empty unless the record has a layout
	AssetMoves [][2]string // (source, target) pairs for co-located assets
}

// Analyze runs both discovery strategies against the snapshot.
func Analyze(snap *project.Snapshot) []Record {
	records := analyzeConventionDirs(snap)
	records = append(records, analyzeRouterTables(snap)...)
	return records
}

func analyzeConventionDirs(snap *project.Snapshot) []Record {
	var paths []string
	for rel := range snap.Files {
		for _, dir := range conventionDirs {
			if strings.HasPrefix(rel, dir+"/") && routeExtensions[path.Ext(rel)] {
				paths = append(paths, rel)
				break
			}
		}
	}
	sort.Strings(paths) // map iteration order is random; keep output stable

	var records []Record
	for _, rel := range paths {
		content, err := snap.Content(rel)
		if err != nil {
			continue
		}
		records = append(records, analyzeRouteFile(rel, string(content)))
	}
	return records
}

func analyzeRouteFile(rel, content string) Record {
	pattern := ""
	if m := routeAnnotationRe.FindStringSubmatch(content); m != nil {
		pattern = strings.TrimSpace(m[1])
	} else if m := pathLiteralRe.FindStringSubmatch(content); m != nil {
		pattern = m[1]
	} else {
		pattern = inferRoutePath(rel)
	}

	stem := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	return Record{
		File:      rel,
		Route:     pattern,
		Params:    extractParams(pattern),
		HasLayout: layoutStemRe.MatchString(stem),
	}
}

// inferRoutePath derives a pattern from the file's location: the convention
// directory prefix and extension are stripped, a trailing "index" collapses,
// and bracketed segments become :name parameters.
func inferRoutePath(rel string) string {
	trimmed := strings.TrimPrefix(rel, "src/")
	for _, dir := range []string{"routes/", "pages/", "views/"} {
		if strings.HasPrefix(trimmed, dir) {
			trimmed = strings.TrimPrefix(trimmed, dir)
			break
		}
	}

	trimmed = strings.TrimSuffix(trimmed, path.Ext(trimmed))
	segments := strings.Split(trimmed, "/")
	if len(segments) > 0 && strings.EqualFold(segments[len(segments)-1], "index") {
		segments = segments[:len(segments)-1]
	}

	route := "/"
	if len(segments) > 0 {
		route = "/" + strings.Join(segments, "/")
	}
	return bracketSegmentRe.ReplaceAllString(route, ":$1")
}

func analyzeRouterTables(snap *project.Snapshot) []Record {
	var records []Record
	for _, rel := range routerTableFiles {
		if !snap.Exists(rel) {
			continue
		}
		content, err := snap.Content(rel)
		if err != nil {
			continue
		}
		for _, m := range routerEntryRe.FindAllStringSubmatch(string(content), -1) {
			pattern := m[1]
			component := componentCleanRe.ReplaceAllString(m[2], "")
			records = append(records, Record{
				File:   findComponentFile(snap, component),
				Route:  pattern,
				Params: extractParams(pattern),
			})
		}
	}
	return records
}

// findComponentFile resolves a router-table component name to a source file
// by filename stem. Returns "" when nothing matches; the record survives with
// no file so the operator still sees the route.
func findComponentFile(snap *project.Snapshot, component string) string {
	if component == "" {
		return ""
	}
	var matches []string
	for rel := range snap.Files {
		if !strings.HasPrefix(rel, "src/") || !routeExtensions[path.Ext(rel)] {
			continue
		}
		stem := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
		if stem == component {
			matches = append(matches, rel)
		}
	}
	if len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[0]
}

func extractParams(pattern string) []string {
	var params []string
	for _, m := range paramRe.FindAllStringSubmatch(pattern, -1) {
		params = append(params, m[1])
	}
	return params
}

// GenerateTransforms computes the target file for every record that resolved
// to a source file. Two routes collapsing onto the same target file is an
// error: applying such a plan would silently overwrite one of them.
//
// snap is consulted only for co-located asset discovery and may be nil.
func GenerateTransforms(snap *project.Snapshot, records []Record) ([]Transform, error) {
	var transforms []Transform
	seen := map[string]string{} // target -> route pattern

	for _, rec := range records {
		if rec.File == "" {
			continue
		}

		target := targetPath(toBracketSyntax(rec.Route))
		if prev, ok := seen[target]; ok && prev != rec.Route {
			return nil, fmt.Errorf("routes %q and %q both map to %s", prev, rec.Route, target)
		}
		seen[target] = rec.Route

		t := Transform{
			SourcePath: rec.File,
			TargetPath: target,
			Params:     append([]string(nil), rec.Params...),
			AssetMoves: assetMoves(snap, rec.File, target),
		}
		if rec.HasLayout {
			t.LayoutFile = path.Join(path.Dir(target), LayoutFileName)
		}
		transforms = append(transforms, t)
	}
	return transforms, nil
}

// toBracketSyntax rewrites :param segments to the App Router's [param] form.
func toBracketSyntax(route string) string {
	converted := paramRe.ReplaceAllString(route, "[$1]")
	if !strings.HasPrefix(converted, "/") {
		converted = "/" + converted
	}
	return converted
}

// targetPath places a bracket-syntax route under the app directory, ending
// in the page filename. "/" maps to the root page file directly.
func targetPath(route string) string {
	trimmed := strings.TrimPrefix(route, "/")
	if trimmed == "" {
		return path.Join(TargetRoot, PageFileName)
	}

	segments := strings.Split(trimmed, "/")
	if segments[len(segments)-1] == "" {
		segments[len(segments)-1] = PageFileName
	} else {
		segments = append(segments, PageFileName)
	}
	return path.Join(TargetRoot, path.Join(segments...))
}

// assetMoves pairs co-located stylesheets (same stem, same directory) with
// their new home beside the target page file.
func assetMoves(snap *project.Snapshot, sourceFile, target string) [][2]string {
	if snap == nil {
		return nil
	}
	stem := strings.TrimSuffix(path.Base(sourceFile), path.Ext(sourceFile))
	dir := path.Dir(sourceFile)
	targetDir := path.Dir(target)

	var moves [][2]string
	for _, suffix := range []string{".module.css", ".css"} {
		asset := path.Join(dir, stem+suffix)
		if snap.Exists(asset) {
			moves = append(moves, [2]string{asset, path.Join(targetDir, stem+suffix)})
		}
	}
	return moves
}
