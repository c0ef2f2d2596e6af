// Package config extracts a normalized IR from a Vite configuration file and
// maps it onto Next.js conventions: next.config.js, tsconfig path aliases,
// and runtime host/port environment variables.
//
// Extraction is structural pattern matching over known keys, not a JavaScript
// parse. Keys the regexes don't find are simply absent from the IR; an empty
// config is a valid, empty result.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/PrinceMuichkine/stackshift/internal/apply"
	"github.com/PrinceMuichkine/stackshift/internal/project"
)

// Candidate config filenames, checked in order.
var viteConfigNames = []string{
	"vite.config.ts",
	"vite.config.js",
	"vite.config.mjs",
	"vite.config.cjs",
}

// Files the target convention always materializes.
var auxFiles = []string{"next.config.js", "tsconfig.json", ".env.local"}

// IR is the normalized view of the source build configuration. Zero values
// mean "not configured".
type IR struct {
	Plugins   []string
	OutDir    string
	Target    string
	Host      string
	Port      string
	Aliases   map[string]string
	EnvPrefix string
}

// TargetConfig is the Next.js-side counterpart, plus the auxiliary files the
// migration must create.
type TargetConfig struct {
	ReactStrictMode bool
	PoweredByHeader bool
	DistDir         string
	Paths           map[string][]string
	EnvVars         map[string]string
	AuxFiles        []string
}

var (
	importRe    = regexp.MustCompile(`import\s+\w+\s+from\s+['"]([^'"]+)['"]`)
	outDirRe    = regexp.MustCompile(`outDir:\s*['"]([^'"]+)['"]`)
	targetRe    = regexp.MustCompile(`target:\s*['"]([^'"]+)['"]`)
	portRe      = regexp.MustCompile(`port:\s*(\d+)`)
	hostRe      = regexp.MustCompile(`host:\s*['"]([^'"]+)['"]`)
	aliasRe     = regexp.MustCompile(`(?s)alias:\s*\{([^}]+)\}`)
	aliasPairRe = regexp.MustCompile(`['"]([@\w\-/]+)['"]\s*:\s*['"]([^'"]+)['"]`)
	envPrefixRe = regexp.MustCompile(`envPrefix:\s*['"]([^'"]+)['"]`)
)

// Analyze extracts the config IR from the snapshot. Missing or trivial
// configuration yields an empty IR, not an error.
func Analyze(snap *project.Snapshot) (IR, error) {
	var name string
	for _, candidate := range viteConfigNames {
		if snap.Exists(candidate) {
			name = candidate
			break
		}
	}
	if name == "" {
		return IR{}, nil
	}

	content, err := snap.Content(name)
	if err != nil {
		return IR{}, fmt.Errorf("reading %s: %w", name, err)
	}
	return extract(string(content)), nil
}

func extract(content string) IR {
	if strings.Contains(strings.ReplaceAll(content, " ", ""), "exportdefault{}") {
		return IR{}
	}

	ir := IR{}
	for _, m := range importRe.FindAllStringSubmatch(content, -1) {
		pkg := m[1]
		if strings.Contains(pkg, "plugin") || strings.Contains(pkg, "vite-") || strings.Contains(pkg, "@vitejs") {
			ir.Plugins = append(ir.Plugins, pkg)
		}
	}
	if m := outDirRe.FindStringSubmatch(content); m != nil {
		ir.OutDir = m[1]
	}
	if m := targetRe.FindStringSubmatch(content); m != nil {
		ir.Target = m[1]
	}
	if m := portRe.FindStringSubmatch(content); m != nil {
		ir.Port = m[1]
	}
	if m := hostRe.FindStringSubmatch(content); m != nil {
		ir.Host = m[1]
	}
	if m := aliasRe.FindStringSubmatch(content); m != nil {
		aliases := map[string]string{}
		for _, pair := range aliasPairRe.FindAllStringSubmatch(m[1], -1) {
			aliases[pair[1]] = pair[2]
		}
		if len(aliases) > 0 {
			ir.Aliases = aliases
		}
	}
	if m := envPrefixRe.FindStringSubmatch(content); m != nil {
		ir.EnvPrefix = m[1]
	}
	return ir
}

// BuildPlan maps the source IR to the target configuration. The two boolean
// flags are always set; host and port become environment variables because
// Next.js takes them at runtime, not from static config.
func BuildPlan(ir IR) TargetConfig {
	plan := TargetConfig{
		ReactStrictMode: true,
		PoweredByHeader: false,
		EnvVars:         map[string]string{},
		AuxFiles:        append([]string(nil), auxFiles...),
	}

	if len(ir.Aliases) > 0 {
		plan.Paths = map[string][]string{}
		for alias, target := range ir.Aliases {
			if strings.HasPrefix(target, "./") || strings.HasPrefix(target, "../") {
				plan.Paths[alias] = []string{target}
			} else {
				plan.Paths[alias] = []string{"./" + target}
			}
		}
	}
	if ir.OutDir != "" {
		plan.DistDir = ir.OutDir
	}
	if ir.Port != "" {
		plan.EnvVars["PORT"] = ir.Port
	}
	if ir.Host != "" {
		plan.EnvVars["HOST"] = ir.Host
	}
	return plan
}

// RenderNextConfig serializes the plan into next.config.js with a fixed key
// order so repeated runs produce identical output.
func RenderNextConfig(plan TargetConfig) []byte {
	var b strings.Builder
	b.WriteString("/** @type {import('next').NextConfig} */\n")
	b.WriteString("const nextConfig = {\n")
	fmt.Fprintf(&b, "  reactStrictMode: %t,\n", plan.ReactStrictMode)
	fmt.Fprintf(&b, "  poweredByHeader: %t,\n", plan.PoweredByHeader)
	if plan.DistDir != "" {
		fmt.Fprintf(&b, "  distDir: '%s',\n", plan.DistDir)
	}
	b.WriteString("}\n\nmodule.exports = nextConfig\n")
	return []byte(b.String())
}

// MergeTSConfig folds the plan's path aliases into tsconfig.json content,
// creating the file shape if content is nil. Only compilerOptions.paths and
// compilerOptions.baseUrl are touched; every other key survives.
func MergeTSConfig(existing []byte, plan TargetConfig) ([]byte, error) {
	root := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(existing)) > 0 {
		if err := json.Unmarshal(existing, &root); err != nil {
			return nil, fmt.Errorf("parsing tsconfig.json: %w", err)
		}
	}

	opts := map[string]json.RawMessage{}
	if raw, ok := root["compilerOptions"]; ok {
		if err := json.Unmarshal(raw, &opts); err != nil {
			return nil, fmt.Errorf("parsing compilerOptions: %w", err)
		}
	}

	paths := plan.Paths
	if paths == nil {
		paths = map[string][]string{}
	}
	pathsJSON, err := json.Marshal(paths)
	if err != nil {
		return nil, err
	}
	opts["paths"] = pathsJSON
	opts["baseUrl"] = json.RawMessage(`"."`)

	optsJSON, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}
	root["compilerOptions"] = optsJSON

	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// MergeEnvFile merges the plan's variables into .env.local content by key.
// Keys not in the new set are preserved; colliding keys are overwritten.
// Output is sorted by key so reruns are byte-stable.
func MergeEnvFile(existing []byte, vars map[string]string) ([]byte, error) {
	merged := map[string]string{}
	if len(bytes.TrimSpace(existing)) > 0 {
		parsed, err := godotenv.Parse(bytes.NewReader(existing))
		if err != nil {
			return nil, fmt.Errorf("parsing env file: %w", err)
		}
		merged = parsed
	}
	for k, v := range vars {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, merged[k])
	}
	return []byte(b.String()), nil
}

// Operations builds the write operations materializing the plan: a fresh
// next.config.js when includeNextConfig, a tsconfig.json merge, and a
// .env.local merge when the plan carries env vars. Merge inputs are read from
// root here so one code path owns config materialization.
func Operations(root string, plan TargetConfig, includeNextConfig bool) ([]apply.Operation, error) {
	var ops []apply.Operation

	if includeNextConfig {
		ops = append(ops, &apply.WriteFileOp{
			Path:      filepath.Join(root, "next.config.js"),
			Content:   RenderNextConfig(plan),
			Overwrite: true,
		})
	}

	tsPath := filepath.Join(root, "tsconfig.json")
	existing, err := os.ReadFile(tsPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	mergedTS, err := MergeTSConfig(existing, plan)
	if err != nil {
		return nil, err
	}
	ops = append(ops, &apply.WriteFileOp{Path: tsPath, Content: mergedTS, Overwrite: true})

	if len(plan.EnvVars) > 0 {
		envPath := filepath.Join(root, ".env.local")
		existingEnv, err := os.ReadFile(envPath)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		mergedEnv, err := MergeEnvFile(existingEnv, plan.EnvVars)
		if err != nil {
			return nil, err
		}
		ops = append(ops, &apply.WriteFileOp{Path: envPath, Content: mergedEnv, Overwrite: true})
	}

	return ops, nil
}
