package oracle

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencedBlockRe   = regexp.MustCompile("(?s)```(?:\\w+)?\\n(.*?)```")
	markdownLineRe  = regexp.MustCompile(`(?m)^[#\-*].*$`)
	jsonCandidateRe = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractCode pulls replacement code out of a model response: a fenced block
// if one exists, otherwise the whole response with markdown furniture
// stripped. Returns "" when nothing usable remains.
func ExtractCode(response string) string {
	if m := fencedBlockRe.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	cleaned := strings.TrimSpace(markdownLineRe.ReplaceAllString(response, ""))
	return cleaned
}

// RouteInfo is one route as described by the model.
type RouteInfo struct {
	Path          string   `json:"path"`
	ComponentPath string   `json:"component_path"`
	Layout        string   `json:"layout,omitempty"`
	Params        []string `json:"params,omitempty"`
	NextJSPath    string   `json:"nextjs_path,omitempty"`
}

// RoutingAnalysis is the structured routing response schema.
type RoutingAnalysis struct {
	CurrentStructure    []RouteInfo `json:"current_structure"`
	SuggestedStructure  []string    `json:"suggested_nextjs_structure"`
	MigrationComplexity string      `json:"migration_complexity"`
	Notes               []string    `json:"notes"`
}

// DependencyInfo describes one package and its migration guidance.
type DependencyInfo struct {
	Name             string `json:"name"`
	Version          string `json:"version"`
	Type             string `json:"type"`
	NextJSEquivalent string `json:"nextjs_equivalent,omitempty"`
	MigrationNotes   string `json:"migration_notes,omitempty"`
}

// DependencyAnalysis is the structured dependency response schema.
type DependencyAnalysis struct {
	Dependencies         []DependencyInfo `json:"dependencies"`
	IncompatiblePackages []string         `json:"incompatible_packages"`
	RequiredPackages     []string         `json:"required_nextjs_packages"`
	MigrationNotes       []string         `json:"migration_notes"`
}

// ConfigurationAnalysis is the structured configuration response schema.
type ConfigurationAnalysis struct {
	ViteConfig           map[string]any    `json:"vite_config"`
	SuggestedNextConfig  map[string]any    `json:"suggested_next_config"`
	EnvironmentVariables map[string]string `json:"environment_variables"`
	MigrationNotes       []string          `json:"migration_notes"`
}

// Recommendations is the free-form advice schema.
type Recommendations struct {
	Items []string `json:"recommendations"`
}

// DecodeJSON decodes a model response into one of the fixed schemas. The
// response may be bare JSON, fenced JSON, or JSON embedded in prose. On any
// non-conforming response the zero value and ErrBadResponse come back; the
// caller proceeds with the fallback rather than failing the pass.
func DecodeJSON[T any](response string) (T, error) {
	var out T

	candidates := []string{response}
	if m := fencedBlockRe.FindStringSubmatch(response); m != nil {
		candidates = append([]string{m[1]}, candidates...)
	}
	if m := jsonCandidateRe.FindString(response); m != "" {
		candidates = append(candidates, m)
	}

	for _, c := range candidates {
		if err := json.Unmarshal([]byte(strings.TrimSpace(c)), &out); err == nil {
			return out, nil
		}
	}

	var zero T
	return zero, ErrBadResponse
}
