// Package fixer routes validation issues to the oracle and applies the
// replacements it proposes. Issues are grouped per file, ordered by a fixed
// category priority, and fixed sequentially so a file's dependents are only
// touched after its own fix lands.
package fixer

import (
	"sort"
	"strings"
)

// Category priority: earlier categories unblock later ones, so imports are
// fixed before routing, routing before components, and so on.
var categoryPriority = []string{"imports", "routing", "components", "api", "styles", "other"}

// Categorize buckets an issue by keyword containment. Unmatched issues land
// in "other".
func Categorize(issue string) string {
	lower := strings.ToLower(issue)
	switch {
	case strings.Contains(lower, "import") || strings.Contains(lower, "require") || strings.Contains(lower, "dependency"):
		return "imports"
	case strings.Contains(lower, "route"):
		return "routing"
	case strings.Contains(lower, "client"):
		return "components"
	case strings.Contains(lower, "api"):
		return "api"
	case strings.Contains(lower, "style"):
		return "styles"
	default:
		return "other"
	}
}

// Group indexes issues by affected file, then by category. The file path is
// recovered from the issue text's "message: path" shape; issues without a
// colon carry no file and are skipped.
func Group(issues []string) map[string]map[string][]string {
	grouped := map[string]map[string][]string{}
	for _, issue := range issues {
		_, path, ok := strings.Cut(issue, ": ")
		if !ok {
			continue
		}
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}

		category := Categorize(issue)
		if grouped[path] == nil {
			grouped[path] = map[string][]string{}
		}
		grouped[path][category] = append(grouped[path][category], issue)
	}
	return grouped
}

// OrderedFor returns a file's categories in fix priority order.
func OrderedFor(byCategory map[string][]string) []string {
	rank := func(category string) int {
		for i, c := range categoryPriority {
			if c == category {
				return i
			}
		}
		return len(categoryPriority)
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		ri, rj := rank(categories[i]), rank(categories[j])
		if ri != rj {
			return ri < rj
		}
		return categories[i] < categories[j]
	})
	return categories
}
