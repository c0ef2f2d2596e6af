package oracle

import (
	"fmt"
	"strings"
)

// FixRequest carries everything a fix prompt needs.
type FixRequest struct {
	Content    string
	Issues     []string
	Category   string
	Convention string // "app" or "pages"

	Imports      []string
	Dependencies []string
}

// BuildFixPrompt asks the model to rewrite a file so the listed issues are
// resolved. The instructions pin the contract the applier later validates:
// keep functionality, keep the directive when hooks are used.
func BuildFixPrompt(req FixRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fix the following issues in a %s file for a Next.js %s router migration:\n\n", req.Category, req.Convention)
	b.WriteString("Issues:\n")
	for _, issue := range req.Issues {
		fmt.Fprintf(&b, "- %s\n", issue)
	}
	fmt.Fprintf(&b, "\nCurrent code:\n```\n%s\n```\n", req.Content)
	if len(req.Imports) > 0 || len(req.Dependencies) > 0 {
		b.WriteString("\nContext:\n")
		fmt.Fprintf(&b, "- Imports: %s\n", strings.Join(req.Imports, ", "))
		fmt.Fprintf(&b, "- Dependencies: %s\n", strings.Join(req.Dependencies, ", "))
	}
	b.WriteString(fixContract(req.Convention))
	return b.String()
}

// BuildRelatedFixPrompt asks the model to update a file affected by a fix
// applied elsewhere.
func BuildRelatedFixPrompt(content, sourceFile, category, convention string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Update this file to stay compatible with changes made to %s during a Next.js %s router migration.\n\n", sourceFile, convention)
	fmt.Fprintf(&b, "The file is related through a %s change.\n\n", category)
	fmt.Fprintf(&b, "Current code:\n```\n%s\n```\n", content)
	b.WriteString(fixContract(convention))
	return b.String()
}

// BuildCreateFilePrompt asks the model to generate a required convention file
// that is missing from the project.
func BuildCreateFilePrompt(path, kind, description, convention string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a new %s file for a Next.js %s router project.\n\n", kind, convention)
	fmt.Fprintf(&b, "File path: %s\nPurpose: %s\n", path, description)
	b.WriteString(fixContract(convention))
	return b.String()
}

// BuildRecommendationsPrompt asks for migration advice over a project
// summary, as JSON matching the Recommendations schema.
func BuildRecommendationsPrompt(summary string) string {
	var b strings.Builder
	b.WriteString("Review this Vite to Next.js migration summary and recommend next steps:\n\n")
	b.WriteString(summary)
	b.WriteString("\n\nRespond with JSON: {\"recommendations\": [\"...\"]}. Return only the JSON.")
	return b.String()
}

func fixContract(convention string) string {
	return fmt.Sprintf(`
Provide code that:
1. Follows Next.js %s router conventions
2. Preserves all existing functions and exports
3. Uses proper imports (next/navigation, next/image, next/link)
4. Includes the "use client" directive when hooks or browser APIs are used
5. Uses TypeScript types where the file already does

Return only the code, without explanations.`, convention)
}
