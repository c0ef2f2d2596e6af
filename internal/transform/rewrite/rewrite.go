// Package rewrite performs the deterministic source rewrites of the
// migration: react-router imports and calls become their Next.js equivalents,
// and raw <img> markup becomes the next/image component. These run before the
// oracle-backed fix loop so the model only sees what a pattern cannot decide.
package rewrite

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	routerImportRe = regexp.MustCompile(`import\s*\{([^}]+)\}\s*from\s*['"]react-router-dom['"];?`)
	linkTagRe      = regexp.MustCompile(`<Link\s+([^>]+)>`)
	toAttrRe       = regexp.MustCompile(`to=(["'][^"']*["'])`)
	stateAttrRe    = regexp.MustCompile(`state=\{[^}]*\}`)
	navigateDeclRe = regexp.MustCompile(`const\s+navigate\s*=\s*useNavigate\(\)`)
	navigateCallRe = regexp.MustCompile(`navigate\(([^)]*)\)`)
	paramsDeclRe   = regexp.MustCompile(`const\s*\{\s*([^}]+?)\s*\}\s*=\s*useParams\(\)`)

	imgTagRe      = regexp.MustCompile(`<img([^>]*?)src=['"]([^'"]*)['"]([^>]*?)/?>`)
	widthAttrRe   = regexp.MustCompile(`width=["'{]?(\d+)`)
	heightAttrRe  = regexp.MustCompile(`height=["'{]?(\d+)`)
	assetImportRe = regexp.MustCompile(`(?m)^import\s+(\w+)\s+from\s+['"]\.\.?/\S*\.(png|jpe?g|gif|svg)['"];?`)
)

// routerImports maps react-router names to their Next.js replacements. Link
// moves to next/link; everything else moves to next/navigation. Outlet has no
// import equivalent (layouts receive children) and is dropped.
var routerImports = map[string]string{
	"useNavigate": "useRouter",
	"useLocation": "usePathname",
	"useParams":   "useSearchParams",
	"Navigate":    "redirect",
}

// RouterToNext rewrites react-router-dom usage to Next.js navigation: the
// import line, <Link to=...> attributes, useNavigate/navigate calls,
// useLocation, and destructured useParams reads. Already-migrated content
// passes through unchanged.
func RouterToNext(src []byte) []byte {
	text := string(src)

	text = routerImportRe.ReplaceAllStringFunc(text, func(m string) string {
		names := routerImportRe.FindStringSubmatch(m)[1]
		return convertRouterImport(names)
	})

	text = linkTagRe.ReplaceAllStringFunc(text, func(m string) string {
		attrs := linkTagRe.FindStringSubmatch(m)[1]
		attrs = toAttrRe.ReplaceAllString(attrs, "href=$1")
		attrs = stateAttrRe.ReplaceAllString(attrs, "shallow=true")
		return "<Link " + attrs + ">"
	})

	text = navigateDeclRe.ReplaceAllString(text, "const router = useRouter()")
	text = navigateCallRe.ReplaceAllStringFunc(text, func(m string) string {
		args := navigateCallRe.FindStringSubmatch(m)[1]
		return convertNavigation(args)
	})

	text = strings.ReplaceAll(text, "useLocation()", "usePathname()")
	text = paramsDeclRe.ReplaceAllStringFunc(text, func(m string) string {
		names := paramsDeclRe.FindStringSubmatch(m)[1]
		return convertParams(names)
	})

	return []byte(text)
}

func convertRouterImport(names string) string {
	var navNames []string
	needLink := false
	for _, raw := range strings.Split(names, ",") {
		name := strings.TrimSpace(raw)
		if name == "Link" {
			needLink = true
			continue
		}
		if mapped, ok := routerImports[name]; ok {
			navNames = append(navNames, mapped)
		}
	}

	var lines []string
	if needLink {
		lines = append(lines, `import Link from "next/link";`)
	}
	if len(navNames) > 0 {
		lines = append(lines, fmt.Sprintf(`import { %s } from "next/navigation";`, strings.Join(navNames, ", ")))
	}
	return strings.Join(lines, "\n")
}

// convertNavigation maps navigate(...) onto router.push. A bare expression
// argument becomes a template literal so dynamic paths survive the rewrite.
func convertNavigation(args string) string {
	trimmed := strings.TrimSpace(args)
	if trimmed == "" {
		return "router.push()"
	}
	if strings.HasPrefix(trimmed, `"`) || strings.HasPrefix(trimmed, "'") ||
		strings.HasPrefix(trimmed, "`") || strings.Contains(trimmed, "{") {
		return fmt.Sprintf("router.push(%s)", trimmed)
	}
	return fmt.Sprintf("router.push(`${%s}`)", trimmed)
}

func convertParams(names string) string {
	lines := []string{"const searchParams = useSearchParams();"}
	for _, raw := range strings.Split(names, ",") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf(`const %s = searchParams.get(%q);`, name, name))
	}
	return strings.Join(lines, "\n")
}

// ImagesToNext rewrites raw <img> markup to the next/image component,
// injecting the import when missing. Static asset imports are commented out
// with a pointer to their public/ destination; the route mover relocates the
// files themselves.
func ImagesToNext(src []byte) []byte {
	text := string(src)

	if strings.Contains(text, "<img") && !strings.Contains(text, "next/image") {
		text = "import Image from \"next/image\";\n" + text
	}

	text = assetImportRe.ReplaceAllStringFunc(text, func(m string) string {
		groups := assetImportRe.FindStringSubmatch(m)
		return fmt.Sprintf("// moved to public/images\n// import %s from \"/images/%s.%s\"", groups[1], groups[1], groups[2])
	})

	text = imgTagRe.ReplaceAllStringFunc(text, func(m string) string {
		groups := imgTagRe.FindStringSubmatch(m)
		return convertImgTag(groups[1], groups[2], groups[3])
	})

	return []byte(text)
}

func convertImgTag(before, source, after string) string {
	width := firstGroup(widthAttrRe, before+after, "0")
	height := firstGroup(heightAttrRe, before+after, "0")

	switch {
	case strings.HasPrefix(source, "http"):
		// Remote images skip the optimizer; dimensions are still required.
		return fmt.Sprintf(`<Image src="%s" alt="" width={%s} height={%s} unoptimized />`, source, width, height)
	case strings.HasPrefix(source, "./") || strings.HasPrefix(source, "../"):
		return fmt.Sprintf(`<Image src="/images/%s" alt="" width={%s} height={%s} />`, path.Base(source), width, height)
	default:
		return fmt.Sprintf(`<Image src="%s" alt="" width={%s} height={%s} />`, source, width, height)
	}
}

func firstGroup(re *regexp.Regexp, s, fallback string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return fallback
}

// Apply runs both rewrites over each file and writes back those that changed.
// Returns the project-relative paths modified. Idempotent: rewritten content
// matches no pattern a second time.
func Apply(root string, relPaths []string) ([]string, error) {
	var modified []string
	for _, rel := range relPaths {
		full := filepath.Join(root, filepath.FromSlash(rel))
		src, err := os.ReadFile(full)
		if err != nil {
			return modified, err
		}
		out := ImagesToNext(RouterToNext(src))
		if string(out) == string(src) {
			continue
		}
		if err := os.WriteFile(full, out, 0o644); err != nil {
			return modified, err
		}
		modified = append(modified, rel)
	}
	return modified, nil
}
