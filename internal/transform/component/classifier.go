// Package component decides which source files need Next.js's client
// execution context and inserts the "use client" directive where required.
//
// Classification runs two strategies behind one contract: a structural pass
// over a tree-sitter syntax tree, and a textual containment pass used only
// when the parse fails. The textual pass can false-positive on hook names in
// comments or strings; that is an accepted approximation, not a defect.
package component

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Directive is the literal marking a file as a client component.
const Directive = `"use client";`

// ClientHooks are the React/Next.js hook names that force a client context.
var ClientHooks = map[string]bool{
	"useState": true, "useEffect": true, "useContext": true, "useReducer": true,
	"useCallback": true, "useMemo": true, "useRef": true, "useImperativeHandle": true,
	"useLayoutEffect": true, "useDebugValue": true, "useRouter": true, "useSearchParams": true,
}

// browserGlobals are identifiers whose member access marks client code.
var browserGlobals = map[string]bool{
	"window": true, "document": true, "localStorage": true,
	"sessionStorage": true, "navigator": true, "history": true,
}

// hookModules are import sources whose named hook imports count.
var hookModules = map[string]bool{"react": true, "next/navigation": true}

var errUnparseable = errors.New("component: source not parseable")

// Classifier reports whether source text requires the client context.
// StructuralClassifier and TextualClassifier both implement it; NeedsClient
// composes them with the textual one as explicit fallback.
type Classifier interface {
	NeedsClientDirective(filename string, src []byte) (bool, error)
}

// NeedsClient runs the structural classifier and falls back to the textual
// one when the source cannot be parsed.
func NeedsClient(filename string, src []byte) bool {
	if v, err := (StructuralClassifier{}).NeedsClientDirective(filename, src); err == nil {
		return v
	}
	v, _ := TextualClassifier{}.NeedsClientDirective(filename, src)
	return v
}

// StructuralClassifier walks a tree-sitter syntax tree looking for hook
// calls, browser-global member access, and hook imports.
type StructuralClassifier struct{}

func (StructuralClassifier) NeedsClientDirective(filename string, src []byte) (bool, error) {
	lang := LanguageFor(filename)
	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return false, errUnparseable
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return false, errUnparseable
	}
	return visit(root, src), nil
}

func visit(n *sitter.Node, src []byte) bool {
	switch n.Type() {
	case "call_expression":
		if fn := n.ChildByFieldName("function"); fn != nil && fn.Type() == "identifier" {
			if ClientHooks[fn.Content(src)] {
				return true
			}
		}
	case "member_expression":
		if obj := n.ChildByFieldName("object"); obj != nil && obj.Type() == "identifier" {
			if browserGlobals[obj.Content(src)] {
				return true
			}
		}
	case "import_statement":
		if importsClientHook(n, src) {
			return true
		}
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		if visit(n.NamedChild(i), src) {
			return true
		}
	}
	return false
}

// importsClientHook reports whether an import statement names a flagged hook
// from a recognized runtime module.
func importsClientHook(stmt *sitter.Node, src []byte) bool {
	source := stmt.ChildByFieldName("source")
	if source == nil {
		return false
	}
	module := strings.Trim(source.Content(src), `'"`)
	if !hookModules[module] {
		return false
	}

	var found bool
	var scan func(n *sitter.Node)
	scan = func(n *sitter.Node) {
		if found {
			return
		}
		if n.Type() == "import_specifier" {
			if name := n.ChildByFieldName("name"); name != nil && ClientHooks[name.Content(src)] {
				found = true
				return
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			scan(n.NamedChild(i))
		}
	}
	scan(stmt)
	return found
}

// TextualClassifier is the containment fallback. It agrees with the
// structural classifier on everything both can read, but may flag hook names
// appearing in comments or strings.
type TextualClassifier struct{}

func (TextualClassifier) NeedsClientDirective(_ string, src []byte) (bool, error) {
	text := string(src)
	for hook := range ClientHooks {
		if strings.Contains(text, hook) {
			return true, nil
		}
	}
	for global := range browserGlobals {
		if strings.Contains(text, global+".") {
			return true, nil
		}
	}
	return false, nil
}

// LanguageFor picks the tree-sitter grammar matching a file's extension.
func LanguageFor(filename string) *sitter.Language {
	switch filepath.Ext(filename) {
	case ".tsx", ".jsx":
		return tsx.GetLanguage()
	case ".ts":
		return typescript.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// HasDirective reports whether content already carries the client directive
// in either quote style.
func HasDirective(src []byte) bool {
	text := string(src)
	return strings.Contains(text, `"use client"`) || strings.Contains(text, `'use client'`)
}

// Prepend returns content with the directive as the first line, followed by
// a blank line. No-op when the directive is already present.
func Prepend(src []byte) []byte {
	if HasDirective(src) {
		return src
	}
	return append([]byte(Directive+"\n\n"), src...)
}

// AddClientDirectives classifies each file under root and prepends the
// directive where needed. Returns the project-relative paths modified.
// Idempotent: the presence check precedes the prepend, so a second run
// returns an empty list.
func AddClientDirectives(root string, relPaths []string) ([]string, error) {
	var modified []string
	for _, rel := range relPaths {
		full := filepath.Join(root, filepath.FromSlash(rel))
		src, err := os.ReadFile(full)
		if err != nil {
			return modified, err
		}
		if !NeedsClient(rel, src) || HasDirective(src) {
			continue
		}
		if err := os.WriteFile(full, Prepend(src), 0o644); err != nil {
			return modified, err
		}
		modified = append(modified, rel)
	}
	return modified, nil
}
