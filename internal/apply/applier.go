package apply

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/PrinceMuichkine/stackshift/internal/transform/component"
)

// Applier writes oracle-sourced replacement bodies after validating them
// against the original. Rejections return false with no side effect; the
// original file is backed up before any accepted write.
type Applier struct {
	root     string
	backups  *BackupStore
	modified map[string]bool
}

// NewApplier creates an applier rooted at the project directory.
func NewApplier(root string) (*Applier, error) {
	backups, err := NewBackupStore(root)
	if err != nil {
		return nil, err
	}
	return &Applier{root: root, backups: backups, modified: map[string]bool{}}, nil
}

// ApplyFix validates candidate content against the file's current content
// and writes it when safe. Returns true only when the file changed on disk.
//
// Validation, in order:
//  1. the candidate parses (tree-sitter, no error nodes)
//  2. every top-level function name in the original survives in the
//     candidate; a fix never removes functionality
//  3. for the components category, a candidate invoking a client hook must
//     carry the "use client" directive
func (a *Applier) ApplyFix(ctx context.Context, rel string, candidate []byte, category string) (bool, error) {
	if len(bytes.TrimSpace(candidate)) == 0 {
		return false, nil
	}

	full := filepath.Join(a.root, filepath.FromSlash(rel))
	original, err := os.ReadFile(full)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", rel, err)
	}
	if bytes.Equal(original, candidate) {
		return false, nil
	}

	tree, err := parseSource(ctx, rel, candidate)
	if err != nil {
		return false, nil // unparseable candidate: reject, no side effect
	}
	defer tree.Close()

	if missing := missingFunctions(ctx, rel, original, candidate, tree); len(missing) > 0 {
		return false, nil
	}

	if category == "components" {
		if invokesClientHook(tree.RootNode(), candidate) && !component.HasDirective(candidate) {
			return false, nil
		}
	}

	if err := a.backups.Record(rel, original); err != nil {
		return false, err
	}
	if err := os.WriteFile(full, candidate, 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", rel, err)
	}
	a.modified[rel] = true
	return true, nil
}

// Modified returns the files changed so far, sorted.
func (a *Applier) Modified() []string {
	out := make([]string, 0, len(a.modified))
	for rel := range a.modified {
		out = append(out, rel)
	}
	sort.Strings(out)
	return out
}

// RollbackAll restores the newest backup for every modified file and clears
// the modified set. Files whose restore fails are reported together; the
// rest still roll back.
func (a *Applier) RollbackAll() error {
	var failed []string
	for _, rel := range a.Modified() {
		if err := a.backups.Restore(rel); err != nil {
			failed = append(failed, rel)
		}
	}
	a.modified = map[string]bool{}
	if len(failed) > 0 {
		return fmt.Errorf("rollback incomplete for: %v", failed)
	}
	return nil
}

// Backups exposes the store for commands that roll back without an applier
// session (stackshift rollback).
func (a *Applier) Backups() *BackupStore {
	return a.backups
}

func parseSource(ctx context.Context, filename string, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(component.LanguageFor(filename))
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, err
	}
	if tree.RootNode() == nil || tree.RootNode().HasError() {
		tree.Close()
		return nil, fmt.Errorf("source has syntax errors: %s", filename)
	}
	return tree, nil
}

// missingFunctions returns the original's top-level function names absent
// from the candidate. The original failing to parse yields no constraint:
// the fix may be the thing making it parseable.
func missingFunctions(ctx context.Context, filename string, original, candidate []byte, candidateTree *sitter.Tree) []string {
	origTree, err := parseSource(ctx, filename, original)
	if err != nil {
		return nil
	}
	defer origTree.Close()

	origFns := topLevelFunctions(origTree.RootNode(), original)
	candFns := topLevelFunctions(candidateTree.RootNode(), candidate)

	var missing []string
	for name := range origFns {
		if !candFns[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// topLevelFunctions collects function names declared at the top level:
// function declarations, exported declarations, and const/let bindings whose
// value is a function or arrow function.
func topLevelFunctions(root *sitter.Node, src []byte) map[string]bool {
	names := map[string]bool{}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		collectFunctions(root.NamedChild(i), src, names)
	}
	return names
}

func collectFunctions(n *sitter.Node, src []byte, names map[string]bool) {
	switch n.Type() {
	case "function_declaration", "generator_function_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			names[name.Content(src)] = true
		}
	case "export_statement":
		if decl := n.ChildByFieldName("declaration"); decl != nil {
			collectFunctions(decl, src, names)
		}
	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() != "variable_declarator" {
				continue
			}
			value := child.ChildByFieldName("value")
			if value == nil {
				continue
			}
			switch value.Type() {
			case "arrow_function", "function", "function_expression":
				if name := child.ChildByFieldName("name"); name != nil {
					names[name.Content(src)] = true
				}
			}
		}
	}
}

// invokesClientHook reports whether any call expression in the tree invokes
// a hook from the classifier's flagged set.
func invokesClientHook(n *sitter.Node, src []byte) bool {
	if n.Type() == "call_expression" {
		if fn := n.ChildByFieldName("function"); fn != nil && fn.Type() == "identifier" {
			if component.ClientHooks[fn.Content(src)] {
				return true
			}
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if invokesClientHook(n.NamedChild(i), src) {
			return true
		}
	}
	return false
}
