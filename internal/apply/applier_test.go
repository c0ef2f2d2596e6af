package apply

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApplier(t *testing.T) (*Applier, string) {
	t.Helper()
	dir := t.TempDir()
	applier, err := NewApplier(dir)
	require.NoError(t, err)
	return applier, dir
}

func writeSource(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

const originalComponent = `export default function Profile() {
  return null;
}

function helper() {
  return 1;
}
`

func TestApplyFix_RejectsEmptyCandidate(t *testing.T) {
	applier, dir := newTestApplier(t)
	writeSource(t, dir, "src/Profile.tsx", originalComponent)

	ok, err := applier.ApplyFix(context.Background(), "src/Profile.tsx", []byte("  \n"), "other")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, applier.Modified())
}

func TestApplyFix_RejectsIdenticalCandidate(t *testing.T) {
	applier, dir := newTestApplier(t)
	writeSource(t, dir, "src/Profile.tsx", originalComponent)

	ok, err := applier.ApplyFix(context.Background(), "src/Profile.tsx", []byte(originalComponent), "other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApplyFix_RejectsUnparseableCandidate(t *testing.T) {
	applier, dir := newTestApplier(t)
	writeSource(t, dir, "src/Profile.tsx", originalComponent)

	ok, err := applier.ApplyFix(context.Background(), "src/Profile.tsx", []byte("function ( {{{"), "other")
	require.NoError(t, err)
	assert.False(t, ok)

	content, err := os.ReadFile(filepath.Join(dir, "src/Profile.tsx"))
	require.NoError(t, err)
	assert.Equal(t, originalComponent, string(content), "rejected fix must not touch the file")
}

func TestApplyFix_RejectsWhenFunctionDisappears(t *testing.T) {
	applier, dir := newTestApplier(t)
	writeSource(t, dir, "src/Profile.tsx", originalComponent)

	// helper() is gone from the candidate.
	candidate := "export default function Profile() {\n  return <div/>;\n}\n"

	ok, err := applier.ApplyFix(context.Background(), "src/Profile.tsx", []byte(candidate), "other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApplyFix_AcceptsFunctionSuperset(t *testing.T) {
	applier, dir := newTestApplier(t)
	writeSource(t, dir, "src/Profile.tsx", originalComponent)

	candidate := `export default function Profile() {
  return <div/>;
}

function helper() {
  return 1;
}

const extra = () => 2;
`

	ok, err := applier.ApplyFix(context.Background(), "src/Profile.tsx", []byte(candidate), "other")
	require.NoError(t, err)
	assert.True(t, ok)

	content, err := os.ReadFile(filepath.Join(dir, "src/Profile.tsx"))
	require.NoError(t, err)
	assert.Equal(t, candidate, string(content))
	assert.Equal(t, []string{"src/Profile.tsx"}, applier.Modified())
}

func TestApplyFix_ArrowFunctionsCount(t *testing.T) {
	applier, dir := newTestApplier(t)
	writeSource(t, dir, "src/util.ts", "export const formatName = (n: string) => n.trim();\n")

	// The arrow binding is dropped; the fix must be rejected.
	ok, err := applier.ApplyFix(context.Background(), "src/util.ts", []byte("export const other = 1;\n"), "other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApplyFix_ComponentsCategoryRequiresDirective(t *testing.T) {
	applier, dir := newTestApplier(t)
	writeSource(t, dir, "src/Counter.tsx", "export default function Counter() {\n  return null;\n}\n")

	hookNoDirective := "export default function Counter() {\n  const [n, setN] = useState(0);\n  return <button>{n}</button>;\n}\n"
	ok, err := applier.ApplyFix(context.Background(), "src/Counter.tsx", []byte(hookNoDirective), "components")
	require.NoError(t, err)
	assert.False(t, ok, "hook invocation without directive must be rejected")

	withDirective := "\"use client\";\n\n" + hookNoDirective
	ok, err = applier.ApplyFix(context.Background(), "src/Counter.tsx", []byte(withDirective), "components")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestApplyFix_HookWithoutDirectiveAllowedOutsideComponentsCategory(t *testing.T) {
	applier, dir := newTestApplier(t)
	writeSource(t, dir, "src/Counter.tsx", "export default function Counter() {\n  return null;\n}\n")

	candidate := "export default function Counter() {\n  const [n, setN] = useState(0);\n  return <button>{n}</button>;\n}\n"
	ok, err := applier.ApplyFix(context.Background(), "src/Counter.tsx", []byte(candidate), "routing")
	require.NoError(t, err)
	assert.True(t, ok, "the directive check is specific to the components category")
}

func TestApplyFix_BacksUpBeforeWriting(t *testing.T) {
	applier, dir := newTestApplier(t)
	writeSource(t, dir, "src/Profile.tsx", originalComponent)

	candidate := originalComponent + "\nfunction added() { return 3; }\n"
	ok, err := applier.ApplyFix(context.Background(), "src/Profile.tsx", []byte(candidate), "other")
	require.NoError(t, err)
	require.True(t, ok)

	pre, err := applier.Backups().LatestFor("src/Profile.tsx")
	require.NoError(t, err)
	assert.Equal(t, originalComponent, string(pre))
}

func TestRollbackAll(t *testing.T) {
	applier, dir := newTestApplier(t)
	writeSource(t, dir, "src/Profile.tsx", originalComponent)

	candidate := originalComponent + "\nfunction added() { return 3; }\n"
	ok, err := applier.ApplyFix(context.Background(), "src/Profile.tsx", []byte(candidate), "other")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, applier.RollbackAll())

	content, err := os.ReadFile(filepath.Join(dir, "src/Profile.tsx"))
	require.NoError(t, err)
	assert.Equal(t, originalComponent, string(content))
	assert.Empty(t, applier.Modified(), "rollback clears the modified set")
}
