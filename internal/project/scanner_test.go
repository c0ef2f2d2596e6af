package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestScan_MissingManifest(t *testing.T) {
	dir := t.TempDir()

	_, err := NewScanner(dir).Scan()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotAProject)
}

func TestScan_ClassifiesRoles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"devDependencies": {"vite": "^5.0.0"}}`)
	writeFile(t, dir, "vite.config.ts", "export default {}")
	writeFile(t, dir, "src/App.tsx", "export default function App() { return null }")
	writeFile(t, dir, ".env.local", "PORT=3000\n")
	writeFile(t, dir, "README.md", "# demo")

	snap, err := NewScanner(dir).Scan()
	require.NoError(t, err)

	assert.Equal(t, RoleManifest, snap.Files["package.json"].Role)
	assert.Equal(t, RoleBuildConfig, snap.Files["vite.config.ts"].Role)
	assert.Equal(t, RoleSource, snap.Files["src/App.tsx"].Role)
	assert.Equal(t, RoleEnv, snap.Files[".env.local"].Role)
	assert.Equal(t, RoleOther, snap.Files["README.md"].Role)
}

func TestScan_SkipsIgnoredDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{}`)
	writeFile(t, dir, "node_modules/react/index.js", "module.exports = {}")
	writeFile(t, dir, "dist/bundle.js", "")
	writeFile(t, dir, "src/main.tsx", "")

	snap, err := NewScanner(dir).Scan()
	require.NoError(t, err)

	assert.Contains(t, snap.Files, "src/main.tsx")
	assert.NotContains(t, snap.Files, "node_modules/react/index.js")
	assert.NotContains(t, snap.Files, "dist/bundle.js")
}

func TestScan_ExtraIgnoreDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{}`)
	writeFile(t, dir, "fixtures/big.js", "")

	snap, err := NewScanner(dir, "fixtures").Scan()
	require.NoError(t, err)

	assert.NotContains(t, snap.Files, "fixtures/big.js")
}

func TestScan_HonorsGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{}`)
	writeFile(t, dir, ".gitignore", "*.log\n")
	writeFile(t, dir, "debug.log", "noise")
	writeFile(t, dir, "src/index.ts", "")

	snap, err := NewScanner(dir).Scan()
	require.NoError(t, err)

	assert.NotContains(t, snap.Files, "debug.log")
	assert.Contains(t, snap.Files, "src/index.ts")
}

func TestScan_MalformedManifestIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", "{broken")

	snap, err := NewScanner(dir).Scan()
	require.NoError(t, err)

	assert.Nil(t, snap.Manifest)
	assert.Error(t, snap.ManifestErr)
}

func TestIsViteProject(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     bool
	}{
		{"vite in devDependencies", `{"devDependencies": {"vite": "^5.0.0"}}`, true},
		{"vite in dependencies", `{"dependencies": {"vite": "^5.0.0"}}`, true},
		{"no vite", `{"dependencies": {"react": "^18.2.0"}}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "package.json", tt.manifest)

			snap, err := NewScanner(dir).Scan()
			require.NoError(t, err)
			assert.Equal(t, tt.want, IsViteProject(snap))
		})
	}
}

func TestSnapshot_Content(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{}`)
	writeFile(t, dir, "src/main.tsx", "export {}")

	snap, err := NewScanner(dir).Scan()
	require.NoError(t, err)

	content, err := snap.Content("src/main.tsx")
	require.NoError(t, err)
	assert.Equal(t, "export {}", string(content))
}
