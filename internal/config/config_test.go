package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProjectConfig_Missing(t *testing.T) {
	cfg, err := LoadProjectConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &ProjectConfig{}, cfg)
}

func TestLoadProjectConfig_Valid(t *testing.T) {
	dir := t.TempDir()
	content := "convention: pages\nmodel: gemini-2.0-flash\nignore:\n  - fixtures\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigName), []byte(content), 0o644))

	cfg, err := LoadProjectConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "pages", cfg.Convention)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model)
	assert.Equal(t, []string{"fixtures"}, cfg.Ignore)
}

func TestLoadProjectConfig_InvalidConvention(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigName), []byte("convention: nuxt\n"), 0o644))

	_, err := LoadProjectConfig(dir)
	assert.Error(t, err)
}

func TestLoadProjectConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigName), []byte(":\n  - broken"), 0o644))

	_, err := LoadProjectConfig(dir)
	assert.Error(t, err)
}

func TestAPIKey_EnvWins(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")

	key, err := APIKey()
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}
