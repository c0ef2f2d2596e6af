package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `{
  "name": "demo",
  "version": "0.1.0",
  "private": true,
  "scripts": {
    "dev": "vite"
  },
  "dependencies": {
    "react": "^18.2.0"
  },
  "devDependencies": {
    "vite": "^5.0.0"
  },
  "browserslist": ["defaults"]
}`

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(sampleManifest))
	require.NoError(t, err)

	assert.Equal(t, "^18.2.0", m.Dependencies["react"])
	assert.Equal(t, "^5.0.0", m.DevDependencies["vite"])
	assert.Equal(t, "vite", m.Scripts["dev"])
	assert.Contains(t, m.Extra, "name")
	assert.Contains(t, m.Extra, "browserslist")
}

func TestParseManifest_Invalid(t *testing.T) {
	_, err := ParseManifest([]byte("{not json"))
	assert.Error(t, err)
}

func TestEncode_PreservesUnrelatedKeys(t *testing.T) {
	m, err := ParseManifest([]byte(sampleManifest))
	require.NoError(t, err)

	m.Dependencies["next"] = "^14.0.0"
	delete(m.DevDependencies, "vite")

	out, err := m.Encode()
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &decoded))

	assert.Contains(t, decoded, "name")
	assert.Contains(t, decoded, "version")
	assert.Contains(t, decoded, "private")
	assert.Contains(t, decoded, "browserslist")

	var deps map[string]string
	require.NoError(t, json.Unmarshal(decoded["dependencies"], &deps))
	assert.Equal(t, "^14.0.0", deps["next"])
	assert.Equal(t, "^18.2.0", deps["react"])
}

func TestEncode_KeepsTopLevelKeyOrder(t *testing.T) {
	m, err := ParseManifest([]byte(sampleManifest))
	require.NoError(t, err)

	out, err := m.Encode()
	require.NoError(t, err)

	text := string(out)
	nameIdx := strings.Index(text, `"name"`)
	scriptsIdx := strings.Index(text, `"scripts"`)
	depsIdx := strings.Index(text, `"dependencies"`)
	browserIdx := strings.Index(text, `"browserslist"`)

	require.NotEqual(t, -1, nameIdx)
	assert.Less(t, nameIdx, scriptsIdx, "name should come before scripts")
	assert.Less(t, scriptsIdx, depsIdx, "scripts should come before dependencies")
	assert.Less(t, depsIdx, browserIdx, "dependencies should come before browserslist")
}

func TestEncode_RoundTripStable(t *testing.T) {
	m, err := ParseManifest([]byte(sampleManifest))
	require.NoError(t, err)

	first, err := m.Encode()
	require.NoError(t, err)

	reparsed, err := ParseManifest(first)
	require.NoError(t, err)
	second, err := reparsed.Encode()
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second), "re-encoding should be byte-stable")
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	m, err := ParseManifest([]byte(sampleManifest))
	require.NoError(t, err)

	require.NoError(t, WriteManifest(dir, m))

	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	require.NoError(t, err)

	roundTrip, err := ParseManifest(data)
	require.NoError(t, err)
	assert.Equal(t, m.Dependencies, roundTrip.Dependencies)
}

func TestClone_Independent(t *testing.T) {
	m, err := ParseManifest([]byte(sampleManifest))
	require.NoError(t, err)

	clone := m.Clone()
	clone.Dependencies["next"] = "^14.0.0"
	delete(clone.Scripts, "dev")

	assert.NotContains(t, m.Dependencies, "next")
	assert.Contains(t, m.Scripts, "dev")
}
