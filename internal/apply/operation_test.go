package apply

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileOp_ConflictWithoutForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "next.config.js")
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0o644))

	op := &WriteFileOp{Path: path, Content: []byte("new")}
	err := op.Validate(context.Background(), false)
	assert.Error(t, err, "existing target without force is a conflict")

	assert.NoError(t, op.Validate(context.Background(), true), "force skips the conflict check")
}

func TestWriteFileOp_OverwriteFlagSkipsConflict(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tsconfig.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	op := &WriteFileOp{Path: path, Content: []byte(`{"merged": true}`), Overwrite: true}
	require.NoError(t, op.Validate(context.Background(), false))
	require.NoError(t, op.Execute(context.Background()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"merged": true}`, string(content))
}

func TestMoveFileOp(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "src", "Home.tsx")
	target := filepath.Join(dir, "app", "page.tsx")
	require.NoError(t, os.MkdirAll(filepath.Dir(source), 0o755))
	require.NoError(t, os.WriteFile(source, []byte("page"), 0o644))

	op := &MoveFileOp{Source: source, Target: target}
	require.NoError(t, op.Validate(context.Background(), false))
	require.NoError(t, op.Execute(context.Background()))

	_, err := os.Stat(source)
	assert.True(t, os.IsNotExist(err), "source should be gone")

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "page", string(content))
}

func TestMoveFileOp_MissingSource(t *testing.T) {
	dir := t.TempDir()
	op := &MoveFileOp{Source: filepath.Join(dir, "gone.tsx"), Target: filepath.Join(dir, "t.tsx")}
	assert.Error(t, op.Validate(context.Background(), false))
}

func TestExecute_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	var buf bytes.Buffer
	ops := []Operation{&WriteFileOp{Path: path, Content: []byte("x")}}
	require.NoError(t, Execute(context.Background(), ops, ExecuteOptions{DryRun: true, Writer: &buf}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, buf.String(), "[dry-run]")
}

func TestExecute_ValidatesEverythingFirst(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	bad := &MoveFileOp{Source: filepath.Join(dir, "missing.txt"), Target: filepath.Join(dir, "t.txt")}

	var buf bytes.Buffer
	ops := []Operation{&WriteFileOp{Path: good, Content: []byte("x")}, bad}
	err := Execute(context.Background(), ops, ExecuteOptions{Writer: &buf})
	require.Error(t, err)

	_, statErr := os.Stat(good)
	assert.True(t, os.IsNotExist(statErr), "no operation runs when any validation fails")
}
