package apply

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateDiff_Identical(t *testing.T) {
	content := []byte("line 1\nline 2\nline 3\n")
	assert.Empty(t, GenerateDiff("a.txt", content, content))
}

func TestGenerateDiff_Addition(t *testing.T) {
	old := []byte("line 1\nline 2\nline 3\n")
	newer := []byte("line 1\nline 2\nline 2.5\nline 3\n")

	diff := GenerateDiff("a.txt", old, newer)

	assert.Contains(t, diff, "--- a.txt")
	assert.Contains(t, diff, "+++ a.txt")
	assert.Contains(t, diff, "+line 2.5")
	assert.Contains(t, diff, "@@")
}

func TestGenerateDiff_Removal(t *testing.T) {
	old := []byte("keep\ndrop\nkeep 2\n")
	newer := []byte("keep\nkeep 2\n")

	diff := GenerateDiff("a.txt", old, newer)
	assert.Contains(t, diff, "-drop")
	assert.NotContains(t, diff, "+drop")
}

func TestGenerateDiff_Binary(t *testing.T) {
	diff := GenerateDiff("bin", []byte{0, 1, 2}, []byte("text"))
	assert.Equal(t, "Binary files differ\n", diff)
}

func TestGenerateDiff_ContextLimited(t *testing.T) {
	var oldLines, newLines []string
	for i := 0; i < 50; i++ {
		oldLines = append(oldLines, "same")
		newLines = append(newLines, "same")
	}
	newLines[25] = "changed"

	diff := GenerateDiff("a.txt", []byte(strings.Join(oldLines, "\n")), []byte(strings.Join(newLines, "\n")))

	// Only the hunk around the change shows, not all 50 lines.
	assert.Less(t, strings.Count(diff, "\n"), 15)
	assert.Contains(t, diff, "+changed")
}

func TestMyersDiff_EditScriptShape(t *testing.T) {
	script := myersDiff([]string{"a", "b", "c"}, []string{"a", "x", "c"})

	var ops []diffOp
	for _, line := range script {
		ops = append(ops, line.op)
	}
	assert.Contains(t, ops, opRemoved)
	assert.Contains(t, ops, opAdded)
	assert.Contains(t, ops, opUnchanged)
}
