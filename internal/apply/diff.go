package apply

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const diffContextLines = 3

var (
	diffHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	hunkStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	addedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("22"))
	removedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("52"))
)

// GenerateDiff renders a unified diff between the existing file content and
// the planned content. Returns "" when the contents are identical.
func GenerateDiff(path string, old, newer []byte) string {
	if isBinary(old) || isBinary(newer) {
		return "Binary files differ\n"
	}

	oldLines := splitLines(string(old))
	newLines := splitLines(string(newer))

	script := myersDiff(oldLines, newLines)
	hunks := buildHunks(script, diffContextLines)
	if len(hunks) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(diffHeaderStyle.Render("--- "+path) + "\n")
	buf.WriteString(diffHeaderStyle.Render("+++ "+path) + "\n")

	width := terminalWidth()
	for _, h := range hunks {
		buf.WriteString(formatHunk(h, width))
	}
	return buf.String()
}

type diffOp int

const (
	opUnchanged diffOp = iota
	opAdded
	opRemoved
)

type diffLine struct {
	oldLine int // 1-based, 0 when added
	newLine int // 1-based, 0 when removed
	content string
	op      diffOp
}

type hunk struct {
	oldStart, oldCount int
	newStart, newCount int
	lines              []diffLine
}

// myersDiff computes the shortest edit script between two line slices.
// Myers, "An O(ND) Difference Algorithm and Its Variations" (1986).
func myersDiff(old, newer []string) []diffLine {
	n, m := len(old), len(newer)
	maxD := n + m

	v := map[int]int{1: 0}
	var trace []map[int]int

	for d := 0; d <= maxD; d++ {
		snapshot := make(map[int]int, len(v))
		for k, x := range v {
			snapshot[k] = x
		}
		trace = append(trace, snapshot)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[k-1] < v[k+1]) {
				x = v[k+1]
			} else {
				x = v[k-1] + 1
			}
			y := x - k
			for x < n && y < m && old[x] == newer[y] {
				x++
				y++
			}
			v[k] = x
			if x >= n && y >= m {
				return backtrack(trace, old, newer)
			}
		}
	}
	return backtrack(trace, old, newer)
}

func backtrack(trace []map[int]int, old, newer []string) []diffLine {
	var script []diffLine
	x, y := len(old), len(newer)

	for d := len(trace) - 1; d >= 0; d-- {
		v := trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && v[k-1] < v[k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := v[prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			script = append([]diffLine{{oldLine: x + 1, newLine: y + 1, content: old[x], op: opUnchanged}}, script...)
		}
		if d > 0 {
			if x == prevX {
				y--
				script = append([]diffLine{{newLine: y + 1, content: newer[y], op: opAdded}}, script...)
			} else {
				x--
				script = append([]diffLine{{oldLine: x + 1, content: old[x], op: opRemoved}}, script...)
			}
		}
	}
	return script
}

func buildHunks(lines []diffLine, context int) []hunk {
	var hunks []hunk
	var current *hunk

	for i, line := range lines {
		if line.op != opUnchanged {
			if current == nil {
				start := i - context
				if start < 0 {
					start = 0
				}
				current = &hunk{}
				current.lines = append(current.lines, lines[start:i]...)
			}
			current.lines = append(current.lines, line)
			continue
		}

		if current == nil {
			continue
		}
		current.lines = append(current.lines, line)

		// Close the hunk once enough trailing context has accumulated and
		// more changes follow.
		contextAfter := 1
		for j := i + 1; j < len(lines) && lines[j].op == opUnchanged; j++ {
			contextAfter++
		}
		if contextAfter > context*2 && i < len(lines)-1 {
			trim := contextAfter - context
			if trim > 0 && trim <= len(current.lines) {
				current.lines = current.lines[:len(current.lines)-trim]
			}
			finalizeHunk(current)
			hunks = append(hunks, *current)
			current = nil
		}
	}

	if current != nil {
		finalizeHunk(current)
		hunks = append(hunks, *current)
	}
	return hunks
}

func finalizeHunk(h *hunk) {
	for _, line := range h.lines {
		if line.oldLine > 0 && (h.oldStart == 0 || line.oldLine < h.oldStart) {
			h.oldStart = line.oldLine
		}
		if line.newLine > 0 && (h.newStart == 0 || line.newLine < h.newStart) {
			h.newStart = line.newLine
		}
		if line.op != opAdded {
			h.oldCount++
		}
		if line.op != opRemoved {
			h.newCount++
		}
	}
}

func formatHunk(h hunk, width int) string {
	var buf strings.Builder
	buf.WriteString(hunkStyle.Render(fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.oldStart, h.oldCount, h.newStart, h.newCount)) + "\n")

	for _, line := range h.lines {
		content := truncateLine(expandTabs(line.content), width-4)
		switch line.op {
		case opAdded:
			buf.WriteString(addedStyle.Render("+"+content) + "\n")
		case opRemoved:
			buf.WriteString(removedStyle.Render("-"+content) + "\n")
		default:
			buf.WriteString(" " + content + "\n")
		}
	}
	return buf.String()
}

func isBinary(data []byte) bool {
	n := len(data)
	if n > 8192 {
		n = 8192
	}
	return bytes.IndexByte(data[:n], 0) != -1
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func expandTabs(s string) string {
	const tabWidth = 4
	var buf strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			spaces := tabWidth - (col % tabWidth)
			buf.WriteString(strings.Repeat(" ", spaces))
			col += spaces
			continue
		}
		buf.WriteRune(r)
		col++
	}
	return buf.String()
}

func truncateLine(s string, maxWidth int) string {
	if maxWidth <= 3 {
		maxWidth = 80
	}
	if utf8.RuneCountInString(s) <= maxWidth {
		return s
	}
	return string([]rune(s)[:maxWidth-3]) + "..."
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
