package apply

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Resolution is the decision for a file that already exists at a write
// target.
type Resolution int

const (
	ResolutionSkip Resolution = iota
	ResolutionOverwrite
	ResolutionShowDiff
	ResolutionCancel
)

// ConflictStrategy decides what happens when a planned write collides with
// an existing file.
type ConflictStrategy interface {
	Resolve(path string, existing, newer []byte) (Resolution, error)
}

var (
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("white")).Bold(true)
)

// SelectStrategy maps command flags to a strategy. --force wins over
// everything; combining it with --skip or --diff is an error.
func SelectStrategy(force, skip, diff bool) (ConflictStrategy, error) {
	if force && (skip || diff) {
		return nil, fmt.Errorf("--force cannot be combined with --skip or --diff")
	}
	switch {
	case force:
		return ForceStrategy{}, nil
	case skip:
		return SkipStrategy{}, nil
	case diff:
		return DiffStrategy{}, nil
	default:
		return InteractiveStrategy{}, nil
	}
}

// ForceStrategy always overwrites.
type ForceStrategy struct{}

func (ForceStrategy) Resolve(string, []byte, []byte) (Resolution, error) {
	return ResolutionOverwrite, nil
}

// SkipStrategy always keeps the existing file.
type SkipStrategy struct{}

func (SkipStrategy) Resolve(string, []byte, []byte) (Resolution, error) {
	return ResolutionSkip, nil
}

// DiffStrategy prints the diff, then hands off to the interactive menu.
type DiffStrategy struct{}

func (DiffStrategy) Resolve(path string, existing, newer []byte) (Resolution, error) {
	if diff := GenerateDiff(path, existing, newer); diff != "" {
		fmt.Println(diff)
	}
	return InteractiveStrategy{}.Resolve(path, existing, newer)
}

// InteractiveStrategy shows a keyboard menu. Choosing "show diff" prints the
// diff and re-opens the menu, so the user can review before deciding.
type InteractiveStrategy struct{}

func (InteractiveStrategy) Resolve(path string, existing, newer []byte) (Resolution, error) {
	for {
		info, err := os.Stat(path)
		if err != nil && !os.IsNotExist(err) {
			return ResolutionCancel, fmt.Errorf("stat %s: %w", path, err)
		}

		p := tea.NewProgram(newConflictMenu(path, info))
		final, err := p.Run()
		if err != nil {
			return ResolutionCancel, fmt.Errorf("showing conflict menu: %w", err)
		}

		menu := final.(conflictMenu)
		if menu.selected == nil {
			return ResolutionCancel, nil
		}
		if *menu.selected != ResolutionShowDiff {
			return *menu.selected, nil
		}
		if diff := GenerateDiff(path, existing, newer); diff != "" {
			fmt.Println(diff)
		}
	}
}

type conflictMenu struct {
	path     string
	info     os.FileInfo
	choices  []string
	cursor   int
	selected *Resolution
}

func newConflictMenu(path string, info os.FileInfo) conflictMenu {
	return conflictMenu{
		path: path,
		info: info,
		choices: []string{
			"Show diff and decide",
			"Skip (keep existing file)",
			"Overwrite (replace with planned content)",
			"Cancel migration",
		},
	}
}

func (m conflictMenu) Init() tea.Cmd { return nil }

func (m conflictMenu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case "enter":
			resolution := [...]Resolution{ResolutionShowDiff, ResolutionSkip, ResolutionOverwrite, ResolutionCancel}[m.cursor]
			m.selected = &resolution
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m conflictMenu) View() string {
	var b strings.Builder
	b.WriteString(warningStyle.Render("⚠ File conflict: ") + titleStyle.Render(m.path) + "\n")
	if m.info != nil {
		b.WriteString(mutedStyle.Render("    Last modified: ") + relativeTime(m.info.ModTime()) + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("    [↑/↓] Navigate    [Enter] Select    [q] Cancel") + "\n\n")
	for i, choice := range m.choices {
		if m.cursor == i {
			b.WriteString("    " + selectedStyle.Render("> "+choice) + "\n")
		} else {
			b.WriteString("      " + choice + "\n")
		}
	}
	return b.String()
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}
