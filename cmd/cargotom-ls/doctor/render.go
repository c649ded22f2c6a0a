// Package doctor renders diagnostic reports for the `cargotom-ls doctor`
// command and previews Analyzer hover content in a terminal, the one
// place in this repository that imports a markdown-to-terminal renderer
// — internal/analyzer only ever produces a Markdown string, on purpose,
// so it stays usable from both an editor's hover popup and this CLI.
package doctor

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// Status is one doctor check's outcome.
type Status int

const (
	StatusOK Status = iota
	StatusWarn
	StatusFail
)

// Check is one named doctor check result.
type Check struct {
	Name   string
	Status Status
	Detail string
}

// Report renders a list of checks as an aligned, colored terminal report.
// termenv.ColorProfile governs whether color codes are emitted at all,
// so piping `cargotom-ls doctor` output to a file degrades to plain text.
func Report(checks []Check) string {
	profile := termenv.ColorProfile()
	plain := profile == termenv.Ascii

	var b strings.Builder
	for _, c := range checks {
		marker, style := "?", dimStyle
		switch c.Status {
		case StatusOK:
			marker, style = "✓", okStyle
		case StatusWarn:
			marker, style = "!", warnStyle
		case StatusFail:
			marker, style = "✗", failStyle
		}
		if plain {
			fmt.Fprintf(&b, "[%s] %s", marker, c.Name)
		} else {
			fmt.Fprintf(&b, "%s %s", style.Render(marker), c.Name)
		}
		if c.Detail != "" {
			fmt.Fprintf(&b, " — %s", dimStyle.Render(c.Detail))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderMarkdown previews an Analyzer HoverContent string the way an
// editor's hover popup would show it, for `doctor --preview-hover`.
// Word-wrap width follows the actual terminal width when stdout is a
// TTY, falling back to 100 columns when piped (a redirected doctor run
// is the common CI/log-capture case).
func RenderMarkdown(markdown string) (string, error) {
	width := 100
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("doctor: build markdown renderer: %w", err)
	}
	return r.Render(markdown)
}
