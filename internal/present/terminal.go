package present

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jcdickinson/docdeck/internal/docs"
	"github.com/jcdickinson/docdeck/internal/render"
	"github.com/jcdickinson/docdeck/internal/session"
)

var (
	brand = lipgloss.Color("212")
	muted = lipgloss.Color("245")

	selectedStyle = lipgloss.NewStyle().Foreground(brand).Bold(true)
	entryStyle    = lipgloss.NewStyle()
	titleStyle    = lipgloss.NewStyle().Foreground(brand).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(muted)
)

// Terminal draws pages and the section list for a terminal.
type Terminal struct {
	renderer *glamour.TermRenderer
}

// NewTerminal builds a terminal presenter. style is a glamour style name;
// "auto" or empty picks one from the terminal background.
func NewTerminal(wordWrap int, style string) (*Terminal, error) {
	if wordWrap <= 0 {
		wordWrap = 80
	}
	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wordWrap))
	if err != nil {
		return nil, fmt.Errorf("creating terminal renderer: %w", err)
	}
	return &Terminal{renderer: r}, nil
}

// Page renders a page through glamour. If glamour fails the Markdown is
// returned as-is.
func (t *Terminal) Page(p render.Page, opts Options) string {
	src := Markdown(p, Options{Base: opts.Base, Images: opts.Images})
	out, err := t.renderer.Render(src)
	if err != nil {
		return src
	}
	return out
}

// Sidebar draws the section list. Parents show an open or closed marker and
// the selected entry is highlighted.
func Sidebar(entries []session.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		marker := "  "
		if e.HasChildren {
			marker = "▸ "
			if e.Expanded {
				marker = "▾ "
			}
		}
		line := strings.Repeat("  ", e.Depth) + marker + e.Title
		style := entryStyle
		if e.Selected {
			style = selectedStyle
		}
		b.WriteString(style.Render(line))
		b.WriteString(dimStyle.Render("  " + string(e.ID)))
		b.WriteString("\n")
	}
	return b.String()
}

// Projects draws the project chooser.
func Projects(projects []docs.ProjectInfo) string {
	var b strings.Builder
	for _, p := range projects {
		b.WriteString(titleStyle.Render(p.Title))
		b.WriteString("\n")
		if p.Description != "" {
			b.WriteString("  " + p.Description + "\n")
		}
		b.WriteString(dimStyle.Render("  "+p.Path) + "\n")
	}
	return b.String()
}
