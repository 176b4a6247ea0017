package ux

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the terminal styles used by text output.
type Styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Label   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles returns the default palette, or unstyled text when noColor is
// set.
func NewStyles(noColor bool) *Styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return &Styles{
			Title:   plain,
			Header:  plain,
			Label:   plain,
			Success: plain,
			Warning: plain,
			Error:   plain,
			Muted:   plain,
		}
	}
	return &Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header:  lipgloss.NewStyle().Bold(true).Underline(true),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Table renders rows in aligned columns.
type Table struct {
	Headers []string
	Rows    [][]string
	// Empty is printed instead of the table when there are no rows.
	Empty string
	// Footer is printed under the rows, e.g. paging details.
	Footer string
}

// RenderText implements TextRenderer.
func (t Table) RenderText(s *Styles) string {
	if len(t.Rows) == 0 && t.Empty != "" {
		return s.Muted.Render(t.Empty)
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var b strings.Builder
	line := func(cells []string, style lipgloss.Style) {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if i == len(widths)-1 {
				pad = 0
			}
			parts[i] = style.Render(cell) + strings.Repeat(" ", pad)
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		b.WriteString("\n")
	}

	line(t.Headers, s.Header)
	for _, row := range t.Rows {
		line(row, lipgloss.NewStyle())
	}
	if t.Footer != "" {
		b.WriteString("\n")
		b.WriteString(s.Muted.Render(t.Footer))
	}
	return strings.TrimRight(b.String(), "\n")
}

// KeyValues renders label/value pairs, one per line.
type KeyValues struct {
	Title string
	Pairs [][2]string
}

// RenderText implements TextRenderer.
func (kv KeyValues) RenderText(s *Styles) string {
	width := 0
	for _, p := range kv.Pairs {
		if w := lipgloss.Width(p[0]); w > width {
			width = w
		}
	}

	var b strings.Builder
	if kv.Title != "" {
		b.WriteString(s.Title.Render(kv.Title))
		b.WriteString("\n")
	}
	for _, p := range kv.Pairs {
		label := p[0] + ":" + strings.Repeat(" ", width-lipgloss.Width(p[0]))
		b.WriteString(s.Label.Render(label))
		b.WriteString(" ")
		b.WriteString(p[1])
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

var _ TextRenderer = Table{}
var _ TextRenderer = KeyValues{}
