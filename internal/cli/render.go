package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorBorder = lipgloss.Color("#575653")
	colorText   = lipgloss.Color("#FFFCF0")
	colorMuted  = lipgloss.Color("#6F6E69")
	colorAccent = lipgloss.Color("#3AA99F")
	colorGreen  = lipgloss.Color("#879A39")
	colorRed    = lipgloss.Color("#D14D41")
	colorOrange = lipgloss.Color("#DA702C")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	labelStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	valueStyle  = lipgloss.NewStyle().Foreground(colorText)
	warnStyle   = lipgloss.NewStyle().Foreground(colorOrange)
	stageStyle  = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
)

// Field is one label/value line of a result box.
type Field struct {
	Label string
	Value string
}

// RenderResult draws the outcome of an operation as a bordered box, green
// for success and red for failure.
func RenderResult(title string, ok bool, fields ...Field) string {
	border := colorGreen
	if !ok {
		border = colorRed
	}

	width := 0
	for _, f := range fields {
		if len(f.Label) > width {
			width = len(f.Label)
		}
	}

	lines := []string{titleStyle.Render(title)}
	for _, f := range fields {
		label := fmt.Sprintf("%-*s", width, f.Label)
		lines = append(lines, labelStyle.Render(label)+"  "+valueStyle.Render(f.Value))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	return box.Render(strings.Join(lines, "\n"))
}

func RenderError(title string, err error) string {
	return RenderResult(title, false, Field{Label: "Kesalahan", Value: err.Error()})
}

func RenderStage(stage string) string {
	return stageStyle.Render("… " + stage)
}

func RenderWarning(msg string) string {
	return warnStyle.Render(msg)
}

// Table is a simple bordered table.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func RenderTable(t Table) string {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	cells := func(row []string, style lipgloss.Style) string {
		parts := make([]string, len(widths))
		for i, w := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			parts[i] = style.Render(fmt.Sprintf("%-*s", w, cell))
		}
		return strings.Join(parts, "  ")
	}

	lines := make([]string, 0, len(t.Rows)+2)
	lines = append(lines, cells(t.Headers, headerStyle))
	for _, row := range t.Rows {
		lines = append(lines, cells(row, valueStyle))
	}
	if len(t.Rows) == 0 {
		lines = append(lines, labelStyle.Render("(kosong)"))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	out := box.Render(strings.Join(lines, "\n"))
	if t.Title != "" {
		out = headerStyle.Render(t.Title) + "\n" + out
	}
	return out
}

func formatSize(mb float64) string {
	if mb < 0.01 {
		return fmt.Sprintf("%.1f KB", mb*1024)
	}
	return fmt.Sprintf("%.2f MB", mb)
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func yesNo(b bool) string {
	if b {
		return "ya"
	}
	return "tidak"
}

func RenderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Width(40).
		Align(lipgloss.Center).
		Render(titleStyle.Render(title))
}
