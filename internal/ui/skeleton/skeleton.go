// Package skeleton draws placeholder table bodies shown while the first
// page of a table loads.
package skeleton

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	// DefaultRows and DefaultCols match a first page of ten orders.
	DefaultRows = 10
	DefaultCols = 5

	actionWidth = 5
	bar         = "▒"
	dot         = "●"
)

var style = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))

// Widths splits width among cols placeholder columns, leaving room for
// the trailing action column. Every third column gets half weight.
func Widths(cols, width int) []int {
	if cols <= 0 {
		return nil
	}
	avail := width - actionWidth
	total := 0
	for i := 0; i < cols; i++ {
		total += weight(i)
	}
	widths := make([]int, cols)
	used := 0
	for i := range widths {
		widths[i] = max(avail*weight(i)/total, 2)
		used += widths[i]
	}
	// Rounding remainder goes to the first column.
	if rest := avail - used; rest > 0 {
		widths[0] += rest
	}
	return widths
}

func weight(i int) int {
	if i%3 == 2 {
		return 1
	}
	return 2
}

// Table renders rows placeholder lines width cells wide.
func Table(rows, cols, width int) string {
	widths := Widths(cols, width)
	var line strings.Builder
	for _, w := range widths {
		line.WriteString(strings.Repeat(bar, w-1))
		line.WriteByte(' ')
	}
	line.WriteString(" " + dot + " " + dot + " ")
	row := style.Render(line.String())

	out := make([]string, rows)
	for i := range out {
		out[i] = row
	}
	return strings.Join(out, "\n")
}
