package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/dashtable/internal/filter"
	"github.com/abelbrown/dashtable/internal/params"
	"github.com/abelbrown/dashtable/internal/render"
	"github.com/abelbrown/dashtable/internal/sortpage"
	"github.com/abelbrown/dashtable/internal/ui/skeleton"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Padding(0, 1)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Padding(0, 1)
	selectedHead  = headerStyle.Foreground(lipgloss.Color("212"))
	filterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1)
	staleStyle    = cellStyle.Foreground(lipgloss.Color("241"))
	cursorStyle   = cellStyle.Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62"))
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	bannerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Padding(0, 1)
	emptyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(1, 2)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 1)
	pageStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	currentPage   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62"))
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	createStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	pendingMarker = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("…")
)

// View renders the table shell, which is always drawn, plus whatever
// layers the current frame calls for.
func (m Model) View() string {
	frame := m.Frame()
	result := m.query.Result()
	state := m.ctrl.State()

	var sections []string
	sections = append(sections, m.titleLine(frame))
	if frame.Banner {
		sections = append(sections, bannerStyle.Render(
			fmt.Sprintf("Error: %v (press R to retry)", result.Err)))
	}
	sections = append(sections, m.grid(frame))

	switch frame.Body {
	case render.BodyEmpty:
		sections = append(sections, emptyStyle.Render("No data"))
	case render.BodySpacer:
		sections = append(sections, skeleton.Table(state.PageSize, len(m.columns), m.gridWidth()))
	}

	sections = append(sections, m.footer(state))
	if m.width > 0 {
		sections = append(sections, m.help.View(m.keys))
	}
	return strings.Join(sections, "\n")
}

func (m Model) titleLine(frame render.Frame) string {
	line := titleStyle.Render(m.title)
	if m.createLink != "" {
		line += " " + createStyle.Render("+ New "+m.singular)
	}
	if frame.Overlay {
		line += " " + m.spinner.View() + " Loading…"
	}
	if m.ctrl.Suppressed() {
		line += " " + pendingMarker + " filter incomplete"
	}
	return line
}

func (m Model) grid(frame render.Frame) string {
	headers := make([]string, len(m.columns))
	filters := make([]string, len(m.columns))
	for i, c := range m.columns {
		headers[i] = fit(c.Label+sortIndicator(m.ctrl.Direction(c.ID)), c.Width)
		filters[i] = fit(m.filterCell(c), c.Width)
	}

	rows := [][]string{filters}
	if frame.Body == render.BodyRows {
		for _, r := range m.query.Result().Page.Rows {
			cells := make([]string, len(m.columns))
			for i, c := range m.columns {
				cells[i] = fit(c.cell(r), c.Width)
			}
			rows = append(rows, cells)
		}
	}

	stale := frame.Overlay
	t := lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		BorderRow(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == lgtable.HeaderRow && col == m.col:
				return selectedHead
			case row == lgtable.HeaderRow:
				return headerStyle
			case row == 0:
				return filterStyle
			case row-1 == m.row && !stale:
				return cursorStyle
			case stale:
				return staleStyle
			default:
				return cellStyle
			}
		})
	return t.Render()
}

func (m Model) filterCell(c Column) string {
	if m.editing == c.ID {
		return m.input.View()
	}
	ctl, ok := m.controls[c.ID]
	if !ok {
		return ""
	}
	label := ctl.Label()
	if label == "" {
		switch c.Filter {
		case filter.KindSelect:
			return "any"
		case filter.KindRange:
			return "min..max"
		default:
			return "search"
		}
	}
	if t, ok := ctl.(*filter.Text); ok && t.Pending() {
		label += " " + pendingMarker
	}
	return label
}

func (m Model) footer(state params.RequestParams) string {
	result := m.query.Result()
	total := result.Page.TotalRecords
	count := m.PageCount()

	showing := footerStyle.Render(fmt.Sprintf("Showing %d entries of %d results", len(result.Page.Rows), total))
	size := footerStyle.Render(fmt.Sprintf("Rows per page: %d", state.PageSize))
	if count == 0 {
		return lipgloss.JoinHorizontal(lipgloss.Top, showing, size)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, showing, pager(state.PageIndex, count), size)
}

// pager renders "‹ 1 2 3 4 … 9 10 ›" with the selected page highlighted.
func pager(selected, count int) string {
	parts := []string{pageStyle.Render("‹")}
	for _, i := range PageWindow(selected, count, marginPages, rangePages) {
		switch {
		case i == Ellipsis:
			parts = append(parts, pageStyle.Render("…"))
		case i == selected:
			parts = append(parts, currentPage.Render(strconv.Itoa(i+1)))
		default:
			parts = append(parts, pageStyle.Render(strconv.Itoa(i+1)))
		}
	}
	parts = append(parts, pageStyle.Render("›"))
	return strings.Join(parts, " ")
}

func sortIndicator(d sortpage.Direction) string {
	switch d {
	case sortpage.Asc:
		return " ▲"
	case sortpage.Desc:
		return " ▼"
	default:
		return ""
	}
}

func (m Model) gridWidth() int {
	w := 1
	for _, c := range m.columns {
		w += c.Width + 3
	}
	return w
}

// fit truncates or pads s to exactly width cells.
func fit(s string, width int) string {
	if width <= 0 {
		return s
	}
	if strings.Contains(s, "\x1b") {
		// Already styled, e.g. the text input. Leave it to lipgloss.
		return s
	}
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}
