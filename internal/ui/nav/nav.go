// Package nav renders the sidebar navigation tree and tracks which
// submenus are open.
package nav

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Item is a navigation node. An item with Children is a branch; Enter
// toggles it. Otherwise it is a leaf that follows Link. Action, when set,
// runs on Enter for either kind.
type Item struct {
	Title    string
	Icon     string
	Link     string
	Action   func() tea.Cmd
	Children []Item
}

// IsBranch reports whether the item has a submenu.
func (it Item) IsBranch() bool { return len(it.Children) > 0 }

// Section is a labelled group of top-level items. Sections after the
// first are separated by a rule.
type Section struct {
	Label string
	Items []Item
}

// Policy controls how sibling submenus interact.
type Policy int

const (
	// SingleOpen keeps at most one submenu open per level.
	SingleOpen Policy = iota
	// MultiOpen lets any number of siblings stay open.
	MultiOpen
)

// Entry is one visible row of the tree.
type Entry struct {
	Item  Item
	Depth int
	// ID is the slash-joined path of titles from the root.
	ID string
}

// Menu is the navigation tree plus its open set and cursor. Nodes are
// identified by their path of titles, so sibling titles must be unique.
type Menu struct {
	sections []Section
	policy   Policy
	open     map[string]bool
	cursor   int
	focused  bool
}

// Option configures a Menu.
type Option func(*Menu)

// WithPolicy sets the sibling policy. The default is SingleOpen.
func WithPolicy(p Policy) Option {
	return func(m *Menu) { m.policy = p }
}

// New returns a Menu with every submenu closed.
func New(sections []Section, opts ...Option) *Menu {
	m := &Menu{sections: sections, open: make(map[string]bool)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsOpen reports whether the branch at id shows its children.
func (m *Menu) IsOpen(id string) bool { return m.open[id] }

// Toggle opens or closes the branch at id. Closing a branch also closes
// everything beneath it. It reports false if id is not a branch.
func (m *Menu) Toggle(id string) bool {
	siblings, ok := m.siblingsOf(id)
	if !ok {
		return false
	}
	if m.open[id] {
		m.closeSubtree(id)
		return true
	}
	if m.policy == SingleOpen {
		parent := parentOf(id)
		for _, s := range siblings {
			if sid := join(parent, s.Title); sid != id && s.IsBranch() {
				m.closeSubtree(sid)
			}
		}
	}
	m.open[id] = true
	return true
}

func (m *Menu) closeSubtree(id string) {
	for k := range m.open {
		if k == id || strings.HasPrefix(k, id+"/") {
			delete(m.open, k)
		}
	}
}

// siblingsOf finds the branch at id and returns the level it lives on.
func (m *Menu) siblingsOf(id string) ([]Item, bool) {
	for _, sec := range m.sections {
		if level, ok := findBranch(sec.Items, "", id); ok {
			return level, true
		}
	}
	return nil, false
}

func findBranch(level []Item, prefix, id string) ([]Item, bool) {
	for _, it := range level {
		itID := join(prefix, it.Title)
		if itID == id {
			return level, it.IsBranch()
		}
		if strings.HasPrefix(id, itID+"/") {
			return findBranch(it.Children, itID, id)
		}
	}
	return nil, false
}

func join(parent, title string) string {
	if parent == "" {
		return title
	}
	return parent + "/" + title
}

func parentOf(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[:i]
	}
	return ""
}

// Visible lists the rows a sidebar shows, in order. A collapsed sidebar
// shows only top-level items.
func (m *Menu) Visible(collapsed bool) []Entry {
	var out []Entry
	for _, sec := range m.sections {
		out = m.appendVisible(out, sec.Items, "", 0, collapsed)
	}
	return out
}

func (m *Menu) appendVisible(out []Entry, level []Item, prefix string, depth int, collapsed bool) []Entry {
	for _, it := range level {
		id := join(prefix, it.Title)
		out = append(out, Entry{Item: it, Depth: depth, ID: id})
		if it.IsBranch() && m.open[id] && !collapsed {
			out = m.appendVisible(out, it.Children, id, depth+1, collapsed)
		}
	}
	return out
}

// Focus sets whether the cursor is drawn.
func (m *Menu) Focus(focused bool) { m.focused = focused }

// Focused reports whether the menu has focus.
func (m *Menu) Focused() bool { return m.focused }

// Cursor is the index of the selected row in Visible.
func (m *Menu) Cursor() int { return m.cursor }

// Move shifts the cursor by delta, clamped to the visible rows.
func (m *Menu) Move(delta int, collapsed bool) {
	n := len(m.Visible(collapsed))
	m.cursor += delta
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Selected returns the row under the cursor.
func (m *Menu) Selected(collapsed bool) (Entry, bool) {
	rows := m.Visible(collapsed)
	if m.cursor < 0 || m.cursor >= len(rows) {
		return Entry{}, false
	}
	return rows[m.cursor], true
}

// Activate runs the selected row: its Action, if any, then a toggle for
// branches. It returns the link to follow for leaves.
func (m *Menu) Activate(collapsed bool) (link string, cmd tea.Cmd) {
	e, ok := m.Selected(collapsed)
	if !ok {
		return "", nil
	}
	if e.Item.Action != nil {
		cmd = e.Item.Action()
	}
	if e.Item.IsBranch() {
		// Collapsed sidebars never show submenus.
		if !collapsed {
			m.Toggle(e.ID)
		}
		return "", cmd
	}
	return e.Item.Link, cmd
}

var (
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("103"))
	itemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62"))
	ruleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("24"))
)

// Render draws the sidebar width cells wide. The row whose Link equals
// currentLink is highlighted as active.
func (m *Menu) Render(width int, collapsed bool, currentLink string) string {
	var lines []string
	row := 0
	for i, sec := range m.sections {
		if len(sec.Items) == 0 {
			continue
		}
		if i > 0 {
			lines = append(lines, ruleStyle.Render(strings.Repeat("╌", max(width, 1))))
		}
		if sec.Label != "" && !collapsed {
			lines = append(lines, labelStyle.Render(fit(strings.ToUpper(sec.Label), width)))
		}
		for _, e := range m.appendVisible(nil, sec.Items, "", 0, collapsed) {
			lines = append(lines, m.renderEntry(e, row, width, collapsed, currentLink))
			row++
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Menu) renderEntry(e Entry, row, width int, collapsed bool, currentLink string) string {
	icon := e.Item.Icon
	if icon == "" {
		icon = "•"
	}
	var text string
	if collapsed {
		text = icon
	} else {
		text = strings.Repeat("  ", e.Depth) + icon + " " + e.Item.Title
		if e.Item.IsBranch() {
			arrow := "▸"
			if m.open[e.ID] {
				arrow = "▾"
			}
			text = fit(text, width-2) + " " + arrow
		}
	}
	text = fit(text, width)

	style := itemStyle
	switch {
	case m.focused && row == m.cursor:
		style = cursorStyle
	case e.Item.Link != "" && e.Item.Link == currentLink:
		style = activeStyle
	}
	return style.Render(text)
}

// fit truncates or pads s to exactly width cells.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}
