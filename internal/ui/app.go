// Package ui provides the Bubble Tea TUI for dashtable: a navigation
// sidebar beside whichever data table is selected.
package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/dashtable/internal/debounce"
	"github.com/abelbrown/dashtable/internal/logging"
	"github.com/abelbrown/dashtable/internal/ui/nav"
	"github.com/abelbrown/dashtable/internal/ui/table"
)

const (
	sidebarWidth          = 24
	collapsedSidebarWidth = 3
)

// Page is a table reachable from the sidebar by Link.
type Page struct {
	Link  string
	Title string
	Table table.Model
}

// routedMsg carries a message produced by one page's commands back to
// that page. Each table numbers its fetches independently.
type routedMsg struct {
	link string
	msg  tea.Msg
}

// toggleSidebarMsg collapses or expands the sidebar.
type toggleSidebarMsg struct{}

// route tags every message cmd produces with link.
func route(link string, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		switch msg := cmd().(type) {
		case nil:
			return nil
		case tea.BatchMsg:
			cmds := make([]tea.Cmd, len(msg))
			for i, c := range msg {
				cmds[i] = route(link, c)
			}
			return tea.BatchMsg(cmds)
		default:
			return routedMsg{link: link, msg: msg}
		}
	}
}

type appKeys struct {
	Quit    key.Binding
	Focus   key.Binding
	Sidebar key.Binding
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
}

var defaultAppKeys = appKeys{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
	Sidebar: key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("C-b", "sidebar")),
	Up:      key.NewBinding(key.WithKeys("k", "up")),
	Down:    key.NewBinding(key.WithKeys("j", "down")),
	Enter:   key.NewBinding(key.WithKeys("enter", "l", "right")),
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold a data source. Tables fetch through their
// own commands.
type App struct {
	menu    *nav.Menu
	pages   map[string]*table.Model
	started map[string]bool
	current string

	focusSidebar bool
	collapsed    bool
	keys         appKeys

	width  int
	height int
	ready  bool
}

// NewApp creates an App showing the first page. Pages are listed under
// an "Orders" branch of the sidebar.
func NewApp(pages []Page, collapsed bool) App {
	a := App{
		pages:     make(map[string]*table.Model, len(pages)),
		started:   make(map[string]bool),
		collapsed: collapsed,
		keys:      defaultAppKeys,
	}
	children := make([]nav.Item, 0, len(pages))
	for i := range pages {
		p := pages[i]
		t := p.Table
		a.pages[p.Link] = &t
		children = append(children, nav.Item{Title: p.Title, Link: p.Link, Icon: "·"})
	}
	if len(pages) > 0 {
		a.current = pages[0].Link
	}

	a.menu = nav.New([]nav.Section{
		{Items: []nav.Item{
			{Title: "Orders", Icon: "≡", Children: children},
		}},
		{Label: "View", Items: []nav.Item{
			{Title: "Toggle sidebar", Icon: "↔", Action: func() tea.Cmd {
				return func() tea.Msg { return toggleSidebarMsg{} }
			}},
			{Title: "Quit", Icon: "×", Action: func() tea.Cmd { return tea.Quit }},
		}},
	})
	a.menu.Toggle("Orders")
	return a
}

// Init starts the first page.
func (a App) Init() tea.Cmd {
	return a.start(a.current)
}

// start runs a page's Init the first time it is shown.
func (a App) start(link string) tea.Cmd {
	t, ok := a.pages[link]
	if !ok || a.started[link] {
		return nil
	}
	a.started[link] = true
	logging.Debug("page started", "comp", "ui", "link", link)
	return route(link, t.Init())
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.resize()
		return a, nil

	case routedMsg:
		if c, ok := msg.msg.(table.CreateMsg); ok {
			return a.navigate(c.Link)
		}
		t, ok := a.pages[msg.link]
		if !ok {
			return a, nil
		}
		next, cmd := t.Update(msg.msg)
		*t = next
		return a, route(msg.link, cmd)

	case debounce.FireMsg:
		// The timer may belong to any page, so flush them all.
		msg.Run()
		var cmds []tea.Cmd
		for link, t := range a.pages {
			cmds = append(cmds, route(link, t.Flush()))
		}
		return a, tea.Batch(cmds...)

	case toggleSidebarMsg:
		a.collapsed = !a.collapsed
		a.resize()
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)
	}
	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := a.pages[a.current]
	if t != nil && t.Editing() && !a.focusSidebar {
		next, cmd := t.Update(msg)
		*t = next
		return a, route(a.current, cmd)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Focus):
		a.focusSidebar = !a.focusSidebar
		a.menu.Focus(a.focusSidebar)
		return a, nil
	case key.Matches(msg, a.keys.Sidebar):
		a.collapsed = !a.collapsed
		a.resize()
		return a, nil
	}

	if a.focusSidebar {
		return a.handleSidebarKey(msg)
	}
	if t == nil {
		return a, nil
	}
	next, cmd := t.Update(msg)
	*t = next
	return a, route(a.current, cmd)
}

func (a App) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Up):
		a.menu.Move(-1, a.collapsed)
	case key.Matches(msg, a.keys.Down):
		a.menu.Move(1, a.collapsed)
	case key.Matches(msg, a.keys.Enter):
		link, cmd := a.menu.Activate(a.collapsed)
		if link == "" {
			return a, cmd
		}
		next, start := a.navigate(link)
		return next, tea.Batch(cmd, start)
	}
	return a, nil
}

// navigate shows link, starting its page on first visit. Links without a
// page show a placeholder.
func (a App) navigate(link string) (App, tea.Cmd) {
	a.current = link
	a.focusSidebar = false
	a.menu.Focus(false)
	logging.Debug("navigate", "comp", "ui", "link", link)
	return a, a.start(link)
}

func (a *App) resize() {
	// Border, padding and the gap column.
	w := a.width - a.sidebarWidth() - 3
	h := a.height - 1
	for _, t := range a.pages {
		t.SetSize(w, h)
	}
}

func (a App) sidebarWidth() int {
	if a.collapsed {
		return collapsedSidebarWidth
	}
	return sidebarWidth
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	sw := a.sidebarWidth()
	brand := "dashtable"
	if a.collapsed {
		brand = "▦"
	}
	style := Sidebar
	if a.focusSidebar {
		style = SidebarFocused
	}
	sidebar := style.Height(a.height - 1).Render(
		Brand.Render(brand) + "\n" + a.menu.Render(sw, a.collapsed, a.current))

	var content string
	if t, ok := a.pages[a.current]; ok {
		content = t.View()
	} else {
		content = Placeholder.Render("Nothing here yet: " + a.current)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", content)
	return body + "\n" + a.statusBar()
}

func (a App) statusBar() string {
	hints := []string{
		StatusBarKey.Render("tab") + StatusBarText.Render(":focus"),
		StatusBarKey.Render("C-b") + StatusBarText.Render(":sidebar"),
		StatusBarKey.Render("q") + StatusBarText.Render(":quit"),
	}
	return StatusBar.Width(a.width).Render(strings.Join(hints, "  "))
}

// Current returns the link of the page on screen (for testing).
func (a App) Current() string {
	return a.current
}

// Page returns the table behind link (for testing).
func (a App) Page(link string) (table.Model, bool) {
	t, ok := a.pages[link]
	if !ok {
		return table.Model{}, false
	}
	return *t, true
}
