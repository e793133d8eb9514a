package table

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the data table's key bindings.
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding // Previous column.
	Right key.Binding // Next column.

	Sort   key.Binding
	Filter key.Binding // Edit the column filter, or cycle a select filter.
	Clear  key.Binding
	Reset  key.Binding
	Done   key.Binding // Leave the filter input.

	NextPage  key.Binding
	PrevPage  key.Binding
	FirstPage key.Binding
	LastPage  key.Binding
	PageSize  key.Binding

	Retry   key.Binding
	Refresh key.Binding

	Create key.Binding // Disabled unless the table has a create link.
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "prev column"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "next column"),
	),
	Sort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sort"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/", "f"),
		key.WithHelp("/", "filter"),
	),
	Clear: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "clear filter"),
	),
	Reset: key.NewBinding(
		key.WithKeys("X"),
		key.WithHelp("X", "reset"),
	),
	Done: key.NewBinding(
		key.WithKeys("enter", "esc"),
		key.WithHelp("enter", "done"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("n", "]", "pgdown"),
		key.WithHelp("n", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("p", "[", "pgup"),
		key.WithHelp("p", "prev page"),
	),
	FirstPage: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "first page"),
	),
	LastPage: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "last page"),
	),
	PageSize: key.NewBinding(
		key.WithKeys("z"),
		key.WithHelp("z", "page size"),
	),
	Retry: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "retry"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("C-r", "refresh"),
	),
	Create: key.NewBinding(
		key.WithKeys("c", "+"),
		key.WithHelp("c", "new"),
	),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Sort, k.Filter, k.NextPage, k.PrevPage, k.PageSize, k.Retry, k.Create}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Sort, k.Filter, k.Clear, k.Reset},
		{k.NextPage, k.PrevPage, k.FirstPage, k.LastPage, k.PageSize},
		{k.Retry, k.Refresh, k.Create},
	}
}
