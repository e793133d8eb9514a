// Package table is a server-driven data table for the terminal. Filter,
// sort and page state live in a tablesync.Controller; whenever that state
// is committable it is handed to a fetch.Query, and the table paints
// whatever the query reports.
package table

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/dashtable/internal/debounce"
	"github.com/abelbrown/dashtable/internal/fetch"
	"github.com/abelbrown/dashtable/internal/filter"
	"github.com/abelbrown/dashtable/internal/params"
	"github.com/abelbrown/dashtable/internal/render"
	"github.com/abelbrown/dashtable/internal/tablesync"
)

// Column describes one table column.
type Column struct {
	ID       string
	Label    string
	Sortable bool
	Filter   filter.Kind
	// Options are the choices of a select filter.
	Options []string
	// Width is the cell width in terminal columns, padding excluded.
	Width int
	// Render formats a cell. Nil prints row[ID].
	Render func(fetch.Row) string
}

func (c Column) cell(row fetch.Row) string {
	if c.Render != nil {
		return c.Render(row)
	}
	v, ok := row[c.ID]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Options configures a Model.
type Options struct {
	// Initial is the starting request. Zero value means params.Default().
	Initial params.RequestParams
	// Scheduler runs text filter debounce timers. Required; use a bound
	// debounce.Loop in a program and debounce.Manual in tests.
	Scheduler  debounce.Scheduler
	Debounce   time.Duration
	StaleAfter time.Duration
	Timeout    time.Duration

	// CreateLink, when set, adds a "New <Singular>" action to the title
	// line. Activating it sends a CreateMsg for the parent to route.
	CreateLink string
	Singular   string
}

// CreateMsg asks the parent to open the page behind Link.
type CreateMsg struct {
	Link string
}

// outbox collects fetch commands produced while the controller
// propagates params during one Update.
type outbox struct {
	query *fetch.Query
	muted bool
	cmds  []tea.Cmd
}

func (o *outbox) set(p params.RequestParams) {
	if o.muted {
		return
	}
	if cmd := o.query.Set(p); cmd != nil {
		o.cmds = append(o.cmds, cmd)
	}
}

func (o *outbox) flush() tea.Cmd {
	cmds := o.cmds
	o.cmds = nil
	return tea.Batch(cmds...)
}

// Model is the bubbletea model of one data table.
type Model struct {
	title    string
	columns  []Column
	controls map[string]filter.Control

	ctrl  *tablesync.Controller
	query *fetch.Query
	out   *outbox

	col     int // Selected column.
	row     int // Selected row on the current page.
	editing string
	input   textinput.Model

	spinner spinner.Model
	keys    KeyMap
	help    help.Model

	createLink string
	singular   string

	width  int
	height int
}

// New returns a table over src. Nothing is fetched until Init.
func New(title string, columns []Column, src fetch.Source, opts Options) Model {
	initial := opts.Initial
	if initial.PageSize == 0 {
		initial = params.Default()
	}

	var qopts []fetch.Option
	if opts.StaleAfter > 0 {
		qopts = append(qopts, fetch.WithStaleAfter(opts.StaleAfter))
	}
	if opts.Timeout > 0 {
		qopts = append(qopts, fetch.WithTimeout(opts.Timeout))
	}
	out := &outbox{query: fetch.NewQuery(src, qopts...)}
	ctrl := tablesync.New(initial, out.set)

	controls := make(map[string]filter.Control)
	for _, c := range columns {
		switch c.Filter {
		case filter.KindText:
			controls[c.ID] = filter.NewText(c.ID, ctrl.SetFilter, opts.Scheduler, opts.Debounce)
		case filter.KindRange:
			controls[c.ID] = filter.NewRange(c.ID, ctrl.SetFilter)
		case filter.KindSelect:
			controls[c.ID] = filter.NewSelect(c.ID, ctrl.SetFilter, c.Options)
		}
	}

	// Controls start from the initial filters without going upstream;
	// Init propagates.
	out.muted = true
	for _, f := range initial.Filters {
		if c, ok := controls[f.ColumnID]; ok {
			c.SetFilter(f.Value)
		}
	}
	out.muted = false

	ti := textinput.New()
	ti.Prompt = "/"
	ti.CharLimit = 64

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	keys := DefaultKeyMap
	singular := opts.Singular
	if singular == "" {
		singular = "item"
	}
	keys.Create.SetHelp("c", "new "+singular)
	keys.Create.SetEnabled(opts.CreateLink != "")

	return Model{
		title:    title,
		columns:  columns,
		controls: controls,
		ctrl:     ctrl,
		query:    out.query,
		out:      out,
		input:    ti,
		spinner:  s,
		keys:     keys,
		help:     help.New(),

		createLink: opts.CreateLink,
		singular:   singular,
	}
}

// Init propagates the initial params and starts the spinner.
func (m Model) Init() tea.Cmd {
	m.ctrl.Sync()
	return tea.Batch(m.out.flush(), m.spinner.Tick)
}

// Flush returns the fetches queued by filter commits that happened
// outside Update, e.g. a debounce.FireMsg run by a parent model.
func (m Model) Flush() tea.Cmd { return m.out.flush() }

// SetSize updates the table dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
}

// Editing reports whether a filter input has focus. Parents should pass
// every key through while it does.
func (m Model) Editing() bool { return m.editing != "" }

// Params is the table's full local state.
func (m Model) Params() params.RequestParams { return m.ctrl.State() }

// Result is what the table is currently painting from.
func (m Model) Result() fetch.Result { return m.query.Result() }

// Frame is the current render decision.
func (m Model) Frame() render.Frame {
	r := m.query.Result()
	return render.Decide(render.Input{
		IsLoading:      r.IsLoading,
		IsPreviousData: r.IsPreviousData,
		Err:            r.Err,
		RowCount:       len(r.Page.Rows),
	})
}

// PageCount is the number of pages at the requested page size.
func (m Model) PageCount() int {
	return m.query.Result().TotalPageCount(m.ctrl.State().PageSize)
}

// Control returns the filter control of column, if it has one.
func (m Model) Control(column string) (filter.Control, bool) {
	c, ok := m.controls[column]
	return c, ok
}

// SelectedColumn is the column that sort and filter keys act on.
func (m Model) SelectedColumn() Column { return m.columns[m.col] }

// Update handles messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case debounce.FireMsg:
		msg.Run()
		return m, m.out.flush()

	case fetch.LoadedMsg:
		if m.query.Handle(msg) {
			m.clampRow()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.editing != "" {
			return m.updateEditing(msg)
		}
		return m.handleKeyMsg(msg)
	}

	if m.editing != "" {
		// Cursor blinks.
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	col := m.columns[m.col]
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.row > 0 {
			m.row--
		}
	case key.Matches(msg, m.keys.Down):
		if m.row < len(m.query.Result().Page.Rows)-1 {
			m.row++
		}
	case key.Matches(msg, m.keys.Left):
		if m.col > 0 {
			m.col--
		}
	case key.Matches(msg, m.keys.Right):
		if m.col < len(m.columns)-1 {
			m.col++
		}

	case key.Matches(msg, m.keys.Sort):
		if col.Sortable {
			m.ctrl.ToggleSort(col.ID)
		}
	case key.Matches(msg, m.keys.Filter):
		return m.startEditing(col)
	case key.Matches(msg, m.keys.Clear):
		if c, ok := m.controls[col.ID]; ok {
			c.Clear()
		}
	case key.Matches(msg, m.keys.Reset):
		m.reset()

	case key.Matches(msg, m.keys.NextPage):
		m.ctrl.NextPage(m.PageCount())
	case key.Matches(msg, m.keys.PrevPage):
		m.ctrl.PrevPage()
	case key.Matches(msg, m.keys.FirstPage):
		m.ctrl.GotoPage(0)
	case key.Matches(msg, m.keys.LastPage):
		if n := m.PageCount(); n > 0 {
			m.ctrl.GotoPage(n - 1)
		}
	case key.Matches(msg, m.keys.PageSize):
		m.ctrl.CyclePageSize()

	case key.Matches(msg, m.keys.Retry):
		return m, m.query.Retry()
	case key.Matches(msg, m.keys.Refresh):
		m.query.Invalidate()
		return m, m.query.Retry()
	case key.Matches(msg, m.keys.Create):
		link := m.createLink
		return m, func() tea.Msg { return CreateMsg{Link: link} }
	}
	return m, m.out.flush()
}

func (m Model) startEditing(col Column) (Model, tea.Cmd) {
	c, ok := m.controls[col.ID]
	if !ok {
		return m, nil
	}
	switch c := c.(type) {
	case *filter.Select:
		c.Cycle()
		return m, m.out.flush()
	case *filter.Text:
		m.input.Placeholder = fmt.Sprintf("at least %d characters", params.MinTextLength)
		m.input.SetValue(c.Draft())
	default:
		m.input.Placeholder = "min..max"
		m.input.SetValue(c.Label())
	}
	m.editing = col.ID
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) updateEditing(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Done) {
		m.editing = ""
		m.input.Blur()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		switch c := m.controls[m.editing].(type) {
		case *filter.Text:
			c.Edit(v)
		case *filter.Range:
			c.ParseBounds(v)
		}
	}
	return m, tea.Batch(cmd, m.out.flush())
}

// reset clears every filter and restores the initial sort and page in a
// single propagation.
func (m *Model) reset() {
	m.out.muted = true
	for _, c := range m.controls {
		c.Clear()
	}
	m.ctrl.Reset()
	state := m.ctrl.State()
	for _, f := range state.Filters {
		if c, ok := m.controls[f.ColumnID]; ok {
			c.SetFilter(f.Value)
		}
	}
	m.out.muted = false
	m.ctrl.Sync()
	m.row = 0
}

func (m *Model) clampRow() {
	n := len(m.query.Result().Page.Rows)
	if m.row >= n {
		m.row = max(n-1, 0)
	}
}
