package ui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/dashtable/internal/debounce"
	"github.com/abelbrown/dashtable/internal/fetch"
	"github.com/abelbrown/dashtable/internal/params"
	"github.com/abelbrown/dashtable/internal/ui/table"
)

// recorder is a Source that records requests and serves one row.
type recorder struct {
	mu    sync.Mutex
	calls []params.RequestParams
}

func (r *recorder) Fetch(ctx context.Context, p params.RequestParams) (fetch.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, p)
	return fetch.Page{
		Rows:         []fetch.Row{{"id": int64(1), "customer": "Ada Lovelace", "status": "paid", "amount": 1234.5}},
		PageIndex:    p.PageIndex,
		PageSize:     p.PageSize,
		TotalRecords: 1,
	}, nil
}

func (r *recorder) last() params.RequestParams {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newTestApp(t *testing.T) (App, *recorder, *debounce.Manual) {
	t.Helper()
	src := &recorder{}
	clock := debounce.NewManual()
	app := NewApp(OrderPages(src, table.Options{Scheduler: clock}), false)
	m, _ := app.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return m.(App), src, clock
}

// drive executes cmd and delivers fetch results and create requests.
// Ticks are dropped.
func drive(a App, cmd tea.Cmd) App {
	if cmd == nil {
		return a
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			a = drive(a, c)
		}
	case routedMsg:
		switch msg.msg.(type) {
		case fetch.LoadedMsg, table.CreateMsg:
			m, next := a.Update(msg)
			a = drive(m.(App), next)
		}
	case toggleSidebarMsg:
		m, _ := a.Update(msg)
		a = m.(App)
	}
	return a
}

func keys(a App, ks ...string) (App, tea.Cmd) {
	var last tea.Cmd
	for _, k := range ks {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "ctrl+b":
			msg = tea.KeyMsg{Type: tea.KeyCtrlB}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, cmd := a.Update(msg)
		a = m.(App)
		last = cmd
	}
	return a, last
}

func TestAppInitFetchesFirstPage(t *testing.T) {
	app, src, _ := newTestApp(t)
	app = drive(app, app.Init())

	if src.count() != 1 {
		t.Fatalf("fetches = %d, want 1", src.count())
	}
	if app.Current() != "/orders" {
		t.Errorf("current = %q", app.Current())
	}
	page, _ := app.Page("/orders")
	if len(page.Result().Page.Rows) != 1 {
		t.Errorf("rows not delivered to the current page: %+v", page.Result())
	}
	if !strings.Contains(app.View(), "₦1,234.50") {
		t.Errorf("amount not formatted:\n%s", app.View())
	}
}

func TestAppNavigateToPreset(t *testing.T) {
	app, src, _ := newTestApp(t)
	app = drive(app, app.Init())

	// Orders, All orders, Paid orders.
	app, cmd := keys(app, "tab", "j", "j", "enter")
	app = drive(app, cmd)

	if app.Current() != "/orders/paid" {
		t.Fatalf("current = %q", app.Current())
	}
	want := []params.Filter{{ColumnID: "status", Value: params.SelectValue{"paid"}}}
	if src.count() != 2 || !params.FiltersEqual(src.last().Filters, want) {
		t.Errorf("preset fetch = %+v (%d calls)", src.last(), src.count())
	}
	paid, _ := app.Page("/orders/paid")
	if len(paid.Result().Page.Rows) != 1 {
		t.Error("result routed to the wrong page")
	}

	// Returning to a started page does not refetch.
	app, cmd = keys(app, "tab", "k", "enter")
	drive(app, cmd)
	if src.count() != 2 {
		t.Errorf("revisit fetched again: %d calls", src.count())
	}
}

func TestAppQuit(t *testing.T) {
	app, _, _ := newTestApp(t)
	_, cmd := keys(app, "q")
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestAppKeysGoToFilterInput(t *testing.T) {
	app, _, _ := newTestApp(t)
	app = drive(app, app.Init())

	app, _ = keys(app, "/")
	_, cmd := keys(app, "q")
	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Error("q should type into the filter, not quit")
		}
	}
}

func TestAppDebounceFlushesPages(t *testing.T) {
	app, src, clock := newTestApp(t)
	app = drive(app, app.Init())

	app, _ = keys(app, "l", "/", "a", "d", "a")
	clock.Advance(debounce.DefaultWait)
	m, cmd := app.Update(debounce.FireMsg{})
	app = drive(m.(App), cmd)

	want := []params.Filter{{ColumnID: "customer", Value: params.TextValue("ada")}}
	if src.count() != 2 || !params.FiltersEqual(src.last().Filters, want) {
		t.Errorf("after debounce: %+v (%d calls)", src.last(), src.count())
	}
}

func TestAppToggleSidebar(t *testing.T) {
	app, _, _ := newTestApp(t)
	if !strings.Contains(app.View(), "Paid orders") {
		t.Fatal("expanded sidebar should list pages")
	}
	app, _ = keys(app, "ctrl+b")
	v := app.View()
	if strings.Contains(v, "Paid orders") || !strings.Contains(v, "▦") {
		t.Errorf("collapsed sidebar:\n%s", v)
	}

	// The sidebar action toggles it back: View section, first item.
	app, cmd := keys(app, "tab", "j", "enter")
	app = drive(app, cmd)
	if !strings.Contains(app.View(), "Paid orders") {
		t.Error("toggle action should expand the sidebar")
	}
}

func TestAppViewNotReady(t *testing.T) {
	app := NewApp(nil, false)
	if app.View() != "Loading..." {
		t.Errorf("View = %q", app.View())
	}
	if app.Init() != nil {
		t.Error("no pages should mean no Init command")
	}
}

func TestAppIgnoresUnknownRoute(t *testing.T) {
	app, _, _ := newTestApp(t)
	_, cmd := app.Update(routedMsg{link: "/nope", msg: fetch.LoadedMsg{}})
	if cmd != nil {
		t.Error("unknown route should be dropped")
	}
}

func TestAppCreateActionNavigates(t *testing.T) {
	app, _, _ := newTestApp(t)
	app = drive(app, app.Init())
	if !strings.Contains(app.View(), "+ New order") {
		t.Fatal("order table should offer a create action")
	}

	app, cmd := keys(app, "c")
	app = drive(app, cmd)
	if app.Current() != NewOrderLink {
		t.Errorf("current = %q, want %q", app.Current(), NewOrderLink)
	}
	if !strings.Contains(app.View(), "Nothing here yet") {
		t.Errorf("unknown link should show a placeholder:\n%s", app.View())
	}
}
