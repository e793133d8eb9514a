package table

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/dashtable/internal/debounce"
	"github.com/abelbrown/dashtable/internal/fetch"
	"github.com/abelbrown/dashtable/internal/filter"
	"github.com/abelbrown/dashtable/internal/params"
	"github.com/abelbrown/dashtable/internal/render"
)

var testColumns = []Column{
	{ID: "id", Label: "ID", Sortable: true, Filter: filter.KindRange, Width: 6},
	{ID: "customer", Label: "Customer", Sortable: true, Filter: filter.KindText, Width: 16},
	{ID: "status", Label: "Status", Filter: filter.KindSelect, Options: []string{"paid", "pending"}, Width: 8},
}

// fakeSource serves n numbered rows and records every request.
type fakeSource struct {
	mu    sync.Mutex
	n     int
	err   error
	calls []params.RequestParams
}

func (s *fakeSource) Fetch(ctx context.Context, p params.RequestParams) (fetch.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, p)
	if s.err != nil {
		return fetch.Page{}, s.err
	}
	page := fetch.Page{PageIndex: p.PageIndex, PageSize: p.PageSize, TotalRecords: s.n, Rows: []fetch.Row{}}
	for i := p.PageIndex * p.PageSize; i < s.n && i < (p.PageIndex+1)*p.PageSize; i++ {
		page.Rows = append(page.Rows, fetch.Row{"id": i + 1, "customer": "Ada Lovelace", "status": "paid"})
	}
	return page, nil
}

func (s *fakeSource) last() params.RequestParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

func (s *fakeSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newTestModel(src fetch.Source) (Model, *debounce.Manual) {
	clock := debounce.NewManual()
	m := New("Orders", testColumns, src, Options{Scheduler: clock})
	m.SetSize(100, 40)
	// A blinking cursor schedules real-time ticks.
	m.input.Cursor.SetMode(cursor.CursorStatic)
	return m, clock
}

// run executes cmd and feeds fetch results back into the model. Spinner
// ticks and cursor blinks are dropped.
func run(m Model, cmd tea.Cmd) Model {
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = run(m, c)
		}
	case fetch.LoadedMsg:
		var next tea.Cmd
		m, next = m.Update(msg)
		m = run(m, next)
	}
	return m
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		m = run(m, cmd)
	}
	return m
}

func TestInitFetchesFirstPage(t *testing.T) {
	src := &fakeSource{n: 23}
	m, _ := newTestModel(src)

	m = run(m, m.Init())

	if src.count() != 1 {
		t.Fatalf("fetches = %d, want 1", src.count())
	}
	if !params.Equal(src.last(), params.Default()) {
		t.Errorf("params = %+v", src.last())
	}
	if f := m.Frame(); f.State != render.Populated || f.Body != render.BodyRows {
		t.Errorf("frame = %+v", f)
	}
	if m.PageCount() != 3 {
		t.Errorf("PageCount = %d, want 3", m.PageCount())
	}
	if !strings.Contains(m.View(), "Showing 10 entries of 23 results") {
		t.Errorf("footer missing:\n%s", m.View())
	}
}

func TestLoadingShowsSpacer(t *testing.T) {
	src := &fakeSource{n: 23}
	m, _ := newTestModel(src)
	m.Init() // propagate without delivering the result

	f := m.Frame()
	if f.State != render.Loading || f.Body != render.BodySpacer || !f.Overlay {
		t.Errorf("frame = %+v", f)
	}
	if strings.Contains(m.View(), "No data") {
		t.Error("loading table should not show the empty placeholder")
	}
}

func TestPaging(t *testing.T) {
	src := &fakeSource{n: 23}
	m, _ := newTestModel(src)
	m = run(m, m.Init())

	m = press(m, "n", "n", "n")
	if got := m.Params().PageIndex; got != 2 {
		t.Errorf("PageIndex = %d, want 2 (bounded by page count)", got)
	}
	if len(m.Result().Page.Rows) != 3 {
		t.Errorf("last page rows = %d, want 3", len(m.Result().Page.Rows))
	}

	m = press(m, "z")
	p := m.Params()
	if p.PageSize != 25 || p.PageIndex != 0 {
		t.Errorf("after page size cycle: %+v", p)
	}
	if m.PageCount() != 1 {
		t.Errorf("PageCount = %d, want 1", m.PageCount())
	}

	m = press(m, "G")
	if m.Params().PageIndex != 0 {
		t.Errorf("G on a single page should stay on 0")
	}
}

func TestSortResetsPage(t *testing.T) {
	src := &fakeSource{n: 23}
	m, _ := newTestModel(src)
	m = run(m, m.Init())
	m = press(m, "n")

	m = press(m, "s")
	p := src.last()
	if p.PageIndex != 0 || !reflect.DeepEqual(p.SortBy, []params.SortRule{{ColumnID: "id"}}) {
		t.Errorf("after sort: %+v", p)
	}
	m = press(m, "s")
	if !src.last().SortBy[0].Desc {
		t.Errorf("second press should sort descending: %+v", src.last())
	}
	if !strings.Contains(m.View(), "▼") {
		t.Error("header should show descending indicator")
	}
}

func TestTextFilterDebounced(t *testing.T) {
	src := &fakeSource{n: 23}
	m, clock := newTestModel(src)
	m = run(m, m.Init())
	m = press(m, "l") // customer column

	m = press(m, "/", "a", "d", "a")
	if !m.Editing() {
		t.Fatal("filter input should have focus")
	}
	if src.count() != 1 {
		t.Fatalf("fetched before debounce elapsed: %d", src.count())
	}
	if clock.Pending() != 1 {
		t.Fatalf("pending timers = %d, want 1", clock.Pending())
	}

	// The Manual clock fires synchronously; flush what the commit queued.
	clock.Advance(debounce.DefaultWait)
	m, cmd := m.Update(debounce.FireMsg{})
	m = run(m, cmd)

	if src.count() != 2 {
		t.Fatalf("fetches = %d, want 2", src.count())
	}
	want := []params.Filter{{ColumnID: "customer", Value: params.TextValue("ada")}}
	if !params.FiltersEqual(src.last().Filters, want) {
		t.Errorf("filters = %+v", src.last().Filters)
	}

	m = press(m, "enter")
	if m.Editing() {
		t.Error("enter should leave the filter input")
	}
}

func TestShortTextFilterSuppressed(t *testing.T) {
	src := &fakeSource{n: 23}
	m, clock := newTestModel(src)
	m = run(m, m.Init())
	m = press(m, "l", "/", "a", "d")

	clock.Advance(debounce.DefaultWait)
	m, cmd := m.Update(debounce.FireMsg{})
	m = run(m, cmd)

	if src.count() != 1 {
		t.Errorf("two-letter search fetched: %d calls", src.count())
	}
	if !m.ctrl.Suppressed() {
		t.Error("controller should be holding the state")
	}
	if !strings.Contains(m.View(), "filter incomplete") {
		t.Error("view should flag the incomplete filter")
	}
}

func TestRangeFilterGate(t *testing.T) {
	src := &fakeSource{n: 23}
	m, _ := newTestModel(src)
	m = run(m, m.Init())

	m = press(m, "/", "0", ".", ".")
	if src.count() != 1 {
		t.Fatalf("half range fetched: %d calls", src.count())
	}
	m = press(m, "5")
	if src.count() != 2 {
		t.Fatalf("complete range did not fetch: %d calls", src.count())
	}
	lo, hi := src.last().Filters[0].Value.(params.RangeValue).Bounds()
	if lo != 0 || hi != 5 {
		t.Errorf("bounds = %v..%v", lo, hi)
	}
}

func TestSelectFilterCyclesAndClears(t *testing.T) {
	src := &fakeSource{n: 23}
	m, _ := newTestModel(src)
	m = run(m, m.Init())
	m = press(m, "l", "l", "/")

	if m.Editing() {
		t.Error("select filters have no text input")
	}
	want := []params.Filter{{ColumnID: "status", Value: params.SelectValue{"paid"}}}
	if !params.FiltersEqual(src.last().Filters, want) {
		t.Errorf("filters = %+v", src.last().Filters)
	}

	m = press(m, "x")
	if got := m.query.Params().Filters; len(got) != 0 {
		t.Errorf("clear left filters: %+v", got)
	}
}

func TestResetSinglePropagation(t *testing.T) {
	src := &fakeSource{n: 23}
	m, _ := newTestModel(src)
	m = run(m, m.Init())
	m = press(m, "s", "l", "l", "/", "n")
	before := src.count()

	m = press(m, "X")
	// The default page is still cached from Init, so at most one fetch.
	if src.count() > before+1 {
		t.Errorf("reset fetched %d times, want at most 1", src.count()-before)
	}
	if got := m.query.Params(); !params.Equal(got, params.Default()) {
		t.Errorf("after reset: %+v", got)
	}
	if m.Result().Page.PageIndex != 0 || m.Frame().State != render.Populated {
		t.Errorf("result after reset: %+v", m.Result())
	}
	if c, _ := m.Control("status"); c.Value() != nil {
		t.Errorf("status control not cleared: %v", c.Value())
	}
}

func TestErrorKeepsRowsAndRetries(t *testing.T) {
	src := &fakeSource{n: 23}
	m, _ := newTestModel(src)
	m = run(m, m.Init())

	src.mu.Lock()
	src.err = errors.New("connection refused")
	src.mu.Unlock()
	m = press(m, "n")

	f := m.Frame()
	if f.State != render.ErrorState || !f.Banner || f.Body != render.BodyRows {
		t.Errorf("frame = %+v", f)
	}
	if !strings.Contains(m.View(), "press R to retry") {
		t.Error("banner should offer retry")
	}

	src.mu.Lock()
	src.err = nil
	src.mu.Unlock()
	m = press(m, "R")
	if m.Frame().State != render.Populated || m.Result().Page.PageIndex != 1 {
		t.Errorf("after retry: %+v", m.Result())
	}
}

func TestEmptyResult(t *testing.T) {
	m, _ := newTestModel(&fakeSource{n: 0})
	m = run(m, m.Init())
	if f := m.Frame(); f.State != render.Empty || f.Body != render.BodyEmpty {
		t.Errorf("frame = %+v", f)
	}
	v := m.View()
	if !strings.Contains(v, "No data") || !strings.Contains(v, "Showing 0 entries of 0 results") {
		t.Errorf("view:\n%s", v)
	}
}

func TestRowCursor(t *testing.T) {
	m, _ := newTestModel(&fakeSource{n: 23})
	m = run(m, m.Init())
	m = press(m, "k", "j", "j")
	if m.row != 2 {
		t.Errorf("row = %d, want 2", m.row)
	}
	m = press(m, "G")
	if m.row != 2 {
		t.Errorf("row = %d after paging to a 3-row page, want 2", m.row)
	}
}

func TestInitialFiltersShownOnControls(t *testing.T) {
	src := &fakeSource{n: 23}
	initial := params.Default()
	initial.Filters = []params.Filter{{ColumnID: "status", Value: params.SelectValue{"paid"}}}
	m := New("Paid", testColumns, src, Options{Scheduler: debounce.NewManual(), Initial: initial})

	if src.count() != 0 {
		t.Fatalf("construction fetched: %d", src.count())
	}
	m = run(m, m.Init())
	if src.count() != 1 || !params.Equal(src.last(), initial) {
		t.Errorf("Init params = %+v", src.last())
	}
	if c, _ := m.Control("status"); c.Label() != "paid" {
		t.Errorf("status control label = %q", c.Label())
	}
}

func TestCreateAction(t *testing.T) {
	src := &fakeSource{n: 3}
	m := New("Orders", testColumns, src, Options{
		Scheduler:  debounce.NewManual(),
		CreateLink: "/orders/new",
		Singular:   "order",
	})
	m.SetSize(100, 40)
	m = run(m, m.Init())

	if v := m.View(); !strings.Contains(v, "+ New order") {
		t.Errorf("title line missing create action:\n%s", v)
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if cmd == nil {
		t.Fatal("c should return a command")
	}
	msg, ok := cmd().(CreateMsg)
	if !ok || msg.Link != "/orders/new" {
		t.Errorf("msg = %#v, want CreateMsg for /orders/new", msg)
	}
}

func TestCreateDisabledWithoutLink(t *testing.T) {
	src := &fakeSource{n: 3}
	m, _ := newTestModel(src)
	m = run(m, m.Init())

	if strings.Contains(m.View(), "New ") {
		t.Error("create action shown without a link")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")}); cmd != nil {
		if _, ok := cmd().(CreateMsg); ok {
			t.Error("c should do nothing without a create link")
		}
	}
}
