// Package tablesync merges a table's filter, sort and page state into one
// RequestParams and decides when that request may go upstream.
//
// Every mutation runs the same reconcile step:
//
//  1. If filters or sort changed, the page index returns to 0.
//  2. If any filter is present but not committable (a two-letter search,
//     a half-filled range) the state is held locally and nothing is sent.
//  3. Otherwise the params are handed to the setter, unless they equal
//     the last params handed over.
package tablesync

import (
	"slices"

	"github.com/abelbrown/dashtable/internal/logging"
	"github.com/abelbrown/dashtable/internal/params"
	"github.com/abelbrown/dashtable/internal/sortpage"
)

// Setter receives each propagated request. Each call replaces the
// previous params; the value is a copy the receiver may keep.
type Setter func(params.RequestParams)

// Controller owns a table's interaction state. It is not goroutine-safe;
// drive it from the UI loop.
type Controller struct {
	set     Setter
	initial params.RequestParams

	filters []params.Filter
	sort    sortpage.Sort
	page    sortpage.Page

	emitted    params.RequestParams
	hasEmitted bool
	suppressed bool
}

// New returns a controller seeded from initial. Nothing is propagated
// until the first mutation or Sync.
func New(initial params.RequestParams, set Setter) *Controller {
	c := &Controller{set: set, initial: initial.Clone()}
	c.load(initial)
	return c
}

func (c *Controller) load(p params.RequestParams) {
	c.filters = p.Clone().Filters
	c.sort = sortpage.SortFrom(p.SortBy)
	c.page = sortpage.NewPage(p.PageSize)
	c.page.GotoPage(p.PageIndex)
}

// State is the full local state, including filters that are not yet
// committable.
func (c *Controller) State() params.RequestParams {
	return params.RequestParams{
		PageIndex: c.page.Index,
		PageSize:  c.page.Size,
		SortBy:    c.sort.Rules(),
		Filters:   slices.Clone(c.filters),
	}.Clone()
}

// Emitted returns the last propagated params.
func (c *Controller) Emitted() (params.RequestParams, bool) {
	return c.emitted.Clone(), c.hasEmitted
}

// Suppressed reports whether the local state is being held back because a
// filter is incomplete.
func (c *Controller) Suppressed() bool {
	return c.suppressed
}

// Direction reports how column is sorted, for header indicators.
func (c *Controller) Direction(column string) sortpage.Direction {
	return c.sort.Direction(column)
}

// SetFilter sets or, for a nil v, removes the filter on column. New
// filters are appended; existing ones keep their position.
func (c *Controller) SetFilter(column string, v params.FilterValue) {
	before := slices.Clone(c.filters)
	i := slices.IndexFunc(c.filters, func(f params.Filter) bool { return f.ColumnID == column })
	switch {
	case v == nil && i >= 0:
		c.filters = slices.Delete(c.filters, i, i+1)
	case v == nil:
	case i >= 0:
		c.filters[i].Value = v
	default:
		c.filters = append(c.filters, params.Filter{ColumnID: column, Value: v})
	}
	if !params.FiltersEqual(before, c.filters) {
		c.page.GotoPage(0)
	}
	c.reconcile("filter", column)
}

// ClearFilter removes the filter on column.
func (c *Controller) ClearFilter(column string) {
	c.SetFilter(column, nil)
}

// ToggleSort cycles column's sort direction.
func (c *Controller) ToggleSort(column string) {
	c.sort.Toggle(column)
	c.page.GotoPage(0)
	c.reconcile("sort", column)
}

// GotoPage jumps to index without bounds checking.
func (c *Controller) GotoPage(index int) {
	c.page.GotoPage(index)
	c.reconcile("page", "")
}

// NextPage advances one page if pageCount allows.
func (c *Controller) NextPage(pageCount int) {
	if c.page.Next(pageCount) {
		c.reconcile("page", "")
	}
}

// PrevPage goes back one page.
func (c *Controller) PrevPage() {
	if c.page.Prev() {
		c.reconcile("page", "")
	}
}

// SetPageSize changes the page size and returns to the first page.
func (c *Controller) SetPageSize(n int) error {
	if err := c.page.SetPageSize(n); err != nil {
		return err
	}
	c.reconcile("page-size", "")
	return nil
}

// CyclePageSize moves to the next supported page size.
func (c *Controller) CyclePageSize() {
	c.page.CycleSize()
	c.reconcile("page-size", "")
}

// Reset restores the initial state.
func (c *Controller) Reset() {
	c.load(c.initial)
	c.reconcile("reset", "")
}

// Sync propagates the current state even if it equals the last emission,
// provided it is committable. Use it on mount and to retry.
func (c *Controller) Sync() bool {
	state := c.State()
	if !state.Committable() {
		c.suppressed = true
		return false
	}
	c.emit(state)
	return true
}

func (c *Controller) reconcile(cause, column string) {
	state := c.State()
	if !state.Committable() {
		c.suppressed = true
		logging.Debug("params suppressed", "comp", "tablesync", "cause", cause, "column", column, "filters", len(state.Filters))
		return
	}
	if c.hasEmitted && params.Equal(state, c.emitted) {
		c.suppressed = false
		return
	}
	c.emit(state)
}

func (c *Controller) emit(state params.RequestParams) {
	c.suppressed = false
	c.emitted = state
	c.hasEmitted = true
	logging.Debug("params emitted", "comp", "tablesync", "page", state.PageIndex, "size", state.PageSize, "sort", len(state.SortBy), "filters", len(state.Filters))
	if c.set != nil {
		c.set(state.Clone())
	}
}
