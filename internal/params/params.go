// Package params defines the request a data table hands to its fetch
// collaborator: which page, how sorted, and which filters apply.
package params

import (
	"errors"
	"slices"
)

// PageSizes are the page sizes a table offers.
var PageSizes = []int{10, 25, 50}

// DefaultPageSize is the page size a freshly mounted table starts with.
const DefaultPageSize = 10

// ErrInvalidParams is returned when decoded params violate the model.
var ErrInvalidParams = errors.New("invalid request params")

// SortRule orders the result set by one column.
type SortRule struct {
	ColumnID string `json:"id"`
	Desc     bool   `json:"desc"`
}

// Filter restricts one column to a value.
type Filter struct {
	ColumnID string      `json:"id"`
	Value    FilterValue `json:"value"`
}

// RequestParams is a "fetch page N, filtered, sorted like this" request.
// SortBy holds at most one rule; that is table policy, not a type constraint.
type RequestParams struct {
	PageIndex int        `json:"pageIndex"`
	PageSize  int        `json:"pageSize"`
	SortBy    []SortRule `json:"sortBy"`
	Filters   []Filter   `json:"filters"`
}

// Default returns the params a table is mounted with.
func Default() RequestParams {
	return RequestParams{PageIndex: 0, PageSize: DefaultPageSize}
}

// Clone returns a copy that shares no slices with p.
func (p RequestParams) Clone() RequestParams {
	out := p
	out.SortBy = slices.Clone(p.SortBy)
	if p.Filters != nil {
		out.Filters = make([]Filter, len(p.Filters))
		for i, f := range p.Filters {
			out.Filters[i] = Filter{ColumnID: f.ColumnID, Value: cloneValue(f.Value)}
		}
	}
	return out
}

// Filter returns the value filtering columnID, or nil.
func (p RequestParams) Filter(columnID string) FilterValue {
	for _, f := range p.Filters {
		if f.ColumnID == columnID {
			return f.Value
		}
	}
	return nil
}

// Committable reports whether every filter in p may be sent to a fetch.
// Params without filters are always committable.
func (p RequestParams) Committable() bool {
	for _, f := range p.Filters {
		if f.Value == nil || !f.Value.Committable() {
			return false
		}
	}
	return true
}

// Equal reports whether a and b describe the same request.
func Equal(a, b RequestParams) bool {
	if a.PageIndex != b.PageIndex || a.PageSize != b.PageSize {
		return false
	}
	if !slices.Equal(a.SortBy, b.SortBy) {
		return false
	}
	return FiltersEqual(a.Filters, b.Filters)
}

// FiltersEqual compares two filter lists entry by entry, in order.
func FiltersEqual(a, b []Filter) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ColumnID != b[i].ColumnID || !ValuesEqual(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	return slices.Contains(PageSizes, n)
}

// TotalPageCount is the number of pages totalRecords spans. Zero records
// means zero pages, not one empty page.
func TotalPageCount(totalRecords, pageSize int) int {
	if totalRecords <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalRecords + pageSize - 1) / pageSize
}

// Key is a stable string identifying p, suitable as a cache key.
func (p RequestParams) Key() string {
	return p.Encode().Encode()
}
