// Package sortpage tracks a table's sort column and pagination position.
package sortpage

import (
	"errors"
	"fmt"

	"github.com/abelbrown/dashtable/internal/params"
)

// ErrPageSize is returned for page sizes outside params.PageSizes.
var ErrPageSize = errors.New("unsupported page size")

// Direction is a column's sort state.
type Direction int

const (
	None Direction = iota
	Asc
	Desc
)

func (d Direction) String() string {
	switch d {
	case Asc:
		return "asc"
	case Desc:
		return "desc"
	default:
		return "none"
	}
}

// Sort holds at most one sorted column.
type Sort struct {
	column string
	dir    Direction
}

// SortFrom restores sort state from params' first rule.
func SortFrom(rules []params.SortRule) Sort {
	if len(rules) == 0 {
		return Sort{}
	}
	s := Sort{column: rules[0].ColumnID, dir: Asc}
	if rules[0].Desc {
		s.dir = Desc
	}
	return s
}

// Toggle cycles column through unsorted, ascending and descending. A
// different column starts ascending and the previous one drops its sort.
func (s *Sort) Toggle(column string) {
	if column != s.column {
		s.column, s.dir = column, Asc
		return
	}
	switch s.dir {
	case None:
		s.dir = Asc
	case Asc:
		s.dir = Desc
	default:
		s.column, s.dir = "", None
	}
}

// Clear removes any sort.
func (s *Sort) Clear() {
	s.column, s.dir = "", None
}

// Direction reports how column is sorted.
func (s Sort) Direction(column string) Direction {
	if column == "" || column != s.column {
		return None
	}
	return s.dir
}

// Rules renders the sort as params. Empty when unsorted.
func (s Sort) Rules() []params.SortRule {
	if s.column == "" || s.dir == None {
		return nil
	}
	return []params.SortRule{{ColumnID: s.column, Desc: s.dir == Desc}}
}

// Page is the pagination position. The index is not bounded by the
// result set: an index past the end is the caller's to make, and comes
// back as an empty page.
type Page struct {
	Index int
	Size  int
}

// NewPage returns page 0 at size, or at params.DefaultPageSize when size
// is not supported.
func NewPage(size int) Page {
	if !params.ValidPageSize(size) {
		size = params.DefaultPageSize
	}
	return Page{Size: size}
}

// GotoPage jumps to index. Negative indices go to the first page.
func (p *Page) GotoPage(index int) {
	if index < 0 {
		index = 0
	}
	p.Index = index
}

// SetPageSize changes the page size and returns to the first page.
func (p *Page) SetPageSize(n int) error {
	if !params.ValidPageSize(n) {
		return fmt.Errorf("%w: %d", ErrPageSize, n)
	}
	p.Size = n
	p.Index = 0
	return nil
}

// Next advances one page when pageCount allows it.
func (p *Page) Next(pageCount int) bool {
	if p.Index+1 >= pageCount {
		return false
	}
	p.Index++
	return true
}

// Prev goes back one page, stopping at the first.
func (p *Page) Prev() bool {
	if p.Index == 0 {
		return false
	}
	p.Index--
	return true
}

// CycleSize moves to the next entry of params.PageSizes, wrapping.
func (p *Page) CycleSize() {
	next := params.PageSizes[0]
	for i, n := range params.PageSizes {
		if n == p.Size && i+1 < len(params.PageSizes) {
			next = params.PageSizes[i+1]
		}
	}
	_ = p.SetPageSize(next)
}
