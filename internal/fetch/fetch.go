// Package fetch is the data-table's fetch collaborator: it turns
// RequestParams into pages and reports progress as the
// {data, isLoading, isPreviousData, error} tuple the table renders from.
package fetch

import (
	"context"

	"github.com/abelbrown/dashtable/internal/params"
)

// Row is one record, keyed by column id.
type Row map[string]any

// Page is one page of a remote collection.
type Page struct {
	Rows         []Row `json:"data"`
	PageIndex    int   `json:"pageIndex"`
	PageSize     int   `json:"pageSize"`
	TotalRecords int   `json:"totalRecords"`
}

// Source fetches the page described by p.
type Source interface {
	Fetch(ctx context.Context, p params.RequestParams) (Page, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, p params.RequestParams) (Page, error)

func (f SourceFunc) Fetch(ctx context.Context, p params.RequestParams) (Page, error) {
	return f(ctx, p)
}

// Result is what a table renders from.
type Result struct {
	Page           Page
	IsLoading      bool
	IsPreviousData bool
	Err            error
}

// TotalPageCount uses the requested page size rather than the one echoed
// by the page, which may be from a previous request.
func (r Result) TotalPageCount(pageSize int) int {
	return params.TotalPageCount(r.Page.TotalRecords, pageSize)
}
