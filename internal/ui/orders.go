package ui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/abelbrown/dashtable/internal/fetch"
	"github.com/abelbrown/dashtable/internal/filter"
	"github.com/abelbrown/dashtable/internal/params"
	"github.com/abelbrown/dashtable/internal/store"
	"github.com/abelbrown/dashtable/internal/ui/money"
	"github.com/abelbrown/dashtable/internal/ui/table"
)

// OrderColumns describes the orders collection for a table.
func OrderColumns() []table.Column {
	return []table.Column{
		{ID: "id", Label: "#", Sortable: true, Filter: filter.KindRange, Width: 6},
		{ID: "customer", Label: "Customer", Sortable: true, Filter: filter.KindText, Width: 20},
		{ID: "status", Label: "Status", Sortable: true, Filter: filter.KindSelect, Options: store.Statuses, Width: 10},
		{ID: "amount", Label: "Amount", Sortable: true, Filter: filter.KindRange, Width: 14, Render: func(r fetch.Row) string {
			f, ok := toFloat(r["amount"])
			if !ok {
				return ""
			}
			return money.Format(f, money.DefaultCode)
		}},
		{ID: "created", Label: "Created", Sortable: true, Width: 16, Render: func(r fetch.Row) string {
			return formatTime(r["created"])
		}},
	}
}

// NewOrderLink is where the "New order" action leads.
const NewOrderLink = "/orders/new"

// OrderPages are the order views reachable from the sidebar.
func OrderPages(src fetch.Source, opts table.Options) []Page {
	views := []struct {
		link, title string
		status      string
	}{
		{"/orders", "All orders", ""},
		{"/orders/paid", "Paid orders", "paid"},
		{"/orders/refunded", "Refunds", "refunded"},
	}
	pages := make([]Page, 0, len(views))
	for _, v := range views {
		o := opts
		o.CreateLink = NewOrderLink
		o.Singular = "order"
		o.Initial = params.Default()
		o.Initial.PageSize = pageSizeOr(opts.Initial.PageSize)
		if v.status != "" {
			o.Initial.Filters = []params.Filter{{ColumnID: "status", Value: params.SelectValue{v.status}}}
		}
		pages = append(pages, Page{
			Link:  v.link,
			Title: v.title,
			Table: table.New(v.title, OrderColumns(), src, o),
		})
	}
	return pages
}

func pageSizeOr(n int) int {
	if params.ValidPageSize(n) {
		return n
	}
	return params.DefaultPageSize
}

// toFloat accepts the numeric types rows arrive with: float64 from JSON,
// native types from the local store.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func formatTime(v any) string {
	const layout = "2006-01-02 15:04"
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(layout)
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return t
		}
		return parsed.UTC().Format(layout)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
