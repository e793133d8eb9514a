package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/dashtable/internal/fetch"
	"github.com/abelbrown/dashtable/internal/params"
)

// ErrUnknownColumn is returned for sorts or filters on a column the
// orders collection does not expose. It also matches params.ErrInvalidParams.
var ErrUnknownColumn = errors.New("unknown column")

type columnKind int

const (
	colText columnKind = iota
	colNumber
	colEnum
	colTime
)

type column struct {
	sql  string
	kind columnKind
}

// columns maps public column ids to SQL columns. Anything not listed
// here is rejected before it reaches a query.
var columns = map[string]column{
	"id":       {sql: "id", kind: colNumber},
	"customer": {sql: "customer", kind: colText},
	"status":   {sql: "status", kind: colEnum},
	"amount":   {sql: "amount", kind: colNumber},
	"created":  {sql: "created_at", kind: colTime},
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Fetch returns the page of orders described by p. The page query and the
// total count run concurrently. Out-of-range pages come back empty.
// Thread-safe: acquires read lock.
func (s *Store) Fetch(ctx context.Context, p params.RequestParams) (fetch.Page, error) {
	where, err := whereClause(p.Filters)
	if err != nil {
		return fetch.Page{}, err
	}
	order, err := orderBy(p.SortBy)
	if err != nil {
		return fetch.Page{}, err
	}
	size := p.PageSize
	if size <= 0 {
		size = params.DefaultPageSize
	}

	pageQuery := sq.Select("id", "customer", "status", "amount", "created_at").
		From("orders").
		Where(where).
		OrderBy(order...).
		Limit(uint64(size)).
		Offset(uint64(p.PageIndex) * uint64(size))
	countQuery := sq.Select("COUNT(*)").From("orders").Where(where)

	s.mu.RLock()
	defer s.mu.RUnlock()

	page := fetch.Page{PageIndex: p.PageIndex, PageSize: size}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query, args, err := countQuery.ToSql()
		if err != nil {
			return fmt.Errorf("build count: %w", err)
		}
		if err := s.db.QueryRowContext(gctx, query, args...).Scan(&page.TotalRecords); err != nil {
			return fmt.Errorf("count orders: %w", err)
		}
		return nil
	})
	var rows []fetch.Row
	g.Go(func() error {
		query, args, err := pageQuery.ToSql()
		if err != nil {
			return fmt.Errorf("build select: %w", err)
		}
		rows, err = s.queryRows(gctx, query, args...)
		if err != nil {
			return fmt.Errorf("select orders: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return fetch.Page{}, err
	}
	page.Rows = rows
	return page, nil
}

// queryRows executes a query and scans results into rows.
// Caller must hold s.mu (read lock is sufficient).
func (s *Store) queryRows(ctx context.Context, query string, args ...any) ([]fetch.Row, error) {
	rs, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	rows := []fetch.Row{}
	for rs.Next() {
		var o Order
		if err := rs.Scan(&o.ID, &o.Customer, &o.Status, &o.Amount, &o.Created); err != nil {
			return nil, err
		}
		rows = append(rows, o.Row())
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// Row renders o keyed by public column id.
func (o Order) Row() fetch.Row {
	return fetch.Row{
		"id":       o.ID,
		"customer": o.Customer,
		"status":   o.Status,
		"amount":   o.Amount,
		"created":  o.Created,
	}
}

func lookup(id string) (column, error) {
	c, ok := columns[id]
	if !ok {
		return column{}, fmt.Errorf("%w: %w %q", params.ErrInvalidParams, ErrUnknownColumn, id)
	}
	return c, nil
}

func whereClause(filters []params.Filter) (sq.And, error) {
	where := sq.And{}
	for _, f := range filters {
		c, err := lookup(f.ColumnID)
		if err != nil {
			return nil, err
		}
		switch v := f.Value.(type) {
		case params.TextValue:
			if c.kind != colText && c.kind != colEnum {
				return nil, fmt.Errorf("%w: text filter on %q", params.ErrInvalidParams, f.ColumnID)
			}
			// SQLite LIKE is case-insensitive for ASCII.
			where = append(where, sq.Expr(c.sql+` LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(string(v))+"%"))
		case params.RangeValue:
			if c.kind != colNumber && c.kind != colTime {
				return nil, fmt.Errorf("%w: range filter on %q", params.ErrInvalidParams, f.ColumnID)
			}
			if v.Min != nil {
				where = append(where, sq.GtOrEq{c.sql: rangeArg(c, *v.Min)})
			}
			if v.Max != nil {
				where = append(where, sq.LtOrEq{c.sql: rangeArg(c, *v.Max)})
			}
		case params.SelectValue:
			if len(v) > 0 {
				where = append(where, sq.Eq{c.sql: []string(v)})
			}
		case nil:
		default:
			return nil, fmt.Errorf("%w: unsupported filter %T", params.ErrInvalidParams, v)
		}
	}
	return where, nil
}

// rangeArg converts a numeric bound for c. Time ranges are unix seconds.
func rangeArg(c column, f float64) any {
	if c.kind == colTime {
		return time.Unix(int64(f), 0).UTC()
	}
	return f
}

func orderBy(rules []params.SortRule) ([]string, error) {
	var order []string
	for _, r := range rules {
		c, err := lookup(r.ColumnID)
		if err != nil {
			return nil, err
		}
		dir := " ASC"
		if r.Desc {
			dir = " DESC"
		}
		order = append(order, c.sql+dir)
		if c.sql == "id" {
			return order, nil
		}
	}
	// id breaks ties so paging is stable.
	return append(order, "id ASC"), nil
}
