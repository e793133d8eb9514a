package fetch

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/dashtable/internal/logging"
	"github.com/abelbrown/dashtable/internal/params"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultStaleAfter = 30 * time.Second
	defaultCacheSize  = 64
)

// LoadedMsg is sent when a fetch started by Query finishes.
type LoadedMsg struct {
	Seq  uint64
	Key  string
	Page Page
	Err  error
	Dur  time.Duration
}

type cached struct {
	page    Page
	fetched time.Time
}

// Query tracks one table's requests against a Source. Only the latest
// request's outcome is applied; older responses are cached but never
// replace what is on screen. Not goroutine-safe: call it from Update.
type Query struct {
	source     Source
	timeout    time.Duration
	staleAfter time.Duration
	cacheSize  int
	now        func() time.Time

	current params.RequestParams
	key     string
	seq     uint64

	cache map[string]cached
	order []string

	shown    *Page
	loading  bool
	previous bool
	err      error
}

// Option configures a Query.
type Option func(*Query)

// WithTimeout bounds each fetch.
func WithTimeout(d time.Duration) Option {
	return func(q *Query) { q.timeout = d }
}

// WithStaleAfter sets how long a cached page is served without a
// background refetch.
func WithStaleAfter(d time.Duration) Option {
	return func(q *Query) { q.staleAfter = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(q *Query) { q.now = now }
}

// NewQuery returns a Query with nothing requested yet.
func NewQuery(source Source, opts ...Option) *Query {
	q := &Query{
		source:     source,
		timeout:    defaultTimeout,
		staleAfter: defaultStaleAfter,
		cacheSize:  defaultCacheSize,
		now:        time.Now,
		cache:      make(map[string]cached),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Params is the request currently being reflected.
func (q *Query) Params() params.RequestParams {
	return q.current.Clone()
}

// Set replaces the current request. A fresh cached page is shown at once
// with no fetch; a stale one is shown while it refetches in the
// background. On a miss the last page shown stays up as previous data.
func (q *Query) Set(p params.RequestParams) tea.Cmd {
	q.current = p.Clone()
	q.key = p.Key()
	q.err = nil

	if c, ok := q.cache[q.key]; ok {
		page := c.page
		q.shown = &page
		q.loading, q.previous = false, false
		if q.now().Sub(c.fetched) < q.staleAfter {
			// Replies still in flight for earlier params must not land.
			q.seq++
			return nil
		}
		return q.start()
	}

	if q.shown != nil {
		q.previous = true
	} else {
		q.loading = true
	}
	return q.start()
}

// Retry refetches the current request, bypassing the cache.
func (q *Query) Retry() tea.Cmd {
	if q.key == "" {
		return nil
	}
	q.err = nil
	if q.shown == nil {
		q.loading = true
	}
	return q.start()
}

// Invalidate drops every cached page. The page on screen stays.
func (q *Query) Invalidate() {
	q.cache = make(map[string]cached)
	q.order = nil
}

// Handle applies msg. It reports whether the result on screen changed.
func (q *Query) Handle(msg LoadedMsg) bool {
	if msg.Err == nil {
		q.store(msg.Key, msg.Page)
	}
	if msg.Seq != q.seq {
		logging.Debug("stale fetch dropped", "comp", "fetch", "seq", msg.Seq, "current", q.seq)
		return false
	}
	q.loading, q.previous = false, false
	if msg.Err != nil {
		q.err = msg.Err
		logging.Warn("fetch failed", "comp", "fetch", "err", msg.Err, "dur", msg.Dur)
		return true
	}
	page := msg.Page
	q.shown = &page
	q.err = nil
	logging.Debug("fetch complete", "comp", "fetch", "rows", len(page.Rows), "total", page.TotalRecords, "dur", msg.Dur)
	return true
}

// Result is the current tuple for rendering.
func (q *Query) Result() Result {
	r := Result{IsLoading: q.loading, IsPreviousData: q.previous, Err: q.err}
	if q.shown != nil {
		r.Page = *q.shown
	}
	return r
}

func (q *Query) start() tea.Cmd {
	q.seq++
	seq, key, p := q.seq, q.key, q.current.Clone()
	source, timeout := q.source, q.timeout
	logging.Debug("fetch start", "comp", "fetch", "seq", seq, "key", key)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		start := time.Now()
		page, err := source.Fetch(ctx, p)
		return LoadedMsg{Seq: seq, Key: key, Page: page, Err: err, Dur: time.Since(start)}
	}
}

func (q *Query) store(key string, page Page) {
	if _, ok := q.cache[key]; !ok {
		q.order = append(q.order, key)
	}
	q.cache[key] = cached{page: page, fetched: q.now()}
	for len(q.order) > q.cacheSize {
		delete(q.cache, q.order[0])
		q.order = q.order[1:]
	}
}
