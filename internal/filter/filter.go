// Package filter provides per-column filter controls. Every control
// exposes the same capability: a current value and a way to set it. The
// synchronization controller never looks at the shape behind it.
package filter

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/abelbrown/dashtable/internal/debounce"
	"github.com/abelbrown/dashtable/internal/params"
)

// Kind identifies a control type.
type Kind int

const (
	KindNone Kind = iota
	KindText
	KindRange
	KindSelect
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindRange:
		return "range"
	case KindSelect:
		return "select"
	default:
		return "none"
	}
}

// SetFunc commits v as the filter for column. A nil v unsets the filter.
type SetFunc func(column string, v params.FilterValue)

// Control is a column filter bound to a SetFunc.
type Control interface {
	ColumnID() string
	Kind() Kind
	// Value is the committed value, nil when unset.
	Value() params.FilterValue
	// SetFilter commits v immediately.
	SetFilter(v params.FilterValue)
	// Clear unsets the filter immediately, cancelling any pending commit.
	Clear()
	// Label renders the control's current state for a filter row.
	Label() string
}

// Text is a free-text filter. Edits go to a local draft; the draft is
// committed once input pauses for Wait.
type Text struct {
	column    string
	set       SetFunc
	scheduler debounce.Scheduler
	wait      time.Duration

	draft     string
	committed params.FilterValue
	pending   debounce.Timer
}

// NewText returns a text filter for column. A zero wait uses
// debounce.DefaultWait.
func NewText(column string, set SetFunc, s debounce.Scheduler, wait time.Duration) *Text {
	if wait <= 0 {
		wait = debounce.DefaultWait
	}
	return &Text{column: column, set: set, scheduler: s, wait: wait}
}

func (t *Text) ColumnID() string          { return t.column }
func (t *Text) Kind() Kind                { return KindText }
func (t *Text) Value() params.FilterValue { return t.committed }

// Draft is the text currently in the input, committed or not.
func (t *Text) Draft() string { return t.draft }

// Pending reports whether a commit is scheduled.
func (t *Text) Pending() bool { return t.pending != nil }

// Edit replaces the draft and re-arms the debounce timer. The last edit
// inside the window wins.
func (t *Text) Edit(draft string) {
	t.draft = draft
	t.stop()
	t.pending = t.scheduler.AfterFunc(t.wait, t.fire)
}

func (t *Text) fire() {
	t.pending = nil
	if t.draft == "" {
		t.commit(nil)
		return
	}
	t.commit(params.TextValue(t.draft))
}

// SetFilter commits v now and syncs the draft to it.
func (t *Text) SetFilter(v params.FilterValue) {
	t.stop()
	if tv, ok := v.(params.TextValue); ok {
		t.draft = string(tv)
	} else {
		t.draft = ""
		v = nil
	}
	t.commit(v)
}

// Clear empties the draft and unsets the filter without waiting.
func (t *Text) Clear() {
	t.stop()
	t.draft = ""
	t.commit(nil)
}

func (t *Text) Label() string {
	return t.draft
}

func (t *Text) stop() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

func (t *Text) commit(v params.FilterValue) {
	if params.ValuesEqual(t.committed, v) {
		return
	}
	t.committed = v
	if t.set != nil {
		t.set(t.column, v)
	}
}

// Range is a numeric range filter. Each bound commits immediately; an
// incomplete range is held back by the controller, not here.
type Range struct {
	column string
	set    SetFunc
	value  params.RangeValue
	active bool
}

// NewRange returns a range filter for column.
func NewRange(column string, set SetFunc) *Range {
	return &Range{column: column, set: set}
}

func (r *Range) ColumnID() string { return r.column }
func (r *Range) Kind() Kind       { return KindRange }

func (r *Range) Value() params.FilterValue {
	if !r.active {
		return nil
	}
	return r.value
}

// SetMin sets the lower bound; nil removes it.
func (r *Range) SetMin(v *float64) {
	r.value.Min = v
	r.commit()
}

// SetMax sets the upper bound; nil removes it.
func (r *Range) SetMax(v *float64) {
	r.value.Max = v
	r.commit()
}

// ParseBounds sets both bounds from user input of the form "lo..hi",
// "lo.." or "..hi". Unparseable sides are treated as missing.
func (r *Range) ParseBounds(s string) {
	lo, hi, found := strings.Cut(s, "..")
	if !found {
		lo, hi = s, ""
	}
	r.value.Min = parseBound(lo)
	r.value.Max = parseBound(hi)
	r.commit()
}

func parseBound(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func (r *Range) SetFilter(v params.FilterValue) {
	rv, ok := v.(params.RangeValue)
	if !ok {
		r.Clear()
		return
	}
	r.value = rv
	r.commit()
}

func (r *Range) Clear() {
	r.value = params.RangeValue{}
	r.active = false
	if r.set != nil {
		r.set(r.column, nil)
	}
}

func (r *Range) Label() string {
	if !r.active {
		return ""
	}
	var b strings.Builder
	if r.value.Min != nil {
		b.WriteString(strconv.FormatFloat(*r.value.Min, 'f', -1, 64))
	}
	b.WriteString("..")
	if r.value.Max != nil {
		b.WriteString(strconv.FormatFloat(*r.value.Max, 'f', -1, 64))
	}
	return b.String()
}

func (r *Range) commit() {
	if r.value.Min == nil && r.value.Max == nil {
		r.Clear()
		return
	}
	r.active = true
	if r.set != nil {
		r.set(r.column, r.value)
	}
}

// Select filters a column to one of a fixed set of options.
type Select struct {
	column  string
	set     SetFunc
	options []string
	chosen  params.SelectValue
}

// NewSelect returns a select filter over options.
func NewSelect(column string, set SetFunc, options []string) *Select {
	return &Select{column: column, set: set, options: options}
}

func (s *Select) ColumnID() string { return s.column }
func (s *Select) Kind() Kind       { return KindSelect }
func (s *Select) Options() []string {
	return s.options
}

func (s *Select) Value() params.FilterValue {
	if len(s.chosen) == 0 {
		return nil
	}
	return s.chosen
}

// Choose selects exactly one option. Options outside the set are ignored.
func (s *Select) Choose(option string) {
	if !slices.Contains(s.options, option) {
		return
	}
	s.chosen = params.SelectValue{option}
	s.commit()
}

// Cycle advances to the next option, wrapping to unset after the last.
func (s *Select) Cycle() {
	if len(s.options) == 0 {
		return
	}
	next := 0
	if len(s.chosen) == 1 {
		next = slices.Index(s.options, s.chosen[0]) + 1
	}
	if next >= len(s.options) {
		s.Clear()
		return
	}
	s.Choose(s.options[next])
}

func (s *Select) SetFilter(v params.FilterValue) {
	sv, ok := v.(params.SelectValue)
	if !ok || len(sv) == 0 {
		s.Clear()
		return
	}
	s.chosen = slices.Clone(sv)
	s.commit()
}

func (s *Select) Clear() {
	s.chosen = nil
	s.commit()
}

func (s *Select) commit() {
	if s.set != nil {
		s.set(s.column, s.Value())
	}
}

func (s *Select) Label() string {
	return strings.Join(s.chosen, ",")
}
