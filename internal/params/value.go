package params

import (
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf8"
)

// MinTextLength is the shortest text filter that triggers a fetch.
const MinTextLength = 3

// FilterValue is the value of one column filter. Each variant decides for
// itself whether it is complete enough to send to a fetch.
type FilterValue interface {
	Committable() bool
	filterValue()
}

// TextValue is a free-text search.
type TextValue string

func (v TextValue) Committable() bool { return utf8.RuneCountInString(string(v)) >= MinTextLength }
func (TextValue) filterValue()        {}

// RangeValue is an inclusive numeric range. A nil bound is missing; a
// bound of zero is present.
type RangeValue struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

func (v RangeValue) Committable() bool { return v.Min != nil && v.Max != nil }
func (RangeValue) filterValue()        {}

// Bounds returns the range with both ends, for committable ranges.
func (v RangeValue) Bounds() (lo, hi float64) {
	if v.Min != nil {
		lo = *v.Min
	}
	if v.Max != nil {
		hi = *v.Max
	}
	return lo, hi
}

// NewRange builds a complete range.
func NewRange(lo, hi float64) RangeValue {
	return RangeValue{Min: &lo, Max: &hi}
}

// SelectValue is a set of accepted options.
type SelectValue []string

func (v SelectValue) Committable() bool { return len(v) > 0 }
func (SelectValue) filterValue()        {}

// ValuesEqual compares two filter values by variant and content.
func ValuesEqual(a, b FilterValue) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case TextValue:
		bv, ok := b.(TextValue)
		return ok && av == bv
	case RangeValue:
		bv, ok := b.(RangeValue)
		return ok && floatPtrEqual(av.Min, bv.Min) && floatPtrEqual(av.Max, bv.Max)
	case SelectValue:
		bv, ok := b.(SelectValue)
		return ok && slices.Equal(av, bv)
	}
	return false
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneValue(v FilterValue) FilterValue {
	switch tv := v.(type) {
	case RangeValue:
		var out RangeValue
		if tv.Min != nil {
			lo := *tv.Min
			out.Min = &lo
		}
		if tv.Max != nil {
			hi := *tv.Max
			out.Max = &hi
		}
		return out
	case SelectValue:
		return slices.Clone(tv)
	}
	return v
}

// filterJSON is the wire shape of a Filter; exactly one of the value
// fields is set.
type filterJSON struct {
	ColumnID string      `json:"id"`
	Text     *string     `json:"text,omitempty"`
	Range    *RangeValue `json:"range,omitempty"`
	Select   []string    `json:"select,omitempty"`
}

// MarshalJSON tags the value with its variant.
func (f Filter) MarshalJSON() ([]byte, error) {
	out := filterJSON{ColumnID: f.ColumnID}
	switch v := f.Value.(type) {
	case TextValue:
		s := string(v)
		out.Text = &s
	case RangeValue:
		out.Range = &v
	case SelectValue:
		out.Select = v
	case nil:
	default:
		return nil, fmt.Errorf("marshal filter %q: unknown value %T", f.ColumnID, v)
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the variant tagged by MarshalJSON.
func (f *Filter) UnmarshalJSON(data []byte) error {
	var in filterJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	f.ColumnID = in.ColumnID
	switch {
	case in.Text != nil:
		f.Value = TextValue(*in.Text)
	case in.Range != nil:
		f.Value = *in.Range
	case in.Select != nil:
		f.Value = SelectValue(in.Select)
	default:
		f.Value = nil
	}
	return nil
}
