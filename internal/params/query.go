package params

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Query string keys. Filters are keyed "filter.<column>" for text,
// "filter.<column>.min"/".max" for ranges and "filter.<column>.in" for
// selects (repeated).
const (
	keyPageIndex = "pageIndex"
	keyPageSize  = "pageSize"
	keySortBy    = "sortBy"
	keyDesc      = "desc"
	filterPrefix = "filter."
)

// Encode renders p in its canonical query-string form. Column ids ending
// in ".min", ".max" or ".in" do not survive Decode; collections must not
// expose such ids.
func (p RequestParams) Encode() url.Values {
	v := url.Values{}
	v.Set(keyPageIndex, strconv.Itoa(p.PageIndex))
	v.Set(keyPageSize, strconv.Itoa(p.PageSize))
	if len(p.SortBy) > 0 {
		v.Set(keySortBy, p.SortBy[0].ColumnID)
		if p.SortBy[0].Desc {
			v.Set(keyDesc, "true")
		}
	}
	for _, f := range p.Filters {
		key := filterPrefix + f.ColumnID
		switch fv := f.Value.(type) {
		case TextValue:
			v.Set(key, string(fv))
		case RangeValue:
			if fv.Min != nil {
				v.Set(key+".min", formatFloat(*fv.Min))
			}
			if fv.Max != nil {
				v.Set(key+".max", formatFloat(*fv.Max))
			}
		case SelectValue:
			for _, o := range fv {
				v.Add(key+".in", o)
			}
		}
	}
	return v
}

// Decode parses the form produced by Encode. Missing page fields take
// their defaults; filters are returned sorted by column.
func Decode(v url.Values) (RequestParams, error) {
	p := Default()
	if s := v.Get(keyPageIndex); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return RequestParams{}, fmt.Errorf("%w: pageIndex %q", ErrInvalidParams, s)
		}
		p.PageIndex = n
	}
	if s := v.Get(keyPageSize); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || !ValidPageSize(n) {
			return RequestParams{}, fmt.Errorf("%w: pageSize %q", ErrInvalidParams, s)
		}
		p.PageSize = n
	}
	if col := v.Get(keySortBy); col != "" {
		desc, _ := strconv.ParseBool(v.Get(keyDesc))
		p.SortBy = []SortRule{{ColumnID: col, Desc: desc}}
	}

	byColumn := map[string]FilterValue{}
	for key, vals := range v {
		if !strings.HasPrefix(key, filterPrefix) || len(vals) == 0 {
			continue
		}
		rest := strings.TrimPrefix(key, filterPrefix)
		switch {
		case strings.HasSuffix(rest, ".min"), strings.HasSuffix(rest, ".max"):
			col := rest[:len(rest)-4]
			f, err := strconv.ParseFloat(vals[0], 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return RequestParams{}, fmt.Errorf("%w: %s %q", ErrInvalidParams, key, vals[0])
			}
			rv, _ := byColumn[col].(RangeValue)
			if strings.HasSuffix(rest, ".min") {
				rv.Min = &f
			} else {
				rv.Max = &f
			}
			byColumn[col] = rv
		case strings.HasSuffix(rest, ".in"):
			byColumn[strings.TrimSuffix(rest, ".in")] = SelectValue(vals)
		default:
			byColumn[rest] = TextValue(vals[0])
		}
	}
	cols := make([]string, 0, len(byColumn))
	for col := range byColumn {
		if col == "" {
			return RequestParams{}, fmt.Errorf("%w: empty filter column", ErrInvalidParams)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		p.Filters = append(p.Filters, Filter{ColumnID: col, Value: byColumn[col]})
	}
	return p, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
