package table

// Ellipsis marks a gap in a page window.
const Ellipsis = -1

const (
	marginPages = 2
	rangePages  = 3
)

// PageWindow lists the zero-based page indices a pager shows for the
// selected page out of count: the first and last margin pages, a run of
// pages around the selection, and Ellipsis for each gap.
func PageWindow(selected, count, margin, span int) []int {
	if count <= 0 {
		return nil
	}
	if count <= span {
		out := make([]int, count)
		for i := range out {
			out[i] = i
		}
		return out
	}

	// Half-page sides: a span of 3 centres on the selection.
	left := float64(span) / 2
	right := float64(span) - left
	switch {
	case float64(selected) > float64(count)-float64(span)/2:
		right = float64(count - selected)
		left = float64(span) - right
	case float64(selected) < float64(span)/2:
		left = float64(selected)
		right = float64(span) - left
	}

	var out []int
	for i := 0; i < count; i++ {
		page := i + 1
		switch {
		case page <= margin, page > count-margin, float64(i) >= float64(selected)-left && float64(i) <= float64(selected)+right:
			out = append(out, i)
		case len(out) > 0 && out[len(out)-1] != Ellipsis:
			out = append(out, Ellipsis)
		}
	}
	return out
}
