// Package render decides what a data table paints for a fetch result.
// The table shell (title, headers, filters, pagination) is always drawn;
// Decide only chooses the layers on top of it and the body content.
package render

// State is the table's render state.
type State int

const (
	Populated State = iota
	Loading
	ErrorState
	Empty
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case ErrorState:
		return "error"
	case Empty:
		return "empty"
	default:
		return "populated"
	}
}

// Body is what fills the table body region.
type Body int

const (
	// BodyRows draws the rows held by the table, which may be stale.
	BodyRows Body = iota
	// BodyEmpty draws the "no data" placeholder.
	BodyEmpty
	// BodySpacer holds the body's height while the first page loads.
	BodySpacer
)

func (b Body) String() string {
	switch b {
	case BodyEmpty:
		return "empty"
	case BodySpacer:
		return "spacer"
	default:
		return "rows"
	}
}

// Input is the fetch tuple a table renders from.
type Input struct {
	IsLoading      bool
	IsPreviousData bool
	Err            error
	RowCount       int
}

// Frame is the render decision for one Input.
type Frame struct {
	State State
	// Banner is set when an error message goes above the table.
	Banner bool
	// Overlay is set when a loading indicator covers the body.
	Overlay bool
	Body    Body
}

// Decide applies the rules in priority order: error, then loading or
// stale data, then empty, then populated. Neither the error banner nor
// the loading overlay removes rows already on screen.
func Decide(in Input) Frame {
	f := Frame{Body: body(in)}
	switch {
	case in.Err != nil:
		f.State = ErrorState
		f.Banner = true
	case in.IsLoading || in.IsPreviousData:
		f.State = Loading
		f.Overlay = true
	case in.RowCount == 0:
		f.State = Empty
	default:
		f.State = Populated
	}
	return f
}

func body(in Input) Body {
	switch {
	case in.RowCount > 0:
		return BodyRows
	case in.IsLoading && in.Err == nil:
		return BodySpacer
	default:
		return BodyEmpty
	}
}
