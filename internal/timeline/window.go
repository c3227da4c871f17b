package timeline

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrDegenerateWindow is returned by NewWindow when the column width is not a
// positive finite number or the column count is not positive.
var ErrDegenerateWindow = errors.New("degenerate timeline window")

// Window is the visible calendar span of a timeline view and its
// pixel-per-period scale. Construct it with NewWindow.
type Window struct {
	Anchor      time.Time // first day of the first visible period
	ColumnWidth float64
	Columns     int
	Unit        Unit
}

// NewWindow validates the scale and floors anchor to the start of its period.
func NewWindow(anchor time.Time, columnWidth float64, columns int, unit Unit) (Window, error) {
	if !(columnWidth > 0) || math.IsInf(columnWidth, 0) {
		return Window{}, fmt.Errorf("%w: column width %.2f must be positive and finite", ErrDegenerateWindow, columnWidth)
	}
	if columns <= 0 {
		return Window{}, fmt.Errorf("%w: column count %d must be positive", ErrDegenerateWindow, columns)
	}
	if unit != UnitMonth && unit != UnitWeek {
		return Window{}, fmt.Errorf("%w: unknown unit %q", ErrDegenerateWindow, unit)
	}
	if !IsValidDate(anchor) {
		return Window{}, fmt.Errorf("%w: anchor date is not set", ErrDegenerateWindow)
	}
	return Window{
		Anchor:      StartOfPeriod(anchor, unit),
		ColumnWidth: columnWidth,
		Columns:     columns,
		Unit:        unit,
	}, nil
}

// End is the first day after the last visible period.
func (w Window) End() time.Time {
	return AddPeriods(w.Anchor, w.Columns, w.Unit)
}

// Span is the total pixel width of the window.
func (w Window) Span() float64 {
	return w.ColumnWidth * float64(w.Columns)
}

// TotalDays is the number of calendar days the window covers.
func (w Window) TotalDays() int {
	return DaysBetween(w.Anchor, w.End())
}

// Contains reports whether the civil date of t falls inside [Anchor, End).
func (w Window) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(w.Anchor) && d.Before(w.End())
}

// Shift returns the window moved by n periods.
func (w Window) Shift(n int) Window {
	w.Anchor = AddPeriods(w.Anchor, n, w.Unit)
	return w
}

// WithColumnWidth returns a copy of w drawn at a different scale.
func (w Window) WithColumnWidth(width float64) (Window, error) {
	return NewWindow(w.Anchor, width, w.Columns, w.Unit)
}
