package timeline

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidInterval marks an interval that cannot be placed on a timeline:
// a missing date or an end before its start.
var ErrInvalidInterval = errors.New("invalid interval")

// DefaultMinVisibleWidth is the minimum width, in pixels, a non-hidden bar is
// drawn at. It is a rendering policy only and never feeds back into geometry.
const DefaultMinVisibleWidth = 40.0

// Interval is the date range of a phase as seen by the timeline.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Validate returns ErrInvalidInterval when either date is unset or the
// interval runs backwards.
func (iv Interval) Validate() error {
	if !IsValidDate(iv.Start) || !IsValidDate(iv.End) {
		return fmt.Errorf("%w: missing start or end date", ErrInvalidInterval)
	}
	if Day(iv.End).Before(Day(iv.Start)) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidInterval,
			iv.End.Format(time.DateOnly), iv.Start.Format(time.DateOnly))
	}
	return nil
}

// Days is the number of calendar days between Start and End.
func (iv Interval) Days() int {
	return DaysBetween(iv.Start, iv.End)
}

// SameDays reports whether both intervals cover the same civil dates.
func (iv Interval) SameDays(other Interval) bool {
	return Day(iv.Start).Equal(Day(other.Start)) && Day(iv.End).Equal(Day(other.End))
}

// Rect is a horizontal bar position relative to the timeline origin.
type Rect struct {
	Left  float64
	Width float64
}

// Right is the pixel position of the bar's right edge.
func (r Rect) Right() float64 {
	return r.Left + r.Width
}

// Hidden reports whether the rect has nothing to draw.
func (r Rect) Hidden() bool {
	return r.Width <= 0
}

// Offset maps a date to its pixel position in w. The fractional part of a
// period uses the real length of that period, so a day in February is wider
// than a day in March when columns are months. Dates outside the window are
// clamped to [0, Span].
func Offset(t time.Time, w Window) float64 {
	d := Day(t)
	if d.Before(w.Anchor) {
		return 0
	}
	if !d.Before(w.End()) {
		return w.Span()
	}
	periods := float64(periodsBetween(w.Anchor, d, w.Unit))
	frac := float64(dayOfPeriod(d, w.Unit)) / float64(DaysInPeriod(d, w.Unit))
	return w.ColumnWidth * (periods + frac)
}

// ComputeRect places iv inside w. Intervals entirely outside the window, and
// malformed intervals, yield the zero Rect. Partially visible intervals are
// clamped to the window edges.
func ComputeRect(iv Interval, w Window) Rect {
	if iv.Validate() != nil {
		return Rect{}
	}
	start, end := Day(iv.Start), Day(iv.End)
	windowEnd := w.End()
	if end.Before(w.Anchor) || start.After(windowEnd) {
		return Rect{}
	}
	if start.Before(w.Anchor) {
		start = w.Anchor
	}
	if end.After(windowEnd) {
		end = windowEnd
	}
	left := Offset(start, w)
	width := math.Max(0, Offset(end, w)-left)
	return Rect{Left: left, Width: width}
}

// InverseMap converts a pixel position back to a date, rounded to the nearest
// whole day. Positions at or before the origin return the anchor and
// positions at or past the span return the window end.
func InverseMap(x float64, w Window) time.Time {
	if !(x > 0) || !(w.ColumnWidth > 0) {
		return w.Anchor
	}
	if x >= w.Span() {
		return w.End()
	}
	cols := x / w.ColumnWidth
	idx := int(math.Floor(cols))
	if idx >= w.Columns {
		return w.End()
	}
	periodStart := AddPeriods(w.Anchor, idx, w.Unit)
	days := int(math.Round((cols - float64(idx)) * float64(DaysInPeriod(periodStart, w.Unit))))
	return periodStart.AddDate(0, 0, days)
}

// Visible reports whether iv is well formed and overlaps w, i.e. whether a
// renderer should draw it at all.
func Visible(iv Interval, w Window) bool {
	if iv.Validate() != nil {
		return false
	}
	return !Day(iv.End).Before(w.Anchor) && !Day(iv.Start).After(w.End())
}

// VisibleRect widens r to at least minWidth for drawing, keeping its left
// edge. Callers decide visibility with Visible first.
func VisibleRect(r Rect, minWidth float64) Rect {
	if r.Width < minWidth {
		r.Width = minWidth
	}
	return r
}
