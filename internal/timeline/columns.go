package timeline

import (
	"fmt"
	"time"
)

// Column describes one visible period of a window.
type Column struct {
	Start time.Time
	Days  int
	Label string
}

// Columns lists the periods of w in order. Month labels carry the year on
// the first column and on every January.
func Columns(w Window) []Column {
	cols := make([]Column, 0, w.Columns)
	for i := 0; i < w.Columns; i++ {
		start := AddPeriods(w.Anchor, i, w.Unit)
		cols = append(cols, Column{
			Start: start,
			Days:  DaysInPeriod(start, w.Unit),
			Label: columnLabel(start, w.Unit, i == 0),
		})
	}
	return cols
}

func columnLabel(start time.Time, unit Unit, first bool) string {
	if unit == UnitWeek {
		_, week := start.ISOWeek()
		return fmt.Sprintf("W%02d", week)
	}
	if first || start.Month() == time.January {
		return start.Format("Jan 2006")
	}
	return start.Format("Jan")
}
