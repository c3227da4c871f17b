package formatter

import (
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/service"
	"github.com/alexanderramin/roadmap/internal/timeline"
	"github.com/charmbracelet/lipgloss"
)

// DefaultMinVisibleCells is the narrowest a visible bar is drawn, in cells.
const DefaultMinVisibleCells = 2

// GanttOptions controls text rendering of a board. The window passed to
// FormatGantt is measured in terminal cells: ColumnWidth is the number of
// cells per period.
type GanttOptions struct {
	LabelWidth      int
	MinVisibleCells int
	Today           time.Time // zero hides the today marker
	Selected        string    // phase ID drawn highlighted
	// Live overrides the geometry of individual phases, keyed by phase ID.
	// Bars being dragged are drawn from here instead of their dates.
	Live map[string]timeline.Rect
}

// DefaultGanttOptions returns the options used by the timeline command.
func DefaultGanttOptions() GanttOptions {
	return GanttOptions{LabelWidth: 28, MinVisibleCells: DefaultMinVisibleCells, Today: time.Now()}
}

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellGrid
	cellBar
	cellDone
	cellToday
	cellHint
)

// CellSpan converts a rect in cell units to the half-open cell range
// [start, end) drawn on a track of span cells. Visible bars are widened to
// minCells, shifted left when that would overflow the track.
func CellSpan(r timeline.Rect, span, minCells int) (start, end int) {
	start = int(math.Round(r.Left))
	end = int(math.Round(r.Right()))
	if end-start < minCells {
		end = start + minCells
	}
	if end > span {
		end = span
		if end-start < minCells {
			start = max(0, end-minCells)
		}
	}
	return start, end
}

// FormatGantt renders board as one line per project and phase with a month
// or week header. Phases outside the window keep their row and show an arrow
// pointing at where they are.
func FormatGantt(board *service.Board, w timeline.Window, opts GanttOptions) string {
	if opts.LabelWidth <= 0 {
		opts.LabelWidth = 28
	}
	span := int(math.Round(w.Span()))
	columns := timeline.Columns(w)
	colStarts := make([]int, len(columns))
	for i := range columns {
		colStarts[i] = int(math.Round(float64(i) * w.ColumnWidth))
	}

	today := -1
	if !opts.Today.IsZero() && w.Contains(opts.Today) {
		today = int(math.Floor(timeline.Offset(opts.Today, w)))
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", opts.LabelWidth+1))
	b.WriteString(StyleHeader.Render(headerLine(columns, colStarts, span)))
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", opts.LabelWidth+1))
	b.WriteString(StyleDim.Render(ruleLine(colStarts, span)))
	b.WriteString("\n")

	for _, row := range board.Rows {
		label := padLabel(row.Project.DisplayID()+" "+row.Project.Name, opts.LabelWidth)
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(row.Project.Color)).Bold(true).Render(label))
		b.WriteString(" ")
		b.WriteString(renderTrack(emptyTrack(span, colStarts, today), StyleFg, ""))
		b.WriteString("\n")

		for _, ph := range row.Phases {
			b.WriteString(phaseLine(ph, w, span, colStarts, today, opts))
			b.WriteString("\n")
		}
	}
	if len(board.Rows) == 0 {
		b.WriteString(Dim("No projects on the board.") + "\n")
	}
	return b.String()
}

func phaseLine(ph *domain.Phase, w timeline.Window, span int, colStarts []int, today int, opts GanttOptions) string {
	marker := "  "
	labelStyle := StyleFg
	if ph.ID == opts.Selected {
		marker = "› "
		labelStyle = StyleYellowBold
	}
	label := labelStyle.Render(padLabel(marker+ph.DisplayID()+" "+ph.Name, opts.LabelWidth))

	cells := emptyTrack(span, colStarts, today)
	iv := ph.Interval()
	rect, live := opts.Live[ph.ID]
	visible := live || timeline.Visible(iv, w)
	if visible && !live {
		rect = timeline.ComputeRect(iv, w)
	}

	hint := "▸"
	switch {
	case visible:
		start, end := CellSpan(rect, span, opts.MinVisibleCells)
		done := start + (end-start)*ph.Progress/100
		for i := start; i < end && i < span; i++ {
			cells[i] = cellBar
			if i < done {
				cells[i] = cellDone
			}
		}
	case span > 0 && iv.Validate() == nil:
		if timeline.Day(iv.End).Before(w.Anchor) {
			hint = "◂"
			cells[0] = cellHint
		} else {
			cells[span-1] = cellHint
		}
	}
	return label + " " + renderTrack(cells, BarStyle(ph), hint)
}

func emptyTrack(span int, colStarts []int, today int) []cellKind {
	cells := make([]cellKind, span)
	for _, c := range colStarts {
		if c < span {
			cells[c] = cellGrid
		}
	}
	if today >= 0 && today < span {
		cells[today] = cellToday
	}
	return cells
}

// renderTrack draws cells, styling each run of equal kinds at once.
func renderTrack(cells []cellKind, bar lipgloss.Style, hint string) string {
	var b strings.Builder
	for i := 0; i < len(cells); {
		j := i
		for j < len(cells) && cells[j] == cells[i] {
			j++
		}
		n := j - i
		switch cells[i] {
		case cellEmpty:
			b.WriteString(strings.Repeat(" ", n))
		case cellGrid:
			b.WriteString(StyleDim.Render(strings.Repeat("┆", n)))
		case cellToday:
			b.WriteString(StyleRed.Render(strings.Repeat("│", n)))
		case cellDone:
			b.WriteString(bar.Render(strings.Repeat(filledBlock, n)))
		case cellBar:
			b.WriteString(bar.Render(strings.Repeat("▒", n)))
		case cellHint:
			b.WriteString(StyleDim.Render(strings.Repeat(hint, n)))
		}
		i = j
	}
	return b.String()
}

// headerLine writes each column label at its first cell. Labels that do not
// fit their column drop the year, then get cut.
func headerLine(columns []timeline.Column, colStarts []int, span int) string {
	line := []rune(strings.Repeat(" ", span))
	for i, col := range columns {
		next := span
		if i+1 < len(colStarts) {
			next = colStarts[i+1]
		}
		avail := max(next-colStarts[i]-1, 1)
		label := []rune(col.Label)
		if len(label) > avail {
			if short, _, ok := strings.Cut(col.Label, " "); ok {
				label = []rune(short)
			}
			label = label[:min(len(label), avail)]
		}
		for k, r := range label {
			if pos := colStarts[i] + k; pos < span {
				line[pos] = r
			}
		}
	}
	return string(line)
}

func ruleLine(colStarts []int, span int) string {
	line := []rune(strings.Repeat("─", span))
	for _, c := range colStarts {
		if c < span {
			line[c] = '┬'
		}
	}
	return string(line)
}

// padLabel truncates s to width runes, marking the cut with an ellipsis,
// and pads it with spaces.
func padLabel(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		if width <= 1 {
			return string(r[:width])
		}
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(r))
}
