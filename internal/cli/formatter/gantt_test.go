package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/service"
	"github.com/alexanderramin/roadmap/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ganttFixture(t *testing.T, phases ...*domain.Phase) (*service.Board, timeline.Window) {
	t.Helper()
	w, err := timeline.NewWindow(day(2024, 1, 15), 10, 6, timeline.UnitMonth)
	require.NoError(t, err)
	project := &domain.Project{ID: "p-1", ShortID: "WEB01", Name: "Website"}
	board := service.NewBoard([]service.BoardRow{{Project: project, Phases: phases}}, time.Now())
	return board, w
}

// track returns the bar area of the rendered line for the given row label.
func track(t *testing.T, out, label string, labelWidth int) []rune {
	t.Helper()
	for _, line := range strings.Split(stripANSI(out), "\n") {
		if strings.Contains(line, label) {
			r := []rune(line)
			require.Greater(t, len(r), labelWidth)
			return r[labelWidth+1:]
		}
	}
	t.Fatalf("no line containing %q in:\n%s", label, out)
	return nil
}

func TestFormatGantt_PlacesBarsOnCells(t *testing.T) {
	design := &domain.Phase{ID: "ph-1", Seq: 1, Name: "Design", StartDate: day(2024, 2, 1), EndDate: day(2024, 3, 1), Progress: 50}
	board, w := ganttFixture(t, design)
	opts := GanttOptions{LabelWidth: 20, MinVisibleCells: 2}

	out := FormatGantt(board, w, opts)
	plain := stripANSI(out)

	assert.Contains(t, plain, "Jan 2024")
	assert.Contains(t, plain, "Feb")
	assert.Contains(t, plain, "WEB01 Website")

	tr := track(t, out, "#1 Design", 20)
	require.Len(t, tr, 60)
	assert.Equal(t, strings.Repeat(filledBlock, 5), string(tr[10:15]))
	assert.Equal(t, strings.Repeat("▒", 5), string(tr[15:20]))
	assert.Equal(t, '┆', tr[20])
}

func TestFormatGantt_OutOfWindowHints(t *testing.T) {
	past := &domain.Phase{ID: "ph-1", Seq: 1, Name: "Old", StartDate: day(2023, 3, 1), EndDate: day(2023, 4, 1)}
	future := &domain.Phase{ID: "ph-2", Seq: 2, Name: "Later", StartDate: day(2025, 3, 1), EndDate: day(2025, 4, 1)}
	board, w := ganttFixture(t, past, future)

	out := FormatGantt(board, w, GanttOptions{LabelWidth: 20, MinVisibleCells: 2})

	assert.Equal(t, '◂', track(t, out, "#1 Old", 20)[0])
	assert.Equal(t, '▸', track(t, out, "#2 Later", 20)[59])
}

func TestFormatGantt_ShortPhaseGetsMinimumWidth(t *testing.T) {
	oneDay := &domain.Phase{ID: "ph-1", Seq: 1, Name: "Kickoff", StartDate: day(2024, 1, 2), EndDate: day(2024, 1, 3)}
	board, w := ganttFixture(t, oneDay)

	tr := track(t, FormatGantt(board, w, GanttOptions{LabelWidth: 20, MinVisibleCells: 3}), "#1 Kickoff", 20)

	assert.Equal(t, 3, strings.Count(string(tr), "▒"))
}

func TestFormatGantt_LiveRectAndSelection(t *testing.T) {
	design := &domain.Phase{ID: "ph-1", Seq: 1, Name: "Design", StartDate: day(2024, 2, 1), EndDate: day(2024, 3, 1)}
	board, w := ganttFixture(t, design)

	out := FormatGantt(board, w, GanttOptions{
		LabelWidth:      20,
		MinVisibleCells: 2,
		Selected:        "ph-1",
		Live:            map[string]timeline.Rect{"ph-1": {Left: 30, Width: 5}},
	})

	assert.Contains(t, stripANSI(out), "› #1 Design")
	tr := track(t, out, "#1 Design", 20)
	assert.Equal(t, strings.Repeat("▒", 5), string(tr[30:35]))
	assert.NotEqual(t, '▒', tr[12])
}

func TestFormatGantt_TodayMarker(t *testing.T) {
	board, w := ganttFixture(t, &domain.Phase{ID: "ph-1", Seq: 1, Name: "Design", StartDate: day(2024, 5, 1), EndDate: day(2024, 5, 20)})

	tr := track(t, FormatGantt(board, w, GanttOptions{LabelWidth: 20, Today: day(2024, 2, 16)}), "#1 Design", 20)

	assert.Equal(t, '│', tr[15])
}

func TestFormatGantt_EmptyBoard(t *testing.T) {
	w, err := timeline.NewWindow(day(2024, 1, 1), 10, 3, timeline.UnitMonth)
	require.NoError(t, err)

	out := stripANSI(FormatGantt(service.NewBoard(nil, time.Now()), w, DefaultGanttOptions()))

	assert.Contains(t, out, "No projects on the board.")
}

func TestCellSpan(t *testing.T) {
	tests := []struct {
		name       string
		rect       timeline.Rect
		min        int
		start, end int
	}{
		{"rounds edges", timeline.Rect{Left: 10.4, Width: 9.8}, 2, 10, 20},
		{"widens to minimum", timeline.Rect{Left: 5, Width: 0.3}, 2, 5, 7},
		{"shifts left at the right edge", timeline.Rect{Left: 59.6, Width: 0.2}, 2, 58, 60},
		{"clips at the right edge", timeline.Rect{Left: 50, Width: 20}, 2, 50, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := CellSpan(tt.rect, 60, tt.min)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestPadLabel(t *testing.T) {
	assert.Equal(t, "abc  ", padLabel("abc", 5))
	assert.Equal(t, "abcd…", padLabel("abcdefgh", 5))
}
