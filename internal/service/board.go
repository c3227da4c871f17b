package service

import (
	"time"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/timeline"
)

// BoardRow is one project and its phases in start-date order.
type BoardRow struct {
	Project *domain.Project
	Phases  []*domain.Phase
}

// Board is a read snapshot of the timeline. It is owned by a single view and
// is not safe for concurrent mutation.
type Board struct {
	Rows     []BoardRow
	LoadedAt time.Time

	index map[string]*domain.Phase
}

// NewBoard indexes rows for phase lookups.
func NewBoard(rows []BoardRow, loadedAt time.Time) *Board {
	b := &Board{Rows: rows, LoadedAt: loadedAt, index: make(map[string]*domain.Phase)}
	for _, row := range rows {
		for _, ph := range row.Phases {
			b.index[ph.ID] = ph
		}
	}
	return b
}

// Phase returns the snapshot entry for id.
func (b *Board) Phase(id string) (*domain.Phase, bool) {
	ph, ok := b.index[id]
	return ph, ok
}

// PhaseInterval reports the committed dates of a phase. Board satisfies
// drag.IntervalSource.
func (b *Board) PhaseInterval(id string) (timeline.Interval, bool) {
	ph, ok := b.index[id]
	if !ok {
		return timeline.Interval{}, false
	}
	return ph.Interval(), true
}

// Apply replaces the stored copy of a phase after a successful save.
// It returns false for phases not on the board.
func (b *Board) Apply(updated *domain.Phase) bool {
	ph, ok := b.index[updated.ID]
	if !ok {
		return false
	}
	*ph = *updated
	return true
}

// PhaseCount returns the number of phases across all rows.
func (b *Board) PhaseCount() int {
	return len(b.index)
}

// Bounds returns the earliest start and latest end on the board.
func (b *Board) Bounds() (timeline.Interval, bool) {
	var out timeline.Interval
	for _, ph := range b.index {
		if out.Start.IsZero() || ph.StartDate.Before(out.Start) {
			out.Start = ph.StartDate
		}
		if out.End.IsZero() || ph.EndDate.After(out.End) {
			out.End = ph.EndDate
		}
	}
	return out, len(b.index) > 0
}
