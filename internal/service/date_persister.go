package service

import (
	"context"
	"time"

	"github.com/alexanderramin/roadmap/internal/timeline"
)

// DatePersister adapts PhaseService to drag.Persister.
type DatePersister struct {
	Phases PhaseService
}

func (p *DatePersister) PersistPhaseDates(ctx context.Context, phaseID string, start, end time.Time) (timeline.Interval, error) {
	ph, err := p.Phases.UpdateDates(ctx, phaseID, start, end)
	if err != nil {
		return timeline.Interval{}, err
	}
	return ph.Interval(), nil
}
