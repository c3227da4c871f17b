package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/roadmap/internal/timeline"
)

// Phase is a date-ranged slice of a project, drawn as one bar on the timeline.
type Phase struct {
	ID          string
	ProjectID   string
	Seq         int
	Name        string
	StartDate   time.Time
	EndDate     time.Time
	Deliverable string
	Responsible string
	Status      PhaseStatus
	Progress    int
	Color       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Interval projects the phase dates onto the timeline.
func (p *Phase) Interval() timeline.Interval {
	return timeline.Interval{Start: p.StartDate, End: p.EndDate}
}

func (p *Phase) Validate() error {
	if p.Name == "" {
		return errors.New("phase name is required")
	}
	if err := p.Interval().Validate(); err != nil {
		return err
	}
	if p.Progress < 0 || p.Progress > 100 {
		return fmt.Errorf("progress %d must be between 0 and 100", p.Progress)
	}
	if p.Status != "" && !ValidPhaseStatuses[p.Status] {
		return fmt.Errorf("invalid phase status %q", p.Status)
	}
	if p.Color != "" {
		if err := ValidateColor(p.Color); err != nil {
			return err
		}
	}
	return nil
}

// DeriveStatus computes the status implied by progress and dates as of now.
// Completed wins over everything, then any progress, then a missed end date.
func (p *Phase) DeriveStatus(now time.Time) PhaseStatus {
	switch {
	case p.Progress >= 100:
		return PhaseCompleted
	case p.Progress > 0:
		return PhaseInProgress
	case timeline.Day(p.EndDate).Before(timeline.Day(now)):
		return PhaseOverdue
	default:
		return PhaseNotStarted
	}
}

// DisplayID returns the project-scoped "#n" label, or a truncated ID.
func (p *Phase) DisplayID() string {
	if p.Seq > 0 {
		return fmt.Sprintf("#%d", p.Seq)
	}
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}
