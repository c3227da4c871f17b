package domain

import (
	"time"

	"github.com/alexanderramin/roadmap/internal/timeline"
)

type Task struct {
	ID        string
	PhaseID   string
	ProjectID string
	Seq       int
	Name      string
	Assignee  string
	DueDate   *time.Time
	Status    TaskStatus
	Priority  int // lower sorts first
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NextStatus cycles todo -> doing -> done -> todo.
func (t *Task) NextStatus() TaskStatus {
	switch t.Status {
	case TaskTodo:
		return TaskDoing
	case TaskDoing:
		return TaskDone
	default:
		return TaskTodo
	}
}

// IsOverdue reports whether an unfinished task has passed its due date.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == TaskDone {
		return false
	}
	return timeline.Day(*t.DueDate).Before(timeline.Day(now))
}

// UpcomingWindowDays is how far ahead an unfinished task counts as upcoming.
const UpcomingWindowDays = 7

// IsUpcoming reports whether an unfinished task is due today or within the
// next UpcomingWindowDays days.
func (t *Task) IsUpcoming(now time.Time) bool {
	if t.DueDate == nil || t.Status == TaskDone {
		return false
	}
	days := timeline.DaysBetween(now, *t.DueDate)
	return days >= 0 && days <= UpcomingWindowDays
}
