package service

import (
	"context"
	"time"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/importer"
)

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// Resolve accepts a short ID (case-insensitive) or a full UUID.
	Resolve(ctx context.Context, ref string) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Archive(ctx context.Context, id string) error
	Unarchive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string, force bool) error
}

type PhaseService interface {
	Create(ctx context.Context, ph *domain.Phase) error
	GetByID(ctx context.Context, id string) (*domain.Phase, error)
	// Resolve accepts "#n", "n" or a full UUID within a project.
	Resolve(ctx context.Context, projectID, ref string) (*domain.Phase, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Phase, error)
	Update(ctx context.Context, ph *domain.Phase) error
	// UpdateDates persists a new date range and returns the stored phase.
	UpdateDates(ctx context.Context, id string, start, end time.Time) (*domain.Phase, error)
	RefreshStatus(ctx context.Context, id string) (*domain.Phase, error)
	// RefreshProjectStatuses returns how many phases changed status.
	RefreshProjectStatuses(ctx context.Context, projectID string) (int, error)
	Delete(ctx context.Context, id string) error
}

type TaskService interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Resolve(ctx context.Context, projectID, ref string) (*domain.Task, error)
	ListByPhase(ctx context.Context, phaseID string) ([]*domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error)
	// ListAssigned returns one person's tasks across all projects.
	ListAssigned(ctx context.Context, q AssignedTasksQuery) ([]*domain.Task, error)
	ToggleStatus(ctx context.Context, id string) (*domain.Task, error)
	MarkDone(ctx context.Context, id string) error
	// Reorder assigns priorities within a phase following the given ID order.
	Reorder(ctx context.Context, phaseID string, orderedIDs []string) error
	Delete(ctx context.Context, id string) error
}

// TaskView narrows an assignee's task list.
type TaskView string

const (
	TaskViewAll       TaskView = "all"
	TaskViewUpcoming  TaskView = "upcoming"
	TaskViewOverdue   TaskView = "overdue"
	TaskViewCompleted TaskView = "completed"
)

type AssignedTasksQuery struct {
	Assignee string
	// Search keeps tasks whose name contains it, ignoring case.
	Search string
	View   TaskView
	// Now defaults to the current time.
	Now time.Time
}

type TimelineService interface {
	Board(ctx context.Context, req BoardRequest) (*Board, error)
}

// ImportResult holds the outcome of a project import.
type ImportResult struct {
	Project    *domain.Project
	PhaseCount int
	TaskCount  int
}

type ImportService interface {
	ImportProject(ctx context.Context, filePath string) (*ImportResult, error)
	ImportProjectFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error)
	ExportProject(ctx context.Context, projectID string) (*importer.ImportSchema, error)
}
