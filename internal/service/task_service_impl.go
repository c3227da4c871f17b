package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/roadmap/internal/db"
	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/repository"
	"github.com/google/uuid"
)

type taskService struct {
	uow      db.UnitOfWork
	tasks    repository.TaskRepo
	phases   repository.PhaseRepo
	observer UseCaseObserver
}

func NewTaskService(uow db.UnitOfWork, tasks repository.TaskRepo, phases repository.PhaseRepo, observers ...UseCaseObserver) TaskService {
	return &taskService{
		uow:      uow,
		tasks:    tasks,
		phases:   phases,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *taskService) Create(ctx context.Context, t *domain.Task) error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("task name is required")
	}
	if t.Status == "" {
		t.Status = domain.TaskTodo
	}
	if !domain.ValidTaskStatuses[t.Status] {
		return fmt.Errorf("invalid task status %q", t.Status)
	}
	ph, err := s.phases.GetByID(ctx, t.PhaseID)
	if err != nil {
		return fmt.Errorf("looking up phase: %w", err)
	}
	t.ProjectID = ph.ProjectID
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if t.Seq == 0 {
			seq, err := repository.NewSQLiteProjectSequenceRepo(tx).NextProjectSeq(ctx, t.ProjectID)
			if err != nil {
				return err
			}
			t.Seq = seq
		}
		return repository.NewSQLiteTaskRepo(tx).Create(ctx, t)
	})
}

func (s *taskService) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *taskService) Resolve(ctx context.Context, projectID, ref string) (*domain.Task, error) {
	if seq, ok := parseSeqRef(ref); ok {
		t, err := s.tasks.GetBySeq(ctx, projectID, seq)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("task", ref)
		}
		return t, err
	}
	t, err := s.tasks.GetByID(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && t.ProjectID != projectID) {
		return nil, notFound("task", ref)
	}
	return t, err
}

func (s *taskService) ListByPhase(ctx context.Context, phaseID string) ([]*domain.Task, error) {
	return s.tasks.ListByPhase(ctx, phaseID)
}

func (s *taskService) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	return s.tasks.ListByProject(ctx, projectID)
}

func (s *taskService) ListAssigned(ctx context.Context, q AssignedTasksQuery) (tasks []*domain.Task, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "list-assigned-tasks",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"view": string(q.View), "task_count": len(tasks)},
		})
	}()

	if strings.TrimSpace(q.Assignee) == "" {
		return nil, errors.New("assignee is required")
	}
	keep, err := taskViewFilter(q.View)
	if err != nil {
		return nil, err
	}
	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}
	all, err := s.tasks.ListByAssignee(ctx, q.Assignee)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))
	for _, t := range all {
		if search != "" && !strings.Contains(strings.ToLower(t.Name), search) {
			continue
		}
		if keep(t, now) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func taskViewFilter(view TaskView) (func(*domain.Task, time.Time) bool, error) {
	switch view {
	case "", TaskViewAll:
		return func(*domain.Task, time.Time) bool { return true }, nil
	case TaskViewUpcoming:
		return (*domain.Task).IsUpcoming, nil
	case TaskViewOverdue:
		return (*domain.Task).IsOverdue, nil
	case TaskViewCompleted:
		return func(t *domain.Task, _ time.Time) bool { return t.Status == domain.TaskDone }, nil
	}
	return nil, fmt.Errorf("unknown task view %q", view)
}

func (s *taskService) ToggleStatus(ctx context.Context, id string) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := t.NextStatus()
	if err := s.tasks.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	t.Status = next
	return t, nil
}

func (s *taskService) MarkDone(ctx context.Context, id string) error {
	return s.tasks.UpdateStatus(ctx, id, domain.TaskDone)
}

func (s *taskService) Reorder(ctx context.Context, phaseID string, orderedIDs []string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "reorder-tasks",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"phase_id": phaseID, "task_count": len(orderedIDs)},
		})
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		existing, err := tasks.ListByPhase(ctx, phaseID)
		if err != nil {
			return err
		}
		inPhase := make(map[string]bool, len(existing))
		for _, t := range existing {
			inPhase[t.ID] = true
		}
		for i, id := range orderedIDs {
			if !inPhase[id] {
				return fmt.Errorf("task %s does not belong to phase %s", id, phaseID)
			}
			if err := tasks.UpdatePriority(ctx, id, i); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *taskService) Delete(ctx context.Context, id string) error {
	return s.tasks.Delete(ctx, id)
}
