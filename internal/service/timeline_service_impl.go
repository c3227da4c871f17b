package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/repository"
	"github.com/sourcegraph/conc/pool"
)

// BoardRequest selects what goes on the board.
type BoardRequest struct {
	// ProjectIDs limits the board to the given projects; empty means all.
	ProjectIDs      []string
	IncludeArchived bool
	// RefreshStatuses re-derives phase statuses before loading.
	RefreshStatuses bool
}

const boardLoadConcurrency = 4

type timelineService struct {
	projects repository.ProjectRepo
	phases   PhaseService
	observer UseCaseObserver
}

func NewTimelineService(projects repository.ProjectRepo, phases PhaseService, observers ...UseCaseObserver) TimelineService {
	return &timelineService{
		projects: projects,
		phases:   phases,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *timelineService) Board(ctx context.Context, req BoardRequest) (board *Board, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"scope": len(req.ProjectIDs)}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "load-board",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	projects, err := s.projects.List(ctx, req.IncludeArchived)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	projects = filterProjectsByScope(projects, req.ProjectIDs)

	rows := make([]BoardRow, len(projects))
	p := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(boardLoadConcurrency)
	for i, proj := range projects {
		p.Go(func(ctx context.Context) error {
			if req.RefreshStatuses {
				if _, err := s.phases.RefreshProjectStatuses(ctx, proj.ID); err != nil {
					return fmt.Errorf("refreshing statuses for %s: %w", proj.DisplayID(), err)
				}
			}
			phases, err := s.phases.ListByProject(ctx, proj.ID)
			if err != nil {
				return fmt.Errorf("loading phases for %s: %w", proj.DisplayID(), err)
			}
			rows[i] = BoardRow{Project: proj, Phases: phases}
			return nil
		})
	}
	if err = p.Wait(); err != nil {
		return nil, err
	}

	board = NewBoard(rows, startedAt)
	fields["projects"] = len(rows)
	fields["phases"] = board.PhaseCount()
	return board, nil
}

// filterProjectsByScope returns only projects whose ID or short ID is in scope.
// If scope is empty, all projects are returned unchanged.
func filterProjectsByScope(projects []*domain.Project, scope []string) []*domain.Project {
	if len(scope) == 0 {
		return projects
	}
	scopeSet := make(map[string]bool, len(scope))
	for _, id := range scope {
		scopeSet[id] = true
	}
	var filtered []*domain.Project
	for _, p := range projects {
		if scopeSet[p.ID] || scopeSet[p.ShortID] {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
