package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/roadmap/internal/db"
	"github.com/alexanderramin/roadmap/internal/importer"
	"github.com/alexanderramin/roadmap/internal/repository"
)

type importService struct {
	uow      db.UnitOfWork
	projects repository.ProjectRepo
	phases   repository.PhaseRepo
	tasks    repository.TaskRepo
	observer UseCaseObserver
}

func NewImportService(
	uow db.UnitOfWork,
	projects repository.ProjectRepo,
	phases repository.PhaseRepo,
	tasks repository.TaskRepo,
	observers ...UseCaseObserver,
) ImportService {
	return &importService{
		uow:      uow,
		projects: projects,
		phases:   phases,
		tasks:    tasks,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *importService) ImportProject(ctx context.Context, filePath string) (*ImportResult, error) {
	schema, err := importer.LoadImportSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.importSchema(ctx, schema)
}

func (s *importService) ImportProjectFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error) {
	return s.importSchema(ctx, schema)
}

func (s *importService) importSchema(ctx context.Context, schema *importer.ImportSchema) (result *ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"short_id": schema.Project.ShortID}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "import-project",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	generated, err := importer.Convert(schema)
	if err != nil {
		return nil, fmt.Errorf("converting import schema: %w", err)
	}
	fields["phase_count"] = len(generated.Phases)
	fields["task_count"] = len(generated.Tasks)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		projects := repository.NewSQLiteProjectRepo(tx)
		phases := repository.NewSQLitePhaseRepo(tx)
		tasks := repository.NewSQLiteTaskRepo(tx)

		if err := projects.Create(ctx, generated.Project); err != nil {
			return fmt.Errorf("creating project: %w", err)
		}
		for _, ph := range generated.Phases {
			if err := phases.Create(ctx, ph); err != nil {
				return fmt.Errorf("creating phase %q: %w", ph.Name, err)
			}
		}
		for _, t := range generated.Tasks {
			if err := tasks.Create(ctx, t); err != nil {
				return fmt.Errorf("creating task %q: %w", t.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// The project was inserted inside the transaction, past any caching
	// decorator on s.projects.
	if inv, ok := s.projects.(repository.CacheInvalidator); ok {
		if err := inv.Invalidate(ctx); err != nil {
			return nil, err
		}
	}

	return &ImportResult{
		Project:    generated.Project,
		PhaseCount: len(generated.Phases),
		TaskCount:  len(generated.Tasks),
	}, nil
}

func (s *importService) ExportProject(ctx context.Context, projectID string) (*importer.ImportSchema, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	phases, err := s.phases.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing phases: %w", err)
	}
	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return importer.Export(p, phases, tasks), nil
}
