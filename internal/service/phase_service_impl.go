package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/roadmap/internal/db"
	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/repository"
	"github.com/alexanderramin/roadmap/internal/timeline"
	"github.com/google/uuid"
)

type phaseService struct {
	uow      db.UnitOfWork
	phases   repository.PhaseRepo
	observer UseCaseObserver
	now      func() time.Time
}

// NewPhaseService builds a PhaseService. Creation allocates the project
// sequence number and inserts the phase in one transaction on uow.
func NewPhaseService(uow db.UnitOfWork, phases repository.PhaseRepo, observers ...UseCaseObserver) PhaseService {
	return &phaseService{
		uow:      uow,
		phases:   phases,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *phaseService) observe(ctx context.Context, name string, startedAt time.Time, err error, fields map[string]any) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}

func (s *phaseService) Create(ctx context.Context, ph *domain.Phase) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observe(ctx, "create-phase", startedAt, err, map[string]any{"project_id": ph.ProjectID, "seq": ph.Seq})
	}()

	ph.StartDate = timeline.Day(ph.StartDate)
	ph.EndDate = timeline.Day(ph.EndDate)
	if err = ph.Validate(); err != nil {
		return err
	}
	if !ph.EndDate.After(ph.StartDate) {
		return fmt.Errorf("end date %s must be after start date %s",
			ph.EndDate.Format("2006-01-02"), ph.StartDate.Format("2006-01-02"))
	}
	if ph.ID == "" {
		ph.ID = uuid.New().String()
	}
	now := s.now()
	ph.CreatedAt = now
	ph.UpdatedAt = now
	if ph.Status == "" {
		ph.Status = ph.DeriveStatus(now)
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if ph.Seq == 0 {
			seq, err := repository.NewSQLiteProjectSequenceRepo(tx).NextProjectSeq(ctx, ph.ProjectID)
			if err != nil {
				return err
			}
			ph.Seq = seq
		}
		return repository.NewSQLitePhaseRepo(tx).Create(ctx, ph)
	})
}

func (s *phaseService) GetByID(ctx context.Context, id string) (*domain.Phase, error) {
	return s.phases.GetByID(ctx, id)
}

func (s *phaseService) Resolve(ctx context.Context, projectID, ref string) (*domain.Phase, error) {
	if seq, ok := parseSeqRef(ref); ok {
		ph, err := s.phases.GetBySeq(ctx, projectID, seq)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("phase", ref)
		}
		return ph, err
	}
	ph, err := s.phases.GetByID(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && ph.ProjectID != projectID) {
		return nil, notFound("phase", ref)
	}
	return ph, err
}

func (s *phaseService) ListByProject(ctx context.Context, projectID string) ([]*domain.Phase, error) {
	return s.phases.ListByProject(ctx, projectID)
}

func (s *phaseService) Update(ctx context.Context, ph *domain.Phase) error {
	ph.StartDate = timeline.Day(ph.StartDate)
	ph.EndDate = timeline.Day(ph.EndDate)
	if err := ph.Validate(); err != nil {
		return err
	}
	if !ph.EndDate.After(ph.StartDate) {
		return fmt.Errorf("end date %s must be after start date %s",
			ph.EndDate.Format("2006-01-02"), ph.StartDate.Format("2006-01-02"))
	}
	ph.Status = ph.DeriveStatus(s.now())
	ph.UpdatedAt = s.now()
	return s.phases.Update(ctx, ph)
}

func (s *phaseService) UpdateDates(ctx context.Context, id string, start, end time.Time) (ph *domain.Phase, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observe(ctx, "update-phase-dates", startedAt, err, map[string]any{
			"phase_id": id,
			"start":    start.Format("2006-01-02"),
			"end":      end.Format("2006-01-02"),
		})
	}()

	if !timeline.IsValidDate(start) || !timeline.IsValidDate(end) {
		return nil, fmt.Errorf("updating phase dates: %w", timeline.ErrInvalidInterval)
	}
	start, end = timeline.Day(start), timeline.Day(end)
	if !end.After(start) {
		return nil, fmt.Errorf("end date %s must be after start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	ph, err = s.phases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ph.StartDate = start
	ph.EndDate = end
	ph.Status = ph.DeriveStatus(s.now())

	if err = s.phases.UpdateDates(ctx, id, start, end, ph.Status); err != nil {
		return nil, err
	}
	return s.phases.GetByID(ctx, id)
}

func (s *phaseService) RefreshStatus(ctx context.Context, id string) (*domain.Phase, error) {
	ph, err := s.phases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.refresh(ctx, ph); err != nil {
		return nil, err
	}
	return ph, nil
}

func (s *phaseService) RefreshProjectStatuses(ctx context.Context, projectID string) (changed int, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observe(ctx, "refresh-phase-statuses", startedAt, err, map[string]any{
			"project_id": projectID,
			"changed":    changed,
		})
	}()

	phases, err := s.phases.ListByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	for _, ph := range phases {
		ok, err := s.refresh(ctx, ph)
		if err != nil {
			return changed, err
		}
		if ok {
			changed++
		}
	}
	return changed, nil
}

// refresh writes the derived status only when it differs from the stored one.
func (s *phaseService) refresh(ctx context.Context, ph *domain.Phase) (bool, error) {
	next := ph.DeriveStatus(s.now())
	if next == ph.Status {
		return false, nil
	}
	if err := s.phases.UpdateStatus(ctx, ph.ID, next); err != nil {
		return false, err
	}
	ph.Status = next
	return true, nil
}

func (s *phaseService) Delete(ctx context.Context, id string) error {
	return s.phases.Delete(ctx, id)
}
