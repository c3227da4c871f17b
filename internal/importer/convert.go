package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/google/uuid"
)

// GeneratedProject is a converted plan ready for persistence.
type GeneratedProject struct {
	Project *domain.Project
	Phases  []*domain.Phase
	Tasks   []*domain.Task
}

// Convert transforms a validated ImportSchema into domain objects ready for persistence.
// Call ValidateImportSchema first; Convert assumes the schema is valid.
// Phases and the tasks beneath them receive project sequence numbers in file
// order, and phases without an explicit status get the one their dates and
// progress imply.
func Convert(schema *ImportSchema) (*GeneratedProject, error) {
	now := time.Now().UTC()

	phases := make([]*domain.Phase, 0, len(schema.Phases))
	refMap := make(map[string]*domain.Phase, len(schema.Phases))
	var earliest time.Time
	for _, p := range schema.Phases {
		start, err := time.Parse(dateLayout, p.StartDate)
		if err != nil {
			return nil, fmt.Errorf("parsing phase %q start_date: %w", p.Ref, err)
		}
		end, err := time.Parse(dateLayout, p.EndDate)
		if err != nil {
			return nil, fmt.Errorf("parsing phase %q end_date: %w", p.Ref, err)
		}
		if earliest.IsZero() || start.Before(earliest) {
			earliest = start
		}

		ph := &domain.Phase{
			ID:          uuid.New().String(),
			Name:        p.Name,
			StartDate:   start,
			EndDate:     end,
			Deliverable: p.Deliverable,
			Responsible: p.Responsible,
			Status:      domain.PhaseStatus(p.Status),
			Color:       p.Color,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if p.Progress != nil {
			ph.Progress = *p.Progress
		}
		if ph.Status == "" {
			ph.Status = ph.DeriveStatus(now)
		}
		refMap[p.Ref] = ph
		phases = append(phases, ph)
	}

	startDate := earliest
	if schema.Project.StartDate != "" {
		t, err := time.Parse(dateLayout, schema.Project.StartDate)
		if err != nil {
			return nil, fmt.Errorf("parsing start_date: %w", err)
		}
		startDate = t
	}

	project := &domain.Project{
		ID:          uuid.New().String(),
		ShortID:     strings.ToUpper(schema.Project.ShortID),
		Name:        schema.Project.Name,
		Description: schema.Project.Description,
		OwnerID:     schema.Project.Owner,
		Color:       domain.CoalesceStr(schema.Project.Color, domain.DefaultProjectColor),
		StartDate:   startDate,
		TargetDate:  parseOptionalDate(schema.Project.TargetDate),
		Status:      domain.ProjectActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, ph := range phases {
		ph.ProjectID = project.ID
	}

	tasksByPhase := make(map[string][]*domain.Task, len(phases))
	tasks := make([]*domain.Task, 0, len(schema.Tasks))
	for _, t := range schema.Tasks {
		ph, ok := refMap[t.PhaseRef]
		if !ok {
			return nil, fmt.Errorf("phase_ref %q not found for task %q", t.PhaseRef, t.Name)
		}
		task := &domain.Task{
			ID:        uuid.New().String(),
			PhaseID:   ph.ID,
			ProjectID: project.ID,
			Name:      t.Name,
			Assignee:  t.Assignee,
			DueDate:   parseOptionalDate(t.DueDate),
			Status:    domain.TaskStatus(domain.CoalesceStr(t.Status, string(domain.TaskTodo))),
			Priority:  len(tasksByPhase[ph.ID]),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if t.Priority != nil {
			task.Priority = *t.Priority
		}
		tasksByPhase[ph.ID] = append(tasksByPhase[ph.ID], task)
		tasks = append(tasks, task)
	}

	seq := 1
	for _, ph := range phases {
		ph.Seq = seq
		seq++
		for _, task := range tasksByPhase[ph.ID] {
			task.Seq = seq
			seq++
		}
	}

	return &GeneratedProject{
		Project: project,
		Phases:  phases,
		Tasks:   tasks,
	}, nil
}

func parseOptionalDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}
