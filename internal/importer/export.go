package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/roadmap/internal/domain"
)

// Export builds a plan file from stored entities. Phase refs are derived from
// the project sequence ("p<seq>") so an exported file re-imports cleanly.
func Export(project *domain.Project, phases []*domain.Phase, tasks []*domain.Task) *ImportSchema {
	schema := &ImportSchema{
		Project: ProjectImport{
			ShortID:     project.ShortID,
			Name:        project.Name,
			Description: project.Description,
			Owner:       project.OwnerID,
			Color:       project.Color,
			StartDate:   project.StartDate.Format(dateLayout),
			TargetDate:  formatOptionalDate(project.TargetDate),
		},
	}

	refs := make(map[string]string, len(phases))
	for i, ph := range phases {
		ref := fmt.Sprintf("p%d", ph.Seq)
		if ph.Seq == 0 {
			ref = fmt.Sprintf("phase%d", i+1)
		}
		refs[ph.ID] = ref

		progress := ph.Progress
		schema.Phases = append(schema.Phases, PhaseImport{
			Ref:         ref,
			Name:        ph.Name,
			StartDate:   ph.StartDate.Format(dateLayout),
			EndDate:     ph.EndDate.Format(dateLayout),
			Deliverable: ph.Deliverable,
			Responsible: ph.Responsible,
			Status:      string(ph.Status),
			Progress:    &progress,
			Color:       ph.Color,
		})
	}

	for _, t := range tasks {
		ref, ok := refs[t.PhaseID]
		if !ok {
			continue
		}
		priority := t.Priority
		schema.Tasks = append(schema.Tasks, TaskImport{
			PhaseRef: ref,
			Name:     t.Name,
			Assignee: t.Assignee,
			DueDate:  formatOptionalDate(t.DueDate),
			Status:   string(t.Status),
			Priority: &priority,
		})
	}

	return schema
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
