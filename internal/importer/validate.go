package importer

import (
	"fmt"
	"regexp"
	"time"

	"github.com/alexanderramin/roadmap/internal/domain"
)

const dateLayout = "2006-01-02"

var shortIDPattern = regexp.MustCompile(`^[A-Za-z]{3,6}[0-9]{2,4}$`)

// ValidateImportSchema checks the plan for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	errs = append(errs, validateProject(&schema.Project)...)

	phaseRefs := make(map[string]bool)
	errs = append(errs, validatePhases(schema.Phases, phaseRefs)...)
	errs = append(errs, validateTasks(schema.Tasks, phaseRefs)...)

	return errs
}

func validateProject(p *ProjectImport) []error {
	var errs []error

	if p.ShortID == "" {
		errs = append(errs, fmt.Errorf("project.short_id is required"))
	} else if !shortIDPattern.MatchString(p.ShortID) {
		errs = append(errs, fmt.Errorf("project.short_id %q must be 3-6 letters followed by 2-4 digits", p.ShortID))
	}
	if p.Name == "" {
		errs = append(errs, fmt.Errorf("project.name is required"))
	}
	if p.Color != "" {
		if err := domain.ValidateColor(p.Color); err != nil {
			errs = append(errs, fmt.Errorf("project.color: %w", err))
		}
	}
	errs = append(errs, validateOptionalDate("project.start_date", &p.StartDate)...)
	errs = append(errs, validateOptionalDate("project.target_date", p.TargetDate)...)

	if p.StartDate != "" && p.TargetDate != nil {
		start, startErr := time.Parse(dateLayout, p.StartDate)
		target, targetErr := time.Parse(dateLayout, *p.TargetDate)
		if startErr == nil && targetErr == nil && !target.After(start) {
			errs = append(errs, fmt.Errorf("project.target_date %q must be after start_date %q", *p.TargetDate, p.StartDate))
		}
	}

	return errs
}

func validatePhases(phases []PhaseImport, phaseRefs map[string]bool) []error {
	var errs []error

	if len(phases) == 0 {
		errs = append(errs, fmt.Errorf("phases: at least one phase is required"))
	}

	for i, ph := range phases {
		prefix := fmt.Sprintf("phases[%d]", i)

		if ph.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if phaseRefs[ph.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, ph.Ref))
		} else {
			phaseRefs[ph.Ref] = true
		}

		if ph.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}

		start, startErr := parseRequiredDate(prefix+".start_date", ph.StartDate)
		end, endErr := parseRequiredDate(prefix+".end_date", ph.EndDate)
		if startErr != nil {
			errs = append(errs, startErr)
		}
		if endErr != nil {
			errs = append(errs, endErr)
		}
		if startErr == nil && endErr == nil && !end.After(start) {
			errs = append(errs, fmt.Errorf("%s.end_date %q must be after start_date %q", prefix, ph.EndDate, ph.StartDate))
		}

		if ph.Status != "" && !domain.ValidPhaseStatuses[domain.PhaseStatus(ph.Status)] {
			errs = append(errs, fmt.Errorf("%s.status: invalid value %q", prefix, ph.Status))
		}
		if ph.Progress != nil && (*ph.Progress < 0 || *ph.Progress > 100) {
			errs = append(errs, fmt.Errorf("%s.progress must be between 0 and 100", prefix))
		}
		if ph.Color != "" {
			if err := domain.ValidateColor(ph.Color); err != nil {
				errs = append(errs, fmt.Errorf("%s.color: %w", prefix, err))
			}
		}
	}

	return errs
}

func validateTasks(tasks []TaskImport, phaseRefs map[string]bool) []error {
	var errs []error

	for i, t := range tasks {
		prefix := fmt.Sprintf("tasks[%d]", i)

		if t.PhaseRef == "" {
			errs = append(errs, fmt.Errorf("%s.phase_ref is required", prefix))
		} else if !phaseRefs[t.PhaseRef] {
			errs = append(errs, fmt.Errorf("%s.phase_ref: ref %q not found in phases", prefix, t.PhaseRef))
		}
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if t.Status != "" && !domain.ValidTaskStatuses[domain.TaskStatus(t.Status)] {
			errs = append(errs, fmt.Errorf("%s.status: invalid value %q", prefix, t.Status))
		}
		errs = append(errs, validateOptionalDate(prefix+".due_date", t.DueDate)...)
	}

	return errs
}

func parseRequiredDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid date format %q (expected YYYY-MM-DD)", field, s)
	}
	return t, nil
}

func validateOptionalDate(field string, s *string) []error {
	if s == nil || *s == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, *s); err != nil {
		return []error{fmt.Errorf("%s: invalid date format %q (expected YYYY-MM-DD)", field, *s)}
	}
	return nil
}
