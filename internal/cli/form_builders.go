package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/roadmap/internal/cli/formatter"
	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// roadmapHuhTheme returns a custom huh theme using the formatter palette.
func roadmapHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// phaseFormValues is the string-typed state bound to the phase form fields.
type phaseFormValues struct {
	ProjectID   string
	Name        string
	Start       string
	End         string
	Responsible string
	Deliverable string
	Progress    string
}

// dateInput returns a huh.Input for a date field with YYYY-MM-DD validation.
func dateInput(title, placeholder string, value *string, required bool) *huh.Input {
	if placeholder == "" {
		placeholder = time.Now().Format(time.DateOnly)
	}
	validate := validateOptionalDate
	if required {
		validate = validateRequiredDate
	}
	return huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(value).
		Validate(validate)
}

// newPhaseForm builds the interactive "phase add" form. The project selector
// is only shown when projects is non-empty; otherwise values.ProjectID must
// already be set.
func newPhaseForm(values *phaseFormValues, projects []*domain.Project) *huh.Form {
	var groups []*huh.Group

	if len(projects) > 0 {
		options := make([]huh.Option[string], 0, len(projects))
		for _, p := range projects {
			options = append(options, huh.NewOption(fmt.Sprintf("%s  %s", p.DisplayID(), p.Name), p.ID))
		}
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().
				Title("Project").
				Options(options...).
				Value(&values.ProjectID),
		))
	}

	groups = append(groups, huh.NewGroup(
		huh.NewInput().
			Title("Phase name").
			Value(&values.Name).
			Validate(validateRequired("phase name")),
		dateInput("Start date (YYYY-MM-DD)", "", &values.Start, true),
		dateInput("End date (YYYY-MM-DD)", "", &values.End, true).
			Validate(func(s string) error { return validateEndAfter(values.Start, s) }),
	), huh.NewGroup(
		huh.NewInput().Title("Responsible").Value(&values.Responsible),
		huh.NewInput().Title("Deliverable").Value(&values.Deliverable),
		huh.NewInput().
			Title("Progress (0-100)").
			Placeholder("0").
			Value(&values.Progress).
			Validate(validateProgress),
	))

	return huh.NewForm(groups...).WithTheme(roadmapHuhTheme()).WithShowHelp(false)
}

// phaseFromForm converts submitted form values into a new phase.
func phaseFromForm(v phaseFormValues) (*domain.Phase, error) {
	start, err := time.Parse(time.DateOnly, v.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", v.Start, err)
	}
	end, err := time.Parse(time.DateOnly, v.End)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", v.End, err)
	}
	progress := 0
	if v.Progress != "" {
		if progress, err = strconv.Atoi(v.Progress); err != nil {
			return nil, fmt.Errorf("invalid progress %q: %w", v.Progress, err)
		}
	}
	return &domain.Phase{
		ProjectID:   v.ProjectID,
		Name:        strings.TrimSpace(v.Name),
		StartDate:   start,
		EndDate:     end,
		Responsible: strings.TrimSpace(v.Responsible),
		Deliverable: strings.TrimSpace(v.Deliverable),
		Progress:    progress,
	}, nil
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// validateOptionalDate accepts empty or a YYYY-MM-DD date string.
func validateOptionalDate(s string) error {
	if s == "" {
		return nil
	}
	return validateRequiredDate(s)
}

func validateRequiredDate(s string) error {
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	return nil
}

// validateEndAfter checks end against an already entered start. An invalid
// start is reported on its own field.
func validateEndAfter(start, end string) error {
	if err := validateRequiredDate(end); err != nil {
		return err
	}
	s, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return nil
	}
	e, _ := time.Parse(time.DateOnly, end)
	if !e.After(s) {
		return fmt.Errorf("end date must be after %s", start)
	}
	return nil
}

// validateProgress accepts empty or an integer between 0 and 100.
func validateProgress(s string) error {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 || v > 100 {
		return fmt.Errorf("enter a number between 0 and 100")
	}
	return nil
}

// parseDateFlag parses an optional YYYY-MM-DD flag value.
func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s date %q (expected YYYY-MM-DD)", name, value)
	}
	return &t, nil
}
