package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/roadmap/internal/domain"
)

// resolveProject finds a project by short ID (case-insensitive), full UUID
// or unambiguous UUID prefix. Archived projects are included.
func resolveProject(ctx context.Context, app *App, input string) (*domain.Project, error) {
	if input == "" {
		return nil, fmt.Errorf("project ID is required")
	}

	projects, err := app.Projects.List(ctx, true)
	if err != nil {
		return nil, err
	}

	for _, p := range projects {
		if strings.EqualFold(p.ShortID, input) {
			return p, nil
		}
	}
	for _, p := range projects {
		if p.ID == input {
			return p, nil
		}
	}

	var matches []*domain.Project
	for _, p := range projects {
		if strings.HasPrefix(p.ID, input) {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("project not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("project ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

func resolveProjectID(ctx context.Context, app *App, input string) (string, error) {
	p, err := resolveProject(ctx, app, input)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

// resolveProjectIDs resolves every reference; an empty list stays empty and
// means all projects.
func resolveProjectIDs(ctx context.Context, app *App, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := resolveProjectID(ctx, app, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// resolvePhase resolves a phase reference ("#n", "n" or a UUID) inside a
// project given by its short ID or UUID.
func resolvePhase(ctx context.Context, app *App, projectRef, phaseRef string) (*domain.Project, *domain.Phase, error) {
	p, err := resolveProject(ctx, app, projectRef)
	if err != nil {
		return nil, nil, err
	}
	ph, err := app.Phases.Resolve(ctx, p.ID, phaseRef)
	if err != nil {
		return nil, nil, fmt.Errorf("phase %s in %s: %w", phaseRef, p.DisplayID(), err)
	}
	return p, ph, nil
}

func resolveTask(ctx context.Context, app *App, projectRef, taskRef string) (*domain.Project, *domain.Task, error) {
	p, err := resolveProject(ctx, app, projectRef)
	if err != nil {
		return nil, nil, err
	}
	t, err := app.Tasks.Resolve(ctx, p.ID, taskRef)
	if err != nil {
		return nil, nil, fmt.Errorf("task %s in %s: %w", taskRef, p.DisplayID(), err)
	}
	return p, t, nil
}
