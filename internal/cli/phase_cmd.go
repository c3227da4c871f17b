package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/roadmap/internal/cli/formatter"
	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/timeline"
	"github.com/spf13/cobra"
)

func newPhaseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "Manage the phases of a project",
	}

	cmd.AddCommand(
		newPhaseAddCmd(app),
		newPhaseListCmd(app),
		newPhaseUpdateCmd(app),
		newPhaseMoveCmd(app),
		newPhaseRemoveCmd(app),
		newPhaseRefreshStatusCmd(app),
	)

	return cmd
}

func newPhaseAddCmd(app *App) *cobra.Command {
	var (
		name, start, end, responsible, deliverable, color string
		progress                                          int
		interactive                                       bool
	)

	cmd := &cobra.Command{
		Use:   "add [PROJECT]",
		Short: "Add a phase to a project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			var ph *domain.Phase
			if interactive {
				values := phaseFormValues{Name: name, Start: start, End: end}
				var choices []*domain.Project
				if len(args) == 1 {
					p, err := resolveProject(ctx, app, args[0])
					if err != nil {
						return err
					}
					values.ProjectID = p.ID
				} else {
					projects, err := app.Projects.List(ctx, false)
					if err != nil {
						return err
					}
					if len(projects) == 0 {
						return errors.New("no projects yet; create one with 'project add'")
					}
					choices = projects
				}
				if err := newPhaseForm(&values, choices).Run(); err != nil {
					return err
				}
				var err error
				if ph, err = phaseFromForm(values); err != nil {
					return err
				}
			} else {
				if len(args) == 0 {
					return errors.New("project ID is required (or use --interactive)")
				}
				p, err := resolveProject(ctx, app, args[0])
				if err != nil {
					return err
				}
				if name == "" || start == "" || end == "" {
					return errors.New("--name, --start and --end are required")
				}
				if ph, err = phaseFromForm(phaseFormValues{
					ProjectID: p.ID, Name: name, Start: start, End: end,
					Responsible: responsible, Deliverable: deliverable,
				}); err != nil {
					return err
				}
				ph.Progress = progress
			}
			ph.Color = color

			if err := app.Phases.Create(ctx, ph); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created phase %s %s (%s)\n",
				ph.DisplayID(), ph.Name, formatter.DateRange(ph.StartDate, ph.EndDate))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Phase name")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD), after start")
	cmd.Flags().StringVar(&responsible, "responsible", "", "Who owns the phase")
	cmd.Flags().StringVar(&deliverable, "deliverable", "", "What the phase produces")
	cmd.Flags().StringVar(&color, "color", "", "Bar color as #rrggbb")
	cmd.Flags().IntVar(&progress, "progress", 0, "Progress percentage (0-100)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Fill in the phase with a form")

	return cmd
}

func newPhaseListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT",
		Short: "List the phases of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			phases, err := app.Phases.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", formatter.FormatPhaseList(p, phases))
			return nil
		},
	}
}

func newPhaseUpdateCmd(app *App) *cobra.Command {
	var (
		name, start, end, responsible, deliverable, color string
		progress                                          int
	)

	cmd := &cobra.Command{
		Use:   "update PROJECT PHASE",
		Short: "Update a phase (PHASE is #n, n or a UUID)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, ph, err := resolvePhase(ctx, app, args[0], args[1])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				ph.Name = name
			}
			if flags.Changed("start") {
				if ph.StartDate, err = time.Parse(time.DateOnly, start); err != nil {
					return fmt.Errorf("invalid start date %q: %w", start, err)
				}
			}
			if flags.Changed("end") {
				if ph.EndDate, err = time.Parse(time.DateOnly, end); err != nil {
					return fmt.Errorf("invalid end date %q: %w", end, err)
				}
			}
			if flags.Changed("responsible") {
				ph.Responsible = responsible
			}
			if flags.Changed("deliverable") {
				ph.Deliverable = deliverable
			}
			if flags.Changed("color") {
				ph.Color = color
			}
			if flags.Changed("progress") {
				ph.Progress = progress
			}

			if err := app.Phases.Update(ctx, ph); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPhase(ph))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Phase name")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&responsible, "responsible", "", "Who owns the phase")
	cmd.Flags().StringVar(&deliverable, "deliverable", "", "What the phase produces")
	cmd.Flags().StringVar(&color, "color", "", "Bar color as #rrggbb")
	cmd.Flags().IntVar(&progress, "progress", 0, "Progress percentage (0-100)")

	return cmd
}

func newPhaseMoveCmd(app *App) *cobra.Command {
	var (
		days int
		to   string
	)

	cmd := &cobra.Command{
		Use:   "move PROJECT PHASE",
		Short: "Shift a phase in time, keeping its duration",
		Long: `Move shifts both dates of a phase. Use --days for a relative shift
(negative moves earlier) or --to for a new start date.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, ph, err := resolvePhase(ctx, app, args[0], args[1])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			switch {
			case flags.Changed("to") && flags.Changed("days"):
				return errors.New("use either --days or --to, not both")
			case flags.Changed("to"):
				target, err := time.Parse(time.DateOnly, to)
				if err != nil {
					return fmt.Errorf("invalid --to date %q: %w", to, err)
				}
				days = timeline.DaysBetween(ph.StartDate, target)
			case !flags.Changed("days"):
				return errors.New("one of --days or --to is required")
			}
			if days == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Phase %s unchanged\n", ph.DisplayID())
				return nil
			}

			updated, err := app.Phases.UpdateDates(ctx, ph.ID,
				timeline.AddDays(ph.StartDate, days), timeline.AddDays(ph.EndDate, days))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved phase %s %s to %s\n",
				updated.DisplayID(), updated.Name, formatter.DateRange(updated.StartDate, updated.EndDate))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Days to shift by")
	cmd.Flags().StringVar(&to, "to", "", "New start date (YYYY-MM-DD)")

	return cmd
}

func newPhaseRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove PROJECT PHASE",
		Short: "Remove a phase and its tasks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, ph, err := resolvePhase(ctx, app, args[0], args[1])
			if err != nil {
				return err
			}
			if err := app.Phases.Delete(ctx, ph.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed phase %s %s\n", ph.DisplayID(), ph.Name)
			return nil
		},
	}
}

func newPhaseRefreshStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-status [PROJECT]",
		Short: "Re-derive phase statuses from progress and today's date",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			var projects []*domain.Project
			if len(args) == 1 {
				p, err := resolveProject(ctx, app, args[0])
				if err != nil {
					return err
				}
				projects = []*domain.Project{p}
			} else {
				var err error
				if projects, err = app.Projects.List(ctx, false); err != nil {
					return err
				}
			}

			total := 0
			for _, p := range projects {
				n, err := app.Phases.RefreshProjectStatuses(ctx, p.ID)
				if err != nil {
					return fmt.Errorf("refreshing %s: %w", p.DisplayID(), err)
				}
				total += n
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d phase statuses across %d projects\n", total, len(projects))
			return nil
		},
	}
}
