package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/roadmap/internal/cli/formatter"
	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/service"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage the tasks of a phase",
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskListCmd(app),
		newTaskToggleCmd(app),
		newTaskDoneCmd(app),
		newTaskReorderCmd(app),
		newTaskRemoveCmd(app),
	)

	return cmd
}

func newTaskAddCmd(app *App) *cobra.Command {
	var name, assignee, due string
	var priority int

	cmd := &cobra.Command{
		Use:   "add PROJECT PHASE",
		Short: "Add a task to a phase",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, ph, err := resolvePhase(ctx, app, args[0], args[1])
			if err != nil {
				return err
			}

			t := &domain.Task{PhaseID: ph.ID, Name: name, Assignee: assignee}
			if t.DueDate, err = parseDateFlag("due", due); err != nil {
				return err
			}
			if cmd.Flags().Changed("priority") {
				t.Priority = priority
			} else {
				existing, err := app.Tasks.ListByPhase(ctx, ph.ID)
				if err != nil {
					return err
				}
				t.Priority = len(existing)
			}

			if err := app.Tasks.Create(ctx, t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d %s in phase %s\n", t.Seq, t.Name, ph.DisplayID())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Task name")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Who does the task")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&priority, "priority", 0, "Sort position within the phase (default: last)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	var (
		assignee, search        string
		upcoming, overdue, done bool
	)

	cmd := &cobra.Command{
		Use:   "list [PROJECT [PHASE]]",
		Short: "List tasks of a project, of one phase, or of one assignee",
		Long: `List tasks of a project or of one of its phases.

With --assignee, list that person's tasks across every project. --upcoming
keeps unfinished tasks due within a week, --overdue unfinished tasks past
their due date and --done finished ones.`,
		Example: `  roadmap task list WEB01
  roadmap task list WEB01 1
  roadmap task list --assignee lee --overdue`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			now := time.Now()

			if assignee != "" {
				if len(args) > 0 {
					return errors.New("--assignee lists every project; drop the PROJECT argument")
				}
				view := service.TaskViewAll
				switch {
				case upcoming:
					view = service.TaskViewUpcoming
				case overdue:
					view = service.TaskViewOverdue
				case done:
					view = service.TaskViewCompleted
				}
				tasks, err := app.Tasks.ListAssigned(ctx, service.AssignedTasksQuery{
					Assignee: assignee, Search: search, View: view, Now: now,
				})
				if err != nil {
					return err
				}
				names, err := taskPhaseLabels(ctx, app, tasks)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskList(tasks, names, now))
				return nil
			}
			if len(args) == 0 {
				return errors.New("requires a PROJECT argument or --assignee")
			}
			if upcoming || overdue || done || search != "" {
				return errors.New("--upcoming, --overdue, --done and --search need --assignee")
			}

			if len(args) == 2 {
				_, ph, err := resolvePhase(ctx, app, args[0], args[1])
				if err != nil {
					return err
				}
				tasks, err := app.Tasks.ListByPhase(ctx, ph.ID)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskList(tasks, nil, now))
				return nil
			}

			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			phases, err := app.Phases.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			names := make(map[string]string, len(phases))
			for _, ph := range phases {
				names[ph.ID] = ph.DisplayID() + " " + ph.Name
			}
			tasks, err := app.Tasks.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskList(tasks, names, now))
			return nil
		},
	}

	cmd.Flags().StringVar(&assignee, "assignee", "", "List this person's tasks across all projects")
	cmd.Flags().StringVar(&search, "search", "", "Only tasks whose name contains this text")
	cmd.Flags().BoolVar(&upcoming, "upcoming", false, "Unfinished tasks due within a week")
	cmd.Flags().BoolVar(&overdue, "overdue", false, "Unfinished tasks past their due date")
	cmd.Flags().BoolVar(&done, "done", false, "Finished tasks")
	cmd.MarkFlagsMutuallyExclusive("upcoming", "overdue", "done")

	return cmd
}

// taskPhaseLabels names each task's phase with its project, e.g. "WEB01 #1 Build".
func taskPhaseLabels(ctx context.Context, app *App, tasks []*domain.Task) (map[string]string, error) {
	projects, err := app.Projects.List(ctx, true)
	if err != nil {
		return nil, err
	}
	shortIDs := make(map[string]string, len(projects))
	for _, p := range projects {
		shortIDs[p.ID] = p.ShortID
	}
	names := make(map[string]string)
	for _, t := range tasks {
		if _, ok := names[t.PhaseID]; ok {
			continue
		}
		ph, err := app.Phases.GetByID(ctx, t.PhaseID)
		if err != nil {
			return nil, err
		}
		names[t.PhaseID] = shortIDs[t.ProjectID] + " " + ph.DisplayID() + " " + ph.Name
	}
	return names, nil
}

func newTaskToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle PROJECT TASK",
		Short: "Cycle a task through todo, doing and done",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, t, err := resolveTask(ctx, app, args[0], args[1])
			if err != nil {
				return err
			}
			updated, err := app.Tasks.ToggleStatus(ctx, t.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task #%d %s is now %s\n", updated.Seq, updated.Name, updated.Status)
			return nil
		},
	}
}

func newTaskDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done PROJECT TASK",
		Short: "Mark a task done",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, t, err := resolveTask(ctx, app, args[0], args[1])
			if err != nil {
				return err
			}
			if err := app.Tasks.MarkDone(ctx, t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task #%d %s is done\n", t.Seq, t.Name)
			return nil
		},
	}
}

func newTaskReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder PROJECT PHASE TASK...",
		Short: "Set the order of tasks within a phase",
		Long: `Reorder assigns priorities following the order of the TASK arguments.
Tasks of the phase that are not listed keep their current priority.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			p, ph, err := resolvePhase(ctx, app, args[0], args[1])
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(args)-2)
			for _, ref := range args[2:] {
				t, err := app.Tasks.Resolve(ctx, p.ID, ref)
				if err != nil {
					return fmt.Errorf("task %s in %s: %w", ref, p.DisplayID(), err)
				}
				ids = append(ids, t.ID)
			}
			if err := app.Tasks.Reorder(ctx, ph.ID, ids); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reordered %d tasks in phase %s\n", len(ids), ph.DisplayID())
			return nil
		},
	}
}

func newTaskRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove PROJECT TASK",
		Short: "Remove a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, t, err := resolveTask(ctx, app, args[0], args[1])
			if err != nil {
				return err
			}
			if err := app.Tasks.Delete(ctx, t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed task #%d %s\n", t.Seq, t.Name)
			return nil
		},
	}
}
