package cli

import (
	"log/slog"

	"github.com/alexanderramin/roadmap/internal/config"
	"github.com/alexanderramin/roadmap/internal/logging"
	"github.com/alexanderramin/roadmap/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Projects service.ProjectService
	Phases   service.PhaseService
	Tasks    service.TaskService
	Timeline service.TimelineService
	Import   service.ImportService

	// Config may be nil, in which case defaults apply.
	Config *config.Config
	Logger *slog.Logger

	// IsInteractive is true when stdin and stdout are terminals. The root
	// command launches the TUI only then.
	IsInteractive bool
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return logging.Discard()
	}
	return a.Logger
}

func (a *App) config() *config.Config {
	if a.Config == nil {
		return config.Default()
	}
	return a.Config
}

// NewRootCmd creates the top-level "roadmap" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "roadmap",
		Short: "Timeline planner for projects, phases and tasks",
		Long: `roadmap plans projects as date-ranged phases on a Gantt timeline.

Run without arguments in a terminal to open the interactive timeline, where
phase bars can be dragged and resized with the mouse or keyboard.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.IsInteractive {
				return cmd.Help()
			}
			return runTUI(app)
		},
	}

	root.AddCommand(
		newProjectCmd(app),
		newPhaseCmd(app),
		newTaskCmd(app),
		newTimelineCmd(app),
		newExportCmd(app),
	)

	return root
}
