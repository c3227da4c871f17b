package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/roadmap/internal/cli/formatter"
	"github.com/alexanderramin/roadmap/internal/service"
	"github.com/alexanderramin/roadmap/internal/timeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// unitFlag is a --unit value checked while flags are parsed.
type unitFlag struct {
	unit timeline.Unit
}

var _ pflag.Value = (*unitFlag)(nil)

func (u *unitFlag) String() string { return string(u.unit) }

func (u *unitFlag) Set(s string) error {
	unit, err := timeline.ParseUnit(s)
	if err != nil {
		return err
	}
	u.unit = unit
	return nil
}

func (u *unitFlag) Type() string { return "unit" }

// windowFlags are the view-window flags shared by timeline and export.
type windowFlags struct {
	start   string
	unit    unitFlag
	columns int
	archive bool
	refresh bool
}

func (f *windowFlags) register(cmd *cobra.Command, app *App) {
	cfg := app.config().Timeline
	cmd.Flags().StringVar(&f.start, "start", "", "First visible date (YYYY-MM-DD, default: earliest phase)")
	if err := f.unit.Set(cfg.Unit); err != nil {
		f.unit.unit = timeline.UnitMonth
	}
	cmd.Flags().Var(&f.unit, "unit", "Column unit (month|week)")
	cmd.Flags().IntVar(&f.columns, "columns", cfg.Columns, "Number of visible columns")
	cmd.Flags().BoolVar(&f.archive, "all", false, "Include archived projects")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "Re-derive phase statuses before loading")
}

func (f *windowFlags) request(projects []string) service.BoardRequest {
	return service.BoardRequest{ProjectIDs: projects, IncludeArchived: f.archive, RefreshStatuses: f.refresh}
}

// window builds the view window at the given scale. Without --start it opens
// on the earliest phase of the board, or today when the board is empty.
func (f *windowFlags) window(board *service.Board, columnWidth float64) (timeline.Window, error) {
	var err error
	anchor := time.Now()
	if f.start != "" {
		if anchor, err = time.Parse(time.DateOnly, f.start); err != nil {
			return timeline.Window{}, fmt.Errorf("invalid start date %q: %w", f.start, err)
		}
	} else if bounds, ok := board.Bounds(); ok {
		anchor = bounds.Start
	}
	return timeline.NewWindow(anchor, columnWidth, f.columns, f.unit.unit)
}

func newTimelineCmd(app *App) *cobra.Command {
	var flags windowFlags

	cmd := &cobra.Command{
		Use:   "timeline [PROJECT...]",
		Short: "Print the Gantt timeline of all or some projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			ids, err := resolveProjectIDs(ctx, app, args)
			if err != nil {
				return err
			}
			board, err := app.Timeline.Board(ctx, flags.request(ids))
			if err != nil {
				return err
			}
			cfg := app.config().Timeline
			w, err := flags.window(board, float64(cfg.CellWidth))
			if err != nil {
				return err
			}
			opts := formatter.DefaultGanttOptions()
			opts.MinVisibleCells = cfg.MinVisibleCells
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGantt(board, w, opts))
			return nil
		},
	}

	flags.register(cmd, app)

	return cmd
}
