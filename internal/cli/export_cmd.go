package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alexanderramin/roadmap/internal/render/svg"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the timeline to other formats",
	}

	cmd.AddCommand(newExportSVGCmd(app))

	return cmd
}

func newExportSVGCmd(app *App) *cobra.Command {
	var (
		flags       windowFlags
		out, title  string
		columnWidth float64
	)

	cmd := &cobra.Command{
		Use:   "svg [PROJECT...]",
		Short: "Write the timeline as an SVG Gantt chart",
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
			w, err := flags.window(board, columnWidth)
			if err != nil {
				return err
			}

			opts := svg.DefaultOptions()
			opts.Title = title
			opts.Today = time.Now()
			doc := svg.Render(board, w, opts)

			if out == "" || out == "-" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), doc)
				return err
			}
			if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d phases to %s\n", board.PhaseCount(), out)
			return nil
		},
	}

	flags.register(cmd, app)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&title, "title", "Roadmap", "Chart title")
	cmd.Flags().Float64Var(&columnWidth, "column-width", app.config().Timeline.ColumnWidth, "Pixels per column")

	return cmd
}
