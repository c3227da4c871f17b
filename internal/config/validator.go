package config

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/alexanderramin/roadmap/internal/timeline"
)

// ValidationError represents a single invalid setting.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the accepted log.level values.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config and returns every problem found.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if c.DB.Path == "" {
		errs = append(errs, ValidationError{"db.path", c.DB.Path, "must not be empty"})
	}
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Log.Level)) {
		errs = append(errs, ValidationError{"log.level", c.Log.Level, "must be one of " + strings.Join(ValidLogLevels(), ", ")})
	}

	t := c.Timeline
	if _, err := timeline.ParseUnit(t.Unit); err != nil {
		errs = append(errs, ValidationError{"timeline.unit", t.Unit, "must be month or week"})
	}
	if t.Columns < 1 || t.Columns > 120 {
		errs = append(errs, ValidationError{"timeline.columns", t.Columns, "must be between 1 and 120"})
	}
	if !(t.ColumnWidth > 0) || math.IsInf(t.ColumnWidth, 0) {
		errs = append(errs, ValidationError{"timeline.column_width", t.ColumnWidth, "must be a positive number"})
	}
	if t.CellWidth < 2 {
		errs = append(errs, ValidationError{"timeline.cell_width", t.CellWidth, "must be at least 2"})
	}
	if t.MinVisibleCells < 0 {
		errs = append(errs, ValidationError{"timeline.min_visible_cells", t.MinVisibleCells, "must not be negative"})
	}
	if t.DragFloorCells < 0 {
		errs = append(errs, ValidationError{"timeline.drag_floor_cells", t.DragFloorCells, "must not be negative"})
	}
	if t.RefreshSeconds < 0 {
		errs = append(errs, ValidationError{"timeline.refresh_seconds", t.RefreshSeconds, "must not be negative"})
	}

	return errs
}
