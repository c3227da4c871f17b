package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/roadmap/internal/domain"
)

// FormatPhaseList renders the phases of one project as a table.
func FormatPhaseList(project *domain.Project, phases []*domain.Phase) string {
	if len(phases) == 0 {
		return Dim(fmt.Sprintf("No phases in %s.", project.DisplayID())) + "\n"
	}
	headers := []string{"ID", "NAME", "START", "END", "DAYS", "STATUS", "PROGRESS", "RESPONSIBLE"}
	rows := make([][]string, 0, len(phases))
	for _, ph := range phases {
		responsible := Dim("--")
		if ph.Responsible != "" {
			responsible = ph.Responsible
		}
		rows = append(rows, []string{
			Dim(ph.DisplayID()),
			Bold(ph.Name),
			ph.StartDate.Format("2006-01-02"),
			ph.EndDate.Format("2006-01-02"),
			strconv.Itoa(ph.Interval().Days()),
			PhaseStatusPill(ph.Status),
			RenderProgress(ph.Progress, 10),
			responsible,
		})
	}
	return RenderBox(project.DisplayID()+" phases", RenderTable(headers, rows, 4))
}

// FormatPhase renders a single phase after a create or update.
func FormatPhase(ph *domain.Phase) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s\n", Dim(ph.DisplayID()), Bold(ph.Name)))
	b.WriteString(fmt.Sprintf("  %s  %s (%d days)\n", StyleDim.Render("DATES   "), DateRange(ph.StartDate, ph.EndDate), ph.Interval().Days()))
	b.WriteString(fmt.Sprintf("  %s  %s\n", StyleDim.Render("STATUS  "), PhaseStatusPill(ph.Status)))
	b.WriteString(fmt.Sprintf("  %s  %s\n", StyleDim.Render("PROGRESS"), RenderProgress(ph.Progress, 10)))
	if ph.Deliverable != "" {
		b.WriteString(fmt.Sprintf("  %s  %s\n", StyleDim.Render("DELIVERS"), ph.Deliverable))
	}
	return b.String()
}
