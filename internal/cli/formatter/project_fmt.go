package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// ProjectInspectData holds all data needed to render a project inspect view.
type ProjectInspectData struct {
	Project *domain.Project
	Phases  []*domain.Phase
	Tasks   map[string][]*domain.Task // phaseID -> tasks in priority order
}

// FormatProjectList renders a styled project list inside a bordered box.
func FormatProjectList(projects []*domain.Project) string {
	headers := []string{"ID", "NAME", "OWNER", "STATUS", "START", "DUE"}
	rows := make([][]string, 0, len(projects))

	for _, p := range projects {
		id := p.ShortID
		if strings.TrimSpace(id) == "" {
			id = TruncID(p.ID)
		}
		if strings.TrimSpace(id) == "" {
			id = "--"
		}

		owner := Dim("--")
		if p.OwnerID != "" {
			owner = p.OwnerID
		}

		dueStr := Dim("--")
		if p.TargetDate != nil {
			dueStr = RelativeDateStyled(*p.TargetDate)
		}

		rows = append(rows, []string{
			id,
			Bold(p.Name),
			owner,
			StatusPill(p.Status),
			p.StartDate.Format("2006-01-02"),
			dueStr,
		})
	}

	table := RenderTable(headers, rows)
	return RenderBox("Projects", table)
}

// FormatProjectInspect renders a project card: metadata on the left and the
// phase/task tree on the right.
func FormatProjectInspect(data ProjectInspectData) string {
	leftPanel := buildMetadataPanel(data.Project)
	rightPanel := buildTreePanel(data.Phases, data.Tasks)

	spacing := "    "
	combined := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, spacing, rightPanel)

	return RenderBox("", combined)
}

func buildMetadataPanel(p *domain.Project) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Render("■ ") + StyleBold.Render(p.Name) + "\n")
	if p.Description != "" {
		b.WriteString(Dim(p.Description) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s  %s\n", StyleDim.Render("STATUS "), StatusPill(p.Status)))
	b.WriteString(fmt.Sprintf("%s  %s\n", StyleDim.Render("ID     "), Dim(p.ShortID)))
	b.WriteString(fmt.Sprintf("%s  %s\n", StyleDim.Render("UUID   "), TruncID(p.ID)))
	if p.OwnerID != "" {
		b.WriteString(fmt.Sprintf("%s  %s\n", StyleDim.Render("OWNER  "), StyleFg.Render(p.OwnerID)))
	}
	b.WriteString(fmt.Sprintf("%s  %s\n", StyleDim.Render("START  "), StyleFg.Render(HumanDate(p.StartDate))))

	if p.TargetDate != nil {
		dueRelative := RelativeDateStyled(*p.TargetDate)
		dueAbsolute := p.TargetDate.Format("Jan 2, 2006")
		b.WriteString(fmt.Sprintf("%s  %s %s\n", StyleDim.Render("DUE    "), dueRelative, Dim("("+dueAbsolute+")")))
	}

	if p.ArchivedAt != nil {
		b.WriteString(fmt.Sprintf("%s  %s\n", StyleDim.Render("ARCHVD "), HumanTimestamp(*p.ArchivedAt)))
	}

	b.WriteString(fmt.Sprintf("%s  %s\n", StyleDim.Render("UPDATED"), HumanTimestamp(p.UpdatedAt)))

	return lipgloss.NewStyle().Width(45).Render(b.String())
}

func buildTreePanel(phases []*domain.Phase, tasks map[string][]*domain.Task) string {
	if len(phases) == 0 {
		return StyleDim.Render("No phases")
	}

	var b strings.Builder

	// Overall progress is the duration-weighted phase progress.
	totalDays, weighted := 0, 0
	for _, ph := range phases {
		days := max(ph.Interval().Days(), 1)
		totalDays += days
		weighted += days * ph.Progress
	}
	headerText := StyleHeader.Render("PHASES") + "  " + RenderProgress(weighted/totalDays, 12)
	underline := StyleDim.Render(strings.Repeat("─", 6))
	b.WriteString(headerText + "\n" + underline + "\n")

	b.WriteString(RenderTree(buildPhaseTree(phases, tasks)))
	return b.String()
}

// buildPhaseTree flattens phases and their tasks into tree rows.
func buildPhaseTree(phases []*domain.Phase, tasks map[string][]*domain.Task) []TreeItem {
	var items []TreeItem
	for i, ph := range phases {
		phaseTasks := tasks[ph.ID]
		items = append(items, TreeItem{
			Title:  ph.Name,
			Seq:    ph.Seq,
			Level:  1,
			IsLast: i == len(phases)-1 && len(phaseTasks) == 0,
			Status: string(ph.Status),
			Detail: fmt.Sprintf("%s · %d%%", DateRange(ph.StartDate, ph.EndDate), ph.Progress),
		})
		for j, t := range phaseTasks {
			detail := ""
			if t.DueDate != nil {
				detail = "DUE " + RelativeDate(*t.DueDate)
			}
			items = append(items, TreeItem{
				Title:  t.Name,
				Seq:    t.Seq,
				Level:  2,
				IsLast: j == len(phaseTasks)-1,
				Status: string(t.Status),
				Detail: detail,
			})
		}
	}
	return items
}
