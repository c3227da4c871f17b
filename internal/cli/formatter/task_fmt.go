package formatter

import (
	"strconv"
	"time"

	"github.com/alexanderramin/roadmap/internal/domain"
)

// FormatTaskList renders tasks in the order given. phaseNames labels the
// PHASE column and may be nil when every task belongs to one phase.
func FormatTaskList(tasks []*domain.Task, phaseNames map[string]string, now time.Time) string {
	if len(tasks) == 0 {
		return Dim("No tasks.") + "\n"
	}
	headers := []string{"ID", "NAME", "ASSIGNEE", "DUE", "STATUS", "PRIO"}
	if phaseNames != nil {
		headers = append(headers, "PHASE")
	}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		id := TruncID(t.ID)
		if t.Seq > 0 {
			id = Dim("#" + strconv.Itoa(t.Seq))
		}
		assignee := Dim("--")
		if t.Assignee != "" {
			assignee = t.Assignee
		}
		due := ShortDate(t.DueDate)
		if t.IsOverdue(now) {
			due = StyleRed.Render(due)
		}
		name := t.Name
		if t.Status == domain.TaskDone {
			name = Dim(name)
		}
		row := []string{id, name, assignee, due, TaskStatusPill(t.Status), strconv.Itoa(t.Priority)}
		if phaseNames != nil {
			row = append(row, phaseNames[t.PhaseID])
		}
		rows = append(rows, row)
	}
	return RenderTable(headers, rows, 5)
}
