package domain

type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectPaused   ProjectStatus = "paused"
	ProjectDone     ProjectStatus = "done"
	ProjectArchived ProjectStatus = "archived"
)

// ValidProjectStatuses is the canonical set of accepted project status strings.
var ValidProjectStatuses = map[ProjectStatus]bool{
	ProjectActive: true, ProjectPaused: true, ProjectDone: true, ProjectArchived: true,
}

type PhaseStatus string

const (
	PhaseNotStarted PhaseStatus = "not_started"
	PhaseInProgress PhaseStatus = "in_progress"
	PhaseCompleted  PhaseStatus = "completed"
	PhaseOverdue    PhaseStatus = "overdue"
)

// ValidPhaseStatuses is the canonical set of accepted phase status strings.
var ValidPhaseStatuses = map[PhaseStatus]bool{
	PhaseNotStarted: true, PhaseInProgress: true, PhaseCompleted: true, PhaseOverdue: true,
}

type TaskStatus string

const (
	TaskTodo  TaskStatus = "todo"
	TaskDoing TaskStatus = "doing"
	TaskDone  TaskStatus = "done"
)

// ValidTaskStatuses is the canonical set of accepted task status strings.
var ValidTaskStatuses = map[TaskStatus]bool{
	TaskTodo: true, TaskDoing: true, TaskDone: true,
}
