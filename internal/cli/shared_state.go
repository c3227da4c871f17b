package cli

import (
	"time"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/drag"
)

// notice is the latest message shown on the status line.
type notice struct {
	kind drag.NotifyKind
	text string
	at   time.Time
}

// SharedState holds context shared across all views via pointer.
type SharedState struct {
	App *App

	// Active project context
	ActiveProjectID   string
	ActiveShortID     string
	ActiveProjectName string

	// Terminal dimensions
	Width  int
	Height int

	notice notice
}

// ClearProjectContext resets the active project.
func (s *SharedState) ClearProjectContext() {
	s.ActiveProjectID = ""
	s.ActiveShortID = ""
	s.ActiveProjectName = ""
}

// SetActiveProjectFrom sets the active project context from an already-loaded project.
func (s *SharedState) SetActiveProjectFrom(p *domain.Project) {
	s.ActiveProjectID = p.ID
	s.ActiveShortID = p.DisplayID()
	s.ActiveProjectName = p.Name
}

// Notify records a status-line message. SharedState satisfies drag.Notifier;
// bars call it from Resolve, which runs inside Update.
func (s *SharedState) Notify(kind drag.NotifyKind, message string) {
	s.notice = notice{kind: kind, text: message, at: time.Now()}
	if kind == drag.NotifyError {
		s.App.logger().Warn("timeline notice", "kind", kind.String(), "message", message)
	}
}

// Notice returns the current status-line message, if any.
func (s *SharedState) Notice() (drag.NotifyKind, string, bool) {
	return s.notice.kind, s.notice.text, s.notice.text != ""
}

// ClearNotice drops the status-line message.
func (s *SharedState) ClearNotice() {
	s.notice = notice{}
}

// ContentHeight returns the available height for view content,
// accounting for header (2 lines: title + separator),
// status bar (3 lines: separator + notice + hints), and command bar (1 line).
func (s *SharedState) ContentHeight() int {
	h := s.Height - 6
	if h < 1 {
		return 1
	}
	return h
}
