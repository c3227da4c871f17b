package drag

import (
	"context"
	"time"

	"github.com/alexanderramin/roadmap/internal/timeline"
)

// Mode is the kind of gesture a session performs on a bar.
type Mode int

const (
	ModeMove Mode = iota
	ModeResizeLeft
	ModeResizeRight
)

func (m Mode) String() string {
	switch m {
	case ModeMove:
		return "move"
	case ModeResizeLeft:
		return "resize-left"
	case ModeResizeRight:
		return "resize-right"
	}
	return "unknown"
}

// State is the per-bar interaction state.
type State int

const (
	StateIdle State = iota
	StateDragging
)

func (s State) String() string {
	if s == StateDragging {
		return "dragging"
	}
	return "idle"
}

// IntervalSource supplies the authoritative dates of a phase.
type IntervalSource interface {
	PhaseInterval(phaseID string) (timeline.Interval, bool)
}

// Persister writes new phase dates and returns what was actually stored.
type Persister interface {
	PersistPhaseDates(ctx context.Context, phaseID string, start, end time.Time) (timeline.Interval, error)
}

// PersisterFunc adapts a plain function to Persister.
type PersisterFunc func(ctx context.Context, phaseID string, start, end time.Time) (timeline.Interval, error)

func (f PersisterFunc) PersistPhaseDates(ctx context.Context, phaseID string, start, end time.Time) (timeline.Interval, error) {
	return f(ctx, phaseID, start, end)
}

// NotifyKind classifies a user-facing notification.
type NotifyKind int

const (
	NotifySuccess NotifyKind = iota
	NotifyError
)

func (k NotifyKind) String() string {
	if k == NotifyError {
		return "error"
	}
	return "success"
}

// Notifier surfaces persistence outcomes to the user.
type Notifier interface {
	Notify(kind NotifyKind, message string)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(kind NotifyKind, message string)

func (f NotifierFunc) Notify(kind NotifyKind, message string) { f(kind, message) }

// Diagnostics receives non-fatal anomalies such as malformed phase dates.
type Diagnostics func(phaseID string, err error)

// PersistFunc performs the deferred save for one committed gesture. It calls
// the persister at most once no matter how often it is invoked, and may run on
// any goroutine.
type PersistFunc func() Outcome

// Outcome is the result of a PersistFunc, fed back to the bar with Resolve.
type Outcome struct {
	PhaseID   string
	Requested timeline.Interval
	Persisted timeline.Interval
	Original  timeline.Interval
	Err       error

	seq uint64
}

// Option configures a Bar.
type Option func(*Bar)

// WithMinLiveWidth sets the visual floor applied to the bar while resizing.
func WithMinLiveWidth(px float64) Option {
	return func(b *Bar) {
		if px >= 0 {
			b.minLiveWidth = px
		}
	}
}

// WithDiagnostics installs a hook for malformed input reports.
func WithDiagnostics(fn Diagnostics) Option {
	return func(b *Bar) { b.diag = fn }
}

// WithLabel names the bar in notification messages.
func WithLabel(label string) Option {
	return func(b *Bar) { b.label = label }
}
