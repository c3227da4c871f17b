// Package drag implements the per-bar drag and resize state machine of the
// timeline. A Bar turns pointer events into a live Rect and, on release, into
// at most one persistence call whose outcome is resolved back into the bar.
package drag

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/alexanderramin/roadmap/internal/timeline"
)

// DefaultMinLiveWidth is the visual floor applied while a resize is in flight.
const DefaultMinLiveWidth = 20.0

var errNoPersister = errors.New("no persister configured")

type session struct {
	mode     Mode
	originX  float64
	original timeline.Interval
	start    timeline.Rect
	raw      timeline.Rect

	// Move gestures only. dx is the clamped pointer delta; the clip flags mark
	// edges of original that lie outside the window.
	dx                 float64
	clipStart, clipEnd bool
}

// Bar is the interaction state of one phase bar. It is driven from a single
// goroutine (the UI event loop); only the PersistFunc it hands out may run
// elsewhere.
type Bar struct {
	phaseID   string
	window    timeline.Window
	source    IntervalSource
	persister Persister
	notifier  Notifier

	minLiveWidth float64
	diag         Diagnostics
	label        string

	committed timeline.Interval
	rect      timeline.Rect
	session   *session
	issued    uint64
	// pending holds the dates of the latest save until its outcome resolves.
	pending *timeline.Interval
}

// NewBar creates an idle bar positioned from the source's current dates.
func NewBar(phaseID string, window timeline.Window, source IntervalSource, persister Persister, notifier Notifier, opts ...Option) *Bar {
	b := &Bar{
		phaseID:      phaseID,
		window:       window,
		source:       source,
		persister:    persister,
		notifier:     notifier,
		minLiveWidth: DefaultMinLiveWidth,
		label:        phaseID,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.Refresh()
	return b
}

func (b *Bar) PhaseID() string { return b.phaseID }

func (b *Bar) Window() timeline.Window { return b.window }

// State reports whether a gesture is in progress.
func (b *Bar) State() State {
	if b.session != nil {
		return StateDragging
	}
	return StateIdle
}

// Mode returns the active gesture's mode. It is only meaningful while dragging.
func (b *Bar) Mode() Mode {
	if b.session == nil {
		return ModeMove
	}
	return b.session.mode
}

// Rect is the position renderers should draw the bar at right now.
func (b *Bar) Rect() timeline.Rect { return b.rect }

// Committed is the latest interval known to be persisted.
func (b *Bar) Committed() timeline.Interval { return b.committed }

// Refresh re-reads the phase from the source and re-derives the rect. It is
// ignored while a gesture is in progress.
func (b *Bar) Refresh() {
	if b.session != nil {
		return
	}
	b.committed = b.currentInterval()
	b.rect = b.rectFor(b.displayed())
}

// SetWindow moves the bar into a new view window. An active gesture is
// cancelled because its pixel deltas no longer apply.
func (b *Bar) SetWindow(w timeline.Window) {
	b.session = nil
	b.window = w
	b.rect = b.rectFor(b.displayed())
}

// PointerDown starts a gesture at pointer position x. It returns false when a
// gesture is already active or the phase cannot be placed on the timeline.
// While a save is in flight the gesture starts from its optimistic dates.
func (b *Bar) PointerDown(mode Mode, x float64) bool {
	if b.session != nil {
		return false
	}
	committed := b.currentInterval()
	if err := committed.Validate(); err != nil {
		b.report(err)
		b.rect = timeline.Rect{}
		return false
	}
	b.committed = committed
	original := b.displayed()
	if !timeline.Visible(original, b.window) {
		return false
	}
	start := timeline.ComputeRect(original, b.window)
	b.session = &session{
		mode:      mode,
		originX:   x,
		original:  original,
		start:     start,
		raw:       start,
		clipStart: original.Start.Before(b.window.Anchor),
		clipEnd:   original.End.After(b.window.End()),
	}
	b.rect = start
	return true
}

// PointerMove updates the live rect from the cumulative pointer delta.
func (b *Bar) PointerMove(x float64) {
	s := b.session
	if s == nil {
		return
	}
	dx := x - s.originX
	span := b.window.Span()

	switch s.mode {
	case ModeMove:
		lo, hi := b.moveBounds(s)
		s.dx = clamp(dx, lo, hi)
		s.raw = timeline.Rect{Left: s.start.Left + s.dx, Width: s.start.Width}
	case ModeResizeLeft:
		right := s.start.Right()
		left := clamp(s.start.Left+dx, 0, span)
		s.raw = timeline.Rect{Left: left, Width: right - left}
	case ModeResizeRight:
		width := s.start.Width + dx
		if s.start.Left+width > span {
			width = span - s.start.Left
		}
		s.raw = timeline.Rect{Left: s.start.Left, Width: width}
	}
	b.rect = b.live(s)
}

// Preview returns the dates the active gesture would commit if released now.
func (b *Bar) Preview() (timeline.Interval, bool) {
	if b.session == nil {
		return timeline.Interval{}, false
	}
	next, _ := b.resolveDates(b.session)
	return next, true
}

// PointerUp ends the gesture. A release that does not change the dates at
// day granularity restores the original rect and returns nil. Otherwise the
// bar is moved optimistically and the returned PersistFunc performs the save;
// its Outcome must be passed to Resolve.
func (b *Bar) PointerUp(ctx context.Context) PersistFunc {
	s := b.session
	if s == nil {
		return nil
	}
	b.session = nil

	next, changed := b.resolveDates(s)
	if !changed {
		b.rect = b.rectFor(b.displayed())
		return nil
	}

	b.issued++
	seq := b.issued
	pending := next
	b.pending = &pending
	b.rect = b.rectFor(next)

	persister := b.persister
	phaseID := b.phaseID
	original := s.original
	var (
		once sync.Once
		out  Outcome
	)
	return func() Outcome {
		once.Do(func() {
			out = Outcome{PhaseID: phaseID, Requested: next, Original: original, seq: seq}
			if persister == nil {
				out.Err = errNoPersister
				return
			}
			out.Persisted, out.Err = persister.PersistPhaseDates(ctx, phaseID, next.Start, next.End)
		})
		return out
	}
}

// Resolve applies a persistence outcome. Outcomes for other bars, and outcomes
// older than the latest commit issued by this bar, are ignored and false is
// returned. A superseded failure is still passed to the diagnostics hook.
func (b *Bar) Resolve(out Outcome) bool {
	if out.PhaseID != b.phaseID || out.seq == 0 {
		return false
	}
	if out.seq != b.issued {
		if out.Err != nil {
			b.report(fmt.Errorf("superseded save of %s to %s failed: %w",
				b.label, out.Requested.Start.Format("2006-01-02"), out.Err))
		}
		return false
	}
	b.pending = nil
	if out.Err != nil {
		b.committed = out.Original
		if b.session == nil {
			b.rect = b.rectFor(out.Original)
		}
		b.notify(NotifyError, fmt.Sprintf("could not save %s: %v", b.label, out.Err))
		return true
	}

	persisted := out.Persisted
	if persisted.Validate() != nil {
		persisted = out.Requested
	}
	b.committed = persisted
	if b.session == nil {
		b.rect = b.rectFor(persisted)
	}
	b.notify(NotifySuccess, fmt.Sprintf("%s: %s to %s", b.label,
		persisted.Start.Format("2006-01-02"), persisted.End.Format("2006-01-02")))
	return true
}

// Cancel abandons the active gesture without persisting. It returns false
// when nothing was in progress.
func (b *Bar) Cancel() bool {
	s := b.session
	if s == nil {
		return false
	}
	b.session = nil
	b.rect = b.rectFor(b.displayed())
	return true
}

// resolveDates converts the raw rect of s into dates. Edges the gesture did
// not move keep their original dates, which keeps bars clipped by the window
// intact.
func (b *Bar) resolveDates(s *session) (timeline.Interval, bool) {
	if s.raw == s.start {
		return s.original, false
	}
	w := b.window
	next := s.original

	switch s.mode {
	case ModeMove:
		// Measure the shift from an edge that stays inside the window.
		from := s.start.Left
		if s.dx < 0 && s.clipStart {
			from = s.start.Right()
		}
		delta := timeline.DaysBetween(timeline.InverseMap(from, w), timeline.InverseMap(from+s.dx, w))
		next.Start = timeline.AddDays(s.original.Start, delta)
		next.End = timeline.AddDays(s.original.End, delta)
	case ModeResizeLeft:
		if s.raw.Left != s.start.Left {
			next.Start = timeline.InverseMap(s.raw.Left, w)
		}
	case ModeResizeRight:
		if s.raw.Right() != s.start.Right() {
			next.End = timeline.InverseMap(s.raw.Right(), w)
		}
	}

	next.Start = timeline.Day(next.Start)
	next.End = timeline.Day(next.End)
	if !next.End.After(next.Start) {
		next.End = timeline.AddDays(next.Start, 1)
	}
	return next, !next.SameDays(s.original)
}

// moveBounds limits the pointer delta of a move. An edge inside the window
// stops at the window border. A clipped edge may travel until the bar is about
// to leave the window, so bars wider than the window can still be moved.
func (b *Bar) moveBounds(s *session) (lo, hi float64) {
	span := b.window.Span()
	lo, hi = -s.start.Left, span-s.start.Right()
	if s.clipStart {
		lo = -s.start.Right()
	}
	if s.clipEnd {
		hi = span - s.start.Left
	}
	return lo, math.Max(lo, hi)
}

// live is the rect shown during a gesture: the raw geometry, except that
// resizes never draw narrower than minLiveWidth. Clipped bars being moved are
// drawn from their shifted dates since their true edges are off screen.
func (b *Bar) live(s *session) timeline.Rect {
	if s.mode == ModeMove && (s.clipStart || s.clipEnd) {
		next, _ := b.resolveDates(s)
		return timeline.ComputeRect(next, b.window)
	}
	r := s.raw
	if r.Width >= b.minLiveWidth {
		return r
	}
	switch s.mode {
	case ModeResizeLeft:
		right := s.start.Right()
		return timeline.Rect{Left: math.Max(0, right-b.minLiveWidth), Width: b.minLiveWidth}
	case ModeResizeRight:
		return timeline.Rect{Left: r.Left, Width: b.minLiveWidth}
	}
	return r
}

// displayed is the interval the idle bar is drawn at: the optimistic dates of
// an unresolved save, otherwise the committed ones.
func (b *Bar) displayed() timeline.Interval {
	if b.pending != nil {
		return *b.pending
	}
	return b.committed
}

func (b *Bar) currentInterval() timeline.Interval {
	if b.source != nil {
		if iv, ok := b.source.PhaseInterval(b.phaseID); ok {
			return iv
		}
	}
	return b.committed
}

func (b *Bar) rectFor(iv timeline.Interval) timeline.Rect {
	if err := iv.Validate(); err != nil {
		b.report(err)
		return timeline.Rect{}
	}
	return timeline.ComputeRect(iv, b.window)
}

func (b *Bar) report(err error) {
	if b.diag != nil {
		b.diag(b.phaseID, err)
	}
}

func (b *Bar) notify(kind NotifyKind, msg string) {
	if b.notifier != nil {
		b.notifier.Notify(kind, msg)
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
