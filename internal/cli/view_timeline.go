package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/roadmap/internal/cli/formatter"
	"github.com/alexanderramin/roadmap/internal/drag"
	"github.com/alexanderramin/roadmap/internal/service"
	"github.com/alexanderramin/roadmap/internal/timeline"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	// timelineRowsTop is the number of view lines above the first board
	// row: a blank line and the two chart header lines.
	timelineRowsTop = 3
	// timelineFooterLines is the blank line and the detail line below the chart.
	timelineFooterLines = 2
	// edgeHandleMinCells is the narrowest drawn bar whose end cells act as
	// resize handles. Narrower bars can only be moved with the mouse.
	edgeHandleMinCells = 3
)

type boardLoadedMsg struct {
	owner *timelineView
	board *service.Board
	err   error
}

// persistedMsg carries the outcome of a saved gesture back to the bars.
type persistedMsg struct {
	out drag.Outcome
}

type refreshTickMsg struct {
	owner *timelineView
}

type gestureSource int

const (
	gestureNone gestureSource = iota
	gestureMouse
	gestureKeys
)

type timelineKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	MoveLeft    key.Binding
	MoveRight   key.Binding
	ShrinkRight key.Binding
	GrowRight   key.Binding
	GrowLeft    key.Binding
	ShrinkLeft  key.Binding
	Save        key.Binding
	Cancel      key.Binding
	Earlier     key.Binding
	Later       key.Binding
	Today       key.Binding
	Reload      key.Binding
}

func defaultTimelineKeys() timelineKeyMap {
	return timelineKeyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓", "select")),
		Down:        key.NewBinding(key.WithKeys("down", "j")),
		MoveLeft:    key.NewBinding(key.WithKeys("h"), key.WithHelp("h/l", "move")),
		MoveRight:   key.NewBinding(key.WithKeys("l")),
		ShrinkRight: key.NewBinding(key.WithKeys("H"), key.WithHelp("H/L", "end")),
		GrowRight:   key.NewBinding(key.WithKeys("L")),
		GrowLeft:    key.NewBinding(key.WithKeys("["), key.WithHelp("[/]", "start")),
		ShrinkLeft:  key.NewBinding(key.WithKeys("]")),
		Save:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Earlier:     key.NewBinding(key.WithKeys("<", "left"), key.WithHelp("</>", "scroll")),
		Later:       key.NewBinding(key.WithKeys(">", "right")),
		Today:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	}
}

// timelineView is the interactive Gantt chart. Every phase on the board gets
// a drag.Bar; mouse and keyboard gestures drive the bars and a released
// gesture is saved off the event loop.
type timelineView struct {
	state *SharedState
	scope []string
	keys  timelineKeyMap

	board     *service.Board
	window    timeline.Window
	windowSet bool
	opts      formatter.GanttOptions
	loading   bool
	err       error

	bars      map[string]*drag.Bar
	order     []string       // phase IDs top to bottom
	rowOf     map[int]string // chart row -> phase ID
	cursor    int
	scroll    int
	persister drag.Persister

	active  string
	source  gestureSource
	keyMode drag.Mode
	keyX    float64
}

func newTimelineView(state *SharedState, scope []string) *timelineView {
	cfg := state.App.config().Timeline
	opts := formatter.DefaultGanttOptions()
	if cfg.MinVisibleCells > 0 {
		opts.MinVisibleCells = cfg.MinVisibleCells
	}
	return &timelineView{
		state:     state,
		scope:     scope,
		keys:      defaultTimelineKeys(),
		opts:      opts,
		loading:   true,
		bars:      make(map[string]*drag.Bar),
		rowOf:     make(map[int]string),
		persister: &service.DatePersister{Phases: state.App.Phases},
	}
}

func (v *timelineView) ID() ViewID { return ViewTimeline }

func (v *timelineView) Title() string {
	if len(v.scope) == 1 && v.board != nil && len(v.board.Rows) == 1 {
		return "Timeline " + v.board.Rows[0].Project.DisplayID()
	}
	return "Timeline"
}

func (v *timelineView) ShortHelp() []key.Binding {
	if v.source == gestureKeys {
		return []key.Binding{v.keys.Save, v.keys.Cancel}
	}
	return []key.Binding{
		v.keys.Up, v.keys.MoveLeft, v.keys.ShrinkRight, v.keys.GrowLeft,
		v.keys.Earlier, v.keys.Today, v.keys.Reload,
	}
}

// Busy reports whether a gesture is in progress, so esc cancels it instead
// of leaving the view.
func (v *timelineView) Busy() bool { return v.active != "" }

// PhaseInterval reads through to the current board, which is replaced on
// every reload while the bars live on.
func (v *timelineView) PhaseInterval(id string) (timeline.Interval, bool) {
	if v.board == nil {
		return timeline.Interval{}, false
	}
	return v.board.PhaseInterval(id)
}

func (v *timelineView) Init() tea.Cmd {
	return tea.Batch(v.load(), v.tick())
}

func (v *timelineView) load() tea.Cmd {
	app := v.state.App
	req := service.BoardRequest{ProjectIDs: v.scope, RefreshStatuses: true}
	return func() tea.Msg {
		board, err := app.Timeline.Board(context.Background(), req)
		return boardLoadedMsg{owner: v, board: board, err: err}
	}
}

func (v *timelineView) tick() tea.Cmd {
	interval := v.state.App.config().Timeline.RefreshInterval()
	if interval <= 0 {
		return nil
	}
	return tea.Tick(interval, func(time.Time) tea.Msg { return refreshTickMsg{owner: v} })
}

func (v *timelineView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case boardLoadedMsg:
		if msg.owner != v {
			return v, nil
		}
		v.loading = false
		if msg.err != nil {
			v.err = msg.err
			return v, nil
		}
		v.err = nil
		v.board = msg.board
		if !v.windowSet {
			v.window = v.initialWindow()
			v.windowSet = true
		}
		v.syncBars()
		return v, nil

	case refreshTickMsg:
		if msg.owner != v {
			return v, nil
		}
		return v, tea.Batch(v.load(), v.tick())

	case refreshViewMsg:
		return v, v.load()

	case persistedMsg:
		v.resolve(msg.out)
		return v, nil

	case tea.WindowSizeMsg:
		if v.windowSet {
			w := v.window
			w.Columns = v.fitColumns(w.Columns)
			v.setWindow(w)
		}
		return v, nil

	case tea.MouseMsg:
		return v, v.handleMouse(msg)

	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

// initialWindow opens on the earliest phase of the board, or on the current
// period when the board is empty.
func (v *timelineView) initialWindow() timeline.Window {
	cfg := v.state.App.config().Timeline
	unit, err := timeline.ParseUnit(cfg.Unit)
	if err != nil {
		unit = timeline.UnitMonth
	}
	cellWidth := cfg.CellWidth
	if cellWidth <= 0 {
		cellWidth = 8
	}
	anchor := time.Now()
	if bounds, ok := v.board.Bounds(); ok {
		anchor = bounds.Start
	}
	w, err := timeline.NewWindow(anchor, float64(cellWidth), v.fitColumns(cfg.Columns), unit)
	if err != nil {
		v.state.App.logger().Warn("invalid timeline window, using defaults", "error", err)
		w, _ = timeline.NewWindow(time.Now(), 8, 12, timeline.UnitMonth)
	}
	return w
}

// fitColumns returns how many periods fit the terminal width, or fallback
// before the size is known.
func (v *timelineView) fitColumns(fallback int) int {
	cellWidth := v.state.App.config().Timeline.CellWidth
	if v.state.Width <= 0 || cellWidth <= 0 {
		return max(fallback, 1)
	}
	return max((v.state.Width-v.opts.LabelWidth-1)/cellWidth, 1)
}

// syncBars creates bars for new phases, refreshes the rest from the board
// and drops bars whose phase is gone.
func (v *timelineView) syncBars() {
	cfg := v.state.App.config().Timeline
	v.order = v.order[:0]
	v.rowOf = make(map[int]string)

	row := 0
	for _, r := range v.board.Rows {
		row++ // project line
		for _, ph := range r.Phases {
			v.rowOf[row] = ph.ID
			v.order = append(v.order, ph.ID)
			row++
			if bar, ok := v.bars[ph.ID]; ok {
				bar.Refresh()
				continue
			}
			v.bars[ph.ID] = drag.NewBar(ph.ID, v.window, v, v.persister, v.state,
				drag.WithMinLiveWidth(float64(cfg.DragFloorCells)),
				drag.WithLabel(ph.DisplayID()+" "+ph.Name),
				drag.WithDiagnostics(v.diagnose),
			)
		}
	}
	for id := range v.bars {
		if _, ok := v.board.Phase(id); !ok {
			delete(v.bars, id)
			if id == v.active {
				v.endGesture()
			}
		}
	}
	v.cursor = min(v.cursor, max(len(v.order)-1, 0))
}

func (v *timelineView) diagnose(phaseID string, err error) {
	v.state.App.logger().Warn("phase cannot be placed on the timeline", "phase_id", phaseID, "error", err)
}

func (v *timelineView) setWindow(w timeline.Window) {
	v.window = w
	for _, bar := range v.bars {
		bar.SetWindow(w)
	}
	v.endGesture()
}

func (v *timelineView) selectedID() string {
	if v.cursor < 0 || v.cursor >= len(v.order) {
		return ""
	}
	return v.order[v.cursor]
}

func (v *timelineView) selectPhase(id string) {
	for i, other := range v.order {
		if other == id {
			v.cursor = i
			return
		}
	}
}

func (v *timelineView) endGesture() {
	v.active = ""
	v.source = gestureNone
	v.keyX = 0
}

// ── gestures ─────────────────────────────────────────────────────────────────

func (v *timelineView) trackCell(screenX int) int {
	return screenX - (v.opts.LabelWidth + 1)
}

func (v *timelineView) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if v.board == nil || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	cell := v.trackCell(msg.X)
	x := float64(cell)

	switch msg.Action {
	case tea.MouseActionPress:
		if v.active != "" {
			return nil
		}
		id, ok := v.rowOf[msg.Y-timelineRowsTop+v.scroll]
		if !ok {
			return nil
		}
		v.selectPhase(id)
		bar := v.bars[id]
		if bar == nil || bar.Rect().Hidden() {
			return nil
		}
		start, end := formatter.CellSpan(bar.Rect(), int(v.window.Span()+0.5), v.opts.MinVisibleCells)
		if cell < start || cell >= end {
			return nil
		}
		mode := drag.ModeMove
		if end-start >= edgeHandleMinCells {
			switch cell {
			case start:
				mode = drag.ModeResizeLeft
			case end - 1:
				mode = drag.ModeResizeRight
			}
		}
		if bar.PointerDown(mode, x) {
			v.active = id
			v.source = gestureMouse
		}

	case tea.MouseActionMotion:
		if v.source == gestureMouse {
			v.bars[v.active].PointerMove(x)
		}

	case tea.MouseActionRelease:
		if v.source == gestureMouse {
			v.bars[v.active].PointerMove(x)
			return v.release()
		}
	}
	return nil
}

func (v *timelineView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Cancel):
		if bar := v.bars[v.active]; bar != nil {
			bar.Cancel()
		}
		v.endGesture()
	case key.Matches(msg, v.keys.Save):
		if v.source == gestureKeys {
			return v.release()
		}
	case key.Matches(msg, v.keys.Up):
		if v.active == "" && v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(msg, v.keys.Down):
		if v.active == "" && v.cursor < len(v.order)-1 {
			v.cursor++
		}
	case key.Matches(msg, v.keys.MoveLeft):
		v.nudge(drag.ModeMove, -1)
	case key.Matches(msg, v.keys.MoveRight):
		v.nudge(drag.ModeMove, 1)
	case key.Matches(msg, v.keys.ShrinkRight):
		v.nudge(drag.ModeResizeRight, -1)
	case key.Matches(msg, v.keys.GrowRight):
		v.nudge(drag.ModeResizeRight, 1)
	case key.Matches(msg, v.keys.GrowLeft):
		v.nudge(drag.ModeResizeLeft, -1)
	case key.Matches(msg, v.keys.ShrinkLeft):
		v.nudge(drag.ModeResizeLeft, 1)
	case key.Matches(msg, v.keys.Earlier):
		if v.windowSet {
			v.setWindow(v.window.Shift(-1))
		}
	case key.Matches(msg, v.keys.Later):
		if v.windowSet {
			v.setWindow(v.window.Shift(1))
		}
	case key.Matches(msg, v.keys.Today):
		if v.windowSet {
			if w, err := timeline.NewWindow(time.Now(), v.window.ColumnWidth, v.window.Columns, v.window.Unit); err == nil {
				v.setWindow(w.Shift(-1))
			}
		}
	case key.Matches(msg, v.keys.Reload):
		return v.load()
	}
	return nil
}

// nudge starts or extends a keyboard gesture on the selected phase by one
// cell. A keyboard gesture keeps its mode until it is saved or cancelled.
func (v *timelineView) nudge(mode drag.Mode, dir int) {
	if v.source == gestureMouse {
		return
	}
	id := v.selectedID()
	bar := v.bars[id]
	if bar == nil {
		return
	}
	if v.source == gestureNone {
		if !bar.PointerDown(mode, 0) {
			return
		}
		v.active = id
		v.source = gestureKeys
		v.keyMode = mode
		v.keyX = 0
	} else if v.active != id || v.keyMode != mode {
		return
	}
	v.keyX += float64(dir)
	bar.PointerMove(v.keyX)
}

// release ends the active gesture. A date change is saved by the returned
// command; its outcome comes back as a persistedMsg.
func (v *timelineView) release() tea.Cmd {
	bar := v.bars[v.active]
	v.endGesture()
	if bar == nil {
		return nil
	}
	persist := bar.PointerUp(context.Background())
	if persist == nil {
		return nil
	}
	return func() tea.Msg { return persistedMsg{out: persist()} }
}

// resolve feeds a save outcome to its bar and, on success, folds the stored
// dates into the board.
func (v *timelineView) resolve(out drag.Outcome) {
	bar, ok := v.bars[out.PhaseID]
	if !ok || !bar.Resolve(out) {
		return
	}
	if out.Err != nil {
		v.state.App.logger().Error("saving phase dates", "phase_id", out.PhaseID, "error", out.Err)
		return
	}
	if ph, ok := v.board.Phase(out.PhaseID); ok {
		updated := *ph
		committed := bar.Committed()
		updated.StartDate, updated.EndDate = committed.Start, committed.End
		updated.Status = updated.DeriveStatus(time.Now())
		v.board.Apply(&updated)
	}
	bar.Refresh()
}

// ── rendering ────────────────────────────────────────────────────────────────

func (v *timelineView) View() string {
	if v.loading && v.board == nil {
		return "\n  " + formatter.Dim("Loading timeline...")
	}
	if v.err != nil {
		return "\n  " + formatter.StyleRed.Render("Error: "+v.err.Error())
	}

	opts := v.opts
	opts.Today = time.Now()
	opts.Selected = v.selectedID()
	opts.Live = v.liveRects()

	chart := strings.TrimSuffix(formatter.FormatGantt(v.board, v.window, opts), "\n")
	lines := strings.Split(chart, "\n")
	header, rows := lines[:min(2, len(lines))], lines[min(2, len(lines)):]
	rows = v.scrollRows(rows)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(strings.Join(header, "\n"))
	for _, line := range rows {
		b.WriteString("\n" + line)
	}
	b.WriteString("\n\n")
	b.WriteString(v.detailLine())
	return b.String()
}

// liveRects returns the bars whose drawn position differs from their board
// dates: gestures in progress and saves not yet resolved.
func (v *timelineView) liveRects() map[string]timeline.Rect {
	live := make(map[string]timeline.Rect)
	for id, bar := range v.bars {
		r := bar.Rect()
		if r.Hidden() {
			continue
		}
		iv, ok := v.board.PhaseInterval(id)
		if bar.State() == drag.StateDragging || !ok || r != timeline.ComputeRect(iv, v.window) {
			live[id] = r
		}
	}
	return live
}

// scrollRows keeps the selected phase on screen when the board is taller
// than the terminal.
func (v *timelineView) scrollRows(rows []string) []string {
	if v.state.Height <= 0 {
		v.scroll = 0
		return rows
	}
	avail := max(v.state.ContentHeight()-timelineRowsTop-timelineFooterLines, 1)
	if len(rows) <= avail {
		v.scroll = 0
		return rows
	}
	selected := -1
	for row, id := range v.rowOf {
		if id == v.selectedID() {
			selected = row
		}
	}
	if selected >= 0 {
		if selected < v.scroll {
			v.scroll = max(selected-1, 0)
		}
		if selected >= v.scroll+avail {
			v.scroll = selected - avail + 1
		}
	}
	v.scroll = min(v.scroll, len(rows)-avail)
	return rows[v.scroll : v.scroll+avail]
}

func (v *timelineView) detailLine() string {
	id := v.selectedID()
	if id == "" {
		return "  " + formatter.Dim(fmt.Sprintf("%d phases · %s", v.board.PhaseCount(), windowLabel(v.window)))
	}
	ph, _ := v.board.Phase(id)
	if bar := v.bars[id]; bar != nil && v.active == id {
		if next, ok := bar.Preview(); ok {
			delta := timeline.DaysBetween(ph.StartDate, next.Start)
			if bar.Mode() == drag.ModeResizeRight {
				delta = timeline.DaysBetween(ph.EndDate, next.End)
			}
			return fmt.Sprintf("  %s %s  %s  %s",
				formatter.StyleYellowBold.Render(bar.Mode().String()),
				ph.DisplayID()+" "+ph.Name,
				formatter.DateRange(next.Start, next.End),
				formatter.Dim(fmt.Sprintf("(%+dd)", delta)))
		}
	}
	return fmt.Sprintf("  %s %s  %s  %s  %s",
		formatter.StyleGreen.Render(ph.DisplayID()),
		ph.Name,
		formatter.DateRange(ph.StartDate, ph.EndDate),
		formatter.PhaseStatusPill(ph.Status),
		formatter.Dim(fmt.Sprintf("%d%%", ph.Progress)))
}

func windowLabel(w timeline.Window) string {
	last := timeline.AddDays(w.End(), -1)
	return formatter.DateRange(w.Anchor, last)
}
