package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/drag"
	"github.com/alexanderramin/roadmap/internal/service"
	"github.com/alexanderramin/roadmap/internal/testutil"
	"github.com/alexanderramin/roadmap/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingDates rejects every date change, as a locked database would.
type failingDates struct {
	service.PhaseService
}

func (failingDates) UpdateDates(context.Context, string, time.Time, time.Time) (*domain.Phase, error) {
	return nil, errors.New("database is locked")
}

func storedPhase(t *testing.T, app *App, id string) *domain.Phase {
	t.Helper()
	ph, err := app.Phases.GetByID(context.Background(), id)
	require.NoError(t, err)
	return ph
}

// openTimeline starts the TUI on a seeded board and opens the WEB01 timeline.
func openTimeline(t *testing.T, app *App) *TestDriver {
	t.Helper()
	d := NewTestDriver(t, app)
	d.PressEnter()
	require.Equal(t, ViewTimeline, d.ActiveViewID())
	require.NotNil(t, d.Timeline().board, "board should load synchronously")
	return d
}

func TestTUI_ProjectListLoadsOnStartup(t *testing.T) {
	app := testApp(t)
	seedProject(t, app)
	d := NewTestDriver(t, app)

	assert.Equal(t, ViewProjectList, d.ActiveViewID())
	assert.Equal(t, 1, d.ViewStackLen())
	view := stripANSI(d.View())
	assert.Contains(t, view, "WEB01")
	assert.Contains(t, view, "Website")
	assert.NotContains(t, view, "Loading")
}

func TestTUI_QuitWithQ(t *testing.T) {
	app := testApp(t)
	d := NewTestDriver(t, app)

	d.PressKey('q')

	assert.True(t, d.IsQuitting())
}

func TestTUI_QuitWithCtrlC(t *testing.T) {
	app := testApp(t)
	d := NewTestDriver(t, app)

	d.PressCtrlC()

	assert.True(t, d.IsQuitting())
}

func TestTUI_CommandBarFocusBlur(t *testing.T) {
	app := testApp(t)
	d := NewTestDriver(t, app)

	assert.False(t, d.CmdBarFocused())

	d.PressKey(':')
	assert.True(t, d.CmdBarFocused())

	d.PressEsc()
	assert.False(t, d.CmdBarFocused())
}

func TestTUI_EnterOpensProjectTimeline(t *testing.T) {
	app := testApp(t)
	seedProject(t, app)
	d := openTimeline(t, app)

	assert.Equal(t, []ViewID{ViewProjectList, ViewTimeline}, d.ViewStackIDs())
	assert.Equal(t, "Timeline WEB01", d.ActiveViewTitle())
	assert.Equal(t, "WEB01", d.State().ActiveShortID)

	view := stripANSI(d.View())
	assert.Contains(t, view, "#1 Build")
	assert.Contains(t, view, "Feb")

	d.PressEsc()
	assert.Equal(t, ViewProjectList, d.ActiveViewID())
}

func TestTUI_TOpensAllProjects(t *testing.T) {
	app := testApp(t)
	seedProject(t, app)
	other := testutil.NewTestProject("Mobile", testutil.WithShortID("MOB01"))
	require.NoError(t, app.Projects.Create(context.Background(), other))

	d := NewTestDriver(t, app)
	d.PressKey('t')

	require.Equal(t, ViewTimeline, d.ActiveViewID())
	assert.Equal(t, "Timeline", d.ActiveViewTitle())
	view := stripANSI(d.View())
	assert.Contains(t, view, "WEB01 Website")
	assert.Contains(t, view, "MOB01 Mobile")
}

func TestTUI_TimelineWindowFitsTerminal(t *testing.T) {
	app := testApp(t)
	seedProject(t, app)
	d := openTimeline(t, app)

	w := d.Timeline().window
	assert.Equal(t, testutil.Date(2024, 2, 1), w.Anchor)
	assert.Equal(t, 8.0, w.ColumnWidth)
	assert.Equal(t, (120-28-1)/8, w.Columns)
}

func TestTUI_DragMovesPhase(t *testing.T) {
	app := testApp(t)
	_, ph := seedProject(t, app)
	d := openTimeline(t, app)

	y := d.PhaseRowY(0)
	d.Drag(d.CellX(3), d.CellX(11), y)

	got := storedPhase(t, app, ph.ID)
	assert.Equal(t, testutil.Date(2024, 3, 1), got.StartDate)
	assert.Equal(t, testutil.Date(2024, 3, 30), got.EndDate)

	kind, text, ok := d.State().Notice()
	require.True(t, ok)
	assert.Equal(t, drag.NotifySuccess, kind)
	assert.Contains(t, text, "#1 Build: 2024-03-01 to 2024-03-30")
	assert.Contains(t, stripANSI(d.View()), "✔ #1 Build")

	board := d.Timeline().board
	onBoard, _ := board.Phase(ph.ID)
	assert.Equal(t, testutil.Date(2024, 3, 1), onBoard.StartDate)
	assert.False(t, d.Timeline().Busy())
}

func TestTUI_DragRightEdgeResizes(t *testing.T) {
	app := testApp(t)
	_, ph := seedProject(t, app)
	d := openTimeline(t, app)

	// The bar covers cells 0-7; its last cell is the right handle.
	d.Drag(d.CellX(7), d.CellX(11), d.PhaseRowY(0))

	got := storedPhase(t, app, ph.ID)
	assert.Equal(t, testutil.Date(2024, 2, 1), got.StartDate)
	assert.Equal(t, testutil.Date(2024, 3, 17), got.EndDate)
}

func TestTUI_DragLeftEdgeCannotCrossEnd(t *testing.T) {
	app := testApp(t)
	_, ph := seedProject(t, app)
	d := openTimeline(t, app)

	d.Drag(d.CellX(0), d.CellX(20), d.PhaseRowY(0))

	got := storedPhase(t, app, ph.ID)
	assert.True(t, got.EndDate.After(got.StartDate))
	assert.Equal(t, 1, got.Interval().Days())
}

func TestTUI_ClickWithoutMoveDoesNotSave(t *testing.T) {
	app := testApp(t)
	_, ph := seedProject(t, app)
	d := openTimeline(t, app)

	y := d.PhaseRowY(0)
	d.MousePress(d.CellX(3), y)
	assert.True(t, d.Timeline().Busy())
	d.MouseRelease(d.CellX(3), y)

	assert.False(t, d.Timeline().Busy())
	_, _, ok := d.State().Notice()
	assert.False(t, ok)
	assert.Equal(t, ph.EndDate, storedPhase(t, app, ph.ID).EndDate)
}

func TestTUI_PressOutsideBarIgnored(t *testing.T) {
	app := testApp(t)
	seedProject(t, app)
	d := openTimeline(t, app)

	d.MousePress(d.CellX(30), d.PhaseRowY(0))
	assert.False(t, d.Timeline().Busy())

	// Label column and project rows are not bars either.
	d.MousePress(2, d.PhaseRowY(0))
	assert.False(t, d.Timeline().Busy())
	d.MousePress(d.CellX(3), d.PhaseRowY(0)-1)
	assert.False(t, d.Timeline().Busy())
}

func TestTUI_FailedSaveRevertsBar(t *testing.T) {
	app := testApp(t)
	_, ph := seedProject(t, app)
	app.Phases = failingDates{PhaseService: app.Phases}
	d := openTimeline(t, app)

	d.Drag(d.CellX(3), d.CellX(11), d.PhaseRowY(0))

	kind, text, ok := d.State().Notice()
	require.True(t, ok)
	assert.Equal(t, drag.NotifyError, kind)
	assert.Contains(t, text, "could not save #1 Build")
	assert.Contains(t, text, "database is locked")

	tv := d.Timeline()
	assert.Equal(t, timeline.Rect{Left: 0, Width: 8}, tv.bars[ph.ID].Rect())
	assert.Equal(t, testutil.Date(2024, 2, 1), storedPhase(t, app, ph.ID).StartDate)

	// esc clears the notice before it leaves the view.
	d.PressEsc()
	assert.Equal(t, ViewTimeline, d.ActiveViewID())
	d.PressEsc()
	assert.Equal(t, ViewProjectList, d.ActiveViewID())
}

func TestTUI_KeyboardResizeAndSave(t *testing.T) {
	app := testApp(t)
	_, ph := seedProject(t, app)
	d := openTimeline(t, app)

	d.PressKey('L')
	d.PressKey('L')
	assert.True(t, d.Timeline().Busy())
	assert.Contains(t, stripANSI(d.View()), "resize-right")

	// Switching mode mid-gesture is ignored.
	d.PressKey('h')
	d.PressEnter()

	got := storedPhase(t, app, ph.ID)
	assert.Equal(t, testutil.Date(2024, 2, 1), got.StartDate)
	assert.Equal(t, testutil.Date(2024, 3, 9), got.EndDate)
	assert.False(t, d.Timeline().Busy())
}

func TestTUI_EscCancelsKeyboardGesture(t *testing.T) {
	app := testApp(t)
	_, ph := seedProject(t, app)
	d := openTimeline(t, app)

	d.PressKey('l')
	require.True(t, d.Timeline().Busy())

	d.PressEsc()
	assert.False(t, d.Timeline().Busy())
	assert.Equal(t, ViewTimeline, d.ActiveViewID(), "esc cancels the gesture, not the view")
	assert.Equal(t, timeline.Rect{Left: 0, Width: 8}, d.Timeline().bars[ph.ID].Rect())
	assert.Equal(t, ph.StartDate, storedPhase(t, app, ph.ID).StartDate)
}

func TestTUI_SelectionMovesBetweenPhases(t *testing.T) {
	app := testApp(t)
	proj, first := seedProject(t, app)
	second := testutil.NewTestPhase(proj.ID, "Launch",
		testutil.WithDates(testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 15)))
	require.NoError(t, app.Phases.Create(context.Background(), second))

	d := openTimeline(t, app)
	assert.Equal(t, first.ID, d.Timeline().selectedID())

	d.PressKey('j')
	assert.Equal(t, second.ID, d.Timeline().selectedID())
	assert.Contains(t, stripANSI(d.View()), "› #2 Launch")

	// Moving the selected phase leaves the other untouched.
	d.PressKey('h')
	d.PressEnter()
	assert.Equal(t, first.StartDate, storedPhase(t, app, first.ID).StartDate)
	assert.True(t, storedPhase(t, app, second.ID).StartDate.Before(second.StartDate))

	d.PressKey('k')
	assert.Equal(t, first.ID, d.Timeline().selectedID())
}

func TestTUI_ScrollWindow(t *testing.T) {
	app := testApp(t)
	seedProject(t, app)
	d := openTimeline(t, app)

	d.PressKey('>')
	assert.Equal(t, testutil.Date(2024, 3, 1), d.Timeline().window.Anchor)
	d.PressKey('<')
	d.PressKey('<')
	assert.Equal(t, testutil.Date(2024, 1, 1), d.Timeline().window.Anchor)
}

func TestTUI_CommandOpensTimeline(t *testing.T) {
	app := testApp(t)
	seedProject(t, app)
	d := NewTestDriver(t, app)

	d.Command("timeline web01")

	assert.Equal(t, ViewTimeline, d.ActiveViewID())
	assert.Equal(t, "Timeline WEB01", d.ActiveViewTitle())
}

func TestTUI_CommandUseAndActiveProjectToken(t *testing.T) {
	app := testApp(t)
	_, ph := seedProject(t, app)
	d := NewTestDriver(t, app)

	d.Command("use WEB01")
	assert.Equal(t, "WEB01", d.State().ActiveShortID)

	d.Command("phase move @ 1 --days 7")
	assert.Contains(t, stripANSI(d.LastOutput()), "Moved phase #1 Build")
	assert.Equal(t, testutil.Date(2024, 2, 8), storedPhase(t, app, ph.ID).StartDate)
}

func TestTUI_CommandWithoutActiveProjectToken(t *testing.T) {
	app := testApp(t)
	seedProject(t, app)
	d := NewTestDriver(t, app)

	d.Command("phase list @")
	assert.Contains(t, stripANSI(d.LastOutput()), "no active project")
}

func TestTUI_CommandRunsCobraAndRefreshes(t *testing.T) {
	app := testApp(t)
	d := NewTestDriver(t, app)

	d.Command("project add --id APP01 --name App")
	assert.Contains(t, d.LastOutput(), "Created project App [APP01]")

	d.PressEsc() // dismiss output
	assert.Contains(t, stripANSI(d.View()), "APP01")
}

func TestTUI_CommandErrorsAreShown(t *testing.T) {
	app := testApp(t)
	d := NewTestDriver(t, app)

	d.Command("phase list NOPE01")
	assert.Contains(t, stripANSI(d.LastOutput()), "Error: project not found")

	d.Command("phase add -i")
	assert.Contains(t, stripANSI(d.LastOutput()), "interactive forms are not available")
}

func TestTUI_CommandQuit(t *testing.T) {
	app := testApp(t)
	d := NewTestDriver(t, app)

	d.Command("quit")

	assert.True(t, d.IsQuitting())
}

func TestSplitShellArgs(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{`phase add WEB01 --name "Build out"`, []string{"phase", "add", "WEB01", "--name", "Build out"}},
		{`task add WEB01 1 --name 'Copy edit'`, []string{"task", "add", "WEB01", "1", "--name", "Copy edit"}},
		{`a\ b c`, []string{"a b", "c"}},
		{`  spaced   out  `, []string{"spaced", "out"}},
		{`""`, []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := splitShellArgs(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := splitShellArgs(`"open`)
	assert.Error(t, err)
}

func TestExpandActiveProject(t *testing.T) {
	got, err := expandActiveProject([]string{"phase", "list", "@"}, "WEB01")
	require.NoError(t, err)
	assert.Equal(t, []string{"phase", "list", "WEB01"}, got)

	_, err = expandActiveProject([]string{"phase", "list", "@"}, "")
	assert.Error(t, err)

	got, err = expandActiveProject([]string{"task", "add", "--name", "@home"}, "")
	require.NoError(t, err)
	assert.Equal(t, "@home", got[3])
}
