package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/testutil"
	"github.com/alexanderramin/roadmap/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPhaseServiceAt(r testRepos, now time.Time, observers ...UseCaseObserver) *phaseService {
	svc := NewPhaseService(r.uow, r.phases, observers...).(*phaseService)
	svc.now = func() time.Time { return now }
	return svc
}

func seedProject(t *testing.T, r testRepos) *domain.Project {
	t.Helper()
	proj := testutil.NewTestProject("Roadmap")
	require.NoError(t, r.projects.Create(context.Background(), proj))
	return proj
}

func TestPhaseService_Create_AssignsSequence(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	proj := seedProject(t, r)
	svc := newPhaseServiceAt(r, testutil.Date(2024, 1, 15))

	first := &domain.Phase{ProjectID: proj.ID, Name: "Design", StartDate: testutil.Date(2024, 2, 10), EndDate: testutil.Date(2024, 3, 5)}
	second := &domain.Phase{ProjectID: proj.ID, Name: "Build", StartDate: testutil.Date(2024, 3, 5), EndDate: testutil.Date(2024, 5, 1)}
	require.NoError(t, svc.Create(ctx, first))
	require.NoError(t, svc.Create(ctx, second))

	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, 2, second.Seq)
	assert.Equal(t, domain.PhaseNotStarted, first.Status)

	got, err := svc.Resolve(ctx, proj.ID, "#2")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	got, err = svc.Resolve(ctx, proj.ID, "1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = svc.Resolve(ctx, proj.ID, "#9")
	assert.True(t, IsNotFound(err))
}

func TestPhaseService_Create_RejectsBadDates(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	proj := seedProject(t, r)
	svc := newPhaseServiceAt(r, testutil.Date(2024, 1, 15))

	same := &domain.Phase{ProjectID: proj.ID, Name: "Zero", StartDate: testutil.Date(2024, 2, 10), EndDate: testutil.Date(2024, 2, 10)}
	assert.ErrorContains(t, svc.Create(ctx, same), "must be after start date")

	reversed := &domain.Phase{ProjectID: proj.ID, Name: "Back", StartDate: testutil.Date(2024, 2, 10), EndDate: testutil.Date(2024, 2, 1)}
	assert.ErrorIs(t, svc.Create(ctx, reversed), timeline.ErrInvalidInterval)

	missing := &domain.Phase{ProjectID: proj.ID, Name: "Missing"}
	assert.ErrorIs(t, svc.Create(ctx, missing), timeline.ErrInvalidInterval)

	phases, err := svc.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	assert.Empty(t, phases)
}

func TestPhaseService_UpdateDates(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	proj := seedProject(t, r)
	obs := &recordingObserver{}
	svc := newPhaseServiceAt(r, testutil.Date(2024, 3, 20), obs)

	ph := testutil.NewTestPhase(proj.ID, "Design")
	require.NoError(t, svc.Create(ctx, ph))

	// Time-of-day is dropped; the stored phase comes back.
	start := time.Date(2024, 3, 11, 15, 30, 0, 0, time.UTC)
	end := time.Date(2024, 4, 4, 8, 0, 0, 0, time.UTC)
	got, err := svc.UpdateDates(ctx, ph.ID, start, end)
	require.NoError(t, err)
	assert.Equal(t, testutil.Date(2024, 3, 11), got.StartDate)
	assert.Equal(t, testutil.Date(2024, 4, 4), got.EndDate)
	assert.Equal(t, domain.PhaseNotStarted, got.Status)

	// Moving the end into the past marks the phase overdue.
	got, err = svc.UpdateDates(ctx, ph.ID, testutil.Date(2024, 2, 1), testutil.Date(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseOverdue, got.Status)

	events := obs.byName("update-phase-dates")
	require.Len(t, events, 2)
	assert.Equal(t, ph.ID, events[0].Fields["phase_id"])
}

func TestPhaseService_UpdateDates_Errors(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	proj := seedProject(t, r)
	obs := &recordingObserver{}
	svc := newPhaseServiceAt(r, testutil.Date(2024, 1, 15), obs)

	ph := testutil.NewTestPhase(proj.ID, "Design")
	require.NoError(t, svc.Create(ctx, ph))

	_, err := svc.UpdateDates(ctx, ph.ID, testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 1))
	assert.ErrorContains(t, err, "must be after start date")

	_, err = svc.UpdateDates(ctx, ph.ID, time.Time{}, testutil.Date(2024, 3, 1))
	assert.ErrorIs(t, err, timeline.ErrInvalidInterval)

	_, err = svc.UpdateDates(ctx, "missing", testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 9))
	assert.True(t, IsNotFound(err))

	stored, err := svc.GetByID(ctx, ph.ID)
	require.NoError(t, err)
	assert.Equal(t, testutil.Date(2024, 2, 10), stored.StartDate)
	assert.Equal(t, testutil.Date(2024, 3, 5), stored.EndDate)

	for _, e := range obs.byName("update-phase-dates") {
		assert.False(t, e.Success)
	}
}

func TestPhaseService_RefreshProjectStatuses(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	proj := seedProject(t, r)
	svc := newPhaseServiceAt(r, testutil.Date(2024, 1, 15))

	past := testutil.NewTestPhase(proj.ID, "Past", testutil.WithDates(testutil.Date(2024, 1, 1), testutil.Date(2024, 1, 10)))
	active := testutil.NewTestPhase(proj.ID, "Active", testutil.WithProgress(30))
	done := testutil.NewTestPhase(proj.ID, "Done", testutil.WithProgress(100), testutil.WithPhaseStatus(domain.PhaseCompleted))
	for _, ph := range []*domain.Phase{past, active, done} {
		require.NoError(t, svc.Create(ctx, ph))
	}

	changed, err := svc.RefreshProjectStatuses(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	got, err := svc.GetByID(ctx, past.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseOverdue, got.Status)

	got, err = svc.GetByID(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseInProgress, got.Status)

	changed, err = svc.RefreshProjectStatuses(ctx, proj.ID)
	require.NoError(t, err)
	assert.Zero(t, changed, "second refresh should be a no-op")
}

func TestPhaseService_UpdateAndDelete(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	proj := seedProject(t, r)
	svc := newPhaseServiceAt(r, testutil.Date(2024, 1, 15))

	ph := testutil.NewTestPhase(proj.ID, "Design")
	require.NoError(t, svc.Create(ctx, ph))

	ph.Name = "Design v2"
	ph.Progress = 50
	require.NoError(t, svc.Update(ctx, ph))

	got, err := svc.GetByID(ctx, ph.ID)
	require.NoError(t, err)
	assert.Equal(t, "Design v2", got.Name)
	assert.Equal(t, domain.PhaseInProgress, got.Status)

	ph.Progress = 150
	assert.Error(t, svc.Update(ctx, ph))

	ph.Progress = 50
	ph.EndDate = ph.StartDate
	assert.ErrorContains(t, svc.Update(ctx, ph), "must be after start date")

	require.NoError(t, svc.Delete(ctx, ph.ID))
	_, err = svc.GetByID(ctx, ph.ID)
	assert.True(t, IsNotFound(err))
}
