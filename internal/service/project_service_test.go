package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectService_Create_ValidShortID(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	obs := &recordingObserver{}

	svc := NewProjectService(r.projects, obs)

	proj := &domain.Project{
		Name:      "Website Relaunch",
		ShortID:   "web01",
		StartDate: testutil.Date(2024, 1, 1),
	}

	err := svc.Create(ctx, proj)
	require.NoError(t, err)
	assert.NotEmpty(t, proj.ID, "UUID should be generated")
	assert.Equal(t, "WEB01", proj.ShortID, "short ID should be upper-cased")
	assert.Equal(t, domain.ProjectActive, proj.Status, "status should default to active")
	assert.Equal(t, domain.DefaultProjectColor, proj.Color)

	fetched, err := svc.GetByID(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, "Website Relaunch", fetched.Name)
	assert.Equal(t, "WEB01", fetched.ShortID)

	events := obs.byName("create-project")
	require.Len(t, events, 1)
	assert.True(t, events[0].Success)
}

func TestProjectService_Create_InvalidShortID(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	svc := NewProjectService(r.projects)

	tests := []struct {
		name    string
		shortID string
	}{
		{"empty", ""},
		{"no digits", "WEBSI"},
		{"too short letters", "WE01"},
		{"too long letters", "WEBSITE01"},
		{"only digits", "12345"},
		{"special chars", "WE!01"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			proj := &domain.Project{Name: "Test", ShortID: tc.shortID}
			err := svc.Create(ctx, proj)
			assert.Error(t, err, "short ID %q should be rejected", tc.shortID)
		})
	}
}

func TestProjectService_Create_ValidatesFields(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewProjectService(r.projects)

	err := svc.Create(ctx, &domain.Project{ShortID: "WEB01"})
	assert.ErrorContains(t, err, "name is required")

	err = svc.Create(ctx, &domain.Project{ShortID: "WEB01", Name: "W", Color: "red"})
	assert.ErrorContains(t, err, "hex value")

	target := testutil.Date(2023, 12, 1)
	err = svc.Create(ctx, &domain.Project{ShortID: "WEB01", Name: "W", StartDate: testutil.Date(2024, 1, 1), TargetDate: &target})
	assert.ErrorContains(t, err, "must be after start date")
}

func TestProjectService_Resolve(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewProjectService(r.projects)

	proj := testutil.NewTestProject("Mobile", testutil.WithShortID("MOB01"))
	require.NoError(t, r.projects.Create(ctx, proj))

	got, err := svc.Resolve(ctx, "mob01")
	require.NoError(t, err)
	assert.Equal(t, proj.ID, got.ID)

	got, err = svc.Resolve(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, "MOB01", got.ShortID)

	_, err = svc.Resolve(ctx, "NOPE99")
	assert.True(t, IsNotFound(err))
}

func TestProjectService_Delete_RequiresArchiveFirst(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	svc := NewProjectService(r.projects)

	proj := testutil.NewTestProject("Active Project")
	require.NoError(t, r.projects.Create(ctx, proj))

	err := svc.Delete(ctx, proj.ID, false)
	assert.Error(t, err, "should require archive before delete")

	require.NoError(t, svc.Archive(ctx, proj.ID))
	require.NoError(t, svc.Delete(ctx, proj.ID, false))

	_, err = svc.GetByID(ctx, proj.ID)
	assert.True(t, IsNotFound(err))
}

func TestProjectService_Delete_Force(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewProjectService(r.projects)

	proj := testutil.NewTestProject("Forced")
	require.NoError(t, r.projects.Create(ctx, proj))

	require.NoError(t, svc.Delete(ctx, proj.ID, true))
	_, err := svc.GetByID(ctx, proj.ID)
	assert.True(t, IsNotFound(err))
}

func TestProjectService_ArchiveHidesFromList(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewProjectService(r.projects)

	a := testutil.NewTestProject("Alpha")
	b := testutil.NewTestProject("Beta")
	require.NoError(t, r.projects.Create(ctx, a))
	require.NoError(t, r.projects.Create(ctx, b))
	require.NoError(t, svc.Archive(ctx, a.ID))

	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, b.ID, active[0].ID)

	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, svc.Unarchive(ctx, a.ID))
	active, err = svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}
