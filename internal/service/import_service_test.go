package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/importer"
	"github.com/alexanderramin/roadmap/internal/repository"
	"github.com/alexanderramin/roadmap/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validImportSchema() *importer.ImportSchema {
	return &importer.ImportSchema{
		Project: importer.ProjectImport{
			ShortID:    "WEB01",
			Name:       "Website Relaunch",
			StartDate:  "2024-01-01",
			TargetDate: ptrStr("2024-06-30"),
		},
		Phases: []importer.PhaseImport{
			{Ref: "design", Name: "Design", StartDate: "2024-02-10", EndDate: "2024-03-05"},
			{Ref: "build", Name: "Build", StartDate: "2024-03-05", EndDate: "2024-05-01", Progress: ptrInt(20)},
		},
		Tasks: []importer.TaskImport{
			{PhaseRef: "design", Name: "Wireframes"},
			{PhaseRef: "build", Name: "API", Assignee: "lee"},
			{PhaseRef: "build", Name: "UI", Status: "doing"},
		},
	}
}

func TestImportProject_FullStructure(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	obs := &recordingObserver{}
	svc := NewImportService(r.uow, r.projects, r.phases, r.tasks, obs)

	result, err := svc.ImportProjectFromSchema(ctx, validImportSchema())
	require.NoError(t, err)
	assert.Equal(t, 2, result.PhaseCount)
	assert.Equal(t, 3, result.TaskCount)

	proj, err := r.projects.GetByShortID(ctx, "WEB01")
	require.NoError(t, err)
	assert.Equal(t, result.Project.ID, proj.ID)

	phases, err := r.phases.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, phases, 2)
	assert.Equal(t, 1, phases[0].Seq)
	assert.Equal(t, domain.PhaseInProgress, phases[1].Status)

	tasks, err := r.tasks.ListByPhase(ctx, phases[1].ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "API", tasks[0].Name)
	assert.Equal(t, domain.TaskDoing, tasks[1].Status)

	events := obs.byName("import-project")
	require.Len(t, events, 1)
	assert.True(t, events[0].Success)
	assert.Equal(t, 3, events[0].Fields["task_count"])
}

func TestImportProject_SequenceContinuesAfterImport(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewImportService(r.uow, r.projects, r.phases, r.tasks)

	result, err := svc.ImportProjectFromSchema(ctx, validImportSchema())
	require.NoError(t, err)

	phaseSvc := NewPhaseService(r.uow, r.phases)
	ph := testutil.NewTestPhase(result.Project.ID, "QA", testutil.WithDates(testutil.Date(2024, 5, 1), testutil.Date(2024, 6, 1)))
	require.NoError(t, phaseSvc.Create(ctx, ph))
	assert.Equal(t, 6, ph.Seq, "2 phases + 3 tasks were imported")
}

func TestImportProject_FromYAMLFile(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewImportService(r.uow, r.projects, r.phases, r.tasks)

	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, importer.WriteImportSchema(path, validImportSchema()))

	result, err := svc.ImportProject(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "WEB01", result.Project.ShortID)
}

func TestImportProject_ValidationErrors(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	obs := &recordingObserver{}
	svc := NewImportService(r.uow, r.projects, r.phases, r.tasks, obs)

	schema := validImportSchema()
	schema.Project.Name = ""
	schema.Phases[0].EndDate = "2024-01-01"

	_, err := svc.ImportProjectFromSchema(ctx, schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import validation failed (2 errors)")
	assert.Contains(t, err.Error(), "project.name is required")

	events := obs.byName("import-project")
	require.Len(t, events, 1)
	assert.False(t, events[0].Success)
}

func TestImportProject_MissingFile(t *testing.T) {
	r := setupRepos(t)
	svc := NewImportService(r.uow, r.projects, r.phases, r.tasks)

	_, err := svc.ImportProject(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestImportProject_RollbackOnPhaseCreateFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	projects := repository.NewSQLiteProjectRepo(database)
	phases := repository.NewSQLitePhaseRepo(database)
	tasks := repository.NewSQLiteTaskRepo(database)
	ctx := context.Background()

	// ExecContext calls in importSchema:
	// #1 = project create, #2 = phase "Design", #3 = phase "Build"
	failUoW := &testutil.FailOnNthExecUoW{
		DB:     database,
		FailOn: 3,
		Err:    errors.New("injected phase create failure"),
	}
	svc := NewImportService(failUoW, projects, phases, tasks)

	_, err := svc.ImportProjectFromSchema(ctx, validImportSchema())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected phase create failure")

	all, err := projects.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, all, "project insert should be rolled back")
}

// offlineProjectRepo fails List on demand so reads fall back to the cache.
type offlineProjectRepo struct {
	repository.ProjectRepo
	offline bool
}

var errStoreOffline = errors.New("store offline")

func (r *offlineProjectRepo) List(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	if r.offline {
		return nil, errStoreOffline
	}
	return r.ProjectRepo.List(ctx, includeArchived)
}

func TestImportProject_InvalidatesProjectCache(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	inner := &offlineProjectRepo{ProjectRepo: r.projects}
	cached := repository.NewCachedProjectRepo(inner, repository.NewMemoryProjectCache(), nil)

	before, err := cached.List(ctx, false)
	require.NoError(t, err)
	require.Empty(t, before)

	svc := NewImportService(r.uow, cached, r.phases, r.tasks)
	_, err = svc.ImportProjectFromSchema(ctx, validImportSchema())
	require.NoError(t, err)

	inner.offline = true
	_, err = cached.List(ctx, false)
	assert.ErrorIs(t, err, errStoreOffline, "the empty snapshot must not outlive the import")

	inner.offline = false
	after, err := cached.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "WEB01", after[0].ShortID)
}

func TestImportProject_DuplicateShortID(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewImportService(r.uow, r.projects, r.phases, r.tasks)

	_, err := svc.ImportProjectFromSchema(ctx, validImportSchema())
	require.NoError(t, err)
	_, err = svc.ImportProjectFromSchema(ctx, validImportSchema())
	require.Error(t, err)

	all, err := r.projects.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestExportProject_RoundTrip(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewImportService(r.uow, r.projects, r.phases, r.tasks)

	result, err := svc.ImportProjectFromSchema(ctx, validImportSchema())
	require.NoError(t, err)

	out, err := svc.ExportProject(ctx, result.Project.ID)
	require.NoError(t, err)
	assert.Empty(t, importer.ValidateImportSchema(out))
	assert.Len(t, out.Phases, 2)
	assert.Len(t, out.Tasks, 3)
	assert.Equal(t, "2024-06-30", *out.Project.TargetDate)

	_, err = svc.ExportProject(ctx, "missing")
	assert.True(t, IsNotFound(err))
}
