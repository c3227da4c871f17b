package service

import (
	"context"
	"sync"
	"testing"

	"github.com/alexanderramin/roadmap/internal/db"
	"github.com/alexanderramin/roadmap/internal/repository"
	"github.com/alexanderramin/roadmap/internal/testutil"
)

type testRepos struct {
	projects repository.ProjectRepo
	phases   repository.PhaseRepo
	tasks    repository.TaskRepo
	uow      db.UnitOfWork
}

func setupRepos(t *testing.T) testRepos {
	t.Helper()
	database := testutil.NewTestDB(t)
	return testRepos{
		projects: repository.NewSQLiteProjectRepo(database),
		phases:   repository.NewSQLitePhaseRepo(database),
		tasks:    repository.NewSQLiteTaskRepo(database),
		uow:      testutil.NewTestUoW(database),
	}
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) byName(name string) []UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []UseCaseEvent
	for _, e := range o.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func ptrStr(s string) *string { return &s }
func ptrInt(i int) *int       { return &i }
