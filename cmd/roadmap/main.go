package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/roadmap/internal/cli"
	"github.com/alexanderramin/roadmap/internal/config"
	"github.com/alexanderramin/roadmap/internal/db"
	"github.com/alexanderramin/roadmap/internal/logging"
	"github.com/alexanderramin/roadmap/internal/repository"
	"github.com/alexanderramin/roadmap/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ROADMAP_CONFIG names an explicit config file; otherwise
	// ~/.roadmap/config.yaml is read when present.
	cfg, err := config.Load(os.Getenv(config.EnvPrefix + "_CONFIG"))
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.OpenFile(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closeLog()

	database, err := db.OpenDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	var cache repository.ProjectCache = repository.NewMemoryProjectCache()
	if cfg.Cache.File != "" {
		cache = repository.NewFileProjectCache(cfg.Cache.File)
	}
	projectRepo := repository.NewCachedProjectRepo(repository.NewSQLiteProjectRepo(database), cache, logger)
	phaseRepo := repository.NewSQLitePhaseRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)
	observer := service.NewSlogUseCaseObserver(logger)

	// Wire services
	phaseSvc := service.NewPhaseService(uow, phaseRepo, observer)

	app := &cli.App{
		Projects: service.NewProjectService(projectRepo, observer),
		Phases:   phaseSvc,
		Tasks:    service.NewTaskService(uow, taskRepo, phaseRepo, observer),
		Timeline: service.NewTimelineService(projectRepo, phaseSvc, observer),
		Import:   service.NewImportService(uow, projectRepo, phaseRepo, taskRepo, observer),
		Config:   cfg,
		Logger:   logger,
	}

	// The TUI needs a terminal on both ends.
	app.IsInteractive = isTerminal(os.Stdin) && isTerminal(os.Stdout)

	return cli.NewRootCmd(app).Execute()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
