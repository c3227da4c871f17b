package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillPhaseStatus(db); err != nil {
		return fmt.Errorf("normalising phase status: %w", err)
	}
	if err := migrateBackfillProjectSequences(db); err != nil {
		return fmt.Errorf("backfilling project sequence allocator state: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		short_id    TEXT NOT NULL DEFAULT '',
		name        TEXT NOT NULL,
		owner_id    TEXT NOT NULL DEFAULT '',
		start_date  TEXT NOT NULL,
		target_date TEXT,
		status      TEXT NOT NULL DEFAULT 'active'
		            CHECK(status IN ('active','paused','done','archived')),
		archived_at TEXT,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_short_id ON projects(short_id) WHERE short_id != ''`,

	`CREATE TABLE IF NOT EXISTS project_sequences (
		project_id TEXT PRIMARY KEY REFERENCES projects(id) ON DELETE CASCADE,
		next_seq   INTEGER NOT NULL CHECK(next_seq > 0)
	)`,

	`CREATE TABLE IF NOT EXISTS phases (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL DEFAULT 0,
		name        TEXT NOT NULL,
		start_date  TEXT NOT NULL,
		end_date    TEXT NOT NULL,
		deliverable TEXT NOT NULL DEFAULT '',
		responsible TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'not_started'
		            CHECK(status IN ('not_started','in_progress','completed','overdue')),
		progress    INTEGER NOT NULL DEFAULT 0 CHECK(progress BETWEEN 0 AND 100),
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		CHECK(end_date >= start_date)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_phases_project ON phases(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_phases_dates ON phases(start_date, end_date)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id         TEXT PRIMARY KEY,
		phase_id   TEXT NOT NULL REFERENCES phases(id) ON DELETE CASCADE,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		seq        INTEGER NOT NULL DEFAULT 0,
		name       TEXT NOT NULL,
		assignee   TEXT NOT NULL DEFAULT '',
		due_date   TEXT,
		status     TEXT NOT NULL DEFAULT 'todo'
		           CHECK(status IN ('todo','doing','done')),
		priority   INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_phase ON tasks(phase_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)`,

	// Project presentation fields
	`ALTER TABLE projects ADD COLUMN description TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE projects ADD COLUMN color TEXT NOT NULL DEFAULT '#6366f1'`,

	// Per-phase color override; empty means inherit the project color
	`ALTER TABLE phases ADD COLUMN color TEXT NOT NULL DEFAULT ''`,
}

// migrateBackfillPhaseStatus marks phases whose progress is already 100 as
// completed. Older databases stored progress without touching status.
func migrateBackfillPhaseStatus(db *sql.DB) error {
	_, err := db.ExecContext(context.Background(),
		`UPDATE phases SET status = 'completed' WHERE progress >= 100 AND status != 'completed'`)
	if err != nil {
		return fmt.Errorf("updating completed phases: %w", err)
	}
	return nil
}

func migrateBackfillProjectSequences(db *sql.DB) error {
	ctx := context.Background()

	// Populate (or raise) next_seq for every known project using the current
	// max assigned seq across phases and tasks.
	query := `INSERT INTO project_sequences (project_id, next_seq)
		SELECT p.id, COALESCE(MAX(seq_val), 0) + 1
		FROM projects p
		LEFT JOIN (
			SELECT project_id, seq AS seq_val FROM phases WHERE seq > 0
			UNION ALL
			SELECT project_id, seq AS seq_val FROM tasks WHERE seq > 0
		) s ON s.project_id = p.id
		GROUP BY p.id
		ON CONFLICT(project_id) DO UPDATE
		SET next_seq = MAX(project_sequences.next_seq, excluded.next_seq)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("upserting project sequence rows: %w", err)
	}

	return nil
}
