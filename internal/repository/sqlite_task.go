package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/roadmap/internal/db"
	"github.com/alexanderramin/roadmap/internal/domain"
)

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

const taskColumns = `id, phase_id, project_id, seq, name, assignee, due_date, status, priority, created_at, updated_at`

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	status := t.Status
	if status == "" {
		status = domain.TaskTodo
	}
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.PhaseID,
		t.ProjectID,
		t.Seq,
		t.Name,
		t.Assignee,
		nullableTimeToString(t.DueDate, dateLayout),
		string(status),
		t.Priority,
		t.CreatedAt.Format(time.RFC3339),
		t.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	return r.scanTask(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteTaskRepo) GetBySeq(ctx context.Context, projectID string, seq int) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ? AND seq = ?`
	return r.scanTask(r.db.QueryRowContext(ctx, query, projectID, seq))
}

func (r *SQLiteTaskRepo) ListByPhase(ctx context.Context, phaseID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE phase_id = ? ORDER BY priority, created_at`
	return r.list(ctx, query, phaseID)
}

func (r *SQLiteTaskRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	query := `SELECT t.id, t.phase_id, t.project_id, t.seq, t.name, t.assignee, t.due_date, t.status,
		t.priority, t.created_at, t.updated_at
		FROM tasks t JOIN phases p ON p.id = t.phase_id
		WHERE t.project_id = ?
		ORDER BY p.start_date, p.seq, t.priority, t.created_at`
	return r.list(ctx, query, projectID)
}

func (r *SQLiteTaskRepo) ListByAssignee(ctx context.Context, assignee string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE assignee = ? COLLATE NOCASE
		ORDER BY priority, due_date IS NULL, due_date, created_at`
	return r.list(ctx, query, strings.TrimSpace(assignee))
}

func (r *SQLiteTaskRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := r.scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `UPDATE tasks SET phase_id = ?, name = ?, assignee = ?, due_date = ?, status = ?, priority = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		t.PhaseID,
		t.Name,
		t.Assignee,
		nullableTimeToString(t.DueDate, dateLayout),
		string(t.Status),
		t.Priority,
		t.UpdatedAt.Format(time.RFC3339),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	return requireAffected(res, "task", t.ID)
}

func (r *SQLiteTaskRepo) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), nowUTC(), id)
	if err != nil {
		return fmt.Errorf("updating task status: %w", err)
	}
	return requireAffected(res, "task", id)
}

func (r *SQLiteTaskRepo) UpdatePriority(ctx context.Context, id string, priority int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET priority = ?, updated_at = ? WHERE id = ?`,
		priority, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("updating task priority: %w", err)
	}
	return requireAffected(res, "task", id)
}

func (r *SQLiteTaskRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return requireAffected(res, "task", id)
}

func (r *SQLiteTaskRepo) scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var statusStr, createdAtStr, updatedAtStr string
	var dueStr sql.NullString

	err := row.Scan(
		&t.ID, &t.PhaseID, &t.ProjectID, &t.Seq, &t.Name, &t.Assignee,
		&dueStr, &statusStr, &t.Priority,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	t.Status = domain.TaskStatus(statusStr)
	t.DueDate = parseNullableTime(dueStr, dateLayout)
	t.CreatedAt, t.UpdatedAt, err = parseTimes(createdAtStr, updatedAtStr)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
