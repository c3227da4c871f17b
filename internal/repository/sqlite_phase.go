package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/roadmap/internal/db"
	"github.com/alexanderramin/roadmap/internal/domain"
)

// SQLitePhaseRepo implements PhaseRepo using a SQLite database.
type SQLitePhaseRepo struct {
	db db.DBTX
}

// NewSQLitePhaseRepo creates a new SQLitePhaseRepo.
func NewSQLitePhaseRepo(conn db.DBTX) *SQLitePhaseRepo {
	return &SQLitePhaseRepo{db: conn}
}

const phaseColumns = `id, project_id, seq, name, start_date, end_date, deliverable, responsible, status, progress, color, created_at, updated_at`

func (r *SQLitePhaseRepo) Create(ctx context.Context, ph *domain.Phase) error {
	query := `INSERT INTO phases (` + phaseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	status := ph.Status
	if status == "" {
		status = domain.PhaseNotStarted
	}
	_, err := r.db.ExecContext(ctx, query,
		ph.ID,
		ph.ProjectID,
		ph.Seq,
		ph.Name,
		ph.StartDate.Format(dateLayout),
		ph.EndDate.Format(dateLayout),
		ph.Deliverable,
		ph.Responsible,
		string(status),
		ph.Progress,
		ph.Color,
		ph.CreatedAt.Format(time.RFC3339),
		ph.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting phase: %w", err)
	}
	return nil
}

func (r *SQLitePhaseRepo) GetByID(ctx context.Context, id string) (*domain.Phase, error) {
	query := `SELECT ` + phaseColumns + ` FROM phases WHERE id = ?`
	return r.scanPhase(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLitePhaseRepo) GetBySeq(ctx context.Context, projectID string, seq int) (*domain.Phase, error) {
	query := `SELECT ` + phaseColumns + ` FROM phases WHERE project_id = ? AND seq = ?`
	return r.scanPhase(r.db.QueryRowContext(ctx, query, projectID, seq))
}

// ListByProject returns phases in timeline order.
func (r *SQLitePhaseRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Phase, error) {
	query := `SELECT ` + phaseColumns + ` FROM phases WHERE project_id = ?
		ORDER BY start_date, end_date, seq`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing phases: %w", err)
	}
	defer rows.Close()

	var phases []*domain.Phase
	for rows.Next() {
		ph, err := r.scanPhase(rows)
		if err != nil {
			return nil, err
		}
		phases = append(phases, ph)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating phases: %w", err)
	}
	return phases, nil
}

func (r *SQLitePhaseRepo) Update(ctx context.Context, ph *domain.Phase) error {
	query := `UPDATE phases SET name = ?, start_date = ?, end_date = ?, deliverable = ?, responsible = ?,
		status = ?, progress = ?, color = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		ph.Name,
		ph.StartDate.Format(dateLayout),
		ph.EndDate.Format(dateLayout),
		ph.Deliverable,
		ph.Responsible,
		string(ph.Status),
		ph.Progress,
		ph.Color,
		ph.UpdatedAt.Format(time.RFC3339),
		ph.ID,
	)
	if err != nil {
		return fmt.Errorf("updating phase: %w", err)
	}
	return requireAffected(res, "phase", ph.ID)
}

func (r *SQLitePhaseRepo) UpdateDates(ctx context.Context, id string, start, end time.Time, status domain.PhaseStatus) error {
	query := `UPDATE phases SET start_date = ?, end_date = ?, status = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		start.Format(dateLayout), end.Format(dateLayout), string(status), nowUTC(), id)
	if err != nil {
		return fmt.Errorf("updating phase dates: %w", err)
	}
	return requireAffected(res, "phase", id)
}

func (r *SQLitePhaseRepo) UpdateStatus(ctx context.Context, id string, status domain.PhaseStatus) error {
	query := `UPDATE phases SET status = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, string(status), nowUTC(), id)
	if err != nil {
		return fmt.Errorf("updating phase status: %w", err)
	}
	return requireAffected(res, "phase", id)
}

func (r *SQLitePhaseRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM phases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting phase: %w", err)
	}
	return requireAffected(res, "phase", id)
}

func (r *SQLitePhaseRepo) scanPhase(row rowScanner) (*domain.Phase, error) {
	var ph domain.Phase
	var startStr, endStr, statusStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&ph.ID, &ph.ProjectID, &ph.Seq, &ph.Name,
		&startStr, &endStr,
		&ph.Deliverable, &ph.Responsible,
		&statusStr, &ph.Progress, &ph.Color,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("phase %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning phase: %w", err)
	}

	ph.Status = domain.PhaseStatus(statusStr)
	if ph.StartDate, err = time.Parse(dateLayout, startStr); err != nil {
		return nil, fmt.Errorf("parsing start_date: %w", err)
	}
	if ph.EndDate, err = time.Parse(dateLayout, endStr); err != nil {
		return nil, fmt.Errorf("parsing end_date: %w", err)
	}
	ph.CreatedAt, ph.UpdatedAt, err = parseTimes(createdAtStr, updatedAtStr)
	if err != nil {
		return nil, err
	}
	return &ph, nil
}
