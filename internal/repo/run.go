package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/reporthub/internal/models"
	"github.com/google/uuid"
)

// RunRepo records reporter executions.
type RunRepo struct {
	DB *sql.DB
}

// NewRunRepo returns a new RunRepo.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{DB: db}
}

// Start inserts a run in the running state.
func (r *RunRepo) Start(ctx context.Context, run models.ReporterRun) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO reporter_runs (id, reporter_id, trigger, status, started_at) VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.ReporterID, run.Trigger, models.RunRunning, run.StartedAt,
	)
	return err
}

// Finish sets the final status and error message of a run.
func (r *RunRepo) Finish(ctx context.Context, id uuid.UUID, status, errMsg string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE reporter_runs SET status = $1, error = $2, finished_at = NOW() WHERE id = $3`,
		status, errMsg, id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ListByReporter returns the most recent runs of a reporter, newest first.
func (r *RunRepo) ListByReporter(ctx context.Context, reporterID, limit int) ([]models.ReporterRun, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, reporter_id, trigger, status, COALESCE(error, ''), started_at, finished_at
		FROM reporter_runs
		WHERE reporter_id = $1
		ORDER BY started_at DESC
		LIMIT $2`,
		reporterID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.ReporterRun
	for rows.Next() {
		var run models.ReporterRun
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &run.ReporterID, &run.Trigger, &run.Status, &run.Error, &run.StartedAt, &finished); err != nil {
			return nil, err
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		list = append(list, run)
	}
	return list, rows.Err()
}
