package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/reporthub/internal/models"
)

const scheduleColumns = `id, name, cron, timezone, created_at, updated_at`

// ScheduleRepo persists reporter schedules.
type ScheduleRepo struct {
	DB *sql.DB
}

// NewScheduleRepo returns a new ScheduleRepo.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{DB: db}
}

// Count returns the total number of schedules.
func (r *ScheduleRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM schedules").Scan(&n)
	return n, err
}

// List returns schedules ordered by name. limit/offset for pagination.
func (r *ScheduleRepo) List(ctx context.Context, limit, offset int) ([]models.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		ORDER BY name, id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Schedule
	for rows.Next() {
		var s models.Schedule
		if err := rows.Scan(&s.ID, &s.Name, &s.Cron, &s.Timezone, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// GetByID returns one schedule by id, or ErrNotFound.
func (r *ScheduleRepo) GetByID(ctx context.Context, id int) (*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`
	s := &models.Schedule{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&s.ID, &s.Name, &s.Cron, &s.Timezone, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return s, nil
}

// Create inserts a new schedule and returns it with id set.
func (r *ScheduleRepo) Create(ctx context.Context, name, cron, timezone string) (*models.Schedule, error) {
	query := `
		INSERT INTO schedules (name, cron, timezone)
		VALUES ($1, $2, $3)
		RETURNING ` + scheduleColumns
	s := &models.Schedule{}
	err := r.DB.QueryRowContext(ctx, query, name, cron, timezone).
		Scan(&s.ID, &s.Name, &s.Cron, &s.Timezone, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return s, nil
}

// Update replaces name, cron and timezone for the given id.
func (r *ScheduleRepo) Update(ctx context.Context, id int, name, cron, timezone string) (*models.Schedule, error) {
	query := `
		UPDATE schedules
		SET name = $1, cron = $2, timezone = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING ` + scheduleColumns
	s := &models.Schedule{}
	err := r.DB.QueryRowContext(ctx, query, name, cron, timezone, id).
		Scan(&s.ID, &s.Name, &s.Cron, &s.Timezone, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return s, nil
}

// Delete removes a schedule by id. Reporters using it are left unscheduled.
func (r *ScheduleRepo) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
