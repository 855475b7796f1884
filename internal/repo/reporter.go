package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crucial707/reporthub/internal/models"
	"github.com/lib/pq"
)

const reporterSelect = `
	SELECT r.id, r.name, r.description, r.schedule_id, r.enabled, r.created_at, r.updated_at,
		COALESCE(array_agg(rc.channel_id ORDER BY rc.channel_id) FILTER (WHERE rc.channel_id IS NOT NULL), '{}')
	FROM reporters r
	LEFT JOIN reporter_channels rc ON rc.reporter_id = r.id
`

// ReporterRepo persists reporters and their channel links.
type ReporterRepo struct {
	DB *sql.DB
}

// NewReporterRepo returns a new ReporterRepo.
func NewReporterRepo(db *sql.DB) *ReporterRepo {
	return &ReporterRepo{DB: db}
}

func scanReporter(row rowScanner) (models.Reporter, error) {
	var rep models.Reporter
	var scheduleID sql.NullInt64
	var channels pq.Int64Array
	if err := row.Scan(&rep.ID, &rep.Name, &rep.Description, &scheduleID, &rep.Enabled,
		&rep.CreatedAt, &rep.UpdatedAt, &channels); err != nil {
		return rep, err
	}
	if scheduleID.Valid {
		id := int(scheduleID.Int64)
		rep.ScheduleID = &id
	}
	rep.ChannelIDs = make([]int, len(channels))
	for i, c := range channels {
		rep.ChannelIDs[i] = int(c)
	}
	return rep, nil
}

// Count returns the total number of reporters.
func (r *ReporterRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM reporters").Scan(&n)
	return n, err
}

// List returns reporters ordered by name, each with its channel ids.
func (r *ReporterRepo) List(ctx context.Context, limit, offset int) ([]models.Reporter, error) {
	rows, err := r.DB.QueryContext(ctx,
		reporterSelect+` GROUP BY r.id ORDER BY r.name, r.id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Reporter
	for rows.Next() {
		rep, err := scanReporter(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, rep)
	}
	return list, rows.Err()
}

// GetByID returns one reporter with its channel ids, or ErrNotFound.
func (r *ReporterRepo) GetByID(ctx context.Context, id int) (*models.Reporter, error) {
	rep, err := scanReporter(r.DB.QueryRowContext(ctx,
		reporterSelect+` WHERE r.id = $1 GROUP BY r.id`, id,
	))
	if err != nil {
		return nil, translate(err)
	}
	return &rep, nil
}

// Create inserts rep and its channel links in one transaction.
func (r *ReporterRepo) Create(ctx context.Context, rep models.Reporter) (*models.Reporter, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO reporters (name, description, schedule_id, enabled)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		rep.Name, rep.Description, nullableID(rep.ScheduleID), rep.Enabled,
	).Scan(&rep.ID, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	if err := linkChannels(ctx, tx, rep.ID, rep.ChannelIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	if rep.ChannelIDs == nil {
		rep.ChannelIDs = []int{}
	}
	return &rep, nil
}

// Update replaces the reporter's fields and its full set of channel links.
func (r *ReporterRepo) Update(ctx context.Context, rep models.Reporter) (*models.Reporter, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		UPDATE reporters
		SET name = $1, description = $2, schedule_id = $3, enabled = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING created_at, updated_at`,
		rep.Name, rep.Description, nullableID(rep.ScheduleID), rep.Enabled, rep.ID,
	).Scan(&rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM reporter_channels WHERE reporter_id = $1`, rep.ID); err != nil {
		return nil, err
	}
	if err := linkChannels(ctx, tx, rep.ID, rep.ChannelIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	if rep.ChannelIDs == nil {
		rep.ChannelIDs = []int{}
	}
	return &rep, nil
}

// Delete removes a reporter; its channel links and runs cascade.
func (r *ReporterRepo) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM reporters WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ListEnabledScheduled returns every enabled reporter that has a schedule,
// joined with the schedule's cron and timezone (for the cron runner).
func (r *ReporterRepo) ListEnabledScheduled(ctx context.Context) ([]models.ScheduledReporter, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.id, r.name, s.id, s.cron, s.timezone
		FROM reporters r
		JOIN schedules s ON s.id = r.schedule_id
		WHERE r.enabled = true
		ORDER BY r.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.ScheduledReporter
	for rows.Next() {
		var sr models.ScheduledReporter
		if err := rows.Scan(&sr.ReporterID, &sr.ReporterName, &sr.ScheduleID, &sr.Cron, &sr.Timezone); err != nil {
			return nil, err
		}
		list = append(list, sr)
	}
	return list, rows.Err()
}

func linkChannels(ctx context.Context, tx *sql.Tx, reporterID int, channelIDs []int) error {
	for _, cid := range channelIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO reporter_channels (reporter_id, channel_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			reporterID, cid,
		); err != nil {
			return fmt.Errorf("link channel %d: %w", cid, err)
		}
	}
	return nil
}

func nullableID(id *int) any {
	if id == nil {
		return nil
	}
	return *id
}
