package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/reporthub/internal/models"
	"github.com/lib/pq"
)

const channelColumns = `id, name, description, type, settings, created_at, updated_at`

// ChannelRepo persists notification channels.
type ChannelRepo struct {
	DB *sql.DB
}

// NewChannelRepo returns a new ChannelRepo.
func NewChannelRepo(db *sql.DB) *ChannelRepo {
	return &ChannelRepo{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChannel(row rowScanner) (models.NotificationChannel, error) {
	var c models.NotificationChannel
	var settings []byte
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Type, &settings, &c.CreatedAt, &c.UpdatedAt)
	c.Settings = settings
	return c, err
}

// Count returns the total number of channels.
func (r *ChannelRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM notification_channels").Scan(&n)
	return n, err
}

// List returns channels ordered by name.
func (r *ChannelRepo) List(ctx context.Context, limit, offset int) ([]models.NotificationChannel, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+channelColumns+` FROM notification_channels ORDER BY name, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.NotificationChannel
	for rows.Next() {
		c, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// ListByIDs returns the channels whose ids are in ids.
func (r *ChannelRepo) ListByIDs(ctx context.Context, ids []int) ([]models.NotificationChannel, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+channelColumns+` FROM notification_channels WHERE id = ANY($1) ORDER BY id`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.NotificationChannel
	for rows.Next() {
		c, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// GetByID returns one channel by id, or ErrNotFound.
func (r *ChannelRepo) GetByID(ctx context.Context, id int) (*models.NotificationChannel, error) {
	c, err := scanChannel(r.DB.QueryRowContext(ctx,
		`SELECT `+channelColumns+` FROM notification_channels WHERE id = $1`, id,
	))
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// Upsert inserts c when c.ID is zero and updates the existing row otherwise.
func (r *ChannelRepo) Upsert(ctx context.Context, c models.NotificationChannel) (*models.NotificationChannel, error) {
	var row *sql.Row
	if c.ID == 0 {
		row = r.DB.QueryRowContext(ctx, `
			INSERT INTO notification_channels (name, description, type, settings)
			VALUES ($1, $2, $3, $4)
			RETURNING `+channelColumns,
			c.Name, c.Description, c.Type, []byte(c.Settings),
		)
	} else {
		row = r.DB.QueryRowContext(ctx, `
			UPDATE notification_channels
			SET name = $1, description = $2, type = $3, settings = $4, updated_at = NOW()
			WHERE id = $5
			RETURNING `+channelColumns,
			c.Name, c.Description, c.Type, []byte(c.Settings), c.ID,
		)
	}
	out, err := scanChannel(row)
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// Delete removes a channel by id.
func (r *ChannelRepo) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM notification_channels WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
