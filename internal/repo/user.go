package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/reporthub/internal/models"
)

// UserRepo persists dashboard users.
type UserRepo struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var hash sql.NullString
	if err := row.Scan(&u.ID, &u.Username, &hash, &u.Role); err != nil {
		return nil, translate(err)
	}
	u.PasswordHash = hash.String
	return u, nil
}

// Create inserts a user. An empty passwordHash stores NULL (password-less login).
func (r *UserRepo) Create(ctx context.Context, username, passwordHash, role string) (*models.User, error) {
	var hash any
	if passwordHash != "" {
		hash = passwordHash
	}
	u := &models.User{}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, username, role`,
		username, hash, role,
	).Scan(&u.ID, &u.Username, &u.Role)
	if err != nil {
		return nil, translate(err)
	}
	u.PasswordHash = passwordHash
	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role FROM users WHERE id = $1`, id,
	))
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role FROM users WHERE username = $1`, username,
	))
}
