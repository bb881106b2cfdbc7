package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/activation_api/internal/models"
)

// WorkerUserRepository provides data access for worker_users.
type WorkerUserRepository struct {
	db *sqlx.DB
}

// NewWorkerUserRepository creates a new WorkerUserRepository.
func NewWorkerUserRepository(db *sqlx.DB) *WorkerUserRepository {
	return &WorkerUserRepository{db: db}
}

const workerUserColumns = `id, username, password_hash, name, role, dealer_scope, is_active, created_at, updated_at`

func (r *WorkerUserRepository) GetByUsername(ctx context.Context, username string) (*models.WorkerUser, error) {
	var u models.WorkerUser
	if err := r.db.GetContext(ctx, &u, `SELECT `+workerUserColumns+` FROM worker_users WHERE username = $1`, username); err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns worker users, optionally filtered by role.
func (r *WorkerUserRepository) List(ctx context.Context, role *models.RoleTag) ([]models.WorkerUser, error) {
	var users []models.WorkerUser
	var err error
	if role != nil {
		err = r.db.SelectContext(ctx, &users, `SELECT `+workerUserColumns+` FROM worker_users WHERE role = $1 ORDER BY id`, *role)
	} else {
		err = r.db.SelectContext(ctx, &users, `SELECT `+workerUserColumns+` FROM worker_users ORDER BY id`)
	}
	return users, err
}

func (r *WorkerUserRepository) Create(ctx context.Context, u *models.WorkerUser) error {
	query := `
		INSERT INTO worker_users (username, password_hash, name, role, dealer_scope, is_active)
		SELECT $1::varchar, $2::varchar, $3::varchar, $4::varchar, $5::varchar, $6::boolean
		WHERE ` + usernameFree + `
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, u.Username, u.PasswordHash, u.Name, u.Role, u.DealerScope, u.IsActive).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	return err
}

func (r *WorkerUserRepository) SetActive(ctx context.Context, id int, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE worker_users SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}
