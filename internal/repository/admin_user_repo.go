package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/activation_api/internal/models"
)

type AdminUserRepository struct {
	db *sqlx.DB
}

func NewAdminUserRepository(db *sqlx.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

func (r *AdminUserRepository) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.db.GetContext(ctx, &user, `
		SELECT id, username, password_hash, name, is_active, created_at, updated_at
		FROM admin_users
		WHERE username = $1
	`, username)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *AdminUserRepository) List(ctx context.Context) ([]models.AdminUser, error) {
	var users []models.AdminUser
	err := r.db.SelectContext(ctx, &users, `
		SELECT id, username, password_hash, name, is_active, created_at, updated_at
		FROM admin_users
		ORDER BY id
	`)
	return users, err
}

// Create inserts the admin unless the username is used by any principal.
func (r *AdminUserRepository) Create(ctx context.Context, user *models.AdminUser) error {
	query := `
		INSERT INTO admin_users (username, password_hash, name, is_active)
		SELECT $1::varchar, $2::varchar, $3::varchar, $4::boolean
		WHERE ` + usernameFree + `
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, user.Username, user.PasswordHash, user.Name, user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	return err
}

func (r *AdminUserRepository) SetActive(ctx context.Context, id int, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE admin_users SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// expectOneRow maps an update that touched nothing to sql.ErrNoRows.
func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
