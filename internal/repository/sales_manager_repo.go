package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/activation_api/internal/models"
)

// SalesManagerRepository provides data access for sales_managers.
type SalesManagerRepository struct {
	db *sqlx.DB
}

// NewSalesManagerRepository creates a new SalesManagerRepository.
func NewSalesManagerRepository(db *sqlx.DB) *SalesManagerRepository {
	return &SalesManagerRepository{db: db}
}

const salesManagerColumns = `id, team_id, manager_name, manager_code, username, password_hash,
		position, is_active, created_at, updated_at`

// GetByUsername finds a sales manager by login name.
func (r *SalesManagerRepository) GetByUsername(ctx context.Context, username string) (*models.SalesManager, error) {
	var m models.SalesManager
	if err := r.db.GetContext(ctx, &m, `SELECT `+salesManagerColumns+` FROM sales_managers WHERE username = $1`, username); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID finds a sales manager by id.
func (r *SalesManagerRepository) GetByID(ctx context.Context, id int) (*models.SalesManager, error) {
	var m models.SalesManager
	if err := r.db.GetContext(ctx, &m, `SELECT `+salesManagerColumns+` FROM sales_managers WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns managers, optionally restricted to one team.
func (r *SalesManagerRepository) List(ctx context.Context, teamID *int) ([]models.SalesManager, error) {
	var managers []models.SalesManager
	var err error
	if teamID != nil {
		err = r.db.SelectContext(ctx, &managers, `SELECT `+salesManagerColumns+` FROM sales_managers WHERE team_id = $1 ORDER BY id`, *teamID)
	} else {
		err = r.db.SelectContext(ctx, &managers, `SELECT `+salesManagerColumns+` FROM sales_managers ORDER BY id`)
	}
	return managers, err
}

// Create inserts a manager. Returns ErrUsernameTaken when the username is used
// by any principal and ErrDuplicate when the manager code exists.
func (r *SalesManagerRepository) Create(ctx context.Context, m *models.SalesManager) error {
	query := `
		INSERT INTO sales_managers (username, team_id, manager_name, manager_code, password_hash, position, is_active)
		SELECT $1::varchar, $2::int, $3::varchar, $4::varchar, $5::varchar, $6::varchar, $7::boolean
		WHERE ` + usernameFree + `
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		m.Username, m.TeamID, m.ManagerName, m.ManagerCode, m.PasswordHash, m.Position, m.IsActive,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrUsernameTaken
	case isUniqueViolation(err):
		if uniqueConstraint(err) == "sales_managers_manager_code_key" {
			return ErrDuplicate
		}
		return ErrUsernameTaken
	}
	return err
}

// SetActive toggles the active flag.
func (r *SalesManagerRepository) SetActive(ctx context.Context, id int, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE sales_managers SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}
