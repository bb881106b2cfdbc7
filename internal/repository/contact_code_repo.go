package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/activation_api/internal/models"
)

// ContactCodeRepository provides data access for contact_codes.
type ContactCodeRepository struct {
	db *sqlx.DB
}

// NewContactCodeRepository creates a new ContactCodeRepository.
func NewContactCodeRepository(db *sqlx.DB) *ContactCodeRepository {
	return &ContactCodeRepository{db: db}
}

// ContactCodeFilter holds admin list filters.
type ContactCodeFilter struct {
	ManagerID       *int
	Carrier         *string
	Search          *string
	IncludeInactive bool
}

// GetByCode returns a code regardless of its active flag.
func (r *ContactCodeRepository) GetByCode(ctx context.Context, code string) (*models.ContactCode, error) {
	var cc models.ContactCode
	if err := r.db.GetContext(ctx, &cc, `SELECT * FROM contact_codes WHERE code = $1`, code); err != nil {
		return nil, err
	}
	return &cc, nil
}

// GetActiveByCode returns a code only while it is active.
func (r *ContactCodeRepository) GetActiveByCode(ctx context.Context, code string) (*models.ContactCode, error) {
	var cc models.ContactCode
	if err := r.db.GetContext(ctx, &cc, `SELECT * FROM contact_codes WHERE code = $1 AND is_active`, code); err != nil {
		return nil, err
	}
	return &cc, nil
}

// ListCodesByManager returns the active codes owned by a sales manager.
func (r *ContactCodeRepository) ListCodesByManager(ctx context.Context, managerID int) ([]string, error) {
	var codes []string
	err := r.db.SelectContext(ctx, &codes, `
		SELECT code FROM contact_codes
		WHERE manager_id = $1 AND is_active
		ORDER BY code`, managerID)
	return codes, err
}

// List returns codes matching the filter.
func (r *ContactCodeRepository) List(ctx context.Context, filter ContactCodeFilter) ([]models.ContactCode, error) {
	q := `SELECT * FROM contact_codes WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if !filter.IncludeInactive {
		q += " AND is_active"
	}
	if filter.ManagerID != nil {
		q += fmt.Sprintf(" AND manager_id = $%d", argIdx)
		args = append(args, *filter.ManagerID)
		argIdx++
	}
	if filter.Carrier != nil && *filter.Carrier != "" {
		q += fmt.Sprintf(" AND carrier = $%d", argIdx)
		args = append(args, *filter.Carrier)
		argIdx++
	}
	if filter.Search != nil && *filter.Search != "" {
		q += fmt.Sprintf(" AND (code ILIKE $%d OR dealer_name ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+*filter.Search+"%")
	}
	q += " ORDER BY code"

	var codes []models.ContactCode
	err := r.db.SelectContext(ctx, &codes, q, args...)
	return codes, err
}

// Create inserts a new code. Returns ErrDuplicate when the code exists,
// including soft-deleted codes.
func (r *ContactCodeRepository) Create(ctx context.Context, cc *models.ContactCode) error {
	query := `
		INSERT INTO contact_codes (code, dealer_name, carrier, real_sales_pos, manager_id, manager_name, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, query,
		cc.Code, cc.DealerName, cc.Carrier, cc.RealSalesPOS, cc.ManagerID, cc.ManagerName, cc.IsActive,
	).Scan(&cc.CreatedAt, &cc.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// Update rewrites the mutable fields of a code.
func (r *ContactCodeRepository) Update(ctx context.Context, cc *models.ContactCode) error {
	query := `
		UPDATE contact_codes
		SET dealer_name = $1, carrier = $2, real_sales_pos = $3, manager_id = $4,
		    manager_name = $5, is_active = $6, updated_at = NOW()
		WHERE code = $7
		RETURNING updated_at`
	return r.db.QueryRowxContext(ctx, query,
		cc.DealerName, cc.Carrier, cc.RealSalesPOS, cc.ManagerID, cc.ManagerName, cc.IsActive, cc.Code,
	).Scan(&cc.UpdatedAt)
}

// Deactivate soft-deletes a code. Documents keep referencing it by string.
func (r *ContactCodeRepository) Deactivate(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE contact_codes SET is_active = FALSE, updated_at = NOW() WHERE code = $1`, code)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}
