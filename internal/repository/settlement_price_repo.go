package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/activation_api/internal/database"
	"github.com/GTDGit/activation_api/internal/models"
)

// SettlementPriceRepository provides data access for settlement_unit_prices.
// Rows form an append-only history per service plan.
type SettlementPriceRepository struct {
	db *sqlx.DB
}

// NewSettlementPriceRepository creates a new SettlementPriceRepository.
func NewSettlementPriceRepository(db *sqlx.DB) *SettlementPriceRepository {
	return &SettlementPriceRepository{db: db}
}

// GetActive returns the active price for a plan or sql.ErrNoRows.
func (r *SettlementPriceRepository) GetActive(ctx context.Context, servicePlanID int) (*models.SettlementUnitPrice, error) {
	var p models.SettlementUnitPrice
	err := r.db.GetContext(ctx, &p, `
		SELECT * FROM settlement_unit_prices
		WHERE service_plan_id = $1 AND is_active`, servicePlanID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// History returns every price version of a plan, newest first.
func (r *SettlementPriceRepository) History(ctx context.Context, servicePlanID int) ([]models.SettlementUnitPrice, error) {
	var prices []models.SettlementUnitPrice
	err := r.db.SelectContext(ctx, &prices, `
		SELECT * FROM settlement_unit_prices
		WHERE service_plan_id = $1
		ORDER BY effective_from DESC, id DESC`, servicePlanID)
	return prices, err
}

// ListActive returns the active price of every plan that has one.
func (r *SettlementPriceRepository) ListActive(ctx context.Context) ([]models.SettlementUnitPrice, error) {
	var prices []models.SettlementUnitPrice
	err := r.db.SelectContext(ctx, &prices, `
		SELECT * FROM settlement_unit_prices
		WHERE is_active
		ORDER BY service_plan_id`)
	return prices, err
}

// Replace closes the plan's active price and inserts price as the new
// active row starting at the same instant. The instant is read from now
// after the plan row is locked, so concurrent replacements for one plan
// serialize in clock order. It never precedes the closed row's start.
// Returns sql.ErrNoRows when the plan does not exist.
func (r *SettlementPriceRepository) Replace(ctx context.Context, price *models.SettlementUnitPrice, now func() time.Time) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var planID int
		if err := tx.GetContext(ctx, &planID, `SELECT id FROM service_plans WHERE id = $1 FOR UPDATE`, price.ServicePlanID); err != nil {
			return err
		}

		at := now()
		var closedAt time.Time
		err := tx.GetContext(ctx, &closedAt, `
			UPDATE settlement_unit_prices
			SET is_active = FALSE, effective_until = GREATEST($1::timestamptz, effective_from)
			WHERE service_plan_id = $2 AND is_active
			RETURNING effective_until`, at, price.ServicePlanID)
		switch {
		case err == nil:
			at = closedAt
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}

		price.EffectiveFrom = at
		price.EffectiveUntil = nil
		price.IsActive = true
		return tx.QueryRowxContext(ctx, `
			INSERT INTO settlement_unit_prices
				(service_plan_id, new_customer_price, port_in_price, effective_from, memo, is_active, created_by)
			VALUES ($1, $2, $3, $4, $5, TRUE, $6)
			RETURNING id, created_at`,
			price.ServicePlanID, price.NewCustomerPrice, price.PortInPrice, at, price.Memo, price.CreatedBy,
		).Scan(&price.ID, &price.CreatedAt)
	})
}
