package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/activation_api/internal/models"
)

// ServicePlanRepository provides data access for service_plans.
type ServicePlanRepository struct {
	db *sqlx.DB
}

// NewServicePlanRepository creates a new ServicePlanRepository.
func NewServicePlanRepository(db *sqlx.DB) *ServicePlanRepository {
	return &ServicePlanRepository{db: db}
}

// GetByID finds a plan by id.
func (r *ServicePlanRepository) GetByID(ctx context.Context, id int) (*models.ServicePlan, error) {
	var p models.ServicePlan
	if err := r.db.GetContext(ctx, &p, `SELECT * FROM service_plans WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns plans, optionally only active ones of a carrier.
func (r *ServicePlanRepository) List(ctx context.Context, carrier *string, activeOnly bool) ([]models.ServicePlan, error) {
	q := `SELECT * FROM service_plans WHERE 1=1`
	args := []interface{}{}
	if activeOnly {
		q += " AND is_active"
	}
	if carrier != nil && *carrier != "" {
		q += fmt.Sprintf(" AND carrier = $%d", len(args)+1)
		args = append(args, *carrier)
	}
	q += " ORDER BY carrier, plan_name"

	var plans []models.ServicePlan
	err := r.db.SelectContext(ctx, &plans, q, args...)
	return plans, err
}

// Create inserts a plan.
func (r *ServicePlanRepository) Create(ctx context.Context, p *models.ServicePlan) error {
	query := `
		INSERT INTO service_plans (carrier, plan_name, plan_type, data_allowance, monthly_fee, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query,
		p.Carrier, p.PlanName, p.PlanType, p.DataAllowance, p.MonthlyFee, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Update rewrites a plan's mutable fields.
func (r *ServicePlanRepository) Update(ctx context.Context, p *models.ServicePlan) error {
	query := `
		UPDATE service_plans
		SET carrier = $1, plan_name = $2, plan_type = $3, data_allowance = $4,
		    monthly_fee = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at`
	return r.db.QueryRowxContext(ctx, query,
		p.Carrier, p.PlanName, p.PlanType, p.DataAllowance, p.MonthlyFee, p.IsActive, p.ID,
	).Scan(&p.UpdatedAt)
}
