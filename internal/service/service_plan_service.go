package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/activation_api/internal/models"
	"github.com/GTDGit/activation_api/internal/utils"
)

type servicePlanStore interface {
	GetByID(ctx context.Context, id int) (*models.ServicePlan, error)
	List(ctx context.Context, carrier *string, activeOnly bool) ([]models.ServicePlan, error)
	Create(ctx context.Context, p *models.ServicePlan) error
	Update(ctx context.Context, p *models.ServicePlan) error
}

// ServicePlanInput is the admin payload for a service plan.
type ServicePlanInput struct {
	Carrier       string          `json:"carrier" binding:"required"`
	PlanName      string          `json:"planName" binding:"required"`
	PlanType      string          `json:"planType"`
	DataAllowance string          `json:"dataAllowance"`
	MonthlyFee    decimal.Decimal `json:"monthlyFee"`
	IsActive      *bool           `json:"isActive"`
}

// ServicePlanService manages the service plan catalog.
type ServicePlanService struct {
	plans servicePlanStore
}

// NewServicePlanService creates a new ServicePlanService.
func NewServicePlanService(plans servicePlanStore) *ServicePlanService {
	return &ServicePlanService{plans: plans}
}

// Get returns a plan by id.
func (s *ServicePlanService) Get(ctx context.Context, id int) (*models.ServicePlan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.NotFoundf("service plan %d not found", id)
	}
	return p, err
}

// List returns plans. Non-admins only see active plans.
func (s *ServicePlanService) List(ctx context.Context, actor models.Principal, carrier *string, includeInactive bool) ([]models.ServicePlan, error) {
	activeOnly := true
	if includeInactive && Authorize(actor, ActionManageCatalog) == nil {
		activeOnly = false
	}
	return s.plans.List(ctx, carrier, activeOnly)
}

// Create adds a plan.
func (s *ServicePlanService) Create(ctx context.Context, actor models.Principal, in ServicePlanInput) (*models.ServicePlan, error) {
	if err := Authorize(actor, ActionManageCatalog); err != nil {
		return nil, err
	}
	p := &models.ServicePlan{IsActive: true}
	if err := applyPlanInput(p, in); err != nil {
		return nil, err
	}
	if err := s.plans.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Int("plan_id", p.ID).Str("carrier", p.Carrier).Str("plan_name", p.PlanName).Msg("Service plan created")
	return p, nil
}

// Update edits a plan.
func (s *ServicePlanService) Update(ctx context.Context, actor models.Principal, id int, in ServicePlanInput) (*models.ServicePlan, error) {
	if err := Authorize(actor, ActionManageCatalog); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyPlanInput(p, in); err != nil {
		return nil, err
	}
	if err := s.plans.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Deactivate hides a plan from selection. Its price history is kept.
func (s *ServicePlanService) Deactivate(ctx context.Context, actor models.Principal, id int) error {
	if err := Authorize(actor, ActionManageCatalog); err != nil {
		return err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	p.IsActive = false
	return s.plans.Update(ctx, p)
}

func applyPlanInput(p *models.ServicePlan, in ServicePlanInput) error {
	if strings.TrimSpace(in.Carrier) == "" || strings.TrimSpace(in.PlanName) == "" {
		return utils.Validationf("carrier and planName are required")
	}
	if in.MonthlyFee.IsNegative() {
		return utils.Validationf("monthlyFee must not be negative")
	}
	p.Carrier = strings.TrimSpace(in.Carrier)
	p.PlanName = strings.TrimSpace(in.PlanName)
	p.PlanType = in.PlanType
	p.DataAllowance = in.DataAllowance
	p.MonthlyFee = in.MonthlyFee
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return nil
}
