package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/activation_api/internal/models"
	"github.com/GTDGit/activation_api/internal/utils"
)

type settlementPriceStore interface {
	GetActive(ctx context.Context, servicePlanID int) (*models.SettlementUnitPrice, error)
	History(ctx context.Context, servicePlanID int) ([]models.SettlementUnitPrice, error)
	ListActive(ctx context.Context) ([]models.SettlementUnitPrice, error)
	Replace(ctx context.Context, price *models.SettlementUnitPrice, now func() time.Time) error
}

// SetPriceInput is the pricing boundary payload.
type SetPriceInput struct {
	ServicePlanID    int             `json:"servicePlanId"`
	NewCustomerPrice decimal.Decimal `json:"newCustomerPrice"`
	PortInPrice      decimal.Decimal `json:"portInPrice"`
	Memo             string          `json:"memo"`
}

// SettlementService resolves and versions settlement unit prices.
type SettlementService struct {
	prices settlementPriceStore
	now    func() time.Time
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(prices settlementPriceStore) *SettlementService {
	return &SettlementService{prices: prices, now: time.Now}
}

// ComputeSettlementAmount returns the settlement for an activation. The
// currently active price applies regardless of activatedAt; a plan with no
// active price yields an invalid (unpriced) amount and no error.
func (s *SettlementService) ComputeSettlementAmount(ctx context.Context, servicePlanID int, ct models.CustomerType, activatedAt time.Time) (decimal.NullDecimal, error) {
	price, err := s.prices.GetActive(ctx, servicePlanID)
	if errors.Is(err, sql.ErrNoRows) {
		log.Info().Int("plan_id", servicePlanID).Time("activated_at", activatedAt).Msg("No active settlement price, leaving unpriced")
		return decimal.NullDecimal{}, nil
	}
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(price.PriceFor(ct)), nil
}

// SetPrice closes the plan's current price and activates a new one in a
// single transaction.
func (s *SettlementService) SetPrice(ctx context.Context, actor models.Principal, in SetPriceInput) (*models.SettlementUnitPrice, error) {
	if err := Authorize(actor, ActionManagePricing); err != nil {
		return nil, err
	}
	if in.ServicePlanID <= 0 {
		return nil, utils.Validationf("servicePlanId is required")
	}
	if in.NewCustomerPrice.IsNegative() || in.PortInPrice.IsNegative() {
		return nil, utils.Validationf("prices must not be negative")
	}

	price := &models.SettlementUnitPrice{
		ServicePlanID:    in.ServicePlanID,
		NewCustomerPrice: in.NewCustomerPrice,
		PortInPrice:      in.PortInPrice,
		Memo:             in.Memo,
		CreatedBy:        actor.PrincipalID(),
	}
	if err := s.prices.Replace(ctx, price, s.now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFoundf("service plan %d not found", in.ServicePlanID)
		}
		log.Error().Err(err).Int("plan_id", in.ServicePlanID).Msg("Failed to replace settlement price")
		return nil, err
	}

	log.Info().
		Int("plan_id", price.ServicePlanID).
		Int("price_id", price.ID).
		Str("new_customer_price", price.NewCustomerPrice.String()).
		Str("port_in_price", price.PortInPrice.String()).
		Msg("Settlement price replaced")
	return price, nil
}

// PriceHistory returns every price version of a plan, newest first.
func (s *SettlementService) PriceHistory(ctx context.Context, actor models.Principal, servicePlanID int) ([]models.SettlementUnitPrice, error) {
	if err := Authorize(actor, ActionManagePricing); err != nil {
		return nil, err
	}
	return s.prices.History(ctx, servicePlanID)
}

// ActivePrices returns the active price of every priced plan.
func (s *SettlementService) ActivePrices(ctx context.Context, actor models.Principal) ([]models.SettlementUnitPrice, error) {
	if err := Authorize(actor, ActionManagePricing); err != nil {
		return nil, err
	}
	return s.prices.ListActive(ctx)
}
