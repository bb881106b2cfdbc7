package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementUnitPrice is one version in a service plan's price history.
// Rows are never edited in place apart from closing them: at most one row per
// plan is active, and closing it stamps EffectiveUntil.
type SettlementUnitPrice struct {
	ID               int             `db:"id" json:"id"`
	ServicePlanID    int             `db:"service_plan_id" json:"servicePlanId"`
	NewCustomerPrice decimal.Decimal `db:"new_customer_price" json:"newCustomerPrice"`
	PortInPrice      decimal.Decimal `db:"port_in_price" json:"portInPrice"`
	EffectiveFrom    time.Time       `db:"effective_from" json:"effectiveFrom"`
	EffectiveUntil   *time.Time      `db:"effective_until" json:"effectiveUntil,omitempty"`
	Memo             string          `db:"memo" json:"memo"`
	IsActive         bool            `db:"is_active" json:"isActive"`
	CreatedBy        int             `db:"created_by" json:"createdBy"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
}

// PriceFor returns the unit price that applies to the given customer type.
func (p *SettlementUnitPrice) PriceFor(ct CustomerType) decimal.Decimal {
	if ct == CustomerPortIn {
		return p.PortInPrice
	}
	return p.NewCustomerPrice
}
