package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServicePlan is a carrier rate plan selectable at activation.
type ServicePlan struct {
	ID            int             `db:"id" json:"id"`
	Carrier       string          `db:"carrier" json:"carrier"`
	PlanName      string          `db:"plan_name" json:"planName"`
	PlanType      string          `db:"plan_type" json:"planType"`
	DataAllowance string          `db:"data_allowance" json:"dataAllowance"`
	MonthlyFee    decimal.Decimal `db:"monthly_fee" json:"monthlyFee"`
	IsActive      bool            `db:"is_active" json:"isActive"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}
