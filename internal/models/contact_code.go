package models

import "time"

// ContactCode ties a code printed on dealer paperwork to a store and,
// optionally, to the sales manager who owns it. Codes are soft-deleted only.
type ContactCode struct {
	Code         string    `db:"code" json:"code"`
	DealerName   string    `db:"dealer_name" json:"dealerName"`
	Carrier      string    `db:"carrier" json:"carrier"`
	RealSalesPOS *string   `db:"real_sales_pos" json:"realSalesPos,omitempty"`
	ManagerID    *int      `db:"manager_id" json:"managerId,omitempty"`
	ManagerName  *string   `db:"manager_name" json:"managerName,omitempty"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// ContactCodeResolution is what the resolver hands back for an active code.
type ContactCodeResolution struct {
	Code              string `json:"code"`
	DealerDisplayName string `json:"dealerDisplayName"`
	Carrier           string `json:"carrier"`
	OwningManagerID   *int   `json:"owningManagerId,omitempty"`
}
