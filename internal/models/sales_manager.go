package models

import "time"

type ManagerPosition string

const (
	PositionTeamLead  ManagerPosition = "team_lead"
	PositionManager   ManagerPosition = "manager"
	PositionAssociate ManagerPosition = "associate"
)

// Valid reports whether p is one of the known positions.
func (p ManagerPosition) Valid() bool {
	switch p {
	case PositionTeamLead, PositionManager, PositionAssociate:
		return true
	}
	return false
}

// SalesManager is a regional sales manager. Sales managers have read-only
// access to documents routed through the contact codes they own.
type SalesManager struct {
	ID           int             `db:"id" json:"id"`
	TeamID       int             `db:"team_id" json:"teamId"`
	ManagerName  string          `db:"manager_name" json:"managerName"`
	ManagerCode  string          `db:"manager_code" json:"managerCode"`
	Username     string          `db:"username" json:"username"`
	PasswordHash string          `db:"password_hash" json:"-"`
	Position     ManagerPosition `db:"position" json:"position"`
	IsActive     bool            `db:"is_active" json:"isActive"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
}
