package models

import "time"

// WorkerUser is a dealer-side account: either a store that submits
// paperwork or a worker that processes it.
type WorkerUser struct {
	ID           int       `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Role         RoleTag   `db:"role" json:"role"`
	DealerScope  *string   `db:"dealer_scope" json:"dealerScope,omitempty"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}
