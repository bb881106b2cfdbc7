package models

import "strconv"

type PrincipalKind string

const (
	PrincipalAdmin        PrincipalKind = "admin"
	PrincipalSalesManager PrincipalKind = "sales_manager"
	PrincipalWorker       PrincipalKind = "worker"
)

type RoleTag string

const (
	RoleDealerStore  RoleTag = "dealer_store"
	RoleDealerWorker RoleTag = "dealer_worker"
)

// Valid reports whether r is one of the known worker role tags.
func (r RoleTag) Valid() bool {
	return r == RoleDealerStore || r == RoleDealerWorker
}

// Principal is an authenticated actor. The concrete type is one of
// AdminPrincipal, SalesManagerPrincipal or WorkerPrincipal; callers switch on
// the type rather than probing fields.
type Principal interface {
	Kind() PrincipalKind
	PrincipalID() int
	DisplayName() string
	isPrincipal()
}

// AdminPrincipal is an authenticated administrator.
type AdminPrincipal struct {
	ID   int
	Name string
}

// SalesManagerPrincipal is an authenticated (read-only) sales manager.
type SalesManagerPrincipal struct {
	ID     int
	TeamID int
	Name   string
}

// WorkerPrincipal is an authenticated dealer store or dealer worker.
type WorkerPrincipal struct {
	ID          int
	Name        string
	Role        RoleTag
	DealerScope string
}

func (AdminPrincipal) Kind() PrincipalKind   { return PrincipalAdmin }
func (p AdminPrincipal) PrincipalID() int    { return p.ID }
func (p AdminPrincipal) DisplayName() string { return p.Name }
func (AdminPrincipal) isPrincipal()          {}

func (SalesManagerPrincipal) Kind() PrincipalKind   { return PrincipalSalesManager }
func (p SalesManagerPrincipal) PrincipalID() int    { return p.ID }
func (p SalesManagerPrincipal) DisplayName() string { return p.Name }
func (SalesManagerPrincipal) isPrincipal()          {}

func (WorkerPrincipal) Kind() PrincipalKind   { return PrincipalWorker }
func (p WorkerPrincipal) PrincipalID() int    { return p.ID }
func (p WorkerPrincipal) DisplayName() string { return p.Name }
func (WorkerPrincipal) isPrincipal()          {}

// PrincipalDescriptor is the normalized identity returned to clients at login.
type PrincipalDescriptor struct {
	ID            int           `json:"id"`
	DisplayName   string        `json:"displayName"`
	PrincipalKind PrincipalKind `json:"principalKind"`
	RoleTag       *RoleTag      `json:"roleTag,omitempty"`
	OwnerScopeID  *string       `json:"ownerScopeId,omitempty"`
}

// Describe builds the client-facing descriptor for p.
func Describe(p Principal) PrincipalDescriptor {
	d := PrincipalDescriptor{
		ID:            p.PrincipalID(),
		DisplayName:   p.DisplayName(),
		PrincipalKind: p.Kind(),
	}
	switch v := p.(type) {
	case SalesManagerPrincipal:
		scope := strconv.Itoa(v.ID)
		d.OwnerScopeID = &scope
	case WorkerPrincipal:
		role := v.Role
		d.RoleTag = &role
		if v.DealerScope != "" {
			scope := v.DealerScope
			d.OwnerScopeID = &scope
		}
	}
	return d
}
