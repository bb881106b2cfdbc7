package models

import "time"

// Session binds an opaque bearer token to a principal until ExpiresAt.
type Session struct {
	ID            string        `json:"id"`
	PrincipalID   int           `json:"principalId"`
	PrincipalKind PrincipalKind `json:"principalKind"`
	DisplayName   string        `json:"displayName"`
	ManagerID     *int          `json:"managerId,omitempty"`
	TeamID        *int          `json:"teamId,omitempty"`
	RoleTag       *RoleTag      `json:"roleTag,omitempty"`
	DealerScope   *string       `json:"dealerScope,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	ExpiresAt     time.Time     `json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Principal rebuilds the typed principal carried by the session.
// It returns nil for a session with an unknown kind.
func (s *Session) Principal() Principal {
	switch s.PrincipalKind {
	case PrincipalAdmin:
		return AdminPrincipal{ID: s.PrincipalID, Name: s.DisplayName}
	case PrincipalSalesManager:
		p := SalesManagerPrincipal{ID: s.PrincipalID, Name: s.DisplayName}
		if s.ManagerID != nil {
			p.ID = *s.ManagerID
		}
		if s.TeamID != nil {
			p.TeamID = *s.TeamID
		}
		return p
	case PrincipalWorker:
		p := WorkerPrincipal{ID: s.PrincipalID, Name: s.DisplayName}
		if s.RoleTag != nil {
			p.Role = *s.RoleTag
		}
		if s.DealerScope != nil {
			p.DealerScope = *s.DealerScope
		}
		return p
	}
	return nil
}
