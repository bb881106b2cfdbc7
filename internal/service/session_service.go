package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/activation_api/internal/models"
	"github.com/GTDGit/activation_api/internal/utils"
)

// SessionStore persists sessions keyed by their opaque token.
type SessionStore interface {
	Save(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteAllFor(ctx context.Context, kind models.PrincipalKind, id int) error
	TokensFor(ctx context.Context, kind models.PrincipalKind, id int) ([]string, error)
}

// SessionService issues and validates bearer sessions. Lifetime is fixed
// from creation and never slides.
type SessionService struct {
	store SessionStore
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(store SessionStore, ttl time.Duration) *SessionService {
	return &SessionService{store: store, ttl: ttl, now: time.Now}
}

// Create issues a session for p.
func (s *SessionService) Create(ctx context.Context, p models.Principal) (*models.Session, error) {
	token, err := utils.GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &models.Session{
		ID:            token,
		PrincipalID:   p.PrincipalID(),
		PrincipalKind: p.Kind(),
		DisplayName:   p.DisplayName(),
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.ttl),
	}
	switch v := p.(type) {
	case models.SalesManagerPrincipal:
		managerID, teamID := v.ID, v.TeamID
		session.ManagerID = &managerID
		session.TeamID = &teamID
	case models.WorkerPrincipal:
		role := v.Role
		session.RoleTag = &role
		if v.DealerScope != "" {
			scope := v.DealerScope
			session.DealerScope = &scope
		}
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	log.Info().Int("principal_id", session.PrincipalID).Str("principal_kind", string(session.PrincipalKind)).Msg("Session created")
	return session, nil
}

// Get resolves token to a live session. Unknown, expired and unreadable
// sessions all yield ErrUnauthenticated; an expired one is deleted.
func (s *SessionService) Get(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, utils.Unauthenticated()
	}
	session, err := s.store.Get(ctx, token)
	if err != nil {
		log.Error().Err(err).Msg("Session lookup failed")
		return nil, utils.Unauthenticated()
	}
	if session == nil {
		return nil, utils.Unauthenticated()
	}
	if session.Expired(s.now()) {
		if err := s.store.Delete(ctx, token); err != nil {
			log.Warn().Err(err).Msg("Failed to delete expired session")
		}
		return nil, utils.Unauthenticated()
	}
	return session, nil
}

// Delete removes a session. Unknown tokens are ignored.
func (s *SessionService) Delete(ctx context.Context, token string) error {
	return s.store.Delete(ctx, token)
}

// RevokeAll removes every session of a principal.
func (s *SessionService) RevokeAll(ctx context.Context, kind models.PrincipalKind, id int) error {
	return s.store.DeleteAllFor(ctx, kind, id)
}

// LiveFor returns the principal carried by any live session of (kind, id).
// A principal with no live session, including one whose sessions were
// revoked, yields ErrUnauthenticated.
func (s *SessionService) LiveFor(ctx context.Context, kind models.PrincipalKind, id int) (models.Principal, error) {
	tokens, err := s.store.TokensFor(ctx, kind, id)
	if err != nil {
		log.Error().Err(err).Msg("Session index lookup failed")
		return nil, utils.Unauthenticated()
	}
	for _, token := range tokens {
		session, err := s.Get(ctx, token)
		if err != nil {
			continue
		}
		if p := session.Principal(); p != nil {
			return p, nil
		}
	}
	return nil, utils.Unauthenticated()
}
