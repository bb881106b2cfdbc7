package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/activation_api/internal/models"
	"github.com/GTDGit/activation_api/internal/utils"
)

type adminCredentials interface {
	GetByUsername(ctx context.Context, username string) (*models.AdminUser, error)
}

type salesManagerCredentials interface {
	GetByUsername(ctx context.Context, username string) (*models.SalesManager, error)
}

type workerCredentials interface {
	GetByUsername(ctx context.Context, username string) (*models.WorkerUser, error)
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string                     `json:"token"`
	ExpiresAt time.Time                  `json:"expiresAt"`
	Principal models.PrincipalDescriptor `json:"principal"`
}

// AuthService authenticates principals across the three credential tables.
type AuthService struct {
	admins   adminCredentials
	managers salesManagerCredentials
	workers  workerCredentials
	sessions *SessionService
}

// NewAuthService creates a new AuthService.
func NewAuthService(admins adminCredentials, managers salesManagerCredentials, workers workerCredentials, sessions *SessionService) *AuthService {
	return &AuthService{admins: admins, managers: managers, workers: workers, sessions: sessions}
}

// Login tries administrators, then sales managers, then worker users. Every
// failure is reported as ErrUnauthenticated.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, utils.Unauthenticated()
	}

	p, err := s.authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if p == nil {
		log.Warn().Str("username", username).Msg("Login failed")
		return nil, utils.Unauthenticated()
	}

	session, err := s.sessions.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	log.Info().Str("username", username).Str("principal_kind", string(p.Kind())).Msg("Login successful")
	return &LoginResult{
		Token:     session.ID,
		ExpiresAt: session.ExpiresAt,
		Principal: models.Describe(p),
	}, nil
}

func (s *AuthService) authenticate(ctx context.Context, username, password string) (models.Principal, error) {
	admin, err := s.admins.GetByUsername(ctx, username)
	if err = notFoundIsNil(err); err != nil {
		return nil, err
	}
	if admin != nil && admin.IsActive && passwordMatches(admin.PasswordHash, password) {
		return models.AdminPrincipal{ID: admin.ID, Name: admin.Name}, nil
	}

	manager, err := s.managers.GetByUsername(ctx, username)
	if err = notFoundIsNil(err); err != nil {
		return nil, err
	}
	if manager != nil && manager.IsActive && passwordMatches(manager.PasswordHash, password) {
		return models.SalesManagerPrincipal{ID: manager.ID, TeamID: manager.TeamID, Name: manager.ManagerName}, nil
	}

	worker, err := s.workers.GetByUsername(ctx, username)
	if err = notFoundIsNil(err); err != nil {
		return nil, err
	}
	if worker != nil && worker.IsActive && worker.Role.Valid() && passwordMatches(worker.PasswordHash, password) {
		p := models.WorkerPrincipal{ID: worker.ID, Name: worker.Name, Role: worker.Role}
		if worker.DealerScope != nil {
			p.DealerScope = *worker.DealerScope
		}
		return p, nil
	}
	return nil, nil
}

// Logout deletes the session behind token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func notFoundIsNil(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
