package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/activation_api/internal/models"
	"github.com/GTDGit/activation_api/internal/repository"
	"github.com/GTDGit/activation_api/internal/utils"
)

type adminStore interface {
	adminCredentials
	List(ctx context.Context) ([]models.AdminUser, error)
	Create(ctx context.Context, user *models.AdminUser) error
	SetActive(ctx context.Context, id int, active bool) error
}

type salesManagerStore interface {
	salesManagerCredentials
	GetByID(ctx context.Context, id int) (*models.SalesManager, error)
	List(ctx context.Context, teamID *int) ([]models.SalesManager, error)
	Create(ctx context.Context, m *models.SalesManager) error
	SetActive(ctx context.Context, id int, active bool) error
}

type workerStore interface {
	workerCredentials
	List(ctx context.Context, role *models.RoleTag) ([]models.WorkerUser, error)
	Create(ctx context.Context, u *models.WorkerUser) error
	SetActive(ctx context.Context, id int, active bool) error
}

// CreateAdminInput is the payload for a new administrator.
type CreateAdminInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// CreateSalesManagerInput is the payload for a new sales manager.
type CreateSalesManagerInput struct {
	Username    string                 `json:"username" binding:"required"`
	Password    string                 `json:"password" binding:"required"`
	TeamID      int                    `json:"teamId" binding:"required"`
	ManagerName string                 `json:"managerName" binding:"required"`
	ManagerCode string                 `json:"managerCode" binding:"required"`
	Position    models.ManagerPosition `json:"position" binding:"required"`
}

// CreateWorkerInput is the payload for a new dealer store or dealer worker.
type CreateWorkerInput struct {
	Username    string         `json:"username" binding:"required"`
	Password    string         `json:"password" binding:"required"`
	Name        string         `json:"name" binding:"required"`
	Role        models.RoleTag `json:"role" binding:"required"`
	DealerScope *string        `json:"dealerScope"`
}

// IdentityService manages the three principal tables. Usernames are unique
// across all of them.
type IdentityService struct {
	admins   adminStore
	managers salesManagerStore
	workers  workerStore
	sessions *SessionService
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(admins adminStore, managers salesManagerStore, workers workerStore, sessions *SessionService) *IdentityService {
	return &IdentityService{admins: admins, managers: managers, workers: workers, sessions: sessions}
}

const minPasswordLength = 8

func validateCredentials(username, password string) error {
	if l := len(strings.TrimSpace(username)); l < 3 || l > 64 {
		return utils.Validationf("username must be between 3 and 64 characters")
	}
	if len(password) < minPasswordLength {
		return utils.Validationf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func mapIdentityError(err error) error {
	switch {
	case errors.Is(err, repository.ErrUsernameTaken):
		return utils.Conflictf("username already in use")
	case errors.Is(err, repository.ErrDuplicate):
		return utils.Conflictf("manager code already in use")
	case errors.Is(err, sql.ErrNoRows):
		return utils.NotFoundf("account not found")
	}
	return err
}

// CreateAdmin creates an administrator account.
func (s *IdentityService) CreateAdmin(ctx context.Context, actor models.Principal, in CreateAdminInput) (*models.AdminUser, error) {
	if err := Authorize(actor, ActionManageIdentities); err != nil {
		return nil, err
	}
	if err := validateCredentials(in.Username, in.Password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.AdminUser{
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hash,
		Name:         in.Name,
		IsActive:     true,
	}
	if err := s.admins.Create(ctx, user); err != nil {
		return nil, mapIdentityError(err)
	}
	log.Info().Int("admin_id", user.ID).Str("username", user.Username).Msg("Admin created")
	return user, nil
}

// CreateSalesManager creates a sales manager account.
func (s *IdentityService) CreateSalesManager(ctx context.Context, actor models.Principal, in CreateSalesManagerInput) (*models.SalesManager, error) {
	if err := Authorize(actor, ActionManageIdentities); err != nil {
		return nil, err
	}
	if err := validateCredentials(in.Username, in.Password); err != nil {
		return nil, err
	}
	if !in.Position.Valid() {
		return nil, utils.Validationf("unknown position %q", in.Position)
	}
	if strings.TrimSpace(in.ManagerCode) == "" {
		return nil, utils.Validationf("managerCode is required")
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	m := &models.SalesManager{
		TeamID:       in.TeamID,
		ManagerName:  in.ManagerName,
		ManagerCode:  strings.TrimSpace(in.ManagerCode),
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hash,
		Position:     in.Position,
		IsActive:     true,
	}
	if err := s.managers.Create(ctx, m); err != nil {
		return nil, mapIdentityError(err)
	}
	log.Info().Int("manager_id", m.ID).Str("username", m.Username).Msg("Sales manager created")
	return m, nil
}

// CreateWorker creates a dealer store or dealer worker account.
func (s *IdentityService) CreateWorker(ctx context.Context, actor models.Principal, in CreateWorkerInput) (*models.WorkerUser, error) {
	if err := Authorize(actor, ActionManageIdentities); err != nil {
		return nil, err
	}
	if err := validateCredentials(in.Username, in.Password); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, utils.Validationf("unknown role %q", in.Role)
	}
	if in.Role == models.RoleDealerStore && (in.DealerScope == nil || strings.TrimSpace(*in.DealerScope) == "") {
		return nil, utils.Validationf("dealerScope is required for dealer stores")
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.WorkerUser{
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hash,
		Name:         in.Name,
		Role:         in.Role,
		DealerScope:  trimmedOrNil(in.DealerScope),
		IsActive:     true,
	}
	if err := s.workers.Create(ctx, u); err != nil {
		return nil, mapIdentityError(err)
	}
	log.Info().Int("worker_id", u.ID).Str("role", string(u.Role)).Msg("Worker user created")
	return u, nil
}

func (s *IdentityService) ListAdmins(ctx context.Context, actor models.Principal) ([]models.AdminUser, error) {
	if err := Authorize(actor, ActionManageIdentities); err != nil {
		return nil, err
	}
	return s.admins.List(ctx)
}

func (s *IdentityService) ListSalesManagers(ctx context.Context, actor models.Principal, teamID *int) ([]models.SalesManager, error) {
	if err := Authorize(actor, ActionManageIdentities); err != nil {
		return nil, err
	}
	return s.managers.List(ctx, teamID)
}

func (s *IdentityService) ListWorkers(ctx context.Context, actor models.Principal, role *models.RoleTag) ([]models.WorkerUser, error) {
	if err := Authorize(actor, ActionManageIdentities); err != nil {
		return nil, err
	}
	return s.workers.List(ctx, role)
}

// SetActive toggles an account. Deactivating revokes its live sessions.
func (s *IdentityService) SetActive(ctx context.Context, actor models.Principal, kind models.PrincipalKind, id int, active bool) error {
	if err := Authorize(actor, ActionManageIdentities); err != nil {
		return err
	}
	if !active && kind == actor.Kind() && id == actor.PrincipalID() {
		return utils.Conflictf("cannot deactivate your own account")
	}

	var err error
	switch kind {
	case models.PrincipalAdmin:
		err = s.admins.SetActive(ctx, id, active)
	case models.PrincipalSalesManager:
		err = s.managers.SetActive(ctx, id, active)
	case models.PrincipalWorker:
		err = s.workers.SetActive(ctx, id, active)
	default:
		return utils.Validationf("unknown principal kind %q", kind)
	}
	if err != nil {
		return mapIdentityError(err)
	}

	if !active {
		if err := s.sessions.RevokeAll(ctx, kind, id); err != nil {
			log.Error().Err(err).Str("principal_kind", string(kind)).Int("principal_id", id).Msg("Failed to revoke sessions")
		}
	}
	log.Info().Str("principal_kind", string(kind)).Int("principal_id", id).Bool("active", active).Msg("Account active flag changed")
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
