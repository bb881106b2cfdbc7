package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/activation_api/internal/models"
	"github.com/GTDGit/activation_api/internal/repository"
	"github.com/GTDGit/activation_api/internal/utils"
)

type contactCodeStore interface {
	GetByCode(ctx context.Context, code string) (*models.ContactCode, error)
	GetActiveByCode(ctx context.Context, code string) (*models.ContactCode, error)
	ListCodesByManager(ctx context.Context, managerID int) ([]string, error)
	List(ctx context.Context, filter repository.ContactCodeFilter) ([]models.ContactCode, error)
	Create(ctx context.Context, cc *models.ContactCode) error
	Update(ctx context.Context, cc *models.ContactCode) error
	Deactivate(ctx context.Context, code string) error
}

type managerLookup interface {
	GetByID(ctx context.Context, id int) (*models.SalesManager, error)
}

// ContactCodeInput is the admin payload for creating or editing a code.
type ContactCodeInput struct {
	Code         string  `json:"code"`
	DealerName   string  `json:"dealerName" binding:"required"`
	Carrier      string  `json:"carrier" binding:"required"`
	RealSalesPOS *string `json:"realSalesPos"`
	ManagerID    *int    `json:"managerId"`
	IsActive     *bool   `json:"isActive"`
}

// ContactCodeService resolves contact codes and manages them for admins.
type ContactCodeService struct {
	codes    contactCodeStore
	managers managerLookup
}

// NewContactCodeService creates a new ContactCodeService.
func NewContactCodeService(codes contactCodeStore, managers managerLookup) *ContactCodeService {
	return &ContactCodeService{codes: codes, managers: managers}
}

// Resolve maps an active code to its dealer attribution. Unknown and
// inactive codes report ok=false.
func (s *ContactCodeService) Resolve(ctx context.Context, code string) (*models.ContactCodeResolution, bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, false, nil
	}
	cc, err := s.codes.GetActiveByCode(ctx, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &models.ContactCodeResolution{
		Code:              cc.Code,
		DealerDisplayName: cc.DealerName,
		Carrier:           cc.Carrier,
		OwningManagerID:   cc.ManagerID,
	}, true, nil
}

// ListCodesOwnedBy returns the active codes owned by a sales manager.
func (s *ContactCodeService) ListCodesOwnedBy(ctx context.Context, managerID int) ([]string, error) {
	return s.codes.ListCodesByManager(ctx, managerID)
}

// List returns codes for admins.
func (s *ContactCodeService) List(ctx context.Context, actor models.Principal, filter repository.ContactCodeFilter) ([]models.ContactCode, error) {
	if err := Authorize(actor, ActionManageCatalog); err != nil {
		return nil, err
	}
	return s.codes.List(ctx, filter)
}

// Get returns a code including inactive ones.
func (s *ContactCodeService) Get(ctx context.Context, actor models.Principal, code string) (*models.ContactCode, error) {
	if err := Authorize(actor, ActionManageCatalog); err != nil {
		return nil, err
	}
	cc, err := s.codes.GetByCode(ctx, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.NotFoundf("contact code %s not found", code)
	}
	return cc, err
}

// Create registers a new contact code.
func (s *ContactCodeService) Create(ctx context.Context, actor models.Principal, in ContactCodeInput) (*models.ContactCode, error) {
	if err := Authorize(actor, ActionManageCatalog); err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return nil, utils.Validationf("code is required")
	}
	cc := &models.ContactCode{Code: code, IsActive: true}
	if err := s.apply(ctx, cc, in); err != nil {
		return nil, err
	}
	if err := s.codes.Create(ctx, cc); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.Conflictf("contact code %s already exists", code)
		}
		return nil, err
	}
	log.Info().Str("code", cc.Code).Str("dealer", cc.DealerName).Msg("Contact code created")
	return cc, nil
}

// Update edits an existing code.
func (s *ContactCodeService) Update(ctx context.Context, actor models.Principal, code string, in ContactCodeInput) (*models.ContactCode, error) {
	cc, err := s.Get(ctx, actor, code)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, cc, in); err != nil {
		return nil, err
	}
	if err := s.codes.Update(ctx, cc); err != nil {
		return nil, err
	}
	log.Info().Str("code", cc.Code).Msg("Contact code updated")
	return cc, nil
}

// Deactivate soft-deletes a code.
func (s *ContactCodeService) Deactivate(ctx context.Context, actor models.Principal, code string) error {
	if err := Authorize(actor, ActionManageCatalog); err != nil {
		return err
	}
	if err := s.codes.Deactivate(ctx, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.NotFoundf("contact code %s not found", code)
		}
		return err
	}
	log.Info().Str("code", code).Msg("Contact code deactivated")
	return nil
}

// apply copies in onto cc, denormalizing the owning manager's name.
func (s *ContactCodeService) apply(ctx context.Context, cc *models.ContactCode, in ContactCodeInput) error {
	if strings.TrimSpace(in.DealerName) == "" || strings.TrimSpace(in.Carrier) == "" {
		return utils.Validationf("dealerName and carrier are required")
	}
	cc.DealerName = strings.TrimSpace(in.DealerName)
	cc.Carrier = strings.TrimSpace(in.Carrier)
	cc.RealSalesPOS = trimmedOrNil(in.RealSalesPOS)
	if in.IsActive != nil {
		cc.IsActive = *in.IsActive
	}

	cc.ManagerID, cc.ManagerName = nil, nil
	if in.ManagerID != nil {
		m, err := s.managers.GetByID(ctx, *in.ManagerID)
		if errors.Is(err, sql.ErrNoRows) {
			return utils.NotFoundf("sales manager %d not found", *in.ManagerID)
		}
		if err != nil {
			return err
		}
		id, name := m.ID, m.ManagerName
		cc.ManagerID, cc.ManagerName = &id, &name
	}
	return nil
}
