package service

import (
	"context"

	"github.com/GTDGit/activation_api/internal/models"
	"github.com/GTDGit/activation_api/internal/utils"
)

// Action is an operation the authorization gate decides on.
type Action string

const (
	ActionViewDocument     Action = "document.view"
	ActionCreateDocument   Action = "document.create"
	ActionResubmitDocument Action = "document.resubmit"
	ActionSetIntakeStatus  Action = "document.intake_status"
	ActionTransition       Action = "document.transition"
	ActionDeleteDocument   Action = "document.delete"
	ActionChat             Action = "document.chat"
	ActionManageCatalog    Action = "catalog.manage"
	ActionManagePricing    Action = "pricing.manage"
	ActionManageIdentities Action = "identity.manage"
)

// transitionTable lists the activation edges open to dealer workers.
// Re-applying the current state is always allowed and not listed.
var transitionTable = map[models.ActivationStatus][]models.ActivationStatus{
	models.ActivationWaiting: {
		models.ActivationInProgress, models.ActivationNeedsSupplement,
		models.ActivationCancelled, models.ActivationDiscarded,
	},
	models.ActivationInProgress: {
		models.ActivationActivated, models.ActivationNeedsSupplement,
		models.ActivationCancelled, models.ActivationDiscarded, models.ActivationOtherCompleted,
	},
	models.ActivationNeedsSupplement: {
		models.ActivationInProgress, models.ActivationCancelled, models.ActivationDiscarded,
	},
	models.ActivationOtherCompleted: {models.ActivationInProgress},
	models.ActivationActivated:      {models.ActivationCancelled},
}

// Authorize decides whether p may perform action. Denials are always the
// bare ErrForbidden so callers cannot tell which rule fired.
func Authorize(p models.Principal, action Action) error {
	switch v := p.(type) {
	case models.AdminPrincipal:
		return nil
	case models.SalesManagerPrincipal:
		if action == ActionViewDocument || action == ActionChat {
			return nil
		}
	case models.WorkerPrincipal:
		switch action {
		case ActionViewDocument, ActionChat:
			return nil
		case ActionCreateDocument, ActionResubmitDocument:
			if v.Role == models.RoleDealerStore {
				return nil
			}
		case ActionTransition, ActionSetIntakeStatus:
			if v.Role == models.RoleDealerWorker {
				return nil
			}
		}
	default:
		return utils.Unauthenticated()
	}
	return utils.Forbidden()
}

// CheckTransition decides whether p may move a document from current to
// target. Role denials and terminal-state corrections by non-admins are
// Forbidden; an edge missing from the table is a Conflict.
func CheckTransition(p models.Principal, current, target models.ActivationStatus) error {
	if err := Authorize(p, ActionTransition); err != nil {
		return err
	}
	if !target.Valid() {
		return utils.Validationf("unknown activation status %q", target)
	}
	if _, ok := p.(models.AdminPrincipal); ok {
		return nil
	}
	if current == target {
		return nil
	}
	if current.Terminal() {
		return utils.Forbidden()
	}
	for _, next := range transitionTable[current] {
		if next == target {
			return nil
		}
	}
	return utils.Conflictf("cannot move document from %s to %s", current, target)
}

// CheckDelete decides whether p may hard-delete doc.
func CheckDelete(p models.Principal, doc *models.Document) error {
	if err := Authorize(p, ActionDeleteDocument); err != nil {
		return err
	}
	if doc.Status != models.IntakeReceived {
		return utils.Conflictf("only documents with status %s can be deleted", models.IntakeReceived)
	}
	return nil
}

// CodeOwnership lists the contact codes a sales manager owns.
type CodeOwnership interface {
	ListCodesOwnedBy(ctx context.Context, managerID int) ([]string, error)
}

// ScopeFor builds the visibility scope of p. Sales-manager scopes are
// recomputed on every call.
func ScopeFor(ctx context.Context, p models.Principal, codes CodeOwnership) (models.DocumentScope, error) {
	switch v := p.(type) {
	case models.AdminPrincipal:
		return models.DocumentScope{Unrestricted: true}, nil
	case models.SalesManagerPrincipal:
		owned, err := codes.ListCodesOwnedBy(ctx, v.ID)
		if err != nil {
			return models.DocumentScope{}, err
		}
		return models.DocumentScope{ContactCodes: owned}, nil
	case models.WorkerPrincipal:
		switch v.Role {
		case models.RoleDealerStore:
			id := v.ID
			scope := models.DocumentScope{UploadedBy: &id}
			if v.DealerScope != "" {
				store := v.DealerScope
				scope.StoreName = &store
			}
			return scope, nil
		case models.RoleDealerWorker:
			// Dealer workers without a dealer scope are internal processing
			// staff and work every store's queue.
			if v.DealerScope == "" {
				return models.DocumentScope{Unrestricted: true}, nil
			}
			store := v.DealerScope
			return models.DocumentScope{StoreName: &store}, nil
		}
		return models.DocumentScope{}, nil
	}
	return models.DocumentScope{}, utils.Unauthenticated()
}
