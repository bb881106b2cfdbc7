package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/activation_api/internal/models"
	"github.com/GTDGit/activation_api/internal/utils"
)

// TransitionPayload carries the fields a target activation status may write.
type TransitionPayload struct {
	SubscriptionNumber   *string                    `json:"subscriptionNumber"`
	DeviceModel          *string                    `json:"deviceModel"`
	SimNumber            *string                    `json:"simNumber"`
	ServicePlanID        *int                       `json:"servicePlanId"`
	AdditionalServiceIDs []int64                    `json:"additionalServiceIds"`
	RegistrationFeeMode  models.RegistrationFeeMode `json:"registrationFeeMode"`
	SimFeeMode           models.SimFeeMode          `json:"simFeeMode"`
	BundleApplication    models.BundleApplication   `json:"bundleApplication"`
	TotalMonthlyFee      *decimal.Decimal           `json:"totalMonthlyFee"`
	DealerNotes          *string                    `json:"dealerNotes"`
	SupplementNotes      *string                    `json:"supplementNotes"`
	DiscardReason        *string                    `json:"discardReason"`
}

// Transition moves a document's activation status to target, writing the
// fields that target owns. Activation also records the settlement amount.
func (s *DocumentService) Transition(ctx context.Context, p models.Principal, id int, target models.ActivationStatus, payload TransitionPayload) (*models.Document, error) {
	if err := Authorize(p, ActionTransition); err != nil {
		return nil, err
	}
	if !target.Valid() {
		return nil, utils.Validationf("unknown activation status %q", target)
	}

	doc, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	previous := doc.ActivationStatus
	if err := CheckTransition(p, previous, target); err != nil {
		if errors.Is(err, utils.ErrForbidden) {
			log.Warn().Int("document_id", doc.ID).Int("principal_id", p.PrincipalID()).Msg("Transition denied")
		}
		return nil, err
	}

	now := s.now()
	settlement := ""
	switch target {
	case models.ActivationActivated:
		previousPlan := doc.ServicePlanID
		if err := s.applyActivation(ctx, doc, p, payload); err != nil {
			return nil, err
		}
		doc.ActivatedAt = &now
		if settlement, err = s.settle(ctx, doc, previousPlan, now); err != nil {
			return nil, err
		}
	case models.ActivationCancelled:
		by := p.PrincipalID()
		doc.CancelledBy = &by
	case models.ActivationNeedsSupplement:
		notes := trimmedOrNil(payload.SupplementNotes)
		if notes == nil {
			return nil, utils.Validationf("supplementNotes is required")
		}
		by := p.PrincipalID()
		doc.SupplementNotes = notes
		doc.SupplementRequiredBy = &by
		doc.SupplementRequiredAt = &now
	case models.ActivationDiscarded:
		reason := trimmedOrNil(payload.DiscardReason)
		if reason == nil {
			return nil, utils.Validationf("discardReason is required")
		}
		doc.DiscardReason = reason
	}
	doc.ActivationStatus = target
	doc.UpdatedAt = now

	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}

	documentTransitionsCounter.WithLabelValues(string(target)).Inc()
	if settlement != "" {
		settlementsCounter.WithLabelValues(settlement).Inc()
	}
	log.Info().
		Int("document_id", doc.ID).
		Str("from", string(previous)).
		Str("to", string(target)).
		Int("principal_id", p.PrincipalID()).
		Str("principal_kind", string(p.Kind())).
		Msg("Activation status changed")
	return doc, nil
}

// applyActivation validates and copies the fulfillment facet. Each fee mode
// is a single enum so exactly one option can be recorded.
func (s *DocumentService) applyActivation(ctx context.Context, doc *models.Document, p models.Principal, payload TransitionPayload) error {
	subscription := trimmedOrNil(payload.SubscriptionNumber)
	if subscription == nil {
		return utils.Validationf("subscriptionNumber is required")
	}
	if !payload.RegistrationFeeMode.Valid() {
		return utils.Validationf("unknown registrationFeeMode %q", payload.RegistrationFeeMode)
	}
	if !payload.SimFeeMode.Valid() {
		return utils.Validationf("unknown simFeeMode %q", payload.SimFeeMode)
	}
	if !payload.BundleApplication.Valid() {
		return utils.Validationf("unknown bundleApplication %q", payload.BundleApplication)
	}
	if payload.TotalMonthlyFee != nil && payload.TotalMonthlyFee.IsNegative() {
		return utils.Validationf("totalMonthlyFee must not be negative")
	}
	if payload.ServicePlanID != nil {
		plan, err := s.plans.GetByID(ctx, *payload.ServicePlanID)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && !plan.IsActive) {
			return utils.NotFoundf("service plan %d not found", *payload.ServicePlanID)
		}
		if err != nil {
			return err
		}
	}

	by, name := p.PrincipalID(), p.DisplayName()
	doc.ActivatedBy = &by
	doc.ActivatedByName = &name
	doc.SubscriptionNumber = subscription
	doc.ServicePlanID = nil
	if payload.ServicePlanID != nil {
		planID := *payload.ServicePlanID
		doc.ServicePlanID = &planID
	}
	doc.DeviceModel = trimmedOrNil(payload.DeviceModel)
	doc.SimNumber = trimmedOrNil(payload.SimNumber)
	doc.AdditionalServiceIDs = pq.Int64Array(append([]int64{}, payload.AdditionalServiceIDs...))
	doc.RegistrationFeeMode = payload.RegistrationFeeMode
	doc.SimFeeMode = payload.SimFeeMode
	doc.BundleApplication = payload.BundleApplication
	doc.DealerNotes = trimmedOrNil(payload.DealerNotes)
	doc.TotalMonthlyFee = decimal.NullDecimal{}
	if payload.TotalMonthlyFee != nil {
		doc.TotalMonthlyFee = decimal.NewNullDecimal(*payload.TotalMonthlyFee)
	}
	return nil
}

// settle records the settlement amount for an activation and returns the
// outcome label. A document that already carries an amount for the same
// plan keeps it, including one re-activated after a cancellation.
func (s *DocumentService) settle(ctx context.Context, doc *models.Document, previousPlan *int, at time.Time) (string, error) {
	if doc.SettlementAmount.Valid && samePlan(previousPlan, doc.ServicePlanID) {
		return "kept", nil
	}

	doc.SettlementAmount = decimal.NullDecimal{}
	if doc.ServicePlanID == nil {
		return "unpriced", nil
	}
	amount, err := s.settlement.ComputeSettlementAmount(ctx, *doc.ServicePlanID, doc.CustomerType, at)
	if err != nil {
		log.Error().Err(err).Int("document_id", doc.ID).Msg("Settlement lookup failed")
		return "", err
	}
	doc.SettlementAmount = amount
	if !amount.Valid {
		return "unpriced", nil
	}
	return "priced", nil
}

func samePlan(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
