package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/activation_api/internal/config"
	"github.com/GTDGit/activation_api/internal/models"
	"github.com/GTDGit/activation_api/internal/repository"
	"github.com/GTDGit/activation_api/internal/utils"
)

type documentStore interface {
	GetByID(ctx context.Context, id int) (*models.Document, error)
	Create(ctx context.Context, doc *models.Document, day string) error
	Update(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id, version int) error
	List(ctx context.Context, filter *models.DocumentFilter) (*models.DocumentPage, error)
}

type codeResolver interface {
	CodeOwnership
	Resolve(ctx context.Context, code string) (*models.ContactCodeResolution, bool, error)
}

type settlementCalculator interface {
	ComputeSettlementAmount(ctx context.Context, servicePlanID int, ct models.CustomerType, activatedAt time.Time) (decimal.NullDecimal, error)
}

type planLookup interface {
	GetByID(ctx context.Context, id int) (*models.ServicePlan, error)
}

// DocumentInput carries the customer and routing facets submitted at intake
// and on resubmission.
type DocumentInput struct {
	CustomerName    string              `json:"customerName" form:"customerName" binding:"required"`
	CustomerPhone   string              `json:"customerPhone" form:"customerPhone" binding:"required,korphone"`
	CustomerEmail   *string             `json:"customerEmail" form:"customerEmail" binding:"omitempty,email"`
	CustomerType    models.CustomerType `json:"customerType" form:"customerType" binding:"required"`
	DesiredNumber   *string             `json:"desiredNumber" form:"desiredNumber"`
	PreviousCarrier *string             `json:"previousCarrier" form:"previousCarrier"`
	ContactCode     *string             `json:"contactCode" form:"contactCode"`
	StoreName       *string             `json:"storeName" form:"storeName"`
	Carrier         string              `json:"carrier" form:"carrier" binding:"required"`
	BundleNumber    *string             `json:"bundleNumber" form:"bundleNumber"`
	BundleCarrier   *string             `json:"bundleCarrier" form:"bundleCarrier"`
	Notes           string              `json:"notes" form:"notes"`
}

// IntakeStatusInput sets the paperwork-quality axis.
type IntakeStatusInput struct {
	Status models.IntakeStatus `json:"status" binding:"required"`
	Notes  *string             `json:"notes"`
}

// DocumentService owns intake, retrieval and mutation of documents.
type DocumentService struct {
	docs       documentStore
	codes      codeResolver
	settlement settlementCalculator
	plans      planLookup
	blobs      BlobStore
	carriers   config.CarrierSettings
	loc        *time.Location
	now        func() time.Time
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(
	docs documentStore,
	codes codeResolver,
	settlement settlementCalculator,
	plans planLookup,
	blobs BlobStore,
	carriers config.CarrierSettings,
	loc *time.Location,
) *DocumentService {
	if loc == nil {
		loc = time.UTC
	}
	return &DocumentService{
		docs:       docs,
		codes:      codes,
		settlement: settlement,
		plans:      plans,
		blobs:      blobs,
		carriers:   carriers,
		loc:        loc,
		now:        time.Now,
	}
}

// Create performs intake for a dealer store.
func (s *DocumentService) Create(ctx context.Context, p models.Principal, in DocumentInput, attachment *Attachment) (*models.Document, error) {
	if err := Authorize(p, ActionCreateDocument); err != nil {
		return nil, err
	}
	if err := s.validateIntake(in, attachment); err != nil {
		return nil, err
	}

	now := s.now()
	doc := &models.Document{
		UploadedAt:       now,
		UploadedBy:       p.PrincipalID(),
		Status:           models.IntakeReceived,
		ActivationStatus: models.ActivationWaiting,
	}
	if err := s.applyInput(ctx, doc, in); err != nil {
		return nil, err
	}
	if err := s.storeAttachment(ctx, doc, attachment, now); err != nil {
		return nil, err
	}

	day := now.In(s.loc).Format("20060102")
	if err := s.docs.Create(ctx, doc, day); err != nil {
		log.Error().Err(err).Msg("Failed to create document")
		return nil, err
	}

	log.Info().
		Int("document_id", doc.ID).
		Str("document_number", doc.DocumentNumber).
		Str("store_name", doc.StoreName).
		Int("uploaded_by", doc.UploadedBy).
		Msg("Document received")
	return doc, nil
}

// Get returns a document visible to p.
func (s *DocumentService) Get(ctx context.Context, p models.Principal, id int) (*models.Document, error) {
	if err := Authorize(p, ActionViewDocument); err != nil {
		return nil, err
	}
	doc, err := s.docs.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.NotFoundf("document %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	scope, err := ScopeFor(ctx, p, s.codes)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(doc) {
		return nil, utils.Forbidden()
	}
	return doc, nil
}

// List returns a page of documents filtered to p's scope.
func (s *DocumentService) List(ctx context.Context, p models.Principal, filter models.DocumentFilter) (*models.DocumentPage, error) {
	if err := Authorize(p, ActionViewDocument); err != nil {
		return nil, err
	}
	if filter.Status != nil && *filter.Status != "" && !models.IntakeStatus(*filter.Status).Valid() {
		return nil, utils.Validationf("unknown status %q", *filter.Status)
	}
	if v := filter.ActivationStatus; v != nil && *v != "" && *v != models.ViewWorkRequested && !models.ActivationStatus(*v).Valid() {
		return nil, utils.Validationf("unknown activation status %q", *v)
	}
	if v := filter.CustomerType; v != nil && *v != "" && !models.CustomerType(*v).Valid() {
		return nil, utils.Validationf("unknown customer type %q", *v)
	}

	scope, err := ScopeFor(ctx, p, s.codes)
	if err != nil {
		return nil, err
	}
	filter.Scope = scope
	return s.docs.List(ctx, &filter)
}

// Resubmit lets a dealer store correct the customer and routing facets
// while paperwork is still in intake. Intake status returns to received.
func (s *DocumentService) Resubmit(ctx context.Context, p models.Principal, id int, in DocumentInput, attachment *Attachment) (*models.Document, error) {
	if err := Authorize(p, ActionResubmitDocument); err != nil {
		return nil, err
	}
	doc, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != models.IntakeReceived && doc.Status != models.IntakeNeedsSupplement {
		return nil, utils.Conflictf("document %s can no longer be edited", doc.DocumentNumber)
	}
	if err := s.validateIntake(in, attachment); err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.applyInput(ctx, doc, in); err != nil {
		return nil, err
	}
	if err := s.storeAttachment(ctx, doc, attachment, now); err != nil {
		return nil, err
	}
	doc.Status = models.IntakeReceived
	doc.UpdatedAt = now

	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	log.Info().Int("document_id", doc.ID).Msg("Document resubmitted")
	return doc, nil
}

// SetIntakeStatus moves the paperwork-quality axis.
func (s *DocumentService) SetIntakeStatus(ctx context.Context, p models.Principal, id int, in IntakeStatusInput) (*models.Document, error) {
	if err := Authorize(p, ActionSetIntakeStatus); err != nil {
		return nil, err
	}
	if !in.Status.Valid() {
		return nil, utils.Validationf("unknown status %q", in.Status)
	}
	doc, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if in.Status == models.IntakeNeedsSupplement {
		notes := trimmedOrNil(in.Notes)
		if notes == nil {
			return nil, utils.Validationf("notes are required when requesting a supplement")
		}
		by := p.PrincipalID()
		doc.SupplementNotes = notes
		doc.SupplementRequiredBy = &by
		doc.SupplementRequiredAt = &now
	}
	doc.Status = in.Status
	doc.UpdatedAt = now

	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	log.Info().Int("document_id", doc.ID).Str("status", string(doc.Status)).Msg("Intake status changed")
	return doc, nil
}

// Delete hard-deletes a document still in intake. Admin only.
func (s *DocumentService) Delete(ctx context.Context, p models.Principal, id int) error {
	if err := Authorize(p, ActionDeleteDocument); err != nil {
		return err
	}
	doc, err := s.Get(ctx, p, id)
	if err != nil {
		return err
	}
	if err := CheckDelete(p, doc); err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, doc.ID, doc.Version); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return utils.Conflictf("document %s was modified concurrently", doc.DocumentNumber)
		}
		return err
	}
	log.Info().Int("document_id", doc.ID).Int("admin_id", p.PrincipalID()).Msg("Document deleted")
	return nil
}

// save writes doc with its version check.
func (s *DocumentService) save(ctx context.Context, doc *models.Document) error {
	if err := s.docs.Update(ctx, doc); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return utils.Conflictf("document %s was modified concurrently", doc.DocumentNumber)
		}
		log.Error().Err(err).Int("document_id", doc.ID).Msg("Failed to update document")
		return err
	}
	return nil
}

// applyInput copies the customer and routing facets onto doc, denormalizing
// the store name from the contact code when it resolves.
func (s *DocumentService) applyInput(ctx context.Context, doc *models.Document, in DocumentInput) error {
	doc.CustomerName = strings.TrimSpace(in.CustomerName)
	doc.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	doc.CustomerEmail = trimmedOrNil(in.CustomerEmail)
	doc.CustomerType = in.CustomerType
	doc.DesiredNumber = trimmedOrNil(in.DesiredNumber)
	doc.PreviousCarrier = trimmedOrNil(in.PreviousCarrier)
	doc.Carrier = strings.TrimSpace(in.Carrier)
	doc.BundleNumber = trimmedOrNil(in.BundleNumber)
	doc.BundleCarrier = trimmedOrNil(in.BundleCarrier)
	doc.Notes = in.Notes

	doc.ContactCode = nil
	doc.StoreName = ""
	if in.StoreName != nil {
		doc.StoreName = strings.TrimSpace(*in.StoreName)
	}
	if code := trimmedOrNil(in.ContactCode); code != nil {
		upper := strings.ToUpper(*code)
		doc.ContactCode = &upper
		res, ok, err := s.codes.Resolve(ctx, upper)
		if err != nil {
			return err
		}
		if ok {
			doc.StoreName = res.DealerDisplayName
		}
	}
	return nil
}

func (s *DocumentService) storeAttachment(ctx context.Context, doc *models.Document, a *Attachment, at time.Time) error {
	if a == nil || len(a.Data) == 0 {
		return nil
	}
	ref, err := s.blobs.Put(ctx, attachmentKey(at.In(s.loc), a.Filename), a.Data, a.ContentType)
	if err != nil {
		return err
	}
	doc.FilePath = &ref
	return nil
}

// validateIntake checks the intake payload, including the extra fields the
// carrier requires.
func (s *DocumentService) validateIntake(in DocumentInput, attachment *Attachment) error {
	if strings.TrimSpace(in.CustomerName) == "" {
		return utils.Validationf("customerName is required")
	}
	if !utils.IsKoreanMobile(strings.TrimSpace(in.CustomerPhone)) {
		return utils.Validationf("customerPhone must be a mobile number like 010-1234-5678")
	}
	if strings.TrimSpace(in.Carrier) == "" {
		return utils.Validationf("carrier is required")
	}
	if !in.CustomerType.Valid() {
		return utils.Validationf("customerType must be new or port_in")
	}

	switch in.CustomerType {
	case models.CustomerNew:
		if trimmedOrNil(in.PreviousCarrier) != nil {
			return utils.Validationf("previousCarrier applies to port_in customers only")
		}
	case models.CustomerPortIn:
		if trimmedOrNil(in.DesiredNumber) != nil {
			return utils.Validationf("desiredNumber applies to new customers only")
		}
		if trimmedOrNil(in.PreviousCarrier) == nil {
			return utils.Validationf("previousCarrier is required for port_in customers")
		}
	}

	for _, field := range s.carriers.RequiredFields(strings.TrimSpace(in.Carrier)) {
		if !intakeFieldPresent(field, in, attachment) {
			return utils.Validationf("%s is required for carrier %s", field, in.Carrier)
		}
	}
	return nil
}

func intakeFieldPresent(field string, in DocumentInput, attachment *Attachment) bool {
	switch field {
	case "customerEmail":
		return trimmedOrNil(in.CustomerEmail) != nil
	case "desiredNumber":
		return in.CustomerType != models.CustomerNew || trimmedOrNil(in.DesiredNumber) != nil
	case "contactCode":
		return trimmedOrNil(in.ContactCode) != nil
	case "bundleNumber":
		return trimmedOrNil(in.BundleNumber) != nil
	case "attachment":
		return attachment != nil && len(attachment.Data) > 0
	case "notes":
		return strings.TrimSpace(in.Notes) != ""
	}
	return true
}
