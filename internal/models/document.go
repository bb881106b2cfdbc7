package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type CustomerType string

const (
	CustomerNew    CustomerType = "new"
	CustomerPortIn CustomerType = "port_in"
)

// Valid reports whether ct is a known customer type.
func (ct CustomerType) Valid() bool {
	return ct == CustomerNew || ct == CustomerPortIn
}

// IntakeStatus is the paperwork-quality axis of a document.
type IntakeStatus string

const (
	IntakeReceived        IntakeStatus = "received"
	IntakeNeedsSupplement IntakeStatus = "needs_supplement"
	IntakeCompleted       IntakeStatus = "completed"
)

// Valid reports whether s is a known intake status.
func (s IntakeStatus) Valid() bool {
	switch s {
	case IntakeReceived, IntakeNeedsSupplement, IntakeCompleted:
		return true
	}
	return false
}

// ActivationStatus is the fulfillment axis of a document.
type ActivationStatus string

const (
	ActivationWaiting         ActivationStatus = "waiting"
	ActivationInProgress      ActivationStatus = "in_progress"
	ActivationActivated       ActivationStatus = "activated"
	ActivationNeedsSupplement ActivationStatus = "needs_supplement"
	ActivationCancelled       ActivationStatus = "cancelled"
	ActivationDiscarded       ActivationStatus = "discarded"
	ActivationOtherCompleted  ActivationStatus = "other_completed"
)

// ViewWorkRequested is a list filter, not a stored status: in-progress
// documents whose paperwork has been marked completed.
const ViewWorkRequested = "work_requested"

// Valid reports whether s is a persisted activation status.
func (s ActivationStatus) Valid() bool {
	switch s {
	case ActivationWaiting, ActivationInProgress, ActivationActivated, ActivationNeedsSupplement,
		ActivationCancelled, ActivationDiscarded, ActivationOtherCompleted:
		return true
	}
	return false
}

// Terminal reports whether s ends the normal flow.
func (s ActivationStatus) Terminal() bool {
	return s == ActivationCancelled || s == ActivationDiscarded
}

type RegistrationFeeMode string

const (
	RegistrationFeeUnset       RegistrationFeeMode = ""
	RegistrationFeePrepaid     RegistrationFeeMode = "prepaid"
	RegistrationFeePostpaid    RegistrationFeeMode = "postpaid"
	RegistrationFeeInstallment RegistrationFeeMode = "installment"
)

func (m RegistrationFeeMode) Valid() bool {
	switch m {
	case RegistrationFeeUnset, RegistrationFeePrepaid, RegistrationFeePostpaid, RegistrationFeeInstallment:
		return true
	}
	return false
}

type SimFeeMode string

const (
	SimFeeUnset    SimFeeMode = ""
	SimFeePrepaid  SimFeeMode = "prepaid"
	SimFeePostpaid SimFeeMode = "postpaid"
)

func (m SimFeeMode) Valid() bool {
	return m == SimFeeUnset || m == SimFeePrepaid || m == SimFeePostpaid
}

type BundleApplication string

const (
	BundleUnset      BundleApplication = ""
	BundleApplied    BundleApplication = "applied"
	BundleNotApplied BundleApplication = "not_applied"
)

func (b BundleApplication) Valid() bool {
	return b == BundleUnset || b == BundleApplied || b == BundleNotApplied
}

// Document is an activation request submitted by a dealer store. It carries
// two independent status axes: Status (paperwork quality) and
// ActivationStatus (fulfillment).
type Document struct {
	ID             int    `db:"id" json:"id"`
	DocumentNumber string `db:"document_number" json:"documentNumber"`

	// Customer
	CustomerName    string       `db:"customer_name" json:"customerName"`
	CustomerPhone   string       `db:"customer_phone" json:"customerPhone"`
	CustomerEmail   *string      `db:"customer_email" json:"customerEmail,omitempty"`
	CustomerType    CustomerType `db:"customer_type" json:"customerType"`
	DesiredNumber   *string      `db:"desired_number" json:"desiredNumber,omitempty"`
	PreviousCarrier *string      `db:"previous_carrier" json:"previousCarrier,omitempty"`

	// Routing
	ContactCode   *string `db:"contact_code" json:"contactCode,omitempty"`
	StoreName     string  `db:"store_name" json:"storeName"`
	Carrier       string  `db:"carrier" json:"carrier"`
	BundleNumber  *string `db:"bundle_number" json:"bundleNumber,omitempty"`
	BundleCarrier *string `db:"bundle_carrier" json:"bundleCarrier,omitempty"`

	// Intake
	UploadedAt time.Time `db:"uploaded_at" json:"uploadedAt"`
	UploadedBy int       `db:"uploaded_by" json:"uploadedBy"`
	FilePath   *string   `db:"file_path" json:"filePath,omitempty"`
	Notes      string    `db:"notes" json:"notes"`

	Status           IntakeStatus     `db:"status" json:"status"`
	ActivationStatus ActivationStatus `db:"activation_status" json:"activationStatus"`

	// Fulfillment
	ActivatedAt          *time.Time          `db:"activated_at" json:"activatedAt,omitempty"`
	ActivatedBy          *int                `db:"activated_by" json:"activatedBy,omitempty"`
	ActivatedByName      *string             `db:"activated_by_name" json:"activatedByName,omitempty"`
	DeviceModel          *string             `db:"device_model" json:"deviceModel,omitempty"`
	SimNumber            *string             `db:"sim_number" json:"simNumber,omitempty"`
	SubscriptionNumber   *string             `db:"subscription_number" json:"subscriptionNumber,omitempty"`
	ServicePlanID        *int                `db:"service_plan_id" json:"servicePlanId,omitempty"`
	AdditionalServiceIDs pq.Int64Array       `db:"additional_service_ids" json:"additionalServiceIds"`
	RegistrationFeeMode  RegistrationFeeMode `db:"registration_fee_mode" json:"registrationFeeMode"`
	SimFeeMode           SimFeeMode          `db:"sim_fee_mode" json:"simFeeMode"`
	BundleApplication    BundleApplication   `db:"bundle_application" json:"bundleApplication"`
	TotalMonthlyFee      decimal.NullDecimal `db:"total_monthly_fee" json:"totalMonthlyFee"`
	DealerNotes          *string             `db:"dealer_notes" json:"dealerNotes,omitempty"`

	// Cancellation / discard / supplement
	CancelledBy          *int       `db:"cancelled_by" json:"cancelledBy,omitempty"`
	DiscardReason        *string    `db:"discard_reason" json:"discardReason,omitempty"`
	SupplementNotes      *string    `db:"supplement_notes" json:"supplementNotes,omitempty"`
	SupplementRequiredBy *int       `db:"supplement_required_by" json:"supplementRequiredBy,omitempty"`
	SupplementRequiredAt *time.Time `db:"supplement_required_at" json:"supplementRequiredAt,omitempty"`

	SettlementAmount decimal.NullDecimal `db:"settlement_amount" json:"settlementAmount"`

	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// DocumentScope restricts which documents a principal may see. The zero
// value matches nothing; Unrestricted matches everything.
type DocumentScope struct {
	Unrestricted bool
	StoreName    *string
	UploadedBy   *int
	ContactCodes []string
}

// Allows reports whether doc falls inside the scope.
func (s DocumentScope) Allows(doc *Document) bool {
	if s.Unrestricted {
		return true
	}
	if s.StoreName != nil && doc.StoreName == *s.StoreName {
		return true
	}
	if s.UploadedBy != nil && doc.UploadedBy == *s.UploadedBy {
		return true
	}
	if doc.ContactCode != nil {
		for _, code := range s.ContactCodes {
			if code == *doc.ContactCode {
				return true
			}
		}
	}
	return false
}

// Empty reports whether the scope can never match a document.
func (s DocumentScope) Empty() bool {
	return !s.Unrestricted && s.StoreName == nil && s.UploadedBy == nil && len(s.ContactCodes) == 0
}

// DocumentFilter holds list filters. ActivationStatus may also be
// ViewWorkRequested.
type DocumentFilter struct {
	Scope            DocumentScope
	Status           *string
	ActivationStatus *string
	Carrier          *string
	ContactCode      *string
	CustomerType     *string
	Search           *string
	StartDate        *string
	EndDate          *string
	Page             int
	Limit            int
}

// DocumentPage is a page of documents plus pagination totals.
type DocumentPage struct {
	Documents  []Document
	TotalItems int
	TotalPages int
	Page       int
	Limit      int
}
