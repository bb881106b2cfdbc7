package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/activation_api/internal/models"
)

const maxNumberAttempts = 5

// DocumentRepository provides data access for documents.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// GetByID finds a document by id.
func (r *DocumentRepository) GetByID(ctx context.Context, id int) (*models.Document, error) {
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, `SELECT * FROM documents WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// nextDocumentNumber returns the next number for day (YYYYMMDD), formatted
// YYYYMMDD-NNNN.
func (r *DocumentRepository) nextDocumentNumber(ctx context.Context, day string) (string, error) {
	const seqQ = `
		SELECT COALESCE(MAX(
			CAST(SUBSTRING(document_number FROM 10) AS INT)
		), 0) + 1
		FROM documents
		WHERE document_number LIKE $1 || '-%'`

	stmt, err := r.db.PreparexContext(ctx, seqQ)
	if err != nil {
		return "", err
	}
	defer stmt.Close()
	var next int
	if err := stmt.GetContext(ctx, &next, day); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", day, next), nil
}

// Create inserts a document, allocating its daily sequential number. Two
// concurrent intakes may compute the same number; the loser retries.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document, day string) error {
	const q = `
		INSERT INTO documents (
			document_number, customer_name, customer_phone, customer_email, customer_type,
			desired_number, previous_carrier, contact_code, store_name, carrier,
			bundle_number, bundle_carrier, uploaded_at, uploaded_by, file_path, notes,
			status, activation_status, created_at, updated_at
		) VALUES (
			:document_number, :customer_name, :customer_phone, :customer_email, :customer_type,
			:desired_number, :previous_carrier, :contact_code, :store_name, :carrier,
			:bundle_number, :bundle_carrier, :uploaded_at, :uploaded_by, :file_path, :notes,
			:status, :activation_status, :uploaded_at, :uploaded_at
		)
		RETURNING id, version, created_at, updated_at`

	var lastErr error
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		number, err := r.nextDocumentNumber(ctx, day)
		if err != nil {
			return err
		}
		doc.DocumentNumber = number

		stmt, err := r.db.PrepareNamedContext(ctx, q)
		if err != nil {
			return err
		}
		lastErr = stmt.QueryRowxContext(ctx, doc).Scan(&doc.ID, &doc.Version, &doc.CreatedAt, &doc.UpdatedAt)
		stmt.Close()
		if lastErr == nil {
			return nil
		}
		if !isUniqueViolation(lastErr) || uniqueConstraint(lastErr) != "documents_document_number_key" {
			return lastErr
		}
	}
	return fmt.Errorf("allocate document number after %d attempts: %w", maxNumberAttempts, lastErr)
}

// Update writes every mutable column when the stored version still matches
// doc.Version, then bumps the version. Returns ErrStaleVersion otherwise.
func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	const q = `
		UPDATE documents SET
			customer_name = :customer_name, customer_phone = :customer_phone,
			customer_email = :customer_email, customer_type = :customer_type,
			desired_number = :desired_number, previous_carrier = :previous_carrier,
			contact_code = :contact_code, store_name = :store_name, carrier = :carrier,
			bundle_number = :bundle_number, bundle_carrier = :bundle_carrier,
			file_path = :file_path, notes = :notes,
			status = :status, activation_status = :activation_status,
			activated_at = :activated_at, activated_by = :activated_by, activated_by_name = :activated_by_name,
			device_model = :device_model, sim_number = :sim_number, subscription_number = :subscription_number,
			service_plan_id = :service_plan_id, additional_service_ids = :additional_service_ids,
			registration_fee_mode = :registration_fee_mode, sim_fee_mode = :sim_fee_mode,
			bundle_application = :bundle_application, total_monthly_fee = :total_monthly_fee,
			dealer_notes = :dealer_notes, cancelled_by = :cancelled_by, discard_reason = :discard_reason,
			supplement_notes = :supplement_notes, supplement_required_by = :supplement_required_by,
			supplement_required_at = :supplement_required_at, settlement_amount = :settlement_amount,
			version = version + 1, updated_at = :updated_at
		WHERE id = :id AND version = :version
		RETURNING version`

	stmt, err := r.db.PrepareNamedContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if doc.AdditionalServiceIDs == nil {
		doc.AdditionalServiceIDs = pq.Int64Array{}
	}
	err = stmt.QueryRowxContext(ctx, doc).Scan(&doc.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrStaleVersion
	}
	return err
}

// Delete hard-deletes a document still in intake status received.
func (r *DocumentRepository) Delete(ctx context.Context, id, version int) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM documents
		WHERE id = $1 AND version = $2 AND status = $3`, id, version, models.IntakeReceived)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleVersion
	}
	return nil
}

// List returns a page of documents matching filter. An empty scope yields
// an empty page without touching the database.
func (r *DocumentRepository) List(ctx context.Context, filter *models.DocumentFilter) (*models.DocumentPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Scope.Empty() {
		return &models.DocumentPage{Documents: []models.Document{}, Page: filter.Page, Limit: filter.Limit}, nil
	}

	baseQ := `FROM documents WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if !filter.Scope.Unrestricted {
		var clauses []string
		if filter.Scope.StoreName != nil {
			clauses = append(clauses, fmt.Sprintf("store_name = $%d", argIdx))
			args = append(args, *filter.Scope.StoreName)
			argIdx++
		}
		if filter.Scope.UploadedBy != nil {
			clauses = append(clauses, fmt.Sprintf("uploaded_by = $%d", argIdx))
			args = append(args, *filter.Scope.UploadedBy)
			argIdx++
		}
		if len(filter.Scope.ContactCodes) > 0 {
			clauses = append(clauses, fmt.Sprintf("contact_code = ANY($%d)", argIdx))
			args = append(args, pq.Array(filter.Scope.ContactCodes))
			argIdx++
		}
		baseQ += " AND (" + strings.Join(clauses, " OR ") + ")"
	}

	if filter.Status != nil && *filter.Status != "" {
		baseQ += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.ActivationStatus != nil && *filter.ActivationStatus != "" {
		if *filter.ActivationStatus == models.ViewWorkRequested {
			baseQ += fmt.Sprintf(" AND activation_status = $%d AND status = $%d", argIdx, argIdx+1)
			args = append(args, models.ActivationInProgress, models.IntakeCompleted)
			argIdx += 2
		} else {
			baseQ += fmt.Sprintf(" AND activation_status = $%d", argIdx)
			args = append(args, *filter.ActivationStatus)
			argIdx++
		}
	}
	if filter.Carrier != nil && *filter.Carrier != "" {
		baseQ += fmt.Sprintf(" AND carrier = $%d", argIdx)
		args = append(args, *filter.Carrier)
		argIdx++
	}
	if filter.ContactCode != nil && *filter.ContactCode != "" {
		baseQ += fmt.Sprintf(" AND contact_code = $%d", argIdx)
		args = append(args, *filter.ContactCode)
		argIdx++
	}
	if filter.CustomerType != nil && *filter.CustomerType != "" {
		baseQ += fmt.Sprintf(" AND customer_type = $%d", argIdx)
		args = append(args, *filter.CustomerType)
		argIdx++
	}
	if filter.Search != nil && *filter.Search != "" {
		baseQ += fmt.Sprintf(" AND (customer_name ILIKE $%d OR customer_phone ILIKE $%d OR document_number ILIKE $%d OR subscription_number ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx)
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseQ += fmt.Sprintf(" AND uploaded_at >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseQ += fmt.Sprintf(" AND uploaded_at < ($%d::date + interval '1 day')", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	// Count total
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQ, args...); err != nil {
		return nil, err
	}

	offset := (filter.Page - 1) * filter.Limit
	selectQ := fmt.Sprintf(`SELECT * %s ORDER BY uploaded_at DESC, id DESC LIMIT $%d OFFSET $%d`, baseQ, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	docs := []models.Document{}
	if err := r.db.SelectContext(ctx, &docs, selectQ, args...); err != nil {
		return nil, err
	}

	return &models.DocumentPage{
		Documents:  docs,
		TotalItems: total,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}
